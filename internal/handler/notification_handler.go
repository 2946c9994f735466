package handler

import (
	"github.com/notbx57/peternakantelur/internal/service"

	"github.com/gofiber/fiber/v2"
)

type NotificationHandler struct {
	service   service.NotificationService
	investors service.InvestorService
}

func NewNotificationHandler(s service.NotificationService, investors service.InvestorService) *NotificationHandler {
	return &NotificationHandler{service: s, investors: investors}
}

func (h *NotificationHandler) List(c *fiber.Ctx) error {
	notifications, err := h.service.ListForUser(getUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(notifications)
}

func (h *NotificationHandler) UnreadCount(c *fiber.Ctx) error {
	count, err := h.service.CountUnread(getUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"unread_count": count})
}

func (h *NotificationHandler) MarkAsRead(c *fiber.Ctx) error {
	notificationID, err := parseUUID(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid notification ID"})
	}

	if err := h.service.MarkAsRead(notificationID, getUserID(c)); err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{"message": "Notification marked as read"})
}

func (h *NotificationHandler) MarkAllAsRead(c *fiber.Ctx) error {
	updated, err := h.service.MarkAllAsRead(getUserID(c))
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{"message": "All notifications marked as read", "updated": updated})
}

// RequestInvestor lets the caller ask to join a kandang as investor.
func (h *NotificationHandler) RequestInvestor(c *fiber.Ctx) error {
	var req struct {
		KandangID string `json:"kandang_id"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}
	kandangID, err := parseUUID(req.KandangID)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid kandang ID"})
	}

	if err := h.investors.RequestInvestor(getUserID(c), kandangID); err != nil {
		return respondError(c, err)
	}

	return c.Status(201).JSON(fiber.Map{"message": "Request sent to the head owner"})
}

func (h *NotificationHandler) AcceptRequest(c *fiber.Ctx) error {
	requestID, err := parseUUID(c.Params("requestId"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid request ID"})
	}

	if err := h.investors.AcceptRequest(requestID, getUserID(c)); err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{"message": "Investor request accepted"})
}

func (h *NotificationHandler) RejectRequest(c *fiber.Ctx) error {
	requestID, err := parseUUID(c.Params("requestId"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid request ID"})
	}

	if err := h.investors.RejectRequest(requestID, getUserID(c)); err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{"message": "Investor request rejected"})
}
