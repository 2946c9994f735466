package handler

import (
	"github.com/notbx57/peternakantelur/internal/service"

	"github.com/gofiber/fiber/v2"
)

type MarketHandler struct {
	service     service.MarketService
	roleService service.RoleService
}

func NewMarketHandler(s service.MarketService, roles service.RoleService) *MarketHandler {
	return &MarketHandler{service: s, roleService: roles}
}

func (h *MarketHandler) GetMarkets(c *fiber.Ctx) error {
	markets, err := h.service.GetMarkets()
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(markets)
}

func (h *MarketHandler) GetMyMarkets(c *fiber.Ctx) error {
	markets, err := h.service.GetMyMarkets(getUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(markets)
}

func (h *MarketHandler) GetMarket(c *fiber.Ctx) error {
	marketID, err := parseUUID(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid market ID"})
	}

	market, err := h.service.GetMarketByID(marketID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(market)
}

func (h *MarketHandler) GetMarketByHandle(c *fiber.Ctx) error {
	market, err := h.service.GetMarketByHandle(c.Params("handle"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(market)
}

func (h *MarketHandler) CheckHandle(c *fiber.Ctx) error {
	check, err := h.service.CheckHandleAvailable(c.Query("handle"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(check)
}

func (h *MarketHandler) GetMarketCount(c *fiber.Ctx) error {
	count, err := h.service.GetMarketCount(getUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(count)
}

func (h *MarketHandler) CreateMarket(c *fiber.Ctx) error {
	var req service.CreateMarketRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	marketID, err := h.service.CreateMarket(getUserID(c), &req)
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(201).JSON(fiber.Map{"message": "Market created", "id": marketID})
}

func (h *MarketHandler) UpdateMarket(c *fiber.Ctx) error {
	marketID, err := parseUUID(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid market ID"})
	}

	var req service.UpdateMarketRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	if err := h.service.UpdateMarket(marketID, getUserID(c), &req); err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{"message": "Market updated"})
}

func (h *MarketHandler) DeleteMarket(c *fiber.Ctx) error {
	marketID, err := parseUUID(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid market ID"})
	}

	if err := h.service.DeleteMarket(marketID, getUserID(c)); err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{"message": "Market deactivated"})
}

func (h *MarketHandler) GetMembers(c *fiber.Ctx) error {
	marketID, err := parseUUID(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid market ID"})
	}

	members, err := h.roleService.GetMarketMembers(marketID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(members)
}

// GetMyRole resolves the caller's contextual role inside the market.
func (h *MarketHandler) GetMyRole(c *fiber.Ctx) error {
	marketID, err := parseUUID(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid market ID"})
	}

	role, err := h.roleService.ResolveMarketRole(marketID, getUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"role": role})
}

func (h *MarketHandler) AddCoOwner(c *fiber.Ctx) error {
	marketID, err := parseUUID(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid market ID"})
	}

	var req struct {
		UserID string `json:"user_id"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}
	userID, err := parseUUID(req.UserID)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid user ID"})
	}

	memberID, err := h.service.AddCoOwner(marketID, userID, getUserID(c))
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(201).JSON(fiber.Map{"message": "Co-owner added", "id": memberID})
}

func (h *MarketHandler) RemoveCoOwner(c *fiber.Ctx) error {
	marketID, err := parseUUID(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid market ID"})
	}
	userID, err := parseUUID(c.Params("userId"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid user ID"})
	}

	if err := h.service.RemoveCoOwner(marketID, userID, getUserID(c)); err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{"message": "Co-owner removed"})
}
