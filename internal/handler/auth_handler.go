package handler

import (
	"errors"

	"github.com/notbx57/peternakantelur/internal/service"

	"github.com/gofiber/fiber/v2"
)

type AuthHandler struct {
	service service.AuthService
}

func NewAuthHandler(s service.AuthService) *AuthHandler {
	return &AuthHandler{service: s}
}

func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req service.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	resp, err := h.service.Register(&req)
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(201).JSON(resp)
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req struct {
		Identifier string `json:"identifier"` // email atau username
		Password   string `json:"password"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	resp, err := h.service.Login(req.Identifier, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			return c.Status(401).JSON(fiber.Map{"error": err.Error()})
		}
		return respondError(c, err)
	}

	return c.JSON(resp)
}

func (h *AuthHandler) ValidateToken(c *fiber.Ctx) error {
	var req struct {
		Token string `json:"token"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	resp, err := h.service.ValidateToken(req.Token)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": "Invalid or expired token"})
	}

	return c.JSON(resp)
}

func (h *AuthHandler) UpdateProfile(c *fiber.Ctx) error {
	var req service.UpdateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	resp, err := h.service.UpdateProfile(getUserID(c), &req)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{"message": "Profile updated", "user": resp})
}

func (h *AuthHandler) ChangePassword(c *fiber.Ctx) error {
	var req struct {
		OldPassword string `json:"old_password"`
		NewPassword string `json:"new_password"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	if err := h.service.ChangePassword(getUserID(c), req.OldPassword, req.NewPassword); err != nil {
		if errors.Is(err, service.ErrWrongPassword) {
			return c.Status(400).JSON(fiber.Map{"error": err.Error()})
		}
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{"message": "Password changed"})
}
