package handler

import (
	"errors"

	"github.com/notbx57/peternakantelur/internal/apperror"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// Helper untuk ambil verified user ID dari context (set by auth middleware)
func getUserID(c *fiber.Ctx) uuid.UUID {
	if id, ok := c.Locals("user_id").(uuid.UUID); ok {
		return id
	}
	return uuid.Nil
}

// Helper untuk parse UUID dari path/query param
func parseUUID(id string) (uuid.UUID, error) {
	return uuid.Parse(id)
}

// respondError maps business errors to their HTTP status; anything else is a
// storage/internal failure and surfaces as a plain 500.
func respondError(c *fiber.Ctx, err error) error {
	var appErr *apperror.Error
	if errors.As(err, &appErr) {
		body := fiber.Map{"error": appErr.Message, "kind": appErr.Kind}
		if appErr.Kind == apperror.KindCooldownActive {
			body["remaining_minutes"] = appErr.RemainingMinutes
		}
		return c.Status(apperror.StatusCode(err)).JSON(body)
	}
	return c.Status(500).JSON(fiber.Map{"error": "Internal Server Error"})
}
