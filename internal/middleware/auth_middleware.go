package middleware

import (
	"strings"

	"github.com/notbx57/peternakantelur/internal/repository"
	"github.com/notbx57/peternakantelur/pkg/jwt"

	"github.com/gofiber/fiber/v2"
)

// RequireAuth validates the JWT and sets the verified user identity in the
// request context. It NEVER sets a role: every role is resolved contextually
// per market/kandang by the services.
func RequireAuth(userRepo repository.UserRepository) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(401).JSON(fiber.Map{"error": "Missing authorization token"})
		}

		// Extract token from "Bearer <token>"
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			return c.Status(401).JSON(fiber.Map{"error": "Invalid authorization format. Use: Bearer <token>"})
		}

		claims, err := jwt.ValidateToken(parts[1])
		if err != nil {
			return c.Status(401).JSON(fiber.Map{"error": "Invalid or expired token"})
		}

		// Check strict session against DB
		user, err := userRepo.FindByID(claims.UserID)
		if err != nil {
			return c.Status(401).JSON(fiber.Map{"error": "User not found"})
		}
		if user.TokenVersion != claims.TokenVersion {
			return c.Status(401).JSON(fiber.Map{"error": "Session expired (logged in on another device)"})
		}

		c.Locals("user_id", user.ID)
		c.Locals("user_name", user.Name)
		c.Locals("user_email", user.Email)
		c.Locals("username", user.Username)

		return c.Next()
	}
}
