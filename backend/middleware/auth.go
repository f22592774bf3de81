package middleware

import (
	"educprogress/backend/utils"

	"github.com/gofiber/fiber/v2"
)

// LocalUserID is the fiber.Ctx locals key holding the verified caller id.
const LocalUserID = "user_id"

// AuthMiddleware verifies the bearer token issued by the identity service.
func AuthMiddleware(secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := utils.ExtractUserIDFromToken(c, secret)
		if err != nil {
			return utils.Unauthorized(c, "Unauthorized")
		}
		c.Locals(LocalUserID, userID)
		return c.Next()
	}
}

// CurrentUserID returns the id stored by AuthMiddleware, if any.
func CurrentUserID(c *fiber.Ctx) (uint, bool) {
	id, ok := c.Locals(LocalUserID).(uint)
	return id, ok
}
