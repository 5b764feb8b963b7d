package middleware

import (
	"studyproject/backend/config"
	"studyproject/backend/models"
	"studyproject/backend/services"
	"studyproject/backend/utils"

	"github.com/gofiber/fiber/v2"
)

const principalKey = "principal"

// Principal resolves the acting user of every request. A missing or invalid token,
// or a token for a deleted user, leaves the request anonymous. So does a failed user
// lookup, which is logged.
func Principal(accounts *services.AccountService, cfg *config.Config, logger *utils.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := utils.ExtractUserIDFromToken(c, cfg)
		if err != nil {
			return c.Next()
		}
		user, err := accounts.GetByID(c.UserContext(), userID)
		switch {
		case err == nil:
			c.Locals(principalKey, user)
		case !services.IsNotFound(err):
			logger.Error("principal lookup failed", "user_id", userID, "error", err)
		}
		return c.Next()
	}
}

// CurrentUser is the request's principal, nil when anonymous.
func CurrentUser(c *fiber.Ctx) *models.User {
	user, _ := c.Locals(principalKey).(*models.User)
	return user
}

// CurrentUserID is 0 for anonymous requests.
func CurrentUserID(c *fiber.Ctx) uint {
	if user := CurrentUser(c); user != nil {
		return user.ID
	}
	return 0
}

func AuthRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if CurrentUser(c) == nil {
			return utils.Unauthorized(c, "Please log in to continue")
		}
		return c.Next()
	}
}

// AdminRequired lets only superusers through. Everyone else is sent back to the home
// page with an error notice.
func AdminRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		user := CurrentUser(c)
		if user == nil || !user.IsSuperuser {
			return utils.RedirectWithFlash(c, "/", utils.FlashError, "You do not have access to the admin panel.")
		}
		return c.Next()
	}
}
