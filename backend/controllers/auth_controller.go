package controllers

import (
	"errors"
	"time"

	"studyproject/backend/config"
	"studyproject/backend/services"
	"studyproject/backend/utils"

	"github.com/gofiber/fiber/v2"
)

type AuthController struct {
	Accounts *services.AccountService
	Cfg      *config.Config
	Log      *utils.Logger
}

func NewAuthController(accounts *services.AccountService, cfg *config.Config, log *utils.Logger) *AuthController {
	return &AuthController{Accounts: accounts, Cfg: cfg, Log: log}
}

// [+] Register godoc
// @Summary Register a new user
// @Description Creates a new student account
// @Tags auth
// @Accept json
// @Produce json
// @Param user body services.RegisterForm true "User registration data"
// @Success 201 {object} utils.SuccessResponse
// @Failure 409 {object} utils.FormResponse
// @Failure 422 {object} utils.FormResponse
// @Router /auth/register [post]
func (ac *AuthController) Register(c *fiber.Ctx) error {
	var form services.RegisterForm
	if err := c.BodyParser(&form); err != nil {
		return utils.BadRequest(c, "Cannot parse request body")
	}

	user, err := ac.Accounts.Register(c.UserContext(), form)
	if err != nil {
		return renderError(c, ac.Log, err, nil)
	}
	return utils.Created(c, fiber.Map{"user": user})
}

// [+] Login godoc
// @Summary Log in
// @Description Returns an access token and sets it as a cookie
// @Tags auth
// @Accept json
// @Produce json
// @Param credentials body services.LoginForm true "Username and password"
// @Success 200 {object} utils.SuccessResponse
// @Failure 401 {object} utils.ErrorResponse
// @Router /auth/login [post]
func (ac *AuthController) Login(c *fiber.Ctx) error {
	var form services.LoginForm
	if err := c.BodyParser(&form); err != nil {
		return utils.BadRequest(c, "Cannot parse request body")
	}

	user, err := ac.Accounts.Authenticate(c.UserContext(), form)
	if errors.Is(err, services.ErrInvalidCredentials) {
		return utils.Unauthorized(c, err.Error())
	}
	if err != nil {
		return renderError(c, ac.Log, err, nil)
	}

	token, err := utils.GenerateJWTToken(user.ID, ac.Cfg)
	if err != nil {
		ac.Log.Error("token generation failed", "user_id", user.ID, "error", err)
		return utils.InternalServerError(c, "Could not generate token")
	}

	c.Cookie(&fiber.Cookie{
		Name:     utils.TokenCookie,
		Value:    token,
		Path:     "/",
		Expires:  time.Now().Add(time.Duration(ac.Cfg.TokenTTLHours) * time.Hour),
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	ac.Log.Info("user logged in", "user_id", user.ID)

	return utils.Success(c, fiber.StatusOK, fiber.Map{
		"token": token,
		"user":  user,
	})
}

func (ac *AuthController) Logout(c *fiber.Ctx) error {
	c.ClearCookie(utils.TokenCookie)
	return utils.RedirectWithFlash(c, "/", utils.FlashInfo, "You have been logged out.")
}
