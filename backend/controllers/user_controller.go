package controllers

import (
	"studyproject/backend/config"
	"studyproject/backend/middleware"
	"studyproject/backend/services"
	"studyproject/backend/utils"

	"github.com/gofiber/fiber/v2"
)

type UserController struct {
	Enrollments *services.EnrollmentService
	Cfg         *config.Config
	Log         *utils.Logger
}

func NewUserController(enrollments *services.EnrollmentService, cfg *config.Config, log *utils.Logger) *UserController {
	return &UserController{Enrollments: enrollments, Cfg: cfg, Log: log}
}

// GetProfile godoc
// @Summary Current user with their enrollments
// @Tags user
// @Produce json
// @Success 200 {object} utils.SuccessResponse
// @Failure 401 {object} utils.ErrorResponse
// @Router /account/profile [get]
func (uc *UserController) GetProfile(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)

	enrollments, err := uc.Enrollments.StudentEnrollments(c.UserContext(), user.ID)
	if err != nil {
		return renderError(c, uc.Log, err, nil)
	}
	return utils.Success(c, fiber.StatusOK, fiber.Map{
		"user":        user,
		"enrollments": enrollments,
	})
}
