package controllers

import (
	"studyproject/backend/config"
	"studyproject/backend/services"
	"studyproject/backend/utils"

	"github.com/gofiber/fiber/v2"
)

type AnalyticsController struct {
	Admin *services.AdminService
	Cfg   *config.Config
	Log   *utils.Logger
}

func NewAnalyticsController(admin *services.AdminService, cfg *config.Config, log *utils.Logger) *AnalyticsController {
	return &AnalyticsController{Admin: admin, Cfg: cfg, Log: log}
}

// GetCourseAnalytics godoc
// @Summary Enrollment, progress and review figures of one course
// @Tags admin
// @Produce json
// @Param id path int true "Course ID"
// @Success 200 {object} utils.SuccessResponse
// @Failure 404 {object} utils.ErrorResponse
// @Router /admin-panel/courses/{id}/analytics/ [get]
func (ac *AnalyticsController) GetCourseAnalytics(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return utils.NotFound(c, "Course not found")
	}

	analytics, err := ac.Admin.CourseAnalytics(c.UserContext(), id)
	if err != nil {
		return renderError(c, ac.Log, err, nil)
	}
	return utils.Success(c, fiber.StatusOK, analytics)
}
