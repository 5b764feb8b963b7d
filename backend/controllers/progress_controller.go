package controllers

import (
	"studyproject/backend/config"
	"studyproject/backend/middleware"
	"studyproject/backend/services"
	"studyproject/backend/utils"

	"github.com/gofiber/fiber/v2"
)

// ProgressController handles enrolling in a course and reporting progress in it.
type ProgressController struct {
	Enrollments *services.EnrollmentService
	Cfg         *config.Config
	Log         *utils.Logger
}

func NewProgressController(enrollments *services.EnrollmentService, cfg *config.Config, log *utils.Logger) *ProgressController {
	return &ProgressController{Enrollments: enrollments, Cfg: cfg, Log: log}
}

// Enroll godoc
// @Summary Enroll in a course
// @Description Enrolling twice is not an error; the notice says so
// @Tags enrollment
// @Param id path int true "Course ID"
// @Success 302
// @Failure 401 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Router /courses/{id}/enroll/ [post]
func (pc *ProgressController) Enroll(c *fiber.Ctx) error {
	courseID, ok := paramID(c, "id")
	if !ok {
		return utils.NotFound(c, "Course not found")
	}

	res, err := pc.Enrollments.Enroll(c.UserContext(), middleware.CurrentUserID(c), courseID)
	if err != nil {
		return renderError(c, pc.Log, err, nil)
	}

	location := "/courses/" + res.Course.Slug + "/"
	if !res.Created {
		return utils.RedirectWithFlash(c, location, utils.FlashInfo, "You are already enrolled in \""+res.Course.Title+"\".")
	}
	return utils.RedirectWithFlash(c, location, utils.FlashSuccess, "You have enrolled in \""+res.Course.Title+"\"!")
}

// UpdateProgress godoc
// @Summary Record progress in an enrolled course
// @Tags enrollment
// @Accept x-www-form-urlencoded
// @Produce json
// @Param id path int true "Course ID"
// @Success 200 {object} utils.SuccessResponse
// @Failure 422 {object} utils.FormResponse
// @Router /courses/{id}/progress/ [post]
func (pc *ProgressController) UpdateProgress(c *fiber.Ctx) error {
	courseID, ok := paramID(c, "id")
	if !ok {
		return utils.NotFound(c, "Course not found")
	}

	var form services.ProgressForm
	if err := c.BodyParser(&form); err != nil {
		return utils.BadRequest(c, "Cannot parse form")
	}

	enrollment, err := pc.Enrollments.UpdateProgress(c.UserContext(), middleware.CurrentUserID(c), courseID, form)
	if err != nil {
		return renderError(c, pc.Log, err, nil)
	}
	return utils.Success(c, fiber.StatusOK, fiber.Map{"enrollment": enrollment})
}
