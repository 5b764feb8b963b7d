package controllers

import (
	"strconv"

	"studyproject/backend/config"
	"studyproject/backend/middleware"
	"studyproject/backend/services"
	"studyproject/backend/utils"

	"github.com/gofiber/fiber/v2"
)

type ReviewController struct {
	Enrollments *services.EnrollmentService
	Cfg         *config.Config
	Log         *utils.Logger
}

func NewReviewController(enrollments *services.EnrollmentService, cfg *config.Config, log *utils.Logger) *ReviewController {
	return &ReviewController{Enrollments: enrollments, Cfg: cfg, Log: log}
}

// Form returns the review form, filled with the user's earlier review if there is one.
func (rc *ReviewController) Form(c *fiber.Ctx) error {
	courseID, ok := paramID(c, "id")
	if !ok {
		return utils.NotFound(c, "Course not found")
	}

	review, err := rc.Enrollments.GetReview(c.UserContext(), middleware.CurrentUserID(c), courseID)
	if err != nil {
		return renderError(c, rc.Log, err, nil)
	}
	form := services.ReviewForm{}
	if review != nil {
		form.Rating = strconv.Itoa(review.Rating)
		form.Comment = review.Comment
	}

	return utils.Success(c, fiber.StatusOK, fiber.Map{
		"course_id": courseID,
		"form_data": form,
		"editing":   review != nil,
	})
}

// Submit godoc
// @Summary Add or replace the user's review of a course
// @Tags enrollment
// @Accept x-www-form-urlencoded
// @Param id path int true "Course ID"
// @Param rating formData int true "1 to 5"
// @Param comment formData string false "Comment"
// @Success 302
// @Failure 422 {object} utils.FormResponse
// @Router /courses/{id}/review/ [post]
func (rc *ReviewController) Submit(c *fiber.Ctx) error {
	courseID, ok := paramID(c, "id")
	if !ok {
		return utils.NotFound(c, "Course not found")
	}

	var form services.ReviewForm
	if err := c.BodyParser(&form); err != nil {
		return utils.BadRequest(c, "Cannot parse form")
	}

	res, err := rc.Enrollments.AddOrUpdateReview(c.UserContext(), middleware.CurrentUserID(c), courseID, form)
	if err != nil {
		return renderError(c, rc.Log, err, func() interface{} {
			return fiber.Map{"course_id": courseID}
		})
	}

	message := "Thank you for your review!"
	if !res.Created {
		message = "Your review has been updated."
	}
	return utils.RedirectWithFlash(c, "/courses/"+res.Course.Slug+"/", utils.FlashSuccess, message)
}
