package controllers

import (
	"errors"
	"fmt"

	"studyproject/backend/config"
	"studyproject/backend/services"
	"studyproject/backend/utils"

	"github.com/gofiber/fiber/v2"
)

const (
	adminCoursesPath = "/admin-panel/"
	courseImageDir   = "courses"
)

// AdminController serves the course pages of the admin panel.
type AdminController struct {
	Admin *services.AdminService
	Media *utils.MediaStore
	Cfg   *config.Config
	Log   *utils.Logger
}

func NewAdminController(admin *services.AdminService, media *utils.MediaStore, cfg *config.Config, log *utils.Logger) *AdminController {
	return &AdminController{Admin: admin, Media: media, Cfg: cfg, Log: log}
}

// Dashboard godoc
// @Summary Admin course list with totals and an empty course form
// @Tags admin
// @Produce json
// @Success 200 {object} utils.SuccessResponse
// @Success 302 "Not a superuser"
// @Router /admin-panel/ [get]
func (ac *AdminController) Dashboard(c *fiber.Ctx) error {
	list, err := ac.Admin.ListCoursesForAdmin(c.UserContext())
	if err != nil {
		return renderError(c, ac.Log, err, nil)
	}
	return utils.Success(c, fiber.StatusOK, fiber.Map{
		"list":      list,
		"form_data": services.CourseForm{},
	})
}

// EditCourse renders the dashboard with the form filled from the course.
func (ac *AdminController) EditCourse(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return utils.NotFound(c, "Course not found")
	}

	ctx := c.UserContext()
	form, err := ac.Admin.CourseForm(ctx, id)
	if err != nil {
		return renderError(c, ac.Log, err, nil)
	}
	list, err := ac.Admin.ListCoursesForAdmin(ctx)
	if err != nil {
		return renderError(c, ac.Log, err, nil)
	}
	return utils.Success(c, fiber.StatusOK, fiber.Map{
		"list":      list,
		"form_data": form,
		"editing":   true,
		"image_url": ac.Media.FileURL(form.Image),
	})
}

// SaveCourse godoc
// @Summary Create a course, or update the one named by course_id
// @Tags admin
// @Accept multipart/form-data
// @Param title formData string true "Title"
// @Param description formData string true "Description"
// @Param category formData int true "Category ID"
// @Param image formData file false "Cover image"
// @Success 302
// @Failure 409 {object} utils.FormResponse
// @Failure 422 {object} utils.FormResponse
// @Router /admin-panel/ [post]
func (ac *AdminController) SaveCourse(c *fiber.Ctx) error {
	var form services.CourseForm
	if err := c.BodyParser(&form); err != nil {
		return utils.BadRequest(c, "Cannot parse form")
	}

	imageRef := ""
	if file, err := c.FormFile("image"); err == nil {
		imageRef, err = ac.Media.SaveImage(file, courseImageDir)
		if err != nil {
			message := utils.ErrUnsupportedImage.Error()
			if !errors.Is(err, utils.ErrUnsupportedImage) {
				ac.Log.Error("could not store image", "filename", file.Filename, "error", err)
				message = "the image could not be stored, please try again"
			}
			return utils.FormError(c, fiber.StatusUnprocessableEntity, "Please correct the errors below.",
				map[string]string{"image": message}, form, ac.dashboardPage(c))
		}
	}

	res, err := ac.Admin.UpsertCourse(c.UserContext(), form, imageRef)
	if err != nil {
		ac.removeImage(imageRef)
		return renderError(c, ac.Log, err, func() interface{} { return ac.dashboardPage(c) })
	}
	ac.removeImage(res.ReplacedImage)

	message := fmt.Sprintf("Course %q was updated.", res.Course.Title)
	if res.Created {
		message = fmt.Sprintf("Course %q was created.", res.Course.Title)
	}
	return utils.RedirectWithFlash(c, adminCoursesPath, utils.FlashSuccess, message)
}

func (ac *AdminController) DeleteCourse(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return utils.NotFound(c, "Course not found")
	}

	title, image, err := ac.Admin.DeleteCourse(c.UserContext(), id)
	if err != nil {
		if services.IsConflict(err) {
			return utils.RedirectWithFlash(c, adminCoursesPath, utils.FlashError, err.Error())
		}
		return renderError(c, ac.Log, err, nil)
	}
	ac.removeImage(image)
	return utils.RedirectWithFlash(c, adminCoursesPath, utils.FlashSuccess, fmt.Sprintf("Course %q was deleted.", title))
}

// SampleCourses adds the sample courses that are missing.
func (ac *AdminController) SampleCourses(c *fiber.Ctx) error {
	created, err := ac.Admin.SeedSampleData(c.UserContext())
	if err != nil {
		return utils.RedirectWithFlash(c, adminCoursesPath, utils.FlashError, err.Error())
	}
	if created == 0 {
		return utils.RedirectWithFlash(c, adminCoursesPath, utils.FlashInfo, "All sample courses already exist.")
	}
	return utils.RedirectWithFlash(c, adminCoursesPath, utils.FlashSuccess, fmt.Sprintf("Created %d sample course(s).", created))
}

// AddLesson godoc
// @Summary Append a lesson to a course
// @Tags admin
// @Accept x-www-form-urlencoded
// @Param id path int true "Course ID"
// @Param title formData string true "Title"
// @Param lesson_type formData string true "video, text or assignment"
// @Success 201 {object} utils.SuccessResponse
// @Failure 422 {object} utils.FormResponse
// @Router /admin-panel/courses/{id}/lessons/ [post]
func (ac *AdminController) AddLesson(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return utils.NotFound(c, "Course not found")
	}

	var form services.LessonForm
	if err := c.BodyParser(&form); err != nil {
		return utils.BadRequest(c, "Cannot parse form")
	}

	lesson, err := ac.Admin.AddLesson(c.UserContext(), id, form)
	if err != nil {
		return renderError(c, ac.Log, err, func() interface{} { return fiber.Map{"course_id": id} })
	}
	return utils.Created(c, fiber.Map{"lesson": lesson})
}

func (ac *AdminController) Enrollments(c *fiber.Ctx) error {
	enrollments, err := ac.Admin.ListEnrollmentsForAdmin(c.UserContext())
	if err != nil {
		return renderError(c, ac.Log, err, nil)
	}
	return utils.Success(c, fiber.StatusOK, fiber.Map{"enrollments": enrollments})
}

// dashboardPage is the list a rejected course form is shown with.
func (ac *AdminController) dashboardPage(c *fiber.Ctx) interface{} {
	list, err := ac.Admin.ListCoursesForAdmin(c.UserContext())
	if err != nil {
		ac.Log.Warn("admin course list unavailable", "error", err)
		return nil
	}
	return fiber.Map{"list": list}
}

func (ac *AdminController) removeImage(ref string) {
	if err := ac.Media.Remove(ref); err != nil {
		ac.Log.Warn("could not remove image", "ref", ref, "error", err)
	}
}
