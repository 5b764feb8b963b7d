package controllers

import (
	"studyproject/backend/config"
	"studyproject/backend/middleware"
	"studyproject/backend/services"
	"studyproject/backend/utils"

	"github.com/gofiber/fiber/v2"
)

type CoursesController struct {
	Catalog *services.CatalogService
	Cfg     *config.Config
	Log     *utils.Logger
}

func NewCoursesController(catalog *services.CatalogService, cfg *config.Config, log *utils.Logger) *CoursesController {
	return &CoursesController{Catalog: catalog, Cfg: cfg, Log: log}
}

// List godoc
// @Summary Published courses
// @Tags catalog
// @Produce json
// @Param category query string false "Category slug"
// @Param difficulty query string false "beginner, intermediate or advanced"
// @Success 200 {object} utils.SuccessResponse
// @Router /courses/ [get]
func (cc *CoursesController) List(c *fiber.Ctx) error {
	var filter services.CourseFilter
	if err := c.QueryParser(&filter); err != nil {
		return utils.BadRequest(c, "Invalid filter")
	}

	ctx := c.UserContext()
	courses, err := cc.Catalog.ListPublished(ctx, filter)
	if err != nil {
		return renderError(c, cc.Log, err, nil)
	}
	categories, err := cc.Catalog.Categories(ctx)
	if err != nil {
		return renderError(c, cc.Log, err, nil)
	}

	return utils.Success(c, fiber.StatusOK, fiber.Map{
		"courses":    courses,
		"categories": categories,
		"filter":     filter,
	})
}

func (cc *CoursesController) ByCategory(c *fiber.Ctx) error {
	category, courses, err := cc.Catalog.ByCategory(c.UserContext(), c.Params("slug"))
	if err != nil {
		return renderError(c, cc.Log, err, nil)
	}
	return utils.Success(c, fiber.StatusOK, fiber.Map{
		"category": category,
		"courses":  courses,
	})
}

// Detail godoc
// @Summary Course page
// @Description Lessons, reviews and whether the current user is enrolled
// @Tags catalog
// @Produce json
// @Param slug path string true "Course slug"
// @Success 200 {object} utils.SuccessResponse
// @Failure 404 {object} utils.ErrorResponse
// @Router /courses/{slug}/ [get]
func (cc *CoursesController) Detail(c *fiber.Ctx) error {
	detail, err := cc.Catalog.CourseDetail(c.UserContext(), c.Params("slug"), middleware.CurrentUserID(c))
	if err != nil {
		return renderError(c, cc.Log, err, nil)
	}
	return utils.Success(c, fiber.StatusOK, detail)
}
