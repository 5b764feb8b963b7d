package controllers

import (
	"studyproject/backend/config"
	"studyproject/backend/services"
	"studyproject/backend/utils"

	"github.com/gofiber/fiber/v2"
)

type OverviewController struct {
	Catalog *services.CatalogService
	Cfg     *config.Config
	Log     *utils.Logger
}

func NewOverviewController(catalog *services.CatalogService, cfg *config.Config, log *utils.Logger) *OverviewController {
	return &OverviewController{Catalog: catalog, Cfg: cfg, Log: log}
}

// Home godoc
// @Summary Home page
// @Description Popular courses and the site statistics
// @Tags catalog
// @Produce json
// @Success 200 {object} utils.SuccessResponse
// @Router / [get]
func (oc *OverviewController) Home(c *fiber.Ctx) error {
	ctx := c.UserContext()

	popular, err := oc.Catalog.Popular(ctx, oc.Cfg.PopularLimit)
	if err != nil {
		oc.Log.Warn("popular courses unavailable", "error", err)
		popular = nil
	}
	stats, err := oc.Catalog.SiteStatistics(ctx)
	if err != nil {
		oc.Log.Warn("site statistics unavailable", "error", err)
		stats = services.FallbackStatistics()
	}

	return utils.Success(c, fiber.StatusOK, fiber.Map{
		"popular_courses": popular,
		"stats":           stats,
	})
}

func (oc *OverviewController) About(c *fiber.Ctx) error {
	return utils.Success(c, fiber.StatusOK, fiber.Map{"page": "about"})
}

func (oc *OverviewController) Contacts(c *fiber.Ctx) error {
	return utils.Success(c, fiber.StatusOK, fiber.Map{"page": "contacts"})
}
