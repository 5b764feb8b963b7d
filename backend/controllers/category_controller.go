package controllers

import (
	"fmt"

	"studyproject/backend/config"
	"studyproject/backend/services"
	"studyproject/backend/utils"

	"github.com/gofiber/fiber/v2"
)

const manageCategoriesPath = "/admin-panel/manage-categories/"

type CategoryController struct {
	Admin *services.AdminService
	Cfg   *config.Config
	Log   *utils.Logger
}

func NewCategoryController(admin *services.AdminService, cfg *config.Config, log *utils.Logger) *CategoryController {
	return &CategoryController{Admin: admin, Cfg: cfg, Log: log}
}

func (cc *CategoryController) Manage(c *fiber.Ctx) error {
	categories, err := cc.Admin.ListCategories(c.UserContext())
	if err != nil {
		return renderError(c, cc.Log, err, nil)
	}
	return utils.Success(c, fiber.StatusOK, fiber.Map{
		"categories": categories,
		"form_data":  services.CategoryForm{},
	})
}

func (cc *CategoryController) Create(c *fiber.Ctx) error {
	var form services.CategoryForm
	if err := c.BodyParser(&form); err != nil {
		return utils.BadRequest(c, "Cannot parse form")
	}

	category, err := cc.Admin.CreateCategory(c.UserContext(), form)
	if err != nil {
		return renderError(c, cc.Log, err, func() interface{} { return cc.categoriesPage(c, nil) })
	}
	return utils.RedirectWithFlash(c, manageCategoriesPath, utils.FlashSuccess, fmt.Sprintf("Category %q was created.", category.Name))
}

func (cc *CategoryController) Edit(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return utils.NotFound(c, "Category not found")
	}

	ctx := c.UserContext()
	category, err := cc.Admin.GetCategory(ctx, id)
	if err != nil {
		return renderError(c, cc.Log, err, nil)
	}
	categories, err := cc.Admin.ListCategories(ctx)
	if err != nil {
		return renderError(c, cc.Log, err, nil)
	}
	return utils.Success(c, fiber.StatusOK, fiber.Map{
		"categories":       categories,
		"editing_category": category,
		"form_data":        services.CategoryForm{Name: category.Name, Description: category.Description},
	})
}

func (cc *CategoryController) Update(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return utils.NotFound(c, "Category not found")
	}

	var form services.CategoryForm
	if err := c.BodyParser(&form); err != nil {
		return utils.BadRequest(c, "Cannot parse form")
	}

	category, err := cc.Admin.UpdateCategory(c.UserContext(), id, form)
	if err != nil {
		return renderError(c, cc.Log, err, func() interface{} { return cc.categoriesPage(c, &id) })
	}
	return utils.RedirectWithFlash(c, manageCategoriesPath, utils.FlashSuccess, fmt.Sprintf("Category %q was updated.", category.Name))
}

// Delete refuses categories that still have courses; the notice says how many.
func (cc *CategoryController) Delete(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return utils.NotFound(c, "Category not found")
	}

	name, err := cc.Admin.DeleteCategory(c.UserContext(), id)
	if err != nil {
		if services.IsConflict(err) {
			return utils.RedirectWithFlash(c, manageCategoriesPath, utils.FlashError, err.Error())
		}
		return renderError(c, cc.Log, err, nil)
	}
	return utils.RedirectWithFlash(c, manageCategoriesPath, utils.FlashSuccess, fmt.Sprintf("Category %q was deleted.", name))
}

func (cc *CategoryController) categoriesPage(c *fiber.Ctx, editing *uint) interface{} {
	categories, err := cc.Admin.ListCategories(c.UserContext())
	if err != nil {
		cc.Log.Warn("category list unavailable", "error", err)
		return nil
	}
	page := fiber.Map{"categories": categories}
	if editing != nil {
		page["editing_category_id"] = *editing
	}
	return page
}
