package controllers

import (
	"studyproject/backend/services"
	"studyproject/backend/utils"

	"github.com/gofiber/fiber/v2"
	fiberutils "github.com/gofiber/fiber/v2/utils"
)

// renderError answers a failed service call. Validation and conflict errors keep
// the user on the form: page is the context the form page renders with.
func renderError(c *fiber.Ctx, log *utils.Logger, err error, page func() interface{}) error {
	e, ok := services.AsError(err)
	if !ok {
		logFailure(c, log, err)
		return utils.InternalServerError(c, "Something went wrong. Please try again later.")
	}

	switch e.Kind {
	case services.KindNotFound:
		return utils.NotFound(c, e.Message)
	case services.KindValidation:
		return utils.FormError(c, fiber.StatusUnprocessableEntity, e.Message, e.Fields, e.Form, pageData(page))
	case services.KindConflict:
		return utils.FormError(c, fiber.StatusConflict, e.Message, e.Fields, e.Form, pageData(page))
	case services.KindPermission:
		return utils.RedirectWithFlash(c, "/", utils.FlashError, e.Message)
	default:
		logFailure(c, log, err)
		return utils.InternalServerError(c, "Something went wrong. Please try again later.")
	}
}

func logFailure(c *fiber.Ctx, log *utils.Logger, err error) {
	log.Error("request failed",
		"method", fiberutils.CopyString(c.Method()),
		"path", fiberutils.CopyString(c.Path()),
		"error", err)
}

func pageData(page func() interface{}) interface{} {
	if page == nil {
		return nil
	}
	return page()
}

// paramID reads a positive numeric route parameter.
func paramID(c *fiber.Ctx, name string) (uint, bool) {
	id, err := c.ParamsInt(name)
	if err != nil || id <= 0 {
		return 0, false
	}
	return uint(id), true
}
