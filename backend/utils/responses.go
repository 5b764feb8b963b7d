package utils

import (
	"net/http"

	"github.com/gofiber/fiber/v2"
)

// SuccessResponse is the envelope for every page context.
type SuccessResponse struct {
	Success  bool          `json:"success"`
	Message  string        `json:"message,omitempty"`
	Data     interface{}   `json:"data,omitempty"`
	Messages []FlashMessage `json:"messages,omitempty"`
}

// ErrorResponse is the envelope for failures.
type ErrorResponse struct {
	Success bool        `json:"success"`
	Error   string      `json:"error"`
	Message string      `json:"message,omitempty"`
	Details interface{} `json:"details,omitempty"`
}

// FormResponse re-presents a form after a rejected submission: the message, the
// per-field errors, the values the user typed and whatever else the page needs.
type FormResponse struct {
	Success  bool              `json:"success"`
	Error    string            `json:"error"`
	Message  string            `json:"message"`
	Errors   map[string]string `json:"errors,omitempty"`
	FormData interface{}       `json:"form_data"`
	Data     interface{}       `json:"data,omitempty"`
}

// Success renders a page context, draining pending flash messages into it.
func Success(c *fiber.Ctx, status int, data interface{}) error {
	return c.Status(status).JSON(SuccessResponse{
		Success:  true,
		Data:     data,
		Messages: PopFlash(c),
	})
}

// Error renders the error envelope with the status text of status.
func Error(c *fiber.Ctx, status int, err error, details ...interface{}) error {
	response := ErrorResponse{
		Success: false,
		Error:   http.StatusText(status),
		Message: err.Error(),
	}

	if len(details) > 0 {
		response.Details = details[0]
	}

	return c.Status(status).JSON(response)
}

// FormError keeps the user on the form with their input intact.
func FormError(c *fiber.Ctx, status int, message string, fields map[string]string, form interface{}, data interface{}) error {
	return c.Status(status).JSON(FormResponse{
		Success:  false,
		Error:    http.StatusText(status),
		Message:  message,
		Errors:   fields,
		FormData: form,
		Data:     data,
	})
}

// Created sends 201 Created
func Created(c *fiber.Ctx, data interface{}) error {
	return Success(c, fiber.StatusCreated, data)
}

// NotFound sends 404 Not Found
func NotFound(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusNotFound, fiber.NewError(fiber.StatusNotFound, message))
}

// BadRequest sends 400 Bad Request
func BadRequest(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusBadRequest, fiber.NewError(fiber.StatusBadRequest, message))
}

// Unauthorized sends 401 Unauthorized
func Unauthorized(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusUnauthorized, fiber.NewError(fiber.StatusUnauthorized, message))
}

// InternalServerError sends 500 Internal Server Error
func InternalServerError(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusInternalServerError, fiber.NewError(fiber.StatusInternalServerError, message))
}

// RedirectWithFlash stores a one-shot notice and redirects, like a POST/redirect/GET form.
func RedirectWithFlash(c *fiber.Ctx, location, level, message string) error {
	SetFlash(c, level, message)
	return c.Redirect(location, fiber.StatusFound)
}
