package utils

import (
	"encoding/base64"
	"encoding/json"

	"github.com/gofiber/fiber/v2"
)

const (
	flashCookie = "flash"
	flashLocals = "flash_messages"

	FlashSuccess = "success"
	FlashInfo    = "info"
	FlashError   = "error"
)

type FlashMessage struct {
	Level   string `json:"level"`
	Message string `json:"message"`
}

// SetFlash queues a message for the next rendered page, surviving one redirect.
func SetFlash(c *fiber.Ctx, level, message string) {
	pending := append(pendingFlash(c), FlashMessage{Level: level, Message: message})
	c.Locals(flashLocals, pending)

	raw, err := json.Marshal(pending)
	if err != nil {
		return
	}
	c.Cookie(&fiber.Cookie{
		Name:     flashCookie,
		Value:    base64.RawURLEncoding.EncodeToString(raw),
		Path:     "/",
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

// PopFlash returns the queued messages and forgets them.
func PopFlash(c *fiber.Ctx) []FlashMessage {
	messages := pendingFlash(c)
	if len(messages) == 0 {
		return nil
	}
	c.Locals(flashLocals, []FlashMessage{})
	c.ClearCookie(flashCookie)
	return messages
}

func pendingFlash(c *fiber.Ctx) []FlashMessage {
	if queued, ok := c.Locals(flashLocals).([]FlashMessage); ok {
		return queued
	}
	value := c.Cookies(flashCookie)
	if value == "" {
		return nil
	}
	raw, err := base64.RawURLEncoding.DecodeString(value)
	if err != nil {
		return nil
	}
	var messages []FlashMessage
	if err := json.Unmarshal(raw, &messages); err != nil {
		return nil
	}
	return messages
}
