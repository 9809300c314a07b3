package handlers

import (
	"github.com/ahmetcoskunkizilkaya/caltrack/internal/dto"
	"github.com/ahmetcoskunkizilkaya/caltrack/internal/flash"
	"github.com/ahmetcoskunkizilkaya/caltrack/internal/middleware"
	"github.com/ahmetcoskunkizilkaya/caltrack/internal/web"
	"github.com/gofiber/fiber/v2"
)

// render draws a page inside the main layout with the values every page
// needs: the pending flash message, the signed-in user and the CSRF token.
func render(c *fiber.Ctx, fl *flash.Flasher, name, title string, data fiber.Map) error {
	if data == nil {
		data = fiber.Map{}
	}
	data["Title"] = title
	data["Flash"] = fl.Pop(c)
	if user := middleware.CurrentUser(c); user != nil {
		data["CurrentUser"] = user
	}
	if token, ok := c.Locals(middleware.CSRFContextKey).(string); ok {
		data["CSRF"] = token
	}
	return c.Render(name, data, web.Layout)
}

func apiError(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(dto.ErrorResponse{Error: true, Message: message})
}
