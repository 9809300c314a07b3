package handlers

import (
	"github.com/ahmetcoskunkizilkaya/caltrack/internal/flash"
	"github.com/ahmetcoskunkizilkaya/caltrack/internal/services"
	"github.com/gofiber/fiber/v2"
)

type AdminHandler struct {
	admin *services.AdminService
	flash *flash.Flasher
}

func NewAdminHandler(admin *services.AdminService, fl *flash.Flasher) *AdminHandler {
	return &AdminHandler{admin: admin, flash: fl}
}

// Page lists every account, newest first, with its entry count.
func (h *AdminHandler) Page(c *fiber.Ctx) error {
	overview, err := h.admin.Overview(c.UserContext())
	if err != nil {
		return err
	}
	return render(c, h.flash, "admin", "Admin", fiber.Map{"Overview": overview})
}
