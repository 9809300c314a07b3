package middleware

import (
	"slices"

	"github.com/ahmetcoskunkizilkaya/caltrack/internal/config"
	"github.com/gofiber/fiber/v2"
)

// Flasher records a message for the next page and redirects.
type Flasher interface {
	Redirect(c *fiber.Ctx, location, kind, text string) error
}

// AdminRequired must run after SessionProtected. It admits users with the
// admin role and users whose email is listed in ADMIN_EMAILS; everyone else is
// sent back to the dashboard.
func AdminRequired(cfg *config.Config, flash Flasher) fiber.Handler {
	adminEmails := cfg.AdminEmailList()

	return func(c *fiber.Ctx) error {
		user := CurrentUser(c)
		if user == nil {
			return c.Redirect("/login", fiber.StatusSeeOther)
		}
		if user.IsAdmin() || slices.Contains(adminEmails, user.Email) {
			return c.Next()
		}
		return flash.Redirect(c, "/dashboard", "error", "Admin access required.")
	}
}
