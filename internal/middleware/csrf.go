package middleware

import (
	"strings"
	"time"

	"github.com/ahmetcoskunkizilkaya/caltrack/internal/config"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/csrf"
)

const (
	// CSRFContextKey is where the form token is left for templates.
	CSRFContextKey = "csrf"
	// CSRFFormField is the hidden input every page form posts.
	CSRFFormField  = "_csrf"
	CSRFCookie     = "caltrack_csrf"
)

// CSRF protects form posts with a double-submit token. The JSON API is
// skipped since it authenticates with Bearer tokens, not cookies.
func CSRF(cfg *config.Config) fiber.Handler {
	return csrf.New(csrf.Config{
		KeyLookup:      "form:" + CSRFFormField,
		CookieName:     CSRFCookie,
		CookieSameSite: "Lax",
		CookieSecure:   cfg.CookieSecure,
		CookieHTTPOnly: true,
		ContextKey:     CSRFContextKey,
		Expiration:     1 * time.Hour,
		Next: func(c *fiber.Ctx) bool {
			return strings.HasPrefix(c.Path(), "/api/")
		},
	})
}
