package routes

import (
	"time"

	"github.com/ahmetcoskunkizilkaya/caltrack/internal/config"
	"github.com/ahmetcoskunkizilkaya/caltrack/internal/flash"
	"github.com/ahmetcoskunkizilkaya/caltrack/internal/handlers"
	"github.com/ahmetcoskunkizilkaya/caltrack/internal/middleware"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
)

func Setup(
	app *fiber.App,
	cfg *config.Config,
	auth middleware.Authenticator,
	fl *flash.Flasher,
	authHandler *handlers.AuthHandler,
	trackerHandler *handlers.TrackerHandler,
	adminHandler *handlers.AdminHandler,
	apiHandler *handlers.APIHandler,
	healthHandler *handlers.HealthHandler,
) {
	// Credential endpoints: 10 req/min per IP
	authLimit := limiter.New(limiter.Config{
		Max:               10,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
		LimitReached: func(c *fiber.Ctx) error {
			return fl.Redirect(c, c.Path(), flash.Error, "Too many attempts. Try again in a minute.")
		},
	})

	// Pages
	app.Get("/", trackerHandler.Index)
	app.Get("/register", authHandler.RegisterPage)
	app.Post("/register", authLimit, authHandler.Register)
	app.Get("/login", authHandler.LoginPage)
	app.Post("/login", authLimit, authHandler.Login)

	// Middleware is applied per route so public pages stay public
	page := func(h ...fiber.Handler) []fiber.Handler {
		return append(middleware.SessionProtected(cfg, auth), h...)
	}
	app.Get("/logout", page(authHandler.Logout)...)
	app.Get("/profile", page(trackerHandler.ProfilePage)...)
	app.Post("/profile", page(trackerHandler.UpdateProfile)...)
	app.Get("/dashboard", page(trackerHandler.Dashboard)...)
	app.Get("/add", page(trackerHandler.AddPage)...)
	app.Post("/add", page(trackerHandler.AddEntry)...)
	app.Post("/account/delete", page(authHandler.DeleteAccount)...)
	app.Get("/admin", page(middleware.AdminRequired(cfg, fl), adminHandler.Page)...)

	// JSON API
	api := app.Group("/api", middleware.CORS(cfg))
	api.Use(limiter.New(limiter.Config{
		Max:               60,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))

	api.Get("/health", healthHandler.Check)

	api.Post("/auth/login", limiter.New(limiter.Config{
		Max:               10,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}), authHandler.APILogin)

	protected := func(h ...fiber.Handler) []fiber.Handler {
		return append(middleware.APIProtected(cfg, auth), h...)
	}
	api.Get("/me/metrics", protected(apiHandler.Metrics)...)
	api.Get("/me/recommendations", protected(apiHandler.Recommendations)...)
	api.Get("/me/entries", protected(apiHandler.ListEntries)...)
	api.Post("/me/entries", protected(apiHandler.CreateEntry)...)
}
