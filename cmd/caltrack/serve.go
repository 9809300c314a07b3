package main

import (
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	sentryfiber "github.com/getsentry/sentry-go/fiber"

	"github.com/ahmetcoskunkizilkaya/caltrack/internal/dto"
	"github.com/ahmetcoskunkizilkaya/caltrack/internal/events"
	"github.com/ahmetcoskunkizilkaya/caltrack/internal/flash"
	"github.com/ahmetcoskunkizilkaya/caltrack/internal/handlers"
	"github.com/ahmetcoskunkizilkaya/caltrack/internal/logging"
	"github.com/ahmetcoskunkizilkaya/caltrack/internal/middleware"
	"github.com/ahmetcoskunkizilkaya/caltrack/internal/routes"
	"github.com/ahmetcoskunkizilkaya/caltrack/internal/services"
	"github.com/ahmetcoskunkizilkaya/caltrack/internal/store"
	"github.com/ahmetcoskunkizilkaya/caltrack/internal/web"
	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/fiber/v2/middleware/session"
	"github.com/spf13/cobra"
)

var serveMemory bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the web app and JSON API",
	Long: `Run the web app and JSON API on $PORT (default 8080).

With --memory the server keeps everything in process memory and needs no
database; data is lost on exit.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return serve()
	},
}

func init() {
	serveCmd.Flags().BoolVar(&serveMemory, "memory", false, "use an in-memory store instead of PostgreSQL")
}

func serve() error {
	if err := cfg.Validate(!serveMemory); err != nil {
		return err
	}

	// Store
	var st store.Store
	var pgLogHandler *logging.PGHandler
	cleanupDone := make(chan struct{})
	if serveMemory {
		slog.Warn("using in-memory store; data will not survive a restart")
		st = store.NewMemoryStore()
	} else {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer closeDB(db)
		st = store.NewGormStore(db)

		// PostgreSQL log handler (ERROR+ async batch)
		pgLogHandler = logging.NewPGHandler(db)
		slog.SetDefault(slog.New(logging.NewMultiHandler(
			logging.Setup(cfg.LogLevel),
			pgLogHandler,
		)))
		logging.StartCleanup(db, cfg.LogRetentionDays, cleanupDone)
	}

	// Events
	var publisher events.Publisher = events.NopPublisher{}
	if cfg.RabbitMQURL != "" {
		p, err := events.NewAMQPPublisher(cfg.RabbitMQURL, cfg.EntryEventsQueue)
		if err != nil {
			slog.Error("amqp publisher unavailable, entry events disabled", "error", err)
		} else {
			publisher = p
		}
	}
	defer publisher.Close()

	// Sentry error tracking
	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			EnableTracing:    true,
			TracesSampleRate: 0.2,
			Environment:      cfg.AppEnv,
		}); err != nil {
			slog.Error("sentry init failed", "error", err)
		} else {
			defer sentry.Flush(2 * time.Second)
		}
	}

	// Services
	authService := services.NewAuthService(st, cfg)
	trackerService := services.NewTrackerService(st, publisher)
	adminService := services.NewAdminService(st)

	sessions := session.New(session.Config{
		Expiration:     24 * time.Hour,
		CookieSecure:   cfg.CookieSecure,
		CookieHTTPOnly: true,
		CookieSameSite: fiber.CookieSameSiteLaxMode,
	})
	fl := flash.New(sessions)

	// Fiber app
	app := fiber.New(fiber.Config{
		BodyLimit:    1 * 1024 * 1024,
		Views:        web.NewEngine(),
		ErrorHandler: customErrorHandler,
	})

	if cfg.SentryDSN != "" {
		app.Use(sentryfiber.New(sentryfiber.Options{
			Repanic:         true,
			WaitForDelivery: false,
		}))
	}

	// Global middleware
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format: "${time} | ${status} | ${latency} | ${ip} | ${method} | ${path} | ${locals:requestid}\n",
	}))
	app.Use(middleware.SecurityHeaders())
	app.Use(middleware.CSRF(cfg))

	// Routes
	routes.Setup(app, cfg, authService, fl,
		handlers.NewAuthHandler(authService, cfg, fl),
		handlers.NewTrackerHandler(trackerService, fl),
		handlers.NewAdminHandler(adminService, fl),
		handlers.NewAPIHandler(trackerService),
		handlers.NewHealthHandler(st),
	)

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	listenErr := make(chan error, 1)
	go func() {
		slog.Info("server starting", "port", cfg.Port, "env", cfg.AppEnv, "memory", serveMemory)
		listenErr <- app.Listen(":" + cfg.Port)
	}()

	select {
	case err := <-listenErr:
		slog.Error("server failed to start", "error", err)
		close(cleanupDone)
		return err
	case <-quit:
	}
	slog.Info("shutting down server...")

	close(cleanupDone)
	if pgLogHandler != nil {
		pgLogHandler.Stop()
	}

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		slog.Error("server shutdown error", "error", err)
	}

	slog.Info("server stopped")
	return nil
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal server error"
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	// Only expose error details for client errors (4xx), not server errors (5xx)
	if code >= 500 {
		slog.Error("unhandled server error",
			"method", c.Method(),
			"path", c.Path(),
			"request_id", c.Locals("requestid"),
			"error", err.Error(),
		)
		message = "Internal server error"
	}

	if strings.HasPrefix(c.Path(), "/api/") {
		return c.Status(code).JSON(dto.ErrorResponse{Error: true, Message: message})
	}
	return c.Status(code).SendString(message)
}
