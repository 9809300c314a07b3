package handlers

import (
	"errors"
	"log/slog"
	"time"

	"github.com/ahmetcoskunkizilkaya/caltrack/internal/config"
	"github.com/ahmetcoskunkizilkaya/caltrack/internal/dto"
	"github.com/ahmetcoskunkizilkaya/caltrack/internal/flash"
	"github.com/ahmetcoskunkizilkaya/caltrack/internal/middleware"
	"github.com/ahmetcoskunkizilkaya/caltrack/internal/services"
	"github.com/gofiber/fiber/v2"
)

type AuthHandler struct {
	authService *services.AuthService
	cfg         *config.Config
	flash       *flash.Flasher
}

func NewAuthHandler(authService *services.AuthService, cfg *config.Config, fl *flash.Flasher) *AuthHandler {
	return &AuthHandler{authService: authService, cfg: cfg, flash: fl}
}

func (h *AuthHandler) RegisterPage(c *fiber.Ctx) error {
	return render(c, h.flash, "register", "Register", nil)
}

// Register creates the account and signs the visitor straight in.
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var form dto.CredentialsForm
	if err := c.BodyParser(&form); err != nil {
		return h.flash.Redirect(c, "/register", flash.Error, "Email and password are required.")
	}

	if _, err := h.authService.Register(c.UserContext(), form.Email, form.Password); err != nil {
		switch {
		case errors.Is(err, services.ErrMissingCredentials):
			return h.flash.Redirect(c, "/register", flash.Error, "Email and password are required.")
		case errors.Is(err, services.ErrWeakPassword):
			return h.flash.Redirect(c, "/register", flash.Error, "Password must be at least 8 characters.")
		case errors.Is(err, services.ErrPasswordTooLong):
			return h.flash.Redirect(c, "/register", flash.Error, "Password must be at most 72 characters.")
		case errors.Is(err, services.ErrEmailTaken):
			return h.flash.Redirect(c, "/register", flash.Error, "Email is already registered.")
		}
		return err
	}

	res, err := h.authService.Login(c.UserContext(), form.Email, form.Password, sessionMeta(c))
	if err != nil {
		return err
	}
	middleware.SetSessionCookie(c, h.cfg, res.Token)
	slog.Info("user registered", "action", "register", "user_id", res.User.ID.String())
	return h.flash.Redirect(c, "/profile", flash.Success, "Welcome! Let's set up your profile.")
}

func (h *AuthHandler) LoginPage(c *fiber.Ctx) error {
	return render(c, h.flash, "login", "Log in", nil)
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var form dto.CredentialsForm
	if err := c.BodyParser(&form); err != nil {
		return h.flash.Redirect(c, "/login", flash.Error, "Invalid credentials.")
	}

	res, err := h.authService.Login(c.UserContext(), form.Email, form.Password, sessionMeta(c))
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			return h.flash.Redirect(c, "/login", flash.Error, "Invalid credentials.")
		}
		return err
	}

	middleware.SetSessionCookie(c, h.cfg, res.Token)
	return h.flash.Redirect(c, "/dashboard", flash.Success, "Logged in successfully.")
}

func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	if sid, ok := middleware.SessionID(c); ok {
		if err := h.authService.Logout(c.UserContext(), sid); err != nil {
			slog.Error("failed to revoke session", "action", "logout", "error", err)
		}
	}
	middleware.ClearSessionCookie(c, h.cfg)
	return h.flash.Redirect(c, "/", flash.Success, "You are logged out.")
}

// DeleteAccount removes the signed-in user and every entry it owns.
func (h *AuthHandler) DeleteAccount(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)
	var form dto.DeleteAccountForm
	if err := c.BodyParser(&form); err != nil {
		return h.flash.Redirect(c, "/profile", flash.Error, "Password is required.")
	}

	if err := h.authService.DeleteAccount(c.UserContext(), user.ID, form.Password); err != nil {
		switch {
		case errors.Is(err, services.ErrPasswordRequired):
			return h.flash.Redirect(c, "/profile", flash.Error, "Password is required.")
		case errors.Is(err, services.ErrInvalidCredentials):
			return h.flash.Redirect(c, "/profile", flash.Error, "Incorrect password. Please try again.")
		}
		return err
	}

	middleware.ClearSessionCookie(c, h.cfg)
	slog.Info("account deleted", "action", "delete_account", "user_id", user.ID.String())
	return h.flash.Redirect(c, "/", flash.Success, "Your account has been deleted.")
}

// APILogin exchanges credentials for a Bearer token.
func (h *AuthHandler) APILogin(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apiError(c, fiber.StatusBadRequest, "Invalid request body")
	}

	res, err := h.authService.Login(c.UserContext(), req.Email, req.Password, sessionMeta(c))
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			return apiError(c, fiber.StatusUnauthorized, err.Error())
		}
		return apiError(c, fiber.StatusInternalServerError, "Internal server error")
	}

	return c.JSON(dto.AuthResponse{
		AccessToken: res.Token,
		ExpiresAt:   res.ExpiresAt.UTC().Truncate(time.Second),
		User: dto.UserResponse{
			ID:      res.User.ID,
			Email:   res.User.Email,
			IsAdmin: res.User.IsAdmin(),
		},
	})
}

func sessionMeta(c *fiber.Ctx) services.SessionMeta {
	return services.SessionMeta{UserAgent: c.Get(fiber.HeaderUserAgent), IP: c.IP()}
}
