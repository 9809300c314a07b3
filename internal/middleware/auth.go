package middleware

import (
	"context"
	"errors"
	"time"

	"github.com/ahmetcoskunkizilkaya/caltrack/internal/config"
	"github.com/ahmetcoskunkizilkaya/caltrack/internal/dto"
	"github.com/ahmetcoskunkizilkaya/caltrack/internal/models"
	jwtware "github.com/gofiber/contrib/jwt"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	tokenKey       = "user"
	currentUserKey = "current_user"
	sessionIDKey   = "session_id"
)

// Authenticator resolves a session id to its user.
type Authenticator interface {
	Authenticate(ctx context.Context, sessionID uuid.UUID) (*models.User, error)
}

// SessionProtected guards page routes: the session token is read from the
// session cookie and visitors without a valid one are sent to the login page.
func SessionProtected(cfg *config.Config, auth Authenticator) []fiber.Handler {
	verify := jwtware.New(jwtware.Config{
		SigningKey:  jwtware.SigningKey{JWTAlg: jwtware.HS256, Key: []byte(cfg.JWTSecret)},
		TokenLookup: "cookie:" + cfg.SessionCookie,
		ContextKey:  tokenKey,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			ClearSessionCookie(c, cfg)
			return c.Redirect("/login", fiber.StatusSeeOther)
		},
	})
	load := func(c *fiber.Ctx) error {
		if err := loadUser(c, auth); err != nil {
			ClearSessionCookie(c, cfg)
			return c.Redirect("/login", fiber.StatusSeeOther)
		}
		return c.Next()
	}
	return []fiber.Handler{verify, load}
}

// APIProtected guards JSON routes with a Bearer token in the Authorization header.
func APIProtected(cfg *config.Config, auth Authenticator) []fiber.Handler {
	unauthorized := func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error:   true,
			Message: "Unauthorized: invalid or expired token",
		})
	}
	verify := jwtware.New(jwtware.Config{
		SigningKey: jwtware.SigningKey{JWTAlg: jwtware.HS256, Key: []byte(cfg.JWTSecret)},
		ContextKey: tokenKey,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return unauthorized(c)
		},
	})
	load := func(c *fiber.Ctx) error {
		if err := loadUser(c, auth); err != nil {
			return unauthorized(c)
		}
		return c.Next()
	}
	return []fiber.Handler{verify, load}
}

func loadUser(c *fiber.Ctx, auth Authenticator) error {
	sid, err := sessionIDFromToken(c)
	if err != nil {
		return err
	}
	user, err := auth.Authenticate(c.UserContext(), sid)
	if err != nil {
		return err
	}
	c.Locals(sessionIDKey, sid)
	c.Locals(currentUserKey, user)
	return nil
}

func sessionIDFromToken(c *fiber.Ctx) (uuid.UUID, error) {
	token, ok := c.Locals(tokenKey).(*jwt.Token)
	if !ok || token == nil {
		return uuid.Nil, errors.New("invalid token in context")
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return uuid.Nil, errors.New("invalid claims")
	}
	sid, ok := claims["sid"].(string)
	if !ok {
		return uuid.Nil, errors.New("missing sid claim")
	}
	return uuid.Parse(sid)
}

// CurrentUser returns the user loaded by SessionProtected or APIProtected.
func CurrentUser(c *fiber.Ctx) *models.User {
	user, _ := c.Locals(currentUserKey).(*models.User)
	return user
}

// SessionID returns the session behind the current request.
func SessionID(c *fiber.Ctx) (uuid.UUID, bool) {
	sid, ok := c.Locals(sessionIDKey).(uuid.UUID)
	return sid, ok
}

// SetSessionCookie stores a session token in an HttpOnly cookie.
func SetSessionCookie(c *fiber.Ctx, cfg *config.Config, token string) {
	c.Cookie(&fiber.Cookie{
		Name:     cfg.SessionCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(cfg.SessionTTL.Seconds()),
		Secure:   cfg.CookieSecure,
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

func ClearSessionCookie(c *fiber.Ctx, cfg *config.Config) {
	c.Cookie(&fiber.Cookie{
		Name:     cfg.SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Now().Add(-time.Hour),
		Secure:   cfg.CookieSecure,
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}
