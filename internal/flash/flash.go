// Package flash stores one-shot messages in the visitor's session so they
// survive a redirect and are shown on the next rendered page.
package flash

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
)

const (
	Success = "success"
	Error   = "error"

	kindKey    = "flash_kind"
	messageKey = "flash_message"
)

type Message struct {
	Kind string
	Text string
}

type Flasher struct {
	store *session.Store
}

func New(store *session.Store) *Flasher {
	return &Flasher{store: store}
}

// Set stores a message for the next page view.
func (f *Flasher) Set(c *fiber.Ctx, kind, text string) {
	sess, err := f.store.Get(c)
	if err != nil {
		slog.Warn("flash session unavailable", "error", err)
		return
	}
	sess.Set(kindKey, kind)
	sess.Set(messageKey, text)
	if err := sess.Save(); err != nil {
		slog.Warn("flash session save failed", "error", err)
	}
}

// Redirect stores a message and redirects to location.
func (f *Flasher) Redirect(c *fiber.Ctx, location, kind, text string) error {
	f.Set(c, kind, text)
	return c.Redirect(location, fiber.StatusSeeOther)
}

// Pop returns the pending message, if any, and clears it.
func (f *Flasher) Pop(c *fiber.Ctx) *Message {
	sess, err := f.store.Get(c)
	if err != nil {
		return nil
	}
	text, _ := sess.Get(messageKey).(string)
	if text == "" {
		return nil
	}
	kind, _ := sess.Get(kindKey).(string)
	sess.Delete(kindKey)
	sess.Delete(messageKey)
	if err := sess.Save(); err != nil {
		slog.Warn("flash session save failed", "error", err)
	}
	return &Message{Kind: kind, Text: text}
}
