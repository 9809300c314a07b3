// Package events publishes domain events for downstream consumers.
package events

import (
	"context"
	"time"

	"github.com/google/uuid"
)

const EntryLoggedType = "entry.logged"

// EntryLogged is emitted after a log entry has been stored.
type EntryLogged struct {
	Type        string    `json:"type"`
	EntryID     uuid.UUID `json:"entry_id"`
	UserID      uuid.UUID `json:"user_id"`
	Date        string    `json:"date"`
	CaloriesIn  int       `json:"calories_in"`
	CaloriesOut int       `json:"calories_out"`
	WeightKG    *float64  `json:"weight_kg,omitempty"`
	OccurredAt  time.Time `json:"occurred_at"`
}

type Publisher interface {
	PublishEntryLogged(ctx context.Context, evt EntryLogged) error
	Close() error
}

// NopPublisher drops every event. Used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) PublishEntryLogged(context.Context, EntryLogged) error { return nil }
func (NopPublisher) Close() error                                        { return nil }
