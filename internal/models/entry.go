package models

import (
	"time"

	"github.com/google/uuid"
)

// Entry is one daily log record. Several entries may share a date.
type Entry struct {
	ID          uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID      uuid.UUID `gorm:"type:uuid;not null;index:idx_entries_user_date,priority:1" json:"user_id"`
	Date        time.Time `gorm:"type:date;not null;index:idx_entries_user_date,priority:2" json:"date"`
	CaloriesIn  int       `gorm:"not null;default:0" json:"calories_in"`
	CaloriesOut int       `gorm:"not null;default:0" json:"calories_out"`
	WeightKG    *float64  `json:"weight_kg"`
	Notes       *string   `gorm:"type:text" json:"notes"`
	CreatedAt   time.Time `json:"created_at"`
}

// Net is calories consumed minus calories expended.
func (e Entry) Net() int {
	return e.CaloriesIn - e.CaloriesOut
}
