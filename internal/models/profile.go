package models

import (
	"time"

	"github.com/ahmetcoskunkizilkaya/caltrack/internal/nutrition"
	"github.com/google/uuid"
)

// Profile stores height in centimeters and weight in kilograms. Nil fields
// have not been filled in yet.
type Profile struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex" json:"user_id"`
	HeightCM  *float64  `json:"height_cm"`
	WeightKG  *float64  `json:"weight_kg"`
	Age       *int      `json:"age"`
	Sex       *string   `gorm:"size:1" json:"sex"`
	Activity  string    `gorm:"size:20;not null;default:'moderately_active'" json:"activity"`
	Goal      string    `gorm:"size:20;not null;default:'maintain'" json:"goal"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewProfile returns the empty profile created for a freshly registered user.
func NewProfile(userID uuid.UUID) *Profile {
	return &Profile{
		ID:       uuid.New(),
		UserID:   userID,
		Activity: string(nutrition.ModeratelyActive),
		Goal:     string(nutrition.GoalMaintain),
	}
}

// Nutrition converts the stored profile to the calculator's input. A nil
// profile converts to nil.
func (p *Profile) Nutrition() *nutrition.Profile {
	if p == nil {
		return nil
	}
	out := &nutrition.Profile{
		Activity: nutrition.ActivityLevel(p.Activity),
		Goal:     nutrition.Goal(p.Goal),
	}
	if p.HeightCM != nil {
		out.HeightCM = *p.HeightCM
	}
	if p.WeightKG != nil {
		out.WeightKG = *p.WeightKG
	}
	if p.Age != nil {
		out.Age = *p.Age
	}
	if p.Sex != nil {
		out.Sex = *p.Sex
	}
	return out
}
