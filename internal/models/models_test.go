package models

import (
	"testing"
	"time"

	"github.com/ahmetcoskunkizilkaya/caltrack/internal/nutrition"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProfileDefaults(t *testing.T) {
	id := uuid.New()
	p := NewProfile(id)

	assert.Equal(t, id, p.UserID)
	assert.NotEqual(t, uuid.Nil, p.ID)
	assert.Equal(t, "moderately_active", p.Activity)
	assert.Equal(t, "maintain", p.Goal)
	assert.False(t, p.Nutrition().Complete())
}

func TestProfileNutrition(t *testing.T) {
	var nilProfile *Profile
	assert.Nil(t, nilProfile.Nutrition())

	h, w, age, sex := 170.0, 70.0, 30, "M"
	p := &Profile{HeightCM: &h, WeightKG: &w, Age: &age, Sex: &sex, Activity: "very_active", Goal: "lose"}

	got := p.Nutrition()
	require.NotNil(t, got)
	assert.Equal(t, nutrition.Profile{
		HeightCM: 170, WeightKG: 70, Age: 30, Sex: "M",
		Activity: nutrition.VeryActive, Goal: nutrition.GoalLose,
	}, *got)
}

func TestSessionActive(t *testing.T) {
	now := time.Now()
	s := &Session{ExpiresAt: now.Add(time.Hour)}
	assert.True(t, s.Active(now))

	s.Revoked = true
	assert.False(t, s.Active(now))

	s = &Session{ExpiresAt: now.Add(-time.Second)}
	assert.False(t, s.Active(now))

	var none *Session
	assert.False(t, none.Active(now))
}

func TestUserIsAdmin(t *testing.T) {
	assert.True(t, (&User{Role: RoleAdmin}).IsAdmin())
	assert.False(t, (&User{Role: RoleUser}).IsAdmin())
	var none *User
	assert.False(t, none.IsAdmin())
}

func TestEntryNet(t *testing.T) {
	assert.Equal(t, 1500, Entry{CaloriesIn: 2000, CaloriesOut: 500}.Net())
}
