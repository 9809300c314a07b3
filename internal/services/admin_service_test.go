package services

import (
	"context"
	"testing"
	"time"

	"github.com/ahmetcoskunkizilkaya/caltrack/internal/models"
	"github.com/ahmetcoskunkizilkaya/caltrack/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdminOverview(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	auth := NewAuthService(st, testConfig())
	tracker := NewTrackerService(st, nil)

	a, err := auth.Register(ctx, "a@example.com", "password123")
	require.NoError(t, err)
	_, err = auth.Register(ctx, "b@example.com", "password123")
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		_, err := tracker.AddEntry(ctx, a.ID, NewEntry{Date: time.Now()})
		require.NoError(t, err)
	}

	overview, err := NewAdminService(st).Overview(ctx)
	require.NoError(t, err)
	assert.Len(t, overview.Users, 2)
	assert.EqualValues(t, 3, overview.TotalEntries)
}

func TestSetAdmin(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	_, err := NewAuthService(st, testConfig()).Register(ctx, "a@example.com", "password123")
	require.NoError(t, err)
	svc := NewAdminService(st)

	require.NoError(t, svc.SetAdmin(ctx, " A@Example.com", true))
	u, _ := st.GetUserByEmail(ctx, "a@example.com")
	assert.Equal(t, models.RoleAdmin, u.Role)

	require.NoError(t, svc.SetAdmin(ctx, "a@example.com", false))
	u, _ = st.GetUserByEmail(ctx, "a@example.com")
	assert.Equal(t, models.RoleUser, u.Role)

	assert.ErrorIs(t, svc.SetAdmin(ctx, "ghost@example.com", true), ErrUserNotFound)
}
