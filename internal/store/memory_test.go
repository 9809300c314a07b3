package store

import (
	"context"
	"testing"
	"time"

	"github.com/ahmetcoskunkizilkaya/caltrack/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ Store = (*MemoryStore)(nil)
var _ Store = (*GormStore)(nil)

func newUser(t *testing.T, s *MemoryStore, email string) *models.User {
	t.Helper()
	u := &models.User{Email: email, Password: "hash"}
	require.NoError(t, s.CreateUser(context.Background(), u, models.NewProfile(uuid.Nil)))
	return u
}

func TestMemoryStoreCreateUser(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	u := newUser(t, s, "a@example.com")
	assert.NotEqual(t, uuid.Nil, u.ID)
	assert.Equal(t, models.RoleUser, u.Role)

	p, err := s.GetProfile(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, u.ID, p.UserID)

	err = s.CreateUser(ctx, &models.User{Email: "a@example.com"}, models.NewProfile(uuid.Nil))
	assert.ErrorIs(t, err, ErrDuplicate)

	_, err = s.GetUserByEmail(ctx, "missing@example.com")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStoreEntriesSinceNewestFirst(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	u := newUser(t, s, "a@example.com")
	other := newUser(t, s, "b@example.com")

	day := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		require.NoError(t, s.CreateEntry(ctx, &models.Entry{UserID: u.ID, Date: day.AddDate(0, 0, -i), CaloriesIn: i}))
	}
	require.NoError(t, s.CreateEntry(ctx, &models.Entry{UserID: other.ID, Date: day}))

	entries, err := s.ListEntriesSince(ctx, u.ID, day.AddDate(0, 0, -2))
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, day, entries[0].Date)
	assert.Equal(t, day.AddDate(0, 0, -2), entries[2].Date)

	total, err := s.CountEntries(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 6, total)
}

func TestMemoryStoreDeleteUserCascades(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	u := newUser(t, s, "a@example.com")
	keep := newUser(t, s, "b@example.com")

	require.NoError(t, s.CreateEntry(ctx, &models.Entry{UserID: u.ID, Date: time.Now()}))
	require.NoError(t, s.CreateEntry(ctx, &models.Entry{UserID: keep.ID, Date: time.Now()}))
	sid := uuid.New()
	require.NoError(t, s.CreateSession(ctx, &models.Session{ID: sid, UserID: u.ID, ExpiresAt: time.Now().Add(time.Hour)}))

	require.NoError(t, s.DeleteUser(ctx, u.ID))

	_, err := s.GetUserByID(ctx, u.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.GetProfile(ctx, u.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.GetSession(ctx, sid)
	assert.ErrorIs(t, err, ErrNotFound)

	total, _ := s.CountEntries(ctx)
	assert.EqualValues(t, 1, total)

	assert.ErrorIs(t, s.DeleteUser(ctx, u.ID), ErrNotFound)
}

func TestMemoryStoreListUsersNewestFirst(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	clock := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	s.now = func() time.Time { clock = clock.Add(time.Minute); return clock }

	first := newUser(t, s, "first@example.com")
	second := newUser(t, s, "second@example.com")
	require.NoError(t, s.CreateEntry(ctx, &models.Entry{UserID: first.ID, Date: clock}))

	users, err := s.ListUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, second.ID, users[0].ID)
	assert.Equal(t, first.ID, users[1].ID)
	assert.EqualValues(t, 1, users[1].EntryCount)
}

func TestMemoryStoreSetRoleAndSessions(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	newUser(t, s, "a@example.com")

	require.NoError(t, s.SetRole(ctx, "a@example.com", models.RoleAdmin))
	u, err := s.GetUserByEmail(ctx, "a@example.com")
	require.NoError(t, err)
	assert.True(t, u.IsAdmin())
	assert.ErrorIs(t, s.SetRole(ctx, "nobody@example.com", models.RoleAdmin), ErrNotFound)

	sid := uuid.New()
	require.NoError(t, s.CreateSession(ctx, &models.Session{ID: sid, UserID: u.ID, ExpiresAt: time.Now().Add(time.Hour)}))
	require.NoError(t, s.RevokeSession(ctx, sid))
	sess, err := s.GetSession(ctx, sid)
	require.NoError(t, err)
	assert.True(t, sess.Revoked)
}
