package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/ahmetcoskunkizilkaya/caltrack/internal/models"
	"github.com/ahmetcoskunkizilkaya/caltrack/internal/store"
)

var ErrUserNotFound = errors.New("user not found")

// AdminOverview is the data behind the admin page.
type AdminOverview struct {
	Users        []store.UserSummary
	TotalEntries int64
}

type AdminService struct {
	store store.Store
}

func NewAdminService(st store.Store) *AdminService {
	return &AdminService{store: st}
}

func (s *AdminService) Overview(ctx context.Context) (*AdminOverview, error) {
	users, err := s.store.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	total, err := s.store.CountEntries(ctx)
	if err != nil {
		return nil, err
	}
	return &AdminOverview{Users: users, TotalEntries: total}, nil
}

// SetAdmin grants or revokes the admin role for the account with email.
func (s *AdminService) SetAdmin(ctx context.Context, email string, admin bool) error {
	role := models.RoleUser
	if admin {
		role = models.RoleAdmin
	}
	if err := s.store.SetRole(ctx, NormalizeEmail(email), role); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to update role: %w", err)
	}
	return nil
}
