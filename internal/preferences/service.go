package preferences

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/ayush/sports-events-hub/internal/models"
	"github.com/ayush/sports-events-hub/internal/store"
)

// Store defines the interface for per-user preference persistence.
type Store interface {
	GetPreferences(ctx context.Context, username string) (models.Preferences, error)
	SavePreferences(ctx context.Context, username string, p models.Preferences) error
}

// Service reads and replaces a user's preference record.
type Service struct {
	store Store
	log   *slog.Logger
}

func NewService(store Store, log *slog.Logger) *Service {
	return &Service{store: store, log: log}
}

// Read returns the user's preferences. A missing or unreadable record
// yields an empty one; the error is only logged.
func (s *Service) Read(ctx context.Context, username string) models.Preferences {
	p, err := s.store.GetPreferences(ctx, username)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			s.log.Warn("read preferences, using defaults", "username", username, "error", err)
		}
		return models.Preferences{}.Normalize()
	}
	return p.Normalize()
}

// Save replaces the user's whole record with p and returns what was stored.
func (s *Service) Save(ctx context.Context, username string, p models.Preferences) (models.Preferences, error) {
	p = p.Normalize()
	if err := s.store.SavePreferences(ctx, username, p); err != nil {
		return models.Preferences{}, fmt.Errorf("save preferences: %w", err)
	}
	return p, nil
}

// Reset stores an empty record for the user.
func (s *Service) Reset(ctx context.Context, username string) error {
	_, err := s.Save(ctx, username, models.Preferences{})
	return err
}
