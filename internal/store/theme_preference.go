package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/apogeepress/apogee-server/internal/domain"
	"github.com/dgraph-io/badger/v4"
)

const themePrefPrefix = "themepref:"

// GetThemePreference returns the viewer's saved theme choice.
// A user with no saved preference gets (nil, nil), not an error: that is
// the normal state for most viewers and should not trip error handling.
func (s *Store) GetThemePreference(_ context.Context, userID string) (*domain.ThemePreference, error) {
	key := []byte(themePrefPrefix + userID)

	var pref domain.ThemePreference
	if err := s.get(key, &pref); err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get theme preference: %w", err)
	}

	return &pref, nil
}

// SetThemePreference saves or replaces the viewer's theme choice.
func (s *Store) SetThemePreference(_ context.Context, pref *domain.ThemePreference) error {
	if pref.UserID == "" {
		return ErrInvalidInput.WithMessage("theme preference requires a user ID")
	}

	pref.UpdatedAt = time.Now().UTC()

	key := []byte(themePrefPrefix + pref.UserID)
	if err := s.set(key, pref); err != nil {
		return fmt.Errorf("set theme preference: %w", err)
	}
	return nil
}

// DeleteThemePreference removes the viewer's saved theme choice.
// Idempotent: deleting an absent preference is not an error.
func (s *Store) DeleteThemePreference(_ context.Context, userID string) error {
	key := []byte(themePrefPrefix + userID)
	if err := s.delete(key); err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
		return fmt.Errorf("delete theme preference: %w", err)
	}
	return nil
}
