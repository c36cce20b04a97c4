package theme

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/apogeepress/apogee-server/internal/access"
	"github.com/apogeepress/apogee-server/internal/domain"
	domainerrors "github.com/apogeepress/apogee-server/internal/errors"
)

// State is the session's resolution status.
type State string

const (
	// StateLoading means the initial theme has not been resolved yet.
	StateLoading State = "loading"
	// StateReady means a theme is resolved and applied.
	StateReady State = "ready"
	// StateError means preference resolution failed and the fallback
	// default theme is applied.
	StateError State = "error"
)

// DefaultFetchTimeout bounds how long a preference fetch or persist may
// block before the session falls back to the default theme.
const DefaultFetchTimeout = 2 * time.Second

// PreferenceStore is the external store for persisted theme choices.
// Both operations are idempotent and may fail; callers treat every failure
// identically to "no preference". A nil preference with a nil error means
// no preference is saved.
type PreferenceStore interface {
	GetThemePreference(ctx context.Context, userID string) (*domain.ThemePreference, error)
	SetThemePreference(ctx context.Context, pref *domain.ThemePreference) error
}

// Session tracks the currently applied theme for one viewer context.
// It is created at page load and torn down with the viewer session; the
// current theme is owned exclusively by the session and mutated only through
// SetTheme and ResetTheme.
type Session struct {
	viewer       domain.Viewer
	catalog      *Catalog
	prefs        PreferenceStore
	evaluator    *access.Evaluator
	surface      Surface
	logger       *slog.Logger
	fetchTimeout time.Duration

	mu      sync.Mutex
	state   State
	current domain.Theme
}

// Option configures a Session.
type Option func(*Session)

// WithFetchTimeout overrides the bounded wait for preference store calls.
func WithFetchTimeout(d time.Duration) Option {
	return func(s *Session) {
		if d > 0 {
			s.fetchTimeout = d
		}
	}
}

// NewSession creates a theme session for the viewer.
// The session starts in StateLoading with the default theme staged; call
// ResolveInitialTheme to load the persisted preference.
func NewSession(
	viewer domain.Viewer,
	catalog *Catalog,
	prefs PreferenceStore,
	evaluator *access.Evaluator,
	surface Surface,
	logger *slog.Logger,
	opts ...Option,
) *Session {
	s := &Session{
		viewer:       viewer,
		catalog:      catalog,
		prefs:        prefs,
		evaluator:    evaluator,
		surface:      surface,
		logger:       logger,
		fetchTimeout: DefaultFetchTimeout,
		state:        StateLoading,
		current:      catalog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Current returns the applied theme and the session state.
func (s *Session) Current() (domain.Theme, State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current, s.state
}

// ResolveInitialTheme loads the viewer's persisted preference and applies
// it if the viewer is still entitled to it. No preference, a store failure,
// a vanished theme, and a lost entitlement all collapse to the same path:
// the default theme is applied. A downgraded viewer silently reverts to the
// default rather than seeing an error.
func (s *Session) ResolveInitialTheme(ctx context.Context) domain.Theme {
	if s.viewer.IsAnonymous() || s.prefs == nil {
		return s.apply(s.catalog.Default(), StateReady)
	}

	fetchCtx, cancel := context.WithTimeout(ctx, s.fetchTimeout)
	defer cancel()

	pref, err := s.prefs.GetThemePreference(fetchCtx, s.viewer.UserID)
	if err != nil {
		if s.logger != nil {
			s.logger.Warn("theme preference fetch failed, using default",
				"user_id", s.viewer.UserID,
				"error", err,
			)
		}
		return s.apply(s.catalog.Default(), StateError)
	}
	if pref == nil {
		return s.apply(s.catalog.Default(), StateReady)
	}

	theme, ok := s.catalog.Get(pref.ThemeName)
	if !ok || !s.evaluator.CanAccessTier(s.viewer, theme.RequiresTier()) {
		return s.apply(s.catalog.Default(), StateReady)
	}

	return s.apply(theme, StateReady)
}

// SetTheme applies and persists the named theme for the viewer.
// An unknown name or an unmet tier requirement is a denial: the applied
// theme is left unchanged and a typed error is returned for the caller to
// map to an upgrade affordance. Denial is a defined result, never a panic.
func (s *Session) SetTheme(ctx context.Context, themeName string) (domain.Theme, error) {
	theme, ok := s.catalog.Get(themeName)
	if !ok {
		return domain.Theme{}, domainerrors.NotFoundf("unknown theme %q", themeName)
	}

	required := theme.RequiresTier()
	if !s.evaluator.CanAccessTier(s.viewer, required) {
		return domain.Theme{}, domainerrors.Forbiddenf("theme %q requires %s", themeName, tierLabel(required))
	}

	// Apply locally first: the most recent call's target becomes active
	// immediately, independent of how in-flight persistence calls resolve.
	applied := s.apply(theme, StateReady)
	s.persist(ctx, theme.Name)
	return applied, nil
}

// ResetTheme unconditionally applies the default theme.
// It always succeeds: the default carries no tier requirement.
func (s *Session) ResetTheme(ctx context.Context) domain.Theme {
	applied := s.apply(s.catalog.Default(), StateReady)
	s.persist(ctx, applied.Name)
	return applied
}

// apply swaps the current theme and pushes it to the rendering surface
// under the session lock, so the switch is atomic to observers.
func (s *Session) apply(theme domain.Theme, state State) domain.Theme {
	s.mu.Lock()
	s.current = theme
	s.state = state
	if s.surface != nil {
		s.surface.Apply(theme)
	}
	s.mu.Unlock()
	return theme
}

// persist writes the preference best-effort. Failures are logged and
// otherwise ignored: the next load treats them as "no preference".
func (s *Session) persist(ctx context.Context, themeName string) {
	if s.viewer.IsAnonymous() || s.prefs == nil {
		return
	}

	persistCtx, cancel := context.WithTimeout(ctx, s.fetchTimeout)
	defer cancel()

	pref := &domain.ThemePreference{
		UserID:    s.viewer.UserID,
		ThemeName: themeName,
		UpdatedAt: time.Now(),
	}
	if err := s.prefs.SetThemePreference(persistCtx, pref); err != nil && s.logger != nil {
		s.logger.Warn("theme preference persist failed",
			"user_id", s.viewer.UserID,
			"theme", themeName,
			"error", err,
		)
	}
}

// tierLabel is the human-readable tier name used in denial reasons.
func tierLabel(tier domain.MembershipTier) string {
	switch tier {
	case domain.TierOne:
		return "Tier 1"
	case domain.TierTwo:
		return "Tier 2"
	case domain.TierThree:
		return "Tier 3"
	default:
		return "a paid membership"
	}
}
