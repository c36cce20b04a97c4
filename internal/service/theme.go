package service

import (
	"context"
	"log/slog"

	"github.com/apogeepress/apogee-server/internal/access"
	"github.com/apogeepress/apogee-server/internal/domain"
	domainerrors "github.com/apogeepress/apogee-server/internal/errors"
	"github.com/apogeepress/apogee-server/internal/theme"
)

// ThemeService handles the theme catalog and per-user theme selection.
// Each request gets its own theme session scoped to the viewer; the server
// keeps no applied-theme state between requests.
type ThemeService struct {
	catalog   *theme.Catalog
	prefs     theme.PreferenceStore
	evaluator *access.Evaluator
	logger    *slog.Logger
}

// NewThemeService creates a new theme service.
func NewThemeService(catalog *theme.Catalog, prefs theme.PreferenceStore, evaluator *access.Evaluator, logger *slog.Logger) *ThemeService {
	return &ThemeService{
		catalog:   catalog,
		prefs:     prefs,
		evaluator: evaluator,
		logger:    logger,
	}
}

// ThemeSummary is a catalog entry annotated with whether the viewer's tier
// unlocks it. Locked themes stay listed so clients can show an upgrade
// affordance instead of hiding them.
type ThemeSummary struct {
	Theme    domain.Theme `json:"theme"`
	Unlocked bool         `json:"unlocked"`
}

// CurrentThemeResponse is the viewer's resolved theme plus the session state
// the resolution ended in.
type CurrentThemeResponse struct {
	Theme domain.Theme `json:"theme"`
	State theme.State  `json:"state"`
}

// ListThemes returns the full catalog with per-viewer unlock status.
func (s *ThemeService) ListThemes(viewer domain.Viewer) []ThemeSummary {
	themes := s.catalog.List()
	summaries := make([]ThemeSummary, 0, len(themes))
	for _, t := range themes {
		summaries = append(summaries, ThemeSummary{
			Theme:    t,
			Unlocked: s.evaluator.CanAccessTier(viewer, t.RequiresTier()),
		})
	}
	return summaries
}

// CurrentTheme resolves the viewer's active theme from their persisted
// preference. Anonymous viewers, missing preferences, and lost entitlements
// all resolve to the default theme.
func (s *ThemeService) CurrentTheme(ctx context.Context, viewer domain.Viewer) *CurrentThemeResponse {
	session := s.newSession(viewer)
	resolved := session.ResolveInitialTheme(ctx)
	_, state := session.Current()
	return &CurrentThemeResponse{Theme: resolved, State: state}
}

// SetTheme persists the named theme as the viewer's preference.
// Unknown names and unmet tier requirements come back as typed denials.
func (s *ThemeService) SetTheme(ctx context.Context, viewer domain.Viewer, name string) (*CurrentThemeResponse, error) {
	if viewer.IsAnonymous() {
		return nil, domainerrors.Unauthorized("sign in to save a theme preference")
	}

	session := s.newSession(viewer)
	applied, err := session.SetTheme(ctx, name)
	if err != nil {
		return nil, err
	}

	if s.logger != nil {
		s.logger.Info("Theme preference set", "user_id", viewer.UserID, "theme", applied.Name)
	}

	_, state := session.Current()
	return &CurrentThemeResponse{Theme: applied, State: state}, nil
}

// ResetTheme reverts the viewer to the default theme.
func (s *ThemeService) ResetTheme(ctx context.Context, viewer domain.Viewer) *CurrentThemeResponse {
	session := s.newSession(viewer)
	applied := session.ResetTheme(ctx)
	_, state := session.Current()
	return &CurrentThemeResponse{Theme: applied, State: state}
}

func (s *ThemeService) newSession(viewer domain.Viewer) *theme.Session {
	return theme.NewSession(viewer, s.catalog, s.prefs, s.evaluator, theme.NoopSurface{}, s.logger)
}
