package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/apogeepress/apogee-server/internal/domain"
	"github.com/apogeepress/apogee-server/internal/service"
)

func (s *Server) registerThemeRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listThemes",
		Method:      http.MethodGet,
		Path:        "/api/v1/themes",
		Summary:     "List themes",
		Description: "Returns the theme catalog with per-caller unlock status. Locked themes stay listed so clients can offer an upgrade.",
		Tags:        []string{"Themes"},
	}, s.handleListThemes)

	huma.Register(s.api, huma.Operation{
		OperationID: "getCurrentTheme",
		Method:      http.MethodGet,
		Path:        "/api/v1/themes/current",
		Summary:     "Get current theme",
		Description: "Resolves the caller's active theme from their persisted preference. Anonymous callers get the default theme.",
		Tags:        []string{"Themes"},
	}, s.handleGetCurrentTheme)

	huma.Register(s.api, huma.Operation{
		OperationID: "setCurrentTheme",
		Method:      http.MethodPut,
		Path:        "/api/v1/themes/current",
		Summary:     "Set current theme",
		Description: "Persists a theme choice. Fails with 403 if the caller's tier does not unlock the theme.",
		Tags:        []string{"Themes"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleSetCurrentTheme)

	huma.Register(s.api, huma.Operation{
		OperationID: "resetCurrentTheme",
		Method:      http.MethodDelete,
		Path:        "/api/v1/themes/current",
		Summary:     "Reset to default theme",
		Description: "Reverts the caller to the default theme. Always succeeds.",
		Tags:        []string{"Themes"},
	}, s.handleResetCurrentTheme)
}

// === DTOs ===

// ThemeResponse describes one catalog theme.
type ThemeResponse struct {
	ID           string            `json:"id" doc:"Theme ID"`
	Name         string            `json:"name" doc:"Machine name, catalog key"`
	DisplayName  string            `json:"display_name" doc:"Human-readable name"`
	Variables    map[string]string `json:"variables" doc:"CSS custom properties"`
	EffectFlags  []string          `json:"effect_flags,omitempty" doc:"Visual effect toggles"`
	RequiredTier string            `json:"required_tier" doc:"Tier needed to use this theme"`
	IsDefault    bool              `json:"is_default" doc:"Whether this is the fallback theme"`
	Unlocked     bool              `json:"unlocked" doc:"Whether the caller's tier unlocks this theme"`
}

// ThemeListOutput wraps the theme catalog for Huma.
type ThemeListOutput struct {
	Body struct {
		Themes []ThemeResponse `json:"themes" doc:"Catalog themes"`
	}
}

// CurrentThemeResponse is the caller's resolved theme.
type CurrentThemeResponse struct {
	Theme ThemeResponse `json:"theme" doc:"Active theme"`
	State string        `json:"state" doc:"Resolution state: loading, ready, or error"`
}

// CurrentThemeOutput wraps the current theme for Huma.
type CurrentThemeOutput struct {
	Body CurrentThemeResponse
}

// SetThemeRequest names the theme to apply.
type SetThemeRequest struct {
	Name string `json:"name" validate:"required,max=100" doc:"Theme machine name"`
}

// SetThemeInput wraps the set-theme request for Huma.
type SetThemeInput struct {
	Body SetThemeRequest
}

// === Handlers ===

func (s *Server) handleListThemes(ctx context.Context, _ *struct{}) (*ThemeListOutput, error) {
	summaries := s.services.Theme.ListThemes(GetViewer(ctx))

	out := &ThemeListOutput{}
	out.Body.Themes = make([]ThemeResponse, 0, len(summaries))
	for _, summary := range summaries {
		out.Body.Themes = append(out.Body.Themes, mapThemeResponse(summary.Theme, summary.Unlocked))
	}

	return out, nil
}

func (s *Server) handleGetCurrentTheme(ctx context.Context, _ *struct{}) (*CurrentThemeOutput, error) {
	resp := s.services.Theme.CurrentTheme(ctx, GetViewer(ctx))
	return &CurrentThemeOutput{Body: mapCurrentTheme(resp)}, nil
}

func (s *Server) handleSetCurrentTheme(ctx context.Context, input *SetThemeInput) (*CurrentThemeOutput, error) {
	resp, err := s.services.Theme.SetTheme(ctx, GetViewer(ctx), input.Body.Name)
	if err != nil {
		return nil, err
	}

	return &CurrentThemeOutput{Body: mapCurrentTheme(resp)}, nil
}

func (s *Server) handleResetCurrentTheme(ctx context.Context, _ *struct{}) (*CurrentThemeOutput, error) {
	resp := s.services.Theme.ResetTheme(ctx, GetViewer(ctx))
	return &CurrentThemeOutput{Body: mapCurrentTheme(resp)}, nil
}

// === Helpers ===

func mapThemeResponse(t domain.Theme, unlocked bool) ThemeResponse {
	return ThemeResponse{
		ID:           t.ID,
		Name:         t.Name,
		DisplayName:  t.DisplayName,
		Variables:    t.Variables,
		EffectFlags:  t.EffectFlags,
		RequiredTier: string(t.RequiresTier()),
		IsDefault:    t.IsDefault(),
		Unlocked:     unlocked,
	}
}

func mapCurrentTheme(resp *service.CurrentThemeResponse) CurrentThemeResponse {
	// The applied theme is by definition unlocked for the caller.
	return CurrentThemeResponse{
		Theme: mapThemeResponse(resp.Theme, true),
		State: string(resp.State),
	}
}
