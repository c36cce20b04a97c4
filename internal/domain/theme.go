package domain

import "time"

// DefaultThemeName is the machine name of the process-wide default theme.
// The default carries no tier requirement so there is always a safe fallback
// reachable with zero entitlements.
const DefaultThemeName = "mission-control"

// Theme is a visual theme record from the catalog.
type Theme struct {
	ID          string `json:"id"`
	Name        string `json:"name"`         // machine name, catalog key
	DisplayName string `json:"display_name"` // human-readable name

	// Variables maps CSS custom property names to opaque values.
	// The key set is fixed per theme.
	Variables map[string]string `json:"variables"`

	// EffectFlags are theme-specific visual effects toggled on the rendering
	// surface while the theme is active (e.g. "starfield").
	EffectFlags []string `json:"effect_flags,omitempty"`

	// RequiredTier gates the theme. Empty or free means available to everyone.
	RequiredTier MembershipTier `json:"required_tier,omitempty"`
}

// IsDefault reports whether this is the fallback theme.
func (t *Theme) IsDefault() bool {
	return t.Name == DefaultThemeName
}

// RequiresTier returns the theme's tier requirement.
// Empty means free; an unrecognized value in the catalog fails closed to the
// highest tier so a mistyped requirement never under-gates a theme.
func (t *Theme) RequiresTier() MembershipTier {
	if t.RequiredTier == "" {
		return TierFree
	}
	if !t.RequiredTier.IsValid() {
		return TierThree
	}
	return t.RequiredTier
}

// ThemePreference is a user's persisted theme choice.
type ThemePreference struct {
	UserID    string    `json:"user_id"`
	ThemeName string    `json:"theme_name"`
	UpdatedAt time.Time `json:"updated_at"`
}
