package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTheme_RequiresTier(t *testing.T) {
	assert.Equal(t, TierFree, (&Theme{Name: "plain"}).RequiresTier())
	assert.Equal(t, TierTwo, (&Theme{Name: "nebula", RequiredTier: TierTwo}).RequiresTier())
}

func TestTheme_RequiresTier_InvalidFailsClosed(t *testing.T) {
	// A mistyped catalog entry must deny rather than open the theme to all.
	theme := &Theme{Name: "broken", RequiredTier: "platnium"}

	assert.Equal(t, TierThree, theme.RequiresTier())
}

func TestTheme_IsDefault(t *testing.T) {
	assert.True(t, (&Theme{Name: DefaultThemeName}).IsDefault())
	assert.False(t, (&Theme{Name: "nebula"}).IsDefault())
}
