// Package access centralizes every tier and feature entitlement decision.
// All gating call sites go through one evaluator backed by one total feature
// table, so there is a single place where "who can see what" is defined.
package access

import (
	"slices"

	"github.com/apogeepress/apogee-server/internal/domain"
)

// FeatureTable maps feature names to the tier required to use them.
// Lookups are case-sensitive exact matches. Always-available tools are
// explicit entries mapped to free rather than special cases in code.
type FeatureTable map[string]domain.MembershipTier

// Feature names gated by the default table.
const (
	// FeatureSpaceFactGenerator is the free daily space fact tool.
	FeatureSpaceFactGenerator = "space_fact_generator"
	// FeatureLaunchCalendar is the free upcoming-launches calendar.
	FeatureLaunchCalendar = "launch_calendar"
	// FeatureAdFreeReading removes promotional blocks from article pages.
	FeatureAdFreeReading = "ad_free_reading"
	// FeaturePremiumArticles unlocks tier-gated article content.
	FeaturePremiumArticles = "premium_articles"
	// FeatureCommentPosting allows posting comments.
	FeatureCommentPosting = "comment_posting"
	// FeaturePremiumThemes unlocks the tier-gated visual themes.
	FeaturePremiumThemes = "premium_themes"
	// FeatureCustomArtUpload allows uploading custom profile art.
	FeatureCustomArtUpload = "custom_art_upload"
	// FeatureOfflineReading enables saving articles for offline reading.
	FeatureOfflineReading = "offline_reading"
	// FeatureEarlyAccess shows articles before public publication.
	FeatureEarlyAccess = "early_access"
)

// DefaultFeatureTable returns the fixed feature table enumerated at boot.
// The table is total over the features the product ships; anything absent is
// denied by the evaluator, never allowed by default.
func DefaultFeatureTable() FeatureTable {
	return FeatureTable{
		FeatureSpaceFactGenerator: domain.TierFree,
		FeatureLaunchCalendar:     domain.TierFree,
		FeatureAdFreeReading:      domain.TierOne,
		FeaturePremiumArticles:    domain.TierOne,
		FeatureCommentPosting:     domain.TierOne,
		FeaturePremiumThemes:      domain.TierTwo,
		FeatureCustomArtUpload:    domain.TierTwo,
		FeatureOfflineReading:     domain.TierTwo,
		FeatureEarlyAccess:        domain.TierThree,
	}
}

// Names returns the feature names in the table in sorted order.
func (t FeatureTable) Names() []string {
	names := make([]string, 0, len(t))
	for name := range t {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
