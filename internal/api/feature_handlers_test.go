package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/apogeepress/apogee-server/internal/access"
	"github.com/apogeepress/apogee-server/internal/domain"
)

func TestListFeatures_AllowanceTracksTier(t *testing.T) {
	server, cleanup := setupTestServer(t)
	defer cleanup()

	_, memberToken := createUserWithToken(t, server, "member@example.com", domain.RoleUser, domain.TierOne)

	w := doRequest(t, server, http.MethodGet, "/api/v1/features", memberToken, nil)
	require.Equal(t, http.StatusOK, w.Code, "body: %s", w.Body.String())

	var list struct {
		Features []FeatureAccess `json:"features"`
	}
	decodeData(t, w, &list)

	byName := make(map[string]FeatureAccess, len(list.Features))
	for _, f := range list.Features {
		byName[f.Name] = f
	}

	assert.True(t, byName[access.FeatureLaunchCalendar].Allowed)
	assert.True(t, byName[access.FeaturePremiumArticles].Allowed)
	assert.False(t, byName[access.FeaturePremiumThemes].Allowed)
	assert.False(t, byName[access.FeatureEarlyAccess].Allowed)
}

func TestCheckFeature(t *testing.T) {
	server, cleanup := setupTestServer(t)
	defer cleanup()

	// Anonymous callers keep the free tools.
	w := doRequest(t, server, http.MethodGet, "/api/v1/features/"+access.FeatureSpaceFactGenerator, "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp FeatureAccess
	decodeData(t, w, &resp)
	assert.True(t, resp.Allowed)
	assert.Equal(t, "free", resp.RequiredTier)

	// Unknown features are denied, not 404: the table is the whole product.
	w = doRequest(t, server, http.MethodGet, "/api/v1/features/warp-drive", "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	resp = FeatureAccess{}
	decodeData(t, w, &resp)
	assert.False(t, resp.Allowed)
	assert.Empty(t, resp.RequiredTier)
}
