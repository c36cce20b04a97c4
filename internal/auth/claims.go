package auth

import (
	"time"

	"github.com/apogeepress/apogee-server/internal/domain"
)

// AccessClaims represents the claims stored in a PASETO access token.
// These are encrypted in v4.local tokens, so they're not readable without the key.
type AccessClaims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	Tier   string `json:"tier"`

	// Standard PASETO claims
	Issuer     string    `json:"iss"`
	Subject    string    `json:"sub"`
	Audience   string    `json:"aud"`
	Expiration time.Time `json:"exp"`
	NotBefore  time.Time `json:"nbf"`
	IssuedAt   time.Time `json:"iat"`
	TokenID    string    `json:"jti"`
}

// Viewer builds the access identity from the token claims.
// Unknown roles and tiers parse to their safe defaults, so a stale token
// minted before a tier was retired still resolves to a usable viewer.
func (c *AccessClaims) Viewer() domain.Viewer {
	return domain.NewViewer(c.UserID, c.Role, c.Tier)
}

// ClientInfo is what a client reports about itself at login.
// It is stored on the session for display in the active-sessions list.
type ClientInfo struct {
	ClientName    string `json:"client_name"`    // Apogee Web, Apogee Mobile
	ClientVersion string `json:"client_version"` // 1.4.0
}
