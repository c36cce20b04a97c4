package domain

import "time"

// Role represents the user's operational capability category.
// Role is orthogonal to MembershipTier: an admin with a free tier sees
// operational tooling but does not automatically see tier-gated content.
type Role string

const (
	// RoleUser grants standard reader access.
	RoleUser Role = "user"
	// RoleAuthor grants article authoring access.
	RoleAuthor Role = "author"
	// RoleEditor grants authoring plus moderation access.
	RoleEditor Role = "editor"
	// RoleAdmin grants full administrative access.
	RoleAdmin Role = "admin"
)

// ParseRole converts a raw string to a Role.
// Anything unrecognized becomes RoleUser.
func ParseRole(raw string) Role {
	switch Role(raw) {
	case RoleAuthor, RoleEditor, RoleAdmin:
		return Role(raw)
	default:
		return RoleUser
	}
}

// CanAuthor reports whether the role can create or edit articles.
func (r Role) CanAuthor() bool {
	return r == RoleAuthor || r == RoleEditor || r == RoleAdmin
}

// CanModerate reports whether the role can moderate content.
func (r Role) CanModerate() bool {
	return r == RoleEditor || r == RoleAdmin
}

// User represents an authenticated account in the system.
type User struct {
	Timestamps
	ID           string         `json:"id"`
	Email        string         `json:"email"`
	PasswordHash string         `json:"password_hash,omitempty"` // Stored hashed, filter from API responses
	Role         Role           `json:"role"`
	Tier         MembershipTier `json:"tier"`
	DisplayName  string         `json:"display_name"`
	LastLoginAt  time.Time      `json:"last_login_at"`
}

// IsAdmin returns true if the user has administrative privileges.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// CanAuthor returns true if the user can create or edit articles.
func (u *User) CanAuthor() bool {
	return u.Role.CanAuthor()
}

// CanModerate returns true if the user can moderate content.
func (u *User) CanModerate() bool {
	return u.Role.CanModerate()
}

// Viewer returns the access-decision view of this user.
func (u *User) Viewer() Viewer {
	if u == nil {
		return AnonymousViewer()
	}
	return Viewer{
		UserID: u.ID,
		Role:   ParseRole(string(u.Role)),
		Tier:   ParseTier(string(u.Tier)),
	}
}

// Viewer is the identity the access evaluator operates on.
// It is always well-formed: constructors normalize unknown roles and tiers
// down to the lowest privilege, so a corrupt viewer record fails closed.
type Viewer struct {
	UserID string         `json:"user_id,omitempty"` // empty for anonymous viewers
	Role   Role           `json:"role"`
	Tier   MembershipTier `json:"tier"`
}

// AnonymousViewer returns the lowest-privilege viewer.
// Absent or failed identity lookups resolve here, never to an error that
// blocks rendering of public content.
func AnonymousViewer() Viewer {
	return Viewer{Role: RoleUser, Tier: TierFree}
}

// NewViewer builds a viewer from raw role and tier strings, failing closed
// on anything unrecognized.
func NewViewer(userID, role, tier string) Viewer {
	return Viewer{
		UserID: userID,
		Role:   ParseRole(role),
		Tier:   ParseTier(tier),
	}
}

// IsAnonymous reports whether the viewer has no backing account.
func (v Viewer) IsAnonymous() bool {
	return v.UserID == ""
}

// Session represents an active refresh-token session for a user.
type Session struct {
	ID               string    `json:"id"`
	UserID           string    `json:"user_id"`
	RefreshTokenHash string    `json:"refresh_token_hash,omitempty"` // Stored hashed, filter from API responses
	ExpiresAt        time.Time `json:"expires_at"`
	CreatedAt        time.Time `json:"created_at"`
	LastSeenAt       time.Time `json:"last_seen_at"`
	IPAddress        string    `json:"ip_address,omitempty"`
	ClientName       string    `json:"client_name,omitempty"`
	ClientVersion    string    `json:"client_version,omitempty"`
}

// Touch updates the session's last seen timestamp.
func (s *Session) Touch() {
	s.LastSeenAt = time.Now()
}

// IsExpired checks if the session has passed its expiration time.
func (s *Session) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}
