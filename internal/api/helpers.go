package api

import (
	"context"

	"github.com/danielgtaylor/huma/v2"

	"github.com/apogeepress/apogee-server/internal/domain"
)

// RequireViewer returns the authenticated viewer from context.
// Returns 401 if the request carries no valid account.
func RequireViewer(ctx context.Context) (domain.Viewer, error) {
	viewer := GetViewer(ctx)
	if viewer.IsAnonymous() {
		return domain.Viewer{}, huma.Error401Unauthorized("Authentication required")
	}
	return viewer, nil
}

// checkAuthRate enforces the per-IP limit on credential endpoints. These
// are rated far below the global limit.
func (s *Server) checkAuthRate(ip string) error {
	if s.authRateLimiter.Allow(ip) {
		return nil
	}
	if s.logger != nil {
		s.logger.Warn("Auth rate limit exceeded", "ip", ip)
	}
	return huma.Error429TooManyRequests("Too many attempts. Please try again later.")
}

// extractIP picks the client IP from forwarding headers.
func extractIP(xForwardedFor, xRealIP string) string {
	if xForwardedFor != "" {
		for i := 0; i < len(xForwardedFor); i++ {
			if xForwardedFor[i] == ',' {
				return xForwardedFor[:i]
			}
		}
		return xForwardedFor
	}
	return xRealIP
}
