package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/danielgtaylor/huma/v2"

	"github.com/apogeepress/apogee-server/internal/domain"
	"github.com/apogeepress/apogee-server/internal/service"
)

// EnvelopeVersion is the wire format version stamped on every response.
// Bump only on breaking envelope changes; clients reject versions they do
// not understand.
const EnvelopeVersion = 1

// APIEnvelope wraps successful responses and simple errors.
type APIEnvelope struct {
	Version int    `json:"v" doc:"Envelope format version"`
	Success bool   `json:"success" doc:"Whether the request succeeded"`
	Data    any    `json:"data,omitempty" doc:"Response payload"`
	Error   string `json:"error,omitempty" doc:"Error message for failures"`
}

// APIErrorEnvelope wraps structured errors that carry a code and details.
type APIErrorEnvelope struct {
	Version int    `json:"v" doc:"Envelope format version"`
	Success bool   `json:"success" doc:"Always false"`
	Code    string `json:"code" doc:"Machine-readable error code"`
	Message string `json:"message" doc:"Human-readable error message"`
	Details any    `json:"details,omitempty" doc:"Additional error details"`
}

// EnvelopeTransformer wraps every huma response in the versioned envelope.
// The version field must stay named "v"; clients key on it.
func EnvelopeTransformer(_ huma.Context, status string, v any) (any, error) {
	if apiErr, ok := v.(*APIError); ok {
		return APIErrorEnvelope{
			Version: EnvelopeVersion,
			Success: false,
			Code:    apiErr.Code,
			Message: apiErr.Message,
			Details: apiErr.Details,
		}, nil
	}

	if err, ok := v.(error); ok {
		return APIEnvelope{
			Version: EnvelopeVersion,
			Success: false,
			Error:   err.Error(),
		}, nil
	}

	success := strings.HasPrefix(status, "2")
	return APIEnvelope{
		Version: EnvelopeVersion,
		Success: success,
		Data:    v,
	}, nil
}

// ctxKey is the type for context keys to avoid collisions.
type ctxKey string

// viewerKey is the context key for the authenticated viewer.
const viewerKey ctxKey = "viewer"

// GetViewer returns the viewer from context.
// A request with no valid token resolves to the anonymous viewer, never an
// error: public content must render without credentials.
func GetViewer(ctx context.Context) domain.Viewer {
	if viewer, ok := ctx.Value(viewerKey).(domain.Viewer); ok {
		return viewer
	}
	return domain.AnonymousViewer()
}

// setViewer stores the viewer in context.
func setViewer(ctx context.Context, viewer domain.Viewer) context.Context {
	return context.WithValue(ctx, viewerKey, viewer)
}

// authMiddleware validates Bearer tokens and stores the viewer in context.
// A missing or invalid token degrades to the anonymous viewer instead of
// rejecting the request; handlers that need an account check for themselves.
func authMiddleware(auth *service.AuthService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
				next.ServeHTTP(w, r)
				return
			}

			token := authHeader[7:]
			_, claims, err := auth.VerifyAccessToken(r.Context(), token)
			if err != nil {
				// Invalid token - continue anonymous (handler will reject if auth required)
				next.ServeHTTP(w, r)
				return
			}

			ctx := setViewer(r.Context(), claims.Viewer())
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
