package api

import (
	"bytes"
	"context"
	"encoding/json/jsontext"
	"encoding/json/v2"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/apogeepress/apogee-server/internal/access"
	"github.com/apogeepress/apogee-server/internal/auth"
	"github.com/apogeepress/apogee-server/internal/domain"
	"github.com/apogeepress/apogee-server/internal/id"
	"github.com/apogeepress/apogee-server/internal/render"
	"github.com/apogeepress/apogee-server/internal/service"
	"github.com/apogeepress/apogee-server/internal/store"
	"github.com/apogeepress/apogee-server/internal/theme"
)

// testKeyHex is the PASETO key used across API tests (32 bytes as hex).
const testKeyHex = "0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef"

// setupTestServer creates a test server with all dependencies.
func setupTestServer(t *testing.T) (server *Server, cleanup func()) {
	t.Helper()

	// Create temp directory for test database.
	tmpDir, err := os.MkdirTemp("", "apogee-api-test-*")
	require.NoError(t, err)

	dbPath := filepath.Join(tmpDir, "test.db")

	// Create a no-op logger for tests (discards all logs).
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	s, err := store.New(dbPath, logger)
	require.NoError(t, err)

	// Create auth services.
	tokenService, err := auth.NewTokenService(testKeyHex, 15*time.Minute, 7*24*time.Hour)
	require.NoError(t, err)
	sessionService := service.NewSessionService(s, tokenService, logger)
	authService := service.NewAuthService(s, tokenService, sessionService, logger)

	// Create content and theme services.
	evaluator := access.NewEvaluator(nil, logger)
	renderer := render.NewRenderer(evaluator, logger)
	catalog := theme.NewCatalog(logger)

	services := &Services{
		Auth:    authService,
		Session: sessionService,
		Article: service.NewArticleService(s, renderer, logger),
		Theme:   service.NewThemeService(catalog, s, evaluator, logger),
		User:    service.NewUserService(s, logger),
	}

	server = NewServer(s, services, evaluator, logger)

	cleanup = func() {
		_ = s.Close()            //nolint:errcheck // Cleanup function, error already logged
		_ = os.RemoveAll(tmpDir) //nolint:errcheck // Cleanup function, nothing we can do about errors here
	}

	return server, cleanup
}

// createUserWithToken creates a user with the given role and tier and
// returns an access token signed with the test key.
func createUserWithToken(t *testing.T, server *Server, email string, role domain.Role, tier domain.MembershipTier) (*domain.User, string) {
	t.Helper()

	ctx := context.Background()

	userID, err := id.Generate("user")
	require.NoError(t, err)

	now := time.Now().UTC()
	user := &domain.User{
		Timestamps: domain.Timestamps{
			CreatedAt: now,
			UpdatedAt: now,
		},
		ID:          userID,
		Email:       email,
		DisplayName: "Test User",
		Role:        role,
		Tier:        tier,
	}

	err = server.store.CreateUser(ctx, user)
	require.NoError(t, err)

	tokenService, err := auth.NewTokenService(testKeyHex, 15*time.Minute, 7*24*time.Hour)
	require.NoError(t, err)

	token, err := tokenService.GenerateAccessToken(user)
	require.NoError(t, err)

	return user, token
}

// doRequest performs a request against the test server. A non-empty token
// is sent as a Bearer credential; a non-nil body is JSON encoded.
func doRequest(t *testing.T, server *Server, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader = http.NoBody
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	server.ServeHTTP(w, req)
	return w
}

// decodeData unmarshals the envelope's data field into dest.
func decodeData(t *testing.T, w *httptest.ResponseRecorder, dest any) {
	t.Helper()

	var envelope struct {
		Version int             `json:"v"`
		Success bool            `json:"success"`
		Data    jsontext.Value  `json:"data"`
	}
	err := json.Unmarshal(w.Body.Bytes(), &envelope)
	require.NoError(t, err)
	require.Equal(t, EnvelopeVersion, envelope.Version)
	require.True(t, envelope.Success, "expected success envelope, body: %s", w.Body.String())

	err = json.Unmarshal(envelope.Data, dest)
	require.NoError(t, err)
}

func TestHealthCheck(t *testing.T) {
	server, cleanup := setupTestServer(t)
	defer cleanup()

	w := doRequest(t, server, http.MethodGet, "/health", "", nil)

	assert.Equal(t, http.StatusOK, w.Code)

	var health HealthResponse
	decodeData(t, w, &health)

	assert.Equal(t, "healthy", health.Status)
	assert.Equal(t, "healthy", health.Components["database"].Status)
	assert.Equal(t, "healthy", health.Components["themes"].Status)
}

func TestServer_Routes(t *testing.T) {
	server, cleanup := setupTestServer(t)
	defer cleanup()

	_, readerToken := createUserWithToken(t, server, "routes@example.com", domain.RoleUser, domain.TierFree)

	tests := []struct {
		name           string
		method         string
		path           string
		token          string
		expectedStatus int
	}{
		{
			name:           "health check is public",
			method:         http.MethodGet,
			path:           "/health",
			expectedStatus: http.StatusOK,
		},
		{
			name:           "article list is public",
			method:         http.MethodGet,
			path:           "/api/v1/articles",
			expectedStatus: http.StatusOK,
		},
		{
			name:           "theme list is public",
			method:         http.MethodGet,
			path:           "/api/v1/themes",
			expectedStatus: http.StatusOK,
		},
		{
			name:           "current theme is public",
			method:         http.MethodGet,
			path:           "/api/v1/themes/current",
			expectedStatus: http.StatusOK,
		},
		{
			name:           "feature list is public",
			method:         http.MethodGet,
			path:           "/api/v1/features",
			expectedStatus: http.StatusOK,
		},
		{
			name:           "profile requires auth",
			method:         http.MethodGet,
			path:           "/api/v1/users/me",
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "profile with token",
			method:         http.MethodGet,
			path:           "/api/v1/users/me",
			token:          readerToken,
			expectedStatus: http.StatusOK,
		},
		{
			name:           "sessions require auth",
			method:         http.MethodGet,
			path:           "/api/v1/auth/sessions",
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "account list requires auth",
			method:         http.MethodGet,
			path:           "/api/v1/users",
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "account list denied for readers",
			method:         http.MethodGet,
			path:           "/api/v1/users",
			token:          readerToken,
			expectedStatus: http.StatusForbidden,
		},
		{
			name:           "unknown route",
			method:         http.MethodGet,
			path:           "/api/v1/launchpad",
			expectedStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doRequest(t, server, tt.method, tt.path, tt.token, nil)
			assert.Equal(t, tt.expectedStatus, w.Code, "body: %s", w.Body.String())
		})
	}
}

func TestAuthMiddleware_InvalidTokenIsAnonymous(t *testing.T) {
	server, cleanup := setupTestServer(t)
	defer cleanup()

	// Garbage token on a public route: request still succeeds as anonymous.
	w := doRequest(t, server, http.MethodGet, "/api/v1/articles", "not-a-real-token", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	// Same garbage token on a protected route: rejected.
	w = doRequest(t, server, http.MethodGet, "/api/v1/users/me", "not-a-real-token", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
