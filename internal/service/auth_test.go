package service

import (
	"context"
	"encoding/hex"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/apogeepress/apogee-server/internal/auth"
	"github.com/apogeepress/apogee-server/internal/domain"
	"github.com/apogeepress/apogee-server/internal/id"
	"github.com/apogeepress/apogee-server/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupAuthTest creates services with temporary storage for testing.
func setupAuthTest(t *testing.T) (*AuthService, *auth.TokenService, func()) {
	t.Helper()

	// Create temp directory for test database
	tmpDir, err := os.MkdirTemp("", "apogee-auth-test-*")
	require.NoError(t, err)

	dbPath := filepath.Join(tmpDir, "test.db")

	// Create store
	s, err := store.New(dbPath, nil)
	require.NoError(t, err)

	// Load or generate auth key
	authKey, err := auth.LoadOrGenerateKey(tmpDir)
	require.NoError(t, err)

	tokenService, err := auth.NewTokenService(
		hex.EncodeToString(authKey),
		15*time.Minute,
		30*24*time.Hour,
	)
	require.NoError(t, err)

	sessionService := NewSessionService(s, tokenService, nil)
	authService := NewAuthService(s, tokenService, sessionService, nil)

	cleanup := func() {
		_ = s.Close()
		_ = os.RemoveAll(tmpDir)
	}

	return authService, tokenService, cleanup
}

// createTestUser creates a free-tier reader account directly in the store.
func createTestUser(t *testing.T, s *store.Store, email, passwordHash string) *domain.User {
	t.Helper()

	userID, err := id.Generate("user")
	require.NoError(t, err)

	user := &domain.User{
		ID:           userID,
		Email:        email,
		PasswordHash: passwordHash,
		Role:         domain.RoleUser,
		Tier:         domain.TierFree,
		DisplayName:  "Test User",
	}
	user.InitTimestamps()

	err = s.CreateUser(context.Background(), user)
	require.NoError(t, err)

	return user
}

func TestAuthService_Setup_Success(t *testing.T) {
	authService, _, cleanup := setupAuthTest(t)
	defer cleanup()

	ctx := context.Background()

	required, err := authService.SetupRequired(ctx)
	require.NoError(t, err)
	assert.True(t, required)

	req := SetupRequest{
		Email:       "admin@example.com",
		Password:    "SecurePassword123!",
		DisplayName: "Admin User",
	}

	resp, err := authService.Setup(ctx, req)
	require.NoError(t, err)
	assert.NotNil(t, resp)

	// First user runs the site with full content access
	assert.Equal(t, "admin@example.com", resp.User.Email)
	assert.Equal(t, domain.RoleAdmin, resp.User.Role)
	assert.Equal(t, domain.TierThree, resp.User.Tier)
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)
	assert.Equal(t, "Bearer", resp.TokenType)
	assert.NotEmpty(t, resp.SessionID)
	assert.Greater(t, resp.ExpiresIn, 0)

	required, err = authService.SetupRequired(ctx)
	require.NoError(t, err)
	assert.False(t, required)
}

func TestAuthService_Setup_AlreadyConfigured(t *testing.T) {
	authService, _, cleanup := setupAuthTest(t)
	defer cleanup()

	ctx := context.Background()

	_, err := authService.Setup(ctx, SetupRequest{
		Email:       "admin@example.com",
		Password:    "SecurePassword123!",
		DisplayName: "Admin User",
	})
	require.NoError(t, err)

	// Second setup should fail
	_, err = authService.Setup(ctx, SetupRequest{
		Email:       "admin2@example.com",
		Password:    "SecurePassword123!",
		DisplayName: "Admin User 2",
	})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "already configured")
}

func TestAuthService_Register_Success(t *testing.T) {
	authService, _, cleanup := setupAuthTest(t)
	defer cleanup()

	ctx := context.Background()

	resp, err := authService.Register(ctx, RegisterRequest{
		Email:       "reader@example.com",
		Password:    "SecurePassword123!",
		DisplayName: "Reader",
	})
	require.NoError(t, err)

	// New accounts start as free-tier readers
	assert.Equal(t, domain.RoleUser, resp.User.Role)
	assert.Equal(t, domain.TierFree, resp.User.Tier)
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)
}

func TestAuthService_Register_DuplicateEmail(t *testing.T) {
	authService, _, cleanup := setupAuthTest(t)
	defer cleanup()

	ctx := context.Background()

	req := RegisterRequest{
		Email:       "reader@example.com",
		Password:    "SecurePassword123!",
		DisplayName: "Reader",
	}

	_, err := authService.Register(ctx, req)
	require.NoError(t, err)

	_, err = authService.Register(ctx, req)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "email already in use")
}

func TestAuthService_Login_Success(t *testing.T) {
	authService, _, cleanup := setupAuthTest(t)
	defer cleanup()

	ctx := context.Background()

	password := "SecurePassword123!"
	passwordHash, err := auth.HashPassword(password)
	require.NoError(t, err)

	user := createTestUser(t, authService.store, "test@example.com", passwordHash)

	resp, err := authService.Login(ctx, LoginRequest{
		Email:    "test@example.com",
		Password: password,
		ClientInfo: auth.ClientInfo{
			ClientName:    "Apogee Web",
			ClientVersion: "1.4.0",
		},
		IPAddress: "192.168.1.1",
	})
	require.NoError(t, err)

	assert.Equal(t, user.ID, resp.User.ID)
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)
	assert.NotEmpty(t, resp.SessionID)
}

func TestAuthService_Login_InvalidCredentials(t *testing.T) {
	authService, _, cleanup := setupAuthTest(t)
	defer cleanup()

	ctx := context.Background()

	passwordHash, err := auth.HashPassword("CorrectPassword123!")
	require.NoError(t, err)

	createTestUser(t, authService.store, "test@example.com", passwordHash)

	tests := []struct {
		name     string
		email    string
		password string
	}{
		{
			name:     "wrong email",
			email:    "wrong@example.com",
			password: "CorrectPassword123!",
		},
		{
			name:     "wrong password",
			email:    "test@example.com",
			password: "WrongPassword123!",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := authService.Login(ctx, LoginRequest{
				Email:    tt.email,
				Password: tt.password,
			})
			assert.Error(t, err)
			assert.Contains(t, err.Error(), "invalid email or password")
		})
	}
}

func TestAuthService_RefreshTokens_Success(t *testing.T) {
	authService, _, cleanup := setupAuthTest(t)
	defer cleanup()

	ctx := context.Background()

	passwordHash, err := auth.HashPassword("SecurePassword123!")
	require.NoError(t, err)

	createTestUser(t, authService.store, "test@example.com", passwordHash)

	loginResp, err := authService.Login(ctx, LoginRequest{
		Email:    "test@example.com",
		Password: "SecurePassword123!",
	})
	require.NoError(t, err)

	// Wait a moment to ensure new tokens will have different timestamps
	time.Sleep(10 * time.Millisecond)

	refreshResp, err := authService.RefreshTokens(ctx, RefreshRequest{
		RefreshToken: loginResp.RefreshToken,
	})
	require.NoError(t, err)

	assert.NotEqual(t, loginResp.AccessToken, refreshResp.AccessToken)
	assert.NotEqual(t, loginResp.RefreshToken, refreshResp.RefreshToken)
	assert.Equal(t, loginResp.SessionID, refreshResp.SessionID) // Same session

	// Old refresh token should be invalidated
	_, err = authService.RefreshTokens(ctx, RefreshRequest{
		RefreshToken: loginResp.RefreshToken,
	})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "invalid or expired")
}

func TestAuthService_RefreshTokens_InvalidToken(t *testing.T) {
	authService, _, cleanup := setupAuthTest(t)
	defer cleanup()

	_, err := authService.RefreshTokens(context.Background(), RefreshRequest{
		RefreshToken: "invalid-token-12345",
	})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "invalid or expired")
}

func TestAuthService_Logout_Success(t *testing.T) {
	authService, _, cleanup := setupAuthTest(t)
	defer cleanup()

	ctx := context.Background()

	passwordHash, err := auth.HashPassword("SecurePassword123!")
	require.NoError(t, err)

	createTestUser(t, authService.store, "test@example.com", passwordHash)

	loginResp, err := authService.Login(ctx, LoginRequest{
		Email:    "test@example.com",
		Password: "SecurePassword123!",
	})
	require.NoError(t, err)

	err = authService.Logout(ctx, loginResp.SessionID)
	assert.NoError(t, err)

	// Refresh token should no longer work
	_, err = authService.RefreshTokens(ctx, RefreshRequest{
		RefreshToken: loginResp.RefreshToken,
	})
	assert.Error(t, err)
}

func TestAuthService_Logout_NonExistentSession(t *testing.T) {
	authService, _, cleanup := setupAuthTest(t)
	defer cleanup()

	err := authService.Logout(context.Background(), "sess_nonexistent")
	assert.NoError(t, err)
}

func TestAuthService_VerifyAccessToken_Success(t *testing.T) {
	authService, tokenService, cleanup := setupAuthTest(t)
	defer cleanup()

	ctx := context.Background()

	passwordHash, err := auth.HashPassword("SecurePassword123!")
	require.NoError(t, err)

	user := createTestUser(t, authService.store, "test@example.com", passwordHash)

	token, err := tokenService.GenerateAccessToken(user)
	require.NoError(t, err)

	verifiedUser, claims, err := authService.VerifyAccessToken(ctx, token)
	require.NoError(t, err)

	assert.Equal(t, user.ID, verifiedUser.ID)
	assert.Equal(t, user.Email, verifiedUser.Email)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, string(user.Role), claims.Role)
	assert.Equal(t, string(user.Tier), claims.Tier)
}

func TestAuthService_VerifyAccessToken_InvalidToken(t *testing.T) {
	authService, _, cleanup := setupAuthTest(t)
	defer cleanup()

	_, _, err := authService.VerifyAccessToken(context.Background(), "invalid-token")
	assert.Error(t, err)
}

func TestAuthService_Register_ValidationErrors(t *testing.T) {
	authService, _, cleanup := setupAuthTest(t)
	defer cleanup()

	ctx := context.Background()

	tests := []struct {
		name    string
		req     RegisterRequest
		wantErr string
	}{
		{
			name: "invalid email format",
			req: RegisterRequest{
				Email:       "not-an-email",
				Password:    "ValidPassword123!",
				DisplayName: "Reader",
			},
			wantErr: "email",
		},
		{
			name: "password too short",
			req: RegisterRequest{
				Email:       "reader@example.com",
				Password:    "short",
				DisplayName: "Reader",
			},
			wantErr: "password",
		},
		{
			name: "missing display name",
			req: RegisterRequest{
				Email:       "reader@example.com",
				Password:    "ValidPassword123!",
				DisplayName: "",
			},
			wantErr: "display_name",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := authService.Register(ctx, tt.req)
			assert.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
