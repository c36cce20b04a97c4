package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/apogeepress/apogee-server/internal/auth"
	"github.com/apogeepress/apogee-server/internal/domain"
	domainerrors "github.com/apogeepress/apogee-server/internal/errors"
	"github.com/apogeepress/apogee-server/internal/id"
	"github.com/apogeepress/apogee-server/internal/store"
	"github.com/apogeepress/apogee-server/internal/validation"
)

// validate is a shared validator instance for request validation.
var validate = validation.New()

// AuthService handles user authentication (signup, login, token verification).
// Session management is delegated to SessionService.
type AuthService struct {
	store          *store.Store
	tokenService   *auth.TokenService
	sessionService *SessionService
	logger         *slog.Logger
}

// NewAuthService creates a new authentication service.
func NewAuthService(
	store *store.Store,
	tokenService *auth.TokenService,
	sessionService *SessionService,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		store:          store,
		tokenService:   tokenService,
		sessionService: sessionService,
		logger:         logger,
	}
}

// SetupRequest contains the initial admin user creation data.
type SetupRequest struct {
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required,min=8,max=1024"`
	DisplayName string `json:"display_name" validate:"required"`
}

// RegisterRequest contains user registration data.
// New accounts start on the free tier; paid tiers are assigned separately.
type RegisterRequest struct {
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required,min=8,max=1024"`
	DisplayName string `json:"display_name" validate:"required"`
}

// LoginRequest contains user credentials and client information.
type LoginRequest struct {
	Email      string          `json:"email" validate:"required,email"`
	Password   string          `json:"password" validate:"required"`
	ClientInfo auth.ClientInfo `json:"client_info"`
	IPAddress  string          `json:"-"` // Extracted from request by handler
}

// RefreshRequest contains the refresh token and updated client info.
type RefreshRequest struct {
	RefreshToken string          `json:"refresh_token" validate:"required"`
	ClientInfo   auth.ClientInfo `json:"client_info"` // Optional updates
	IPAddress    string          `json:"-"`           // Extracted from request by handler
}

// AuthResponse contains authentication tokens and user data.
type AuthResponse struct {
	User *domain.User `json:"user"`
	SessionResponse
}

// Setup creates the first user (admin) and completes initial server configuration.
// This endpoint can only be used once, before any users exist.
func (s *AuthService) Setup(ctx context.Context, req SetupRequest) (*AuthResponse, error) {
	// Validate request
	if err := validate.Validate(req); err != nil {
		return nil, err
	}

	// Verify setup is required
	existing, err := s.store.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("check setup status: %w", err)
	}
	if len(existing) > 0 {
		return nil, domainerrors.AlreadyConfigured("server is already configured")
	}

	// Hash password
	passwordHash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	// Create admin user
	userID, err := id.Generate("user")
	if err != nil {
		return nil, fmt.Errorf("generate user ID: %w", err)
	}

	now := time.Now()
	user := &domain.User{
		ID:           userID,
		Email:        req.Email,
		PasswordHash: passwordHash,
		Role:         domain.RoleAdmin, // First user runs the site
		Tier:         domain.TierThree, // Admins see everything the catalog offers
		DisplayName:  req.DisplayName,
		LastLoginAt:  now,
	}
	user.InitTimestamps()

	// Save user
	if err := s.store.CreateUser(ctx, user); err != nil {
		if errors.Is(err, store.ErrEmailExists) {
			return nil, domainerrors.AlreadyExists("email already in use")
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	// Create initial session. Setup happens via web UI.
	clientInfo := auth.ClientInfo{
		ClientName:    "Apogee Web",
		ClientVersion: "1.0.0",
	}

	sessionResp, err := s.sessionService.CreateSession(ctx, user, clientInfo, "")
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	if s.logger != nil {
		s.logger.Info("Server setup complete",
			"user_id", userID,
			"email", user.Email,
		)
	}

	return &AuthResponse{
		User:            user,
		SessionResponse: *sessionResp,
	}, nil
}

// Register creates a new reader account on the free tier.
func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error) {
	// Validate request
	if err := validate.Validate(req); err != nil {
		return nil, err
	}

	// Hash password
	passwordHash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	userID, err := id.Generate("user")
	if err != nil {
		return nil, fmt.Errorf("generate user ID: %w", err)
	}

	now := time.Now()
	user := &domain.User{
		ID:           userID,
		Email:        req.Email,
		PasswordHash: passwordHash,
		Role:         domain.RoleUser,
		Tier:         domain.TierFree,
		DisplayName:  req.DisplayName,
		LastLoginAt:  now,
	}
	user.InitTimestamps()

	// Save user
	if err := s.store.CreateUser(ctx, user); err != nil {
		if errors.Is(err, store.ErrEmailExists) {
			return nil, domainerrors.AlreadyExists("email already in use")
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	sessionResp, err := s.sessionService.CreateSession(ctx, user, auth.ClientInfo{}, "")
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	if s.logger != nil {
		s.logger.Info("User registered",
			"user_id", userID,
			"email", user.Email,
		)
	}

	return &AuthResponse{
		User:            user,
		SessionResponse: *sessionResp,
	}, nil
}

// Login authenticates a user and creates a new session.
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	// Validate request
	if err := validate.Validate(req); err != nil {
		return nil, err
	}

	// Find user by email
	user, err := s.store.GetUserByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			// Don't leak whether email exists
			return nil, domainerrors.InvalidCredentials("invalid email or password")
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	// Verify password
	valid, err := auth.VerifyPassword(user.PasswordHash, req.Password)
	if err != nil {
		return nil, fmt.Errorf("verify password: %w", err)
	}
	if !valid {
		return nil, domainerrors.InvalidCredentials("invalid email or password")
	}

	// Update last login
	user.LastLoginAt = time.Now()
	user.Touch()
	if err := s.store.UpdateUser(ctx, user); err != nil {
		// Log but don't fail login
		if s.logger != nil {
			s.logger.Warn("Failed to update last login time",
				"user_id", user.ID,
				"error", err,
			)
		}
	}

	// Create session
	sessionResp, err := s.sessionService.CreateSession(ctx, user, req.ClientInfo, req.IPAddress)
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	if s.logger != nil {
		s.logger.Info("User logged in",
			"user_id", user.ID,
			"client", req.ClientInfo.ClientName,
		)
	}

	return &AuthResponse{
		User:            user,
		SessionResponse: *sessionResp,
	}, nil
}

// RefreshTokens generates new tokens using a refresh token.
// The old refresh token is invalidated (token rotation).
func (s *AuthService) RefreshTokens(ctx context.Context, req RefreshRequest) (*AuthResponse, error) {
	// Validate request
	if err := validate.Validate(req); err != nil {
		return nil, err
	}

	sessionResp, user, err := s.sessionService.RefreshSession(ctx, req.RefreshToken, req.ClientInfo, req.IPAddress)
	if err != nil {
		return nil, err
	}

	return &AuthResponse{
		User:            user,
		SessionResponse: *sessionResp,
	}, nil
}

// Logout revokes a session, invalidating its refresh token.
func (s *AuthService) Logout(ctx context.Context, sessionID string) error {
	return s.sessionService.DeleteSession(ctx, sessionID)
}

// VerifyAccessToken validates a token and returns the associated user.
// Used by authentication middleware.
func (s *AuthService) VerifyAccessToken(ctx context.Context, tokenString string) (*domain.User, *auth.AccessClaims, error) {
	// Verify and parse token
	claims, err := s.tokenService.VerifyAccessToken(tokenString)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid token: %w", err)
	}

	// Get user
	user, err := s.store.GetUser(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return nil, nil, errors.New("user not found")
		}
		return nil, nil, fmt.Errorf("get user: %w", err)
	}

	return user, claims, nil
}

// SetupRequired reports whether the first-run setup flow is still open.
func (s *AuthService) SetupRequired(ctx context.Context) (bool, error) {
	users, err := s.store.ListUsers(ctx)
	if err != nil {
		return false, fmt.Errorf("list users: %w", err)
	}
	return len(users) == 0, nil
}
