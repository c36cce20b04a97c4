package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/apogeepress/apogee-server/internal/auth"
	"github.com/apogeepress/apogee-server/internal/domain"
	"github.com/apogeepress/apogee-server/internal/service"
)

func (s *Server) registerAuthRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "setup",
		Method:      http.MethodPost,
		Path:        "/api/v1/auth/setup",
		Summary:     "Initial server setup",
		Description: "Creates the first admin user. Can only be called once.",
		Tags:        []string{"Authentication"},
	}, s.handleSetup)

	huma.Register(s.api, huma.Operation{
		OperationID: "register",
		Method:      http.MethodPost,
		Path:        "/api/v1/auth/register",
		Summary:     "Register new reader account",
		Description: "Creates a free-tier reader account and signs it in.",
		Tags:        []string{"Authentication"},
	}, s.handleRegister)

	huma.Register(s.api, huma.Operation{
		OperationID: "login",
		Method:      http.MethodPost,
		Path:        "/api/v1/auth/login",
		Summary:     "User login",
		Description: "Authenticates a user and returns access and refresh tokens",
		Tags:        []string{"Authentication"},
	}, s.handleLogin)

	huma.Register(s.api, huma.Operation{
		OperationID: "refresh",
		Method:      http.MethodPost,
		Path:        "/api/v1/auth/refresh",
		Summary:     "Refresh tokens",
		Description: "Exchanges a refresh token for new tokens",
		Tags:        []string{"Authentication"},
	}, s.handleRefresh)

	huma.Register(s.api, huma.Operation{
		OperationID: "logout",
		Method:      http.MethodPost,
		Path:        "/api/v1/auth/logout",
		Summary:     "Logout",
		Description: "Revokes the specified session",
		Tags:        []string{"Authentication"},
	}, s.handleLogout)

	huma.Register(s.api, huma.Operation{
		OperationID: "listSessions",
		Method:      http.MethodGet,
		Path:        "/api/v1/auth/sessions",
		Summary:     "List active sessions",
		Description: "Returns the caller's active sessions across clients.",
		Tags:        []string{"Authentication"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleListSessions)
}

// === DTOs ===

// ClientInfo contains client metadata for session tracking.
type ClientInfo struct {
	ClientName    string `json:"client_name,omitempty" validate:"omitempty,max=100" doc:"Client name (Apogee Web, etc.)"`
	ClientVersion string `json:"client_version,omitempty" validate:"omitempty,max=50" doc:"Client version (1.0.0)"`
}

// SetupRequest is the request body for initial server setup.
type SetupRequest struct {
	Email       string `json:"email" validate:"required,email,max=254" doc:"Admin email address"`
	Password    string `json:"password" validate:"required,min=8,max=1024" doc:"Admin password"`
	DisplayName string `json:"display_name" validate:"required,min=1,max=100" doc:"Admin display name"`
}

// SetupInput wraps the setup request for Huma.
type SetupInput struct {
	Body          SetupRequest
	XForwardedFor string `header:"X-Forwarded-For"`
	XRealIP       string `header:"X-Real-IP"`
}

// RegisterRequest is the request body for reader registration.
type RegisterRequest struct {
	Email       string `json:"email" validate:"required,email,max=254" doc:"User email address"`
	Password    string `json:"password" validate:"required,min=8,max=1024" doc:"User password"`
	DisplayName string `json:"display_name" validate:"required,min=1,max=100" doc:"Display name"`
}

// RegisterInput wraps the register request for Huma.
type RegisterInput struct {
	Body          RegisterRequest
	XForwardedFor string `header:"X-Forwarded-For"`
	XRealIP       string `header:"X-Real-IP"`
}

// LoginRequest is the request body for user login.
type LoginRequest struct {
	Email      string     `json:"email" validate:"required,email,max=254" doc:"User email"`
	Password   string     `json:"password" validate:"required,max=1024" doc:"User password"`
	ClientInfo ClientInfo `json:"client_info,omitempty" doc:"Client info"`
}

// LoginInput wraps the login request with headers for Huma.
type LoginInput struct {
	Body          LoginRequest
	XForwardedFor string `header:"X-Forwarded-For"`
	XRealIP       string `header:"X-Real-IP"`
}

// RefreshRequest is the request body for token refresh.
type RefreshRequest struct {
	RefreshToken string     `json:"refresh_token" validate:"required" doc:"Refresh token"`
	ClientInfo   ClientInfo `json:"client_info,omitempty" doc:"Updated client info"`
}

// RefreshInput wraps the refresh request with headers for Huma.
type RefreshInput struct {
	Body          RefreshRequest
	XForwardedFor string `header:"X-Forwarded-For"`
	XRealIP       string `header:"X-Real-IP"`
}

// LogoutRequest is the request body for logout.
type LogoutRequest struct {
	SessionID string `json:"session_id" validate:"required,max=100" doc:"Session ID to revoke"`
}

// LogoutInput wraps the logout request for Huma.
type LogoutInput struct {
	Body LogoutRequest
}

// UserResponse contains user information in API responses.
type UserResponse struct {
	ID          string    `json:"id" doc:"User ID"`
	Email       string    `json:"email" doc:"User email"`
	DisplayName string    `json:"display_name" doc:"Display name"`
	Role        string    `json:"role" doc:"Operational role (user, author, editor, admin)"`
	Tier        string    `json:"tier" doc:"Membership tier (free, tier1, tier2, tier3)"`
	CreatedAt   time.Time `json:"created_at" doc:"Creation timestamp"`
	UpdatedAt   time.Time `json:"updated_at" doc:"Last update timestamp"`
	LastLoginAt time.Time `json:"last_login_at" doc:"Last login timestamp"`
}

// AuthResponse contains authentication tokens and user info.
type AuthResponse struct {
	AccessToken  string       `json:"access_token" doc:"PASETO access token"`
	RefreshToken string       `json:"refresh_token" doc:"Refresh token"`
	SessionID    string       `json:"session_id" doc:"Session identifier"`
	TokenType    string       `json:"token_type" doc:"Token type (Bearer)"`
	ExpiresIn    int          `json:"expires_in" doc:"Token expiry in seconds"`
	User         UserResponse `json:"user" doc:"Authenticated user"`
}

// AuthOutput wraps the auth response for Huma.
type AuthOutput struct {
	Body AuthResponse
}

// MessageResponse contains a simple message.
type MessageResponse struct {
	Message string `json:"message" doc:"Success message"`
}

// MessageOutput wraps the message response for Huma.
type MessageOutput struct {
	Body MessageResponse
}

// SessionInfo describes one active session.
type SessionInfo struct {
	ID            string    `json:"id" doc:"Session ID"`
	ClientName    string    `json:"client_name,omitempty" doc:"Client name"`
	ClientVersion string    `json:"client_version,omitempty" doc:"Client version"`
	IPAddress     string    `json:"ip_address,omitempty" doc:"Last seen IP"`
	CreatedAt     time.Time `json:"created_at" doc:"Session creation time"`
	LastSeenAt    time.Time `json:"last_seen_at" doc:"Last activity time"`
	ExpiresAt     time.Time `json:"expires_at" doc:"Expiration time"`
}

// SessionListOutput wraps the session list for Huma.
type SessionListOutput struct {
	Body struct {
		Sessions []SessionInfo `json:"sessions" doc:"Active sessions"`
	}
}

// === Handlers ===

func (s *Server) handleSetup(ctx context.Context, input *SetupInput) (*AuthOutput, error) {
	if err := s.checkAuthRate(extractIP(input.XForwardedFor, input.XRealIP)); err != nil {
		return nil, err
	}

	resp, err := s.services.Auth.Setup(ctx, service.SetupRequest{
		Email:       input.Body.Email,
		Password:    input.Body.Password,
		DisplayName: input.Body.DisplayName,
	})
	if err != nil {
		return nil, err
	}

	return &AuthOutput{Body: mapAuthResponse(resp)}, nil
}

func (s *Server) handleRegister(ctx context.Context, input *RegisterInput) (*AuthOutput, error) {
	if err := s.checkAuthRate(extractIP(input.XForwardedFor, input.XRealIP)); err != nil {
		return nil, err
	}

	resp, err := s.services.Auth.Register(ctx, service.RegisterRequest{
		Email:       input.Body.Email,
		Password:    input.Body.Password,
		DisplayName: input.Body.DisplayName,
	})
	if err != nil {
		return nil, err
	}

	return &AuthOutput{Body: mapAuthResponse(resp)}, nil
}

func (s *Server) handleLogin(ctx context.Context, input *LoginInput) (*AuthOutput, error) {
	ip := extractIP(input.XForwardedFor, input.XRealIP)
	if err := s.checkAuthRate(ip); err != nil {
		return nil, err
	}

	resp, err := s.services.Auth.Login(ctx, service.LoginRequest{
		Email:    input.Body.Email,
		Password: input.Body.Password,
		ClientInfo: auth.ClientInfo{
			ClientName:    input.Body.ClientInfo.ClientName,
			ClientVersion: input.Body.ClientInfo.ClientVersion,
		},
		IPAddress: ip,
	})
	if err != nil {
		return nil, err
	}

	return &AuthOutput{Body: mapAuthResponse(resp)}, nil
}

func (s *Server) handleRefresh(ctx context.Context, input *RefreshInput) (*AuthOutput, error) {
	resp, err := s.services.Auth.RefreshTokens(ctx, service.RefreshRequest{
		RefreshToken: input.Body.RefreshToken,
		ClientInfo: auth.ClientInfo{
			ClientName:    input.Body.ClientInfo.ClientName,
			ClientVersion: input.Body.ClientInfo.ClientVersion,
		},
		IPAddress: extractIP(input.XForwardedFor, input.XRealIP),
	})
	if err != nil {
		return nil, err
	}

	return &AuthOutput{Body: mapAuthResponse(resp)}, nil
}

func (s *Server) handleLogout(ctx context.Context, input *LogoutInput) (*MessageOutput, error) {
	if err := s.services.Auth.Logout(ctx, input.Body.SessionID); err != nil {
		return nil, err
	}

	return &MessageOutput{Body: MessageResponse{Message: "Logged out successfully"}}, nil
}

func (s *Server) handleListSessions(ctx context.Context, _ *struct{}) (*SessionListOutput, error) {
	viewer, err := RequireViewer(ctx)
	if err != nil {
		return nil, err
	}

	sessions, err := s.services.Session.ListUserSessions(ctx, viewer.UserID)
	if err != nil {
		return nil, err
	}

	out := &SessionListOutput{}
	out.Body.Sessions = make([]SessionInfo, 0, len(sessions))
	for _, sess := range sessions {
		out.Body.Sessions = append(out.Body.Sessions, SessionInfo{
			ID:            sess.ID,
			ClientName:    sess.ClientName,
			ClientVersion: sess.ClientVersion,
			IPAddress:     sess.IPAddress,
			CreatedAt:     sess.CreatedAt,
			LastSeenAt:    sess.LastSeenAt,
			ExpiresAt:     sess.ExpiresAt,
		})
	}

	return out, nil
}

// === Helpers ===

func mapAuthResponse(resp *service.AuthResponse) AuthResponse {
	return AuthResponse{
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
		SessionID:    resp.SessionID,
		TokenType:    resp.TokenType,
		ExpiresIn:    resp.ExpiresIn,
		User:         mapUserResponse(resp.User),
	}
}

func mapUserResponse(user *domain.User) UserResponse {
	return UserResponse{
		ID:          user.ID,
		Email:       user.Email,
		DisplayName: user.DisplayName,
		Role:        string(user.Role),
		Tier:        string(user.Tier),
		CreatedAt:   user.CreatedAt,
		UpdatedAt:   user.UpdatedAt,
		LastLoginAt: user.LastLoginAt,
	}
}
