package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/apogeepress/apogee-server/internal/service"
)

func (s *Server) registerUserRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "getCurrentUser",
		Method:      http.MethodGet,
		Path:        "/api/v1/users/me",
		Summary:     "Get current user",
		Tags:        []string{"Users"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetCurrentUser)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateProfile",
		Method:      http.MethodPatch,
		Path:        "/api/v1/users/me",
		Summary:     "Update own profile",
		Tags:        []string{"Users"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleUpdateProfile)

	huma.Register(s.api, huma.Operation{
		OperationID: "listUsers",
		Method:      http.MethodGet,
		Path:        "/api/v1/users",
		Summary:     "List accounts",
		Description: "Returns every account. Admin only.",
		Tags:        []string{"Users"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleListUsers)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateAccount",
		Method:      http.MethodPatch,
		Path:        "/api/v1/users/{id}",
		Summary:     "Update an account",
		Description: "Changes an account's role or membership tier. Admin only.",
		Tags:        []string{"Users"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleUpdateAccount)
}

// === DTOs ===

// UserOutput wraps a user for Huma.
type UserOutput struct {
	Body UserResponse
}

// UpdateProfileRequest is the request body for profile edits.
type UpdateProfileRequest struct {
	DisplayName string `json:"display_name" validate:"required,max=100" doc:"New display name"`
}

// UpdateProfileInput wraps the profile edit for Huma.
type UpdateProfileInput struct {
	Body UpdateProfileRequest
}

// UserListOutput wraps the account list for Huma.
type UserListOutput struct {
	Body struct {
		Users []UserResponse `json:"users" doc:"All accounts"`
	}
}

// UpdateAccountRequest carries admin account changes.
type UpdateAccountRequest struct {
	Role *string `json:"role,omitempty" validate:"omitempty,oneof=user author editor admin" doc:"New role"`
	Tier *string `json:"tier,omitempty" validate:"omitempty,oneof=free tier1 tier2 tier3" doc:"New membership tier"`
}

// UpdateAccountInput wraps the account change for Huma.
type UpdateAccountInput struct {
	ID   string `path:"id" doc:"User ID"`
	Body UpdateAccountRequest
}

// === Handlers ===

func (s *Server) handleGetCurrentUser(ctx context.Context, _ *struct{}) (*UserOutput, error) {
	viewer, err := RequireViewer(ctx)
	if err != nil {
		return nil, err
	}

	user, err := s.services.User.GetUser(ctx, viewer.UserID)
	if err != nil {
		return nil, err
	}

	return &UserOutput{Body: mapUserResponse(user)}, nil
}

func (s *Server) handleUpdateProfile(ctx context.Context, input *UpdateProfileInput) (*UserOutput, error) {
	viewer, err := RequireViewer(ctx)
	if err != nil {
		return nil, err
	}

	user, err := s.services.User.UpdateProfile(ctx, viewer, service.UpdateProfileRequest{
		DisplayName: input.Body.DisplayName,
	})
	if err != nil {
		return nil, err
	}

	return &UserOutput{Body: mapUserResponse(user)}, nil
}

func (s *Server) handleListUsers(ctx context.Context, _ *struct{}) (*UserListOutput, error) {
	viewer, err := RequireViewer(ctx)
	if err != nil {
		return nil, err
	}

	users, err := s.services.User.ListUsers(ctx, viewer)
	if err != nil {
		return nil, err
	}

	out := &UserListOutput{}
	out.Body.Users = make([]UserResponse, 0, len(users))
	for _, user := range users {
		out.Body.Users = append(out.Body.Users, mapUserResponse(user))
	}

	return out, nil
}

func (s *Server) handleUpdateAccount(ctx context.Context, input *UpdateAccountInput) (*UserOutput, error) {
	viewer, err := RequireViewer(ctx)
	if err != nil {
		return nil, err
	}

	user, err := s.services.User.UpdateAccount(ctx, viewer, input.ID, service.UpdateAccountRequest{
		Role: input.Body.Role,
		Tier: input.Body.Tier,
	})
	if err != nil {
		return nil, err
	}

	return &UserOutput{Body: mapUserResponse(user)}, nil
}
