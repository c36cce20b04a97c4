package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/apogeepress/apogee-server/internal/domain"
	domainerrors "github.com/apogeepress/apogee-server/internal/errors"
	"github.com/apogeepress/apogee-server/internal/store"
)

// UserService handles profile and account administration.
type UserService struct {
	store  *store.Store
	logger *slog.Logger
}

// NewUserService creates a new user service.
func NewUserService(store *store.Store, logger *slog.Logger) *UserService {
	return &UserService{store: store, logger: logger}
}

// UpdateProfileRequest carries a user's own profile edits.
type UpdateProfileRequest struct {
	DisplayName string `json:"display_name" validate:"required,max=100"`
}

// UpdateAccountRequest carries admin changes to another account.
// Nil fields are left unchanged.
type UpdateAccountRequest struct {
	Role *string `json:"role" validate:"omitempty,oneof=user author editor admin"`
	Tier *string `json:"tier" validate:"omitempty,oneof=free tier1 tier2 tier3"`
}

// GetUser fetches a user by ID.
func (s *UserService) GetUser(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return nil, domainerrors.NotFound("user not found")
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}

// ListUsers returns every account. Admin only.
func (s *UserService) ListUsers(ctx context.Context, viewer domain.Viewer) ([]*domain.User, error) {
	if viewer.Role != domain.RoleAdmin {
		return nil, domainerrors.Forbidden("listing accounts requires the admin role")
	}
	users, err := s.store.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

// UpdateProfile applies the viewer's own profile edits.
func (s *UserService) UpdateProfile(ctx context.Context, viewer domain.Viewer, req UpdateProfileRequest) (*domain.User, error) {
	if err := validate.Validate(req); err != nil {
		return nil, err
	}

	user, err := s.GetUser(ctx, viewer.UserID)
	if err != nil {
		return nil, err
	}

	user.DisplayName = req.DisplayName
	if err := s.store.UpdateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}

	return user, nil
}

// UpdateAccount applies admin role and tier changes to an account.
// An admin cannot demote their own role, so the system always keeps at
// least the acting admin.
func (s *UserService) UpdateAccount(ctx context.Context, viewer domain.Viewer, userID string, req UpdateAccountRequest) (*domain.User, error) {
	if viewer.Role != domain.RoleAdmin {
		return nil, domainerrors.Forbidden("account changes require the admin role")
	}
	if err := validate.Validate(req); err != nil {
		return nil, err
	}

	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.Role != nil {
		newRole := domain.ParseRole(*req.Role)
		if user.ID == viewer.UserID && newRole != domain.RoleAdmin {
			return nil, domainerrors.Validation("you cannot remove your own admin role")
		}
		user.Role = newRole
	}
	if req.Tier != nil {
		user.Tier = domain.ParseTier(*req.Tier)
	}

	if err := s.store.UpdateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}

	if s.logger != nil {
		s.logger.Info("Account updated",
			"user_id", user.ID,
			"role", user.Role,
			"tier", user.Tier,
			"updated_by", viewer.UserID,
		)
	}

	return user, nil
}
