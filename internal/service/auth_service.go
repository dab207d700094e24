package service

import (
	"context"
	"time"

	"backend/internal/auth"
	"backend/internal/model"
	"backend/internal/repository"
	"backend/pkg/apperror"

	"github.com/google/uuid"
)

// DTOs for Request validation
type RegisterRequest struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	// IsAdmin is never bound from the public register endpoint; the first
	// user is promoted by the credential store and later admins are made by
	// existing ones.
	IsAdmin bool `json:"-"`
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
}

// DTO for returning User without exposing sensitive data
type UserResponse struct {
	ID             uuid.UUID  `json:"id"`
	Username       string     `json:"username"`
	Email          string     `json:"email"`
	OrganizationID *uuid.UUID `json:"organization_id"`
	IsAdmin        bool       `json:"is_admin"`
	CreatedAt      string     `json:"created_at"`
}

type AssignOrganizationRequest struct {
	OrganizationID *uuid.UUID `json:"organization_id"`
}

type SetAdminRequest struct {
	IsAdmin *bool `json:"is_admin" binding:"required"`
}

// AuthService owns registration and the login/refresh/logout token flows.
type AuthService interface {
	Register(ctx context.Context, req RegisterRequest) (*UserResponse, error)
	Login(ctx context.Context, req LoginRequest) (*TokenResponse, error)
	Refresh(ctx context.Context, req RefreshRequest) (*TokenResponse, error)
	Logout(ctx context.Context, req RefreshRequest) error
	LogoutAll(ctx context.Context, userID uuid.UUID) error
	GetProfile(ctx context.Context, userID uuid.UUID) (*UserResponse, error)
	ListUsers(ctx context.Context, identity auth.Identity, page, limit int) ([]UserResponse, int64, error)
	AssignOrganization(ctx context.Context, identity auth.Identity, userID uuid.UUID, req AssignOrganizationRequest) (*UserResponse, error)
	SetAdmin(ctx context.Context, identity auth.Identity, userID uuid.UUID, req SetAdminRequest) (*UserResponse, error)
}

type authService struct {
	users  repository.UserRepository
	tokens repository.RefreshTokenRepository
	orgs   repository.OrganizationRepository
	hasher auth.PasswordHasher
	issuer *auth.TokenIssuer
	tx     repository.TransactionManager
}

func NewAuthService(
	users repository.UserRepository,
	tokens repository.RefreshTokenRepository,
	orgs repository.OrganizationRepository,
	hasher auth.PasswordHasher,
	issuer *auth.TokenIssuer,
	tx repository.TransactionManager,
) AuthService {
	return &authService{users: users, tokens: tokens, orgs: orgs, hasher: hasher, issuer: issuer, tx: tx}
}

func mapUserResponse(user *model.User) *UserResponse {
	return &UserResponse{
		ID:             user.ID,
		Username:       user.Username,
		Email:          user.Email,
		OrganizationID: user.OrganizationID,
		IsAdmin:        user.IsAdmin,
		CreatedAt:      user.CreatedAt.Format(time.RFC3339),
	}
}

func (s *authService) Register(ctx context.Context, req RegisterRequest) (*UserResponse, error) {
	// Pre-checks name the conflicting field; the unique indexes still catch
	// concurrent registrations and surface a generic Conflict.
	if _, err := s.users.GetByUsername(ctx, req.Username); err == nil {
		return nil, apperror.New(apperror.KindConflict, "username already registered")
	} else if !apperror.Is(err, apperror.KindNotFound) {
		return nil, err
	}
	if _, err := s.users.GetByEmail(ctx, req.Email); err == nil {
		return nil, apperror.New(apperror.KindConflict, "email already registered")
	} else if !apperror.Is(err, apperror.KindNotFound) {
		return nil, err
	}

	hashed, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, apperror.Wrap(apperror.KindInternal, "failed to hash password", err)
	}

	user := &model.User{
		Username: req.Username,
		Email:    req.Email,
		Password: hashed,
		IsAdmin:  req.IsAdmin,
	}

	// The count and insert share a transaction so the very first user is
	// promoted to admin exactly once, even under concurrent registrations.
	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		count, err := s.users.Count(txCtx)
		if err != nil {
			return err
		}
		if count == 0 {
			user.IsAdmin = true
		}
		return s.users.Create(txCtx, user)
	})
	if err != nil {
		return nil, err
	}

	return mapUserResponse(user), nil
}

func (s *authService) Login(ctx context.Context, req LoginRequest) (*TokenResponse, error) {
	user, err := s.users.GetByUsername(ctx, req.Username)
	if err != nil {
		if apperror.Is(err, apperror.KindNotFound) {
			return nil, apperror.New(apperror.KindUnauthenticated, "incorrect username or password")
		}
		return nil, err
	}

	if !s.hasher.Verify(req.Password, user.Password) {
		return nil, apperror.New(apperror.KindUnauthenticated, "incorrect username or password")
	}

	accessToken, _, err := s.issuer.IssueAccessToken(user.Username)
	if err != nil {
		return nil, err
	}

	refreshToken, _, err := s.issuer.IssueRefreshToken(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	return &TokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "bearer",
	}, nil
}

// Refresh exchanges a valid refresh token for a new access token. The
// refresh token itself is returned unchanged, not rotated.
func (s *authService) Refresh(ctx context.Context, req RefreshRequest) (*TokenResponse, error) {
	valid, err := s.tokens.IsValid(ctx, req.RefreshToken)
	if err != nil {
		return nil, err
	}
	if !valid {
		return nil, apperror.New(apperror.KindUnauthenticated, "invalid or expired refresh token")
	}

	record, err := s.tokens.GetByToken(ctx, req.RefreshToken)
	if err != nil {
		return nil, err
	}

	user, err := s.users.GetByID(ctx, record.UserID)
	if err != nil {
		if apperror.Is(err, apperror.KindNotFound) {
			return nil, apperror.New(apperror.KindUnauthenticated, "user not found")
		}
		return nil, err
	}

	accessToken, _, err := s.issuer.IssueAccessToken(user.Username)
	if err != nil {
		return nil, err
	}

	return &TokenResponse{
		AccessToken:  accessToken,
		RefreshToken: req.RefreshToken,
		TokenType:    "bearer",
	}, nil
}

// Logout revokes the presented refresh token. An unknown token is a
// Validation failure: there is nothing to revoke.
func (s *authService) Logout(ctx context.Context, req RefreshRequest) error {
	if err := s.tokens.Revoke(ctx, req.RefreshToken); err != nil {
		if apperror.Is(err, apperror.KindNotFound) {
			return apperror.New(apperror.KindValidation, "invalid refresh token")
		}
		return err
	}
	return nil
}

// LogoutAll revokes every refresh token the user holds. Idempotent.
func (s *authService) LogoutAll(ctx context.Context, userID uuid.UUID) error {
	return s.tokens.RevokeAllForUser(ctx, userID)
}

func (s *authService) GetProfile(ctx context.Context, userID uuid.UUID) (*UserResponse, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return mapUserResponse(user), nil
}

// SetAdmin grants or revokes another user's admin role. Admin only; an
// admin cannot demote themselves, which keeps at least one admin around.
func (s *authService) SetAdmin(ctx context.Context, identity auth.Identity, userID uuid.UUID, req SetAdminRequest) (*UserResponse, error) {
	if !identity.IsAdmin {
		return nil, apperror.New(apperror.KindForbidden, "only admin users can change roles")
	}
	if identity.UserID == userID && req.IsAdmin != nil && !*req.IsAdmin {
		return nil, apperror.New(apperror.KindValidation, "you cannot revoke your own admin role")
	}

	if err := s.users.SetAdmin(ctx, userID, req.IsAdmin != nil && *req.IsAdmin); err != nil {
		return nil, err
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return mapUserResponse(user), nil
}

func (s *authService) ListUsers(ctx context.Context, identity auth.Identity, page, limit int) ([]UserResponse, int64, error) {
	if !identity.IsAdmin {
		return nil, 0, apperror.New(apperror.KindForbidden, "only admin users can list users")
	}

	users, total, err := s.users.List(ctx, page, limit)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]UserResponse, 0, len(users))
	for i := range users {
		responses = append(responses, *mapUserResponse(&users[i]))
	}
	return responses, total, nil
}

// AssignOrganization attaches a user to an organization, or detaches them
// when the request carries a null organization id. Admin only.
func (s *authService) AssignOrganization(ctx context.Context, identity auth.Identity, userID uuid.UUID, req AssignOrganizationRequest) (*UserResponse, error) {
	if !identity.IsAdmin {
		return nil, apperror.New(apperror.KindForbidden, "only admin users can assign users to organizations")
	}

	if req.OrganizationID != nil {
		if _, err := s.orgs.GetByID(ctx, *req.OrganizationID); err != nil {
			if apperror.Is(err, apperror.KindNotFound) {
				return nil, apperror.Newf(apperror.KindValidation, "organization %s does not exist", req.OrganizationID)
			}
			return nil, err
		}
	}

	if err := s.users.UpdateOrganization(ctx, userID, req.OrganizationID); err != nil {
		return nil, err
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return mapUserResponse(user), nil
}
