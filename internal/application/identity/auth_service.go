package identity

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/clientportal/backend/internal/domain/identity"
	"github.com/clientportal/backend/internal/domain/shared"
	"github.com/clientportal/backend/internal/infrastructure/auth"
)

// ErrInvalidCredentials is returned for any login failure. Whether the email
// or the password was wrong is deliberately not distinguished.
var ErrInvalidCredentials = shared.NewDomainError("INVALID_CREDENTIALS", "Invalid email or password")

// UserDTO is the API representation of a portal user
type UserDTO struct {
	ID             uint       `json:"id"`
	Email          string     `json:"email"`
	DisplayName    string     `json:"display_name,omitempty"`
	Role           string     `json:"role"`
	Status         string     `json:"status"`
	RemoteClientID string     `json:"remote_client_id,omitempty"`
	LastLoginAt    *time.Time `json:"last_login_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

// LoginResult carries a fresh session token and its subject
type LoginResult struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	User      UserDTO   `json:"user"`
}

// CreateUserInput holds the fields for creating a portal user
type CreateUserInput struct {
	Email          string `json:"email" binding:"required,email"`
	Password       string `json:"password" binding:"required,min=8,max=72"`
	DisplayName    string `json:"display_name,omitempty"`
	Role           string `json:"role,omitempty"`
	RemoteClientID string `json:"remote_client_id,omitempty"`
}

// AuthService implements login, session, and user management use cases
type AuthService struct {
	users  identity.UserRepository
	tokens *auth.JWTService
	logger *zap.Logger
}

// NewAuthService creates an auth service
func NewAuthService(users identity.UserRepository, tokens *auth.JWTService, logger *zap.Logger) *AuthService {
	return &AuthService{
		users:  users,
		tokens: tokens,
		logger: logger.Named("auth_service"),
	}
}

// Login verifies credentials and issues a session token
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !user.CheckPassword(password) {
		s.logger.Info("failed login attempt", zap.String("email", user.Email))
		return nil, ErrInvalidCredentials
	}
	if !user.IsActive() {
		return nil, shared.ErrForbidden
	}

	user.RecordLogin(time.Now())
	if err := s.users.Save(ctx, user); err != nil {
		return nil, err
	}

	token, expiresAt, err := s.tokens.Generate(user.ID, user.Email, string(user.Role))
	if err != nil {
		return nil, err
	}
	return &LoginResult{Token: token, ExpiresAt: expiresAt, User: *toUserDTO(user)}, nil
}

// CreateUser creates a portal user. Admin only.
func (s *AuthService) CreateUser(ctx context.Context, in CreateUserInput, actorIsAdmin bool) (*UserDTO, error) {
	if !actorIsAdmin {
		return nil, shared.ErrForbidden
	}

	role := identity.Role(in.Role)
	if in.Role == "" {
		role = identity.RoleCustomer
	}

	user, err := identity.NewUser(in.Email, in.Password, role)
	if err != nil {
		return nil, err
	}
	if in.DisplayName != "" {
		if err := user.SetDisplayName(in.DisplayName); err != nil {
			return nil, err
		}
	}
	if in.RemoteClientID != "" {
		if err := user.LinkRemoteClient(in.RemoteClientID); err != nil {
			return nil, err
		}
	}

	if err := s.users.Save(ctx, user); err != nil {
		return nil, err
	}
	s.logger.Info("user created", zap.String("email", user.Email), zap.String("role", string(user.Role)))
	return toUserDTO(user), nil
}

// Me returns the current user's profile
func (s *AuthService) Me(ctx context.Context, userID uint) (*UserDTO, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return toUserDTO(user), nil
}

// ChangePassword rotates the current user's password after verifying the old one
func (s *AuthService) ChangePassword(ctx context.Context, userID uint, oldPassword, newPassword string) error {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	if !user.CheckPassword(oldPassword) {
		return ErrInvalidCredentials
	}
	if err := user.ChangePassword(newPassword); err != nil {
		return err
	}
	return s.users.Save(ctx, user)
}

// ListUsers returns all users. Admin only.
func (s *AuthService) ListUsers(ctx context.Context, filter shared.Filter, actorIsAdmin bool) ([]UserDTO, int64, error) {
	if !actorIsAdmin {
		return nil, 0, shared.ErrForbidden
	}
	users, total, err := s.users.FindAll(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	dtos := make([]UserDTO, len(users))
	for i := range users {
		dtos[i] = *toUserDTO(&users[i])
	}
	return dtos, total, nil
}

// DeactivateUser disables an account. Admin only.
func (s *AuthService) DeactivateUser(ctx context.Context, userID uint, actorIsAdmin bool) error {
	if !actorIsAdmin {
		return shared.ErrForbidden
	}
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	if err := user.Deactivate(); err != nil {
		return err
	}
	return s.users.Save(ctx, user)
}

func toUserDTO(u *identity.User) *UserDTO {
	return &UserDTO{
		ID:             u.ID,
		Email:          u.Email,
		DisplayName:    u.DisplayName,
		Role:           string(u.Role),
		Status:         string(u.Status),
		RemoteClientID: u.RemoteClientID,
		LastLoginAt:    u.LastLoginAt,
		CreatedAt:      u.CreatedAt,
	}
}
