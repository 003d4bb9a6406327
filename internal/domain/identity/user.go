package identity

import (
	"regexp"
	"strings"
	"time"

	"github.com/clientportal/backend/internal/domain/shared"
	"golang.org/x/crypto/bcrypt"
)

// Role determines what a portal user may do
type Role string

const (
	RoleAdmin    Role = "admin"    // Manages clients and projects
	RoleCustomer Role = "customer" // Views own projects only
)

// UserStatus represents the status of a user account
type UserStatus string

const (
	UserStatusActive      UserStatus = "active"
	UserStatusDeactivated UserStatus = "deactivated"
)

// Password cost for bcrypt
const bcryptCost = 12

// User represents a portal user. A customer user mirrors a billing-provider
// client record: RemoteClientID is the provider's client ID and is used for
// reverse lookups when materializing projects.
type User struct {
	shared.BaseEntity
	Email          string     `gorm:"type:varchar(200);not null;uniqueIndex"`
	PasswordHash   string     `gorm:"type:varchar(100);not null"`
	DisplayName    string     `gorm:"type:varchar(100)"`
	Role           Role       `gorm:"type:varchar(20);not null;default:'customer'"`
	Status         UserStatus `gorm:"type:varchar(20);not null;default:'active'"`
	RemoteClientID string     `gorm:"type:varchar(100);index"`
	LastLoginAt    *time.Time
}

// TableName returns the table name for GORM
func (User) TableName() string {
	return "users"
}

// NewUser creates a new active user with the given role
func NewUser(email, password string, role Role) (*User, error) {
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if err := validatePassword(password); err != nil {
		return nil, err
	}
	if err := validateRole(role); err != nil {
		return nil, err
	}

	passwordHash, err := hashPassword(password)
	if err != nil {
		return nil, shared.NewDomainError("PASSWORD_HASH_ERROR", "Failed to hash password")
	}

	now := time.Now()
	return &User{
		BaseEntity:   shared.BaseEntity{CreatedAt: now, UpdatedAt: now},
		Email:        strings.ToLower(strings.TrimSpace(email)),
		PasswordHash: passwordHash,
		Role:         role,
		Status:       UserStatusActive,
	}, nil
}

// NewCustomer creates a customer user bound to a billing-provider client
func NewCustomer(email, password, remoteClientID string) (*User, error) {
	u, err := NewUser(email, password, RoleCustomer)
	if err != nil {
		return nil, err
	}
	u.RemoteClientID = remoteClientID
	return u, nil
}

// CheckPassword verifies a plaintext password against the stored hash
func (u *User) CheckPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) == nil
}

// ChangePassword replaces the stored password hash
func (u *User) ChangePassword(password string) error {
	if err := validatePassword(password); err != nil {
		return err
	}
	hash, err := hashPassword(password)
	if err != nil {
		return shared.NewDomainError("PASSWORD_HASH_ERROR", "Failed to hash password")
	}
	u.PasswordHash = hash
	u.UpdatedAt = time.Now()
	return nil
}

// SetDisplayName sets the user's display name
func (u *User) SetDisplayName(name string) error {
	if len(name) > 100 {
		return shared.NewDomainError("INVALID_NAME", "Display name cannot exceed 100 characters")
	}
	u.DisplayName = strings.TrimSpace(name)
	u.UpdatedAt = time.Now()
	return nil
}

// LinkRemoteClient stores the billing-provider client ID for reverse lookups
func (u *User) LinkRemoteClient(remoteClientID string) error {
	if strings.TrimSpace(remoteClientID) == "" {
		return shared.NewDomainError("INVALID_REMOTE_CLIENT", "Remote client ID cannot be empty")
	}
	u.RemoteClientID = remoteClientID
	u.UpdatedAt = time.Now()
	return nil
}

// RecordLogin stores the last successful login time
func (u *User) RecordLogin(at time.Time) {
	u.LastLoginAt = &at
	u.UpdatedAt = time.Now()
}

// Deactivate disables the account
func (u *User) Deactivate() error {
	if u.Status == UserStatusDeactivated {
		return shared.NewDomainError("ALREADY_DEACTIVATED", "User is already deactivated")
	}
	u.Status = UserStatusDeactivated
	u.UpdatedAt = time.Now()
	return nil
}

// IsAdmin reports whether the user has the admin role
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// IsActive reports whether the account may log in
func (u *User) IsActive() bool {
	return u.Status == UserStatusActive
}

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

func validateEmail(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return shared.NewDomainError("INVALID_EMAIL", "Email cannot be empty")
	}
	if len(email) > 200 {
		return shared.NewDomainError("INVALID_EMAIL", "Email cannot exceed 200 characters")
	}
	if !emailRegex.MatchString(email) {
		return shared.NewDomainError("INVALID_EMAIL", "Invalid email format")
	}
	return nil
}

func validatePassword(password string) error {
	if len(password) < 8 {
		return shared.NewDomainError("INVALID_PASSWORD", "Password must be at least 8 characters")
	}
	if len(password) > 72 {
		return shared.NewDomainError("INVALID_PASSWORD", "Password cannot exceed 72 characters")
	}
	return nil
}

func validateRole(role Role) error {
	switch role {
	case RoleAdmin, RoleCustomer:
		return nil
	default:
		return shared.NewDomainError("INVALID_ROLE", "Role must be 'admin' or 'customer'")
	}
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
