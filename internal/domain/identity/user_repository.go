package identity

import (
	"context"

	"github.com/clientportal/backend/internal/domain/shared"
)

// UserRepository defines persistence operations for users
type UserRepository interface {
	FindByID(ctx context.Context, id uint) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByRemoteClientID(ctx context.Context, remoteClientID string) (*User, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]User, int64, error)
	Save(ctx context.Context, u *User) error
}
