package identity

import (
	"context"

	"github.com/calculation/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// UserRepository defines the interface for user persistence
type UserRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*User, error)

	FindByUsername(ctx context.Context, username string) (*User, error)

	FindByEmail(ctx context.Context, email string) (*User, error)

	// FindByUsernameOrEmail finds a user by username or email, used at login
	FindByUsernameOrEmail(ctx context.Context, identifier string) (*User, error)

	FindByResetToken(ctx context.Context, token string) (*User, error)

	FindAll(ctx context.Context, filter shared.Filter) ([]User, error)

	// FindByRole finds the enabled users having exactly the given role
	FindByRole(ctx context.Context, role Role) ([]User, error)

	Save(ctx context.Context, user *User) error

	Delete(ctx context.Context, id uuid.UUID) error

	Count(ctx context.Context, filter shared.Filter) (int64, error)

	ExistsByUsername(ctx context.Context, username string, excludeID *uuid.UUID) (bool, error)

	ExistsByEmail(ctx context.Context, email string, excludeID *uuid.UUID) (bool, error)
}
