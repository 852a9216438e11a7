package repository

import (
	"context"
	"errors"

	"github.com/registery/auth-api/internal/domain/entity"
)

var (
	// ErrNotFound is returned when no user matches the lookup key.
	ErrNotFound = errors.New("user not found")
	// ErrDuplicateEmail is returned when an insert collides with the unique
	// email constraint. The constraint is the authoritative duplicate guard;
	// any existence check before Create is an optimization only.
	ErrDuplicateEmail = errors.New("email already registered")
)

// UserRepository defines the persistence operations for user records.
type UserRepository interface {
	Create(ctx context.Context, u *entity.User) error
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	// UpdateProfile overwrites the mutable display fields of the record
	// identified by email. Immutable fields (provider, password hash,
	// google subject id) are never touched by this call.
	UpdateProfile(ctx context.Context, email, fullName, pictureURL string) error
}
