package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/registery/auth-api/internal/domain/entity"
	"github.com/registery/auth-api/internal/domain/repository"
)

// UserRepository is a mutex-guarded in-memory implementation of
// repository.UserRepository. It mirrors the Postgres behavior, including
// duplicate detection under concurrent Create calls.
type UserRepository struct {
	mu    sync.Mutex
	users map[string]*entity.User // keyed by email
}

func NewUserRepository() *UserRepository {
	return &UserRepository{users: make(map[string]*entity.User)}
}

func (r *UserRepository) Create(ctx context.Context, u *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[u.Email]; ok {
		return repository.ErrDuplicateEmail
	}
	now := time.Now()
	u.ID = uuid.NewString()
	u.CreatedAt = now
	u.UpdatedAt = now
	cp := *u
	r.users[u.Email] = &cp
	return nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[email]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *UserRepository) UpdateProfile(ctx context.Context, email, fullName, pictureURL string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[email]
	if !ok {
		return repository.ErrNotFound
	}
	u.FullName = fullName
	u.PictureURL = pictureURL
	u.UpdatedAt = time.Now()
	return nil
}

// Delete removes a record. Account deletion has no API surface; this exists
// so tests can exercise token-for-deleted-account handling.
func (r *UserRepository) Delete(email string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.users, email)
}

// Count reports the number of stored records.
func (r *UserRepository) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.users)
}

var _ repository.UserRepository = (*UserRepository)(nil)
