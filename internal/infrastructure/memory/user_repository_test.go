package memory

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/registery/auth-api/internal/domain/entity"
	"github.com/registery/auth-api/internal/domain/repository"
)

func TestCreateAndGetByEmail(t *testing.T) {
	repo := NewUserRepository()
	ctx := context.Background()

	u := &entity.User{Email: "a@example.com", FullName: "Alice", Provider: entity.ProviderEmail, PasswordHash: "x"}
	require.NoError(t, repo.Create(ctx, u))
	assert.NotEmpty(t, u.ID)
	assert.False(t, u.CreatedAt.IsZero())

	got, err := repo.GetByEmail(ctx, "a@example.com")
	require.NoError(t, err)
	assert.Equal(t, "Alice", got.FullName)
	assert.Equal(t, entity.ProviderEmail, got.Provider)
}

func TestCreateDuplicateEmail(t *testing.T) {
	repo := NewUserRepository()
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &entity.User{Email: "a@example.com", Provider: entity.ProviderEmail}))
	err := repo.Create(ctx, &entity.User{Email: "a@example.com", Provider: entity.ProviderGoogle})
	assert.ErrorIs(t, err, repository.ErrDuplicateEmail)
	assert.Equal(t, 1, repo.Count())
}

func TestGetByEmailNotFound(t *testing.T) {
	repo := NewUserRepository()
	_, err := repo.GetByEmail(context.Background(), "missing@example.com")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestUpdateProfile(t *testing.T) {
	repo := NewUserRepository()
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &entity.User{Email: "a@example.com", FullName: "Old", Provider: entity.ProviderGoogle}))
	require.NoError(t, repo.UpdateProfile(ctx, "a@example.com", "New", "https://pic"))

	got, err := repo.GetByEmail(ctx, "a@example.com")
	require.NoError(t, err)
	assert.Equal(t, "New", got.FullName)
	assert.Equal(t, "https://pic", got.PictureURL)

	assert.ErrorIs(t, repo.UpdateProfile(ctx, "missing@example.com", "x", ""), repository.ErrNotFound)
}

func TestConcurrentCreateSameEmail(t *testing.T) {
	repo := NewUserRepository()
	ctx := context.Background()

	const n = 32
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- repo.Create(ctx, &entity.User{Email: "race@example.com", Provider: entity.ProviderEmail})
		}()
	}
	wg.Wait()
	close(errs)

	var created, dup int
	for err := range errs {
		switch {
		case err == nil:
			created++
		case err == repository.ErrDuplicateEmail:
			dup++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, created)
	assert.Equal(t, n-1, dup)
	assert.Equal(t, 1, repo.Count())
}
