package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/adapters/out/memory"
	"storefront/internal/domain/common"
)

func TestUserUpsertAndGet(t *testing.T) {
	store := memory.NewStore()
	uc := NewUserUsecaseWithClock(store.Users(), newStubClock())
	ctx := context.Background()

	_, err := uc.Get(ctx, "uid-1")
	assert.ErrorIs(t, err, common.ErrNotFound)

	u, err := uc.Upsert(ctx, "uid-1", " Mina ", "Sato")
	require.NoError(t, err)
	assert.Equal(t, "Mina", u.FirstName)

	got, err := uc.Get(ctx, "uid-1")
	require.NoError(t, err)
	assert.Equal(t, "Mina Sato", got.FullName())
}

func TestUserUpsertKeepsCreatedAt(t *testing.T) {
	store := memory.NewStore()
	uc := NewUserUsecaseWithClock(store.Users(), newStubClock())
	ctx := context.Background()

	first, err := uc.Upsert(ctx, "uid-1", "Mina", "Sato")
	require.NoError(t, err)

	second, err := uc.Upsert(ctx, "uid-1", "Mina", "Tanaka")
	require.NoError(t, err)
	assert.Equal(t, first.CreatedAt, second.CreatedAt)
	assert.True(t, second.UpdatedAt.After(first.UpdatedAt))

	got, err := uc.Get(ctx, "uid-1")
	require.NoError(t, err)
	assert.Equal(t, "Tanaka", got.LastName)
}

func TestUserUpsertValidation(t *testing.T) {
	store := memory.NewStore()
	uc := NewUserUsecase(store.Users())
	ctx := context.Background()

	_, err := uc.Upsert(ctx, "  ", "Mina", "Sato")
	assert.ErrorIs(t, err, common.ErrInvalidArgument)
	_, err = uc.Get(ctx, "")
	assert.ErrorIs(t, err, common.ErrInvalidArgument)
}
