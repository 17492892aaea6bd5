package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cartdom "storefront/internal/domain/cart"
	"storefront/internal/domain/common"
)

var t0 = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func mustCart(t *testing.T, id, owner string) *cartdom.Cart {
	t.Helper()
	c, err := cartdom.New(id, owner, t0)
	require.NoError(t, err)
	return c
}

func TestCartCreateAndFindPending(t *testing.T) {
	store := NewStore()
	repo := store.Carts()
	ctx := context.Background()

	c, rev, err := repo.FindPending(ctx, "alice")
	require.NoError(t, err)
	assert.Nil(t, c, "no pending cart yet")
	assert.True(t, rev.IsZero())

	require.NoError(t, repo.Create(ctx, mustCart(t, "c1", "alice")))

	c, rev, err = repo.FindPending(ctx, "alice")
	require.NoError(t, err)
	require.NotNil(t, c)
	assert.Equal(t, "c1", c.ID)
	assert.False(t, rev.IsZero())
}

func TestCartCreateSecondPendingConflicts(t *testing.T) {
	store := NewStore()
	repo := store.Carts()
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, mustCart(t, "c1", "alice")))
	err := repo.Create(ctx, mustCart(t, "c2", "alice"))
	assert.ErrorIs(t, err, common.ErrVersionConflict)

	// A different owner is unaffected.
	require.NoError(t, repo.Create(ctx, mustCart(t, "c3", "bob")))
}

func TestCartSaveStaleRevisionConflicts(t *testing.T) {
	store := NewStore()
	repo := store.Carts()
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, mustCart(t, "c1", "alice")))
	c, rev, err := repo.FindPending(ctx, "alice")
	require.NoError(t, err)

	require.NoError(t, c.AddLine("p1", 100, 1, t0.Add(time.Second)))
	require.NoError(t, repo.Save(ctx, c, rev))

	// The first writer bumped the revision; replaying with the old one fails.
	stale := *c
	err = repo.Save(ctx, &stale, rev)
	assert.ErrorIs(t, err, common.ErrVersionConflict)
}

func TestCartSaveCompletedFreesTheOwnerSlot(t *testing.T) {
	store := NewStore()
	repo := store.Carts()
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, mustCart(t, "c1", "alice")))
	c, rev, err := repo.FindPending(ctx, "alice")
	require.NoError(t, err)

	require.NoError(t, c.Checkout(t0.Add(time.Second)))
	require.NoError(t, repo.Save(ctx, c, rev))

	got, _, err := repo.FindPending(ctx, "alice")
	require.NoError(t, err)
	assert.Nil(t, got, "completed carts are invisible to FindPending")

	// The completed document itself is preserved.
	kept, _, err := repo.GetByID(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, cartdom.StatusCompleted, kept.Status)

	// And the owner can start over.
	require.NoError(t, repo.Create(ctx, mustCart(t, "c2", "alice")))
}

func TestFindPendingRepairsCorruptedState(t *testing.T) {
	store := NewStore()
	repo := store.Carts()
	ctx := context.Background()

	// Simulate a historical bug: two pending carts for one owner and no
	// index entry.
	store.mu.Lock()
	for _, id := range []string{"c9", "c2"} {
		c, err := cartdom.New(id, "alice", t0)
		require.NoError(t, err)
		store.carts[id] = cartRecord{cart: *c, rev: store.nextRevision()}
	}
	store.mu.Unlock()

	c, _, err := repo.FindPending(ctx, "alice")
	require.NoError(t, err)
	require.NotNil(t, c)
	assert.Equal(t, "c2", c.ID, "deterministically the lowest ID; never merged")

	// Repeated lookups stay on the same cart via the repaired index.
	again, _, err := repo.FindPending(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "c2", again.ID)
}

func TestFindPendingReturnsCopies(t *testing.T) {
	store := NewStore()
	repo := store.Carts()
	ctx := context.Background()

	c := mustCart(t, "c1", "alice")
	require.NoError(t, c.AddLine("p1", 100, 1, t0))
	require.NoError(t, repo.Create(ctx, c))

	first, _, err := repo.FindPending(ctx, "alice")
	require.NoError(t, err)
	require.NoError(t, first.AddLine("p1", 100, 5, t0.Add(time.Second)))

	// Mutating the returned cart without Save must not leak into the store.
	second, _, err := repo.FindPending(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, 1, second.Lines["p1"].Qty)
}
