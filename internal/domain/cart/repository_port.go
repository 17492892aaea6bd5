package cart

import (
	"context"

	"storefront/internal/domain/common"
)

// Repository locates and persists cart documents with optimistic
// concurrency. FindPending + Save(expected) is the only write path for an
// existing cart; unconditioned overwrites do not exist on this port.
type Repository interface {
	// FindPending returns the single pending cart for ownerID, or
	// (nil, zero, nil) when the owner has none. If the store can observe
	// more than one pending cart for the owner the implementation must
	// pick the lowest cart ID deterministically and log the invariant
	// violation; it must never merge.
	FindPending(ctx context.Context, ownerID string) (*Cart, common.Revision, error)

	// Create persists a brand-new pending cart and registers it as the
	// owner's pending cart. Returns common.ErrVersionConflict when a
	// concurrent request registered a pending cart first.
	Create(ctx context.Context, c *Cart) error

	// Save writes c conditioned on expected matching the stored revision,
	// and keeps the owner pending index in step (deregistering it when the
	// cart left the pending state). Returns common.ErrVersionConflict when
	// another writer got there first.
	Save(ctx context.Context, c *Cart, expected common.Revision) error
}
