package user

import "context"

// Repository persists user profiles. Upsert is create-or-replace: the
// profile is wholly owned by its principal and carries no versioned
// concurrent-mutation surface.
type Repository interface {
	// GetByID returns common.ErrNotFound (wrapped) when no profile exists.
	GetByID(ctx context.Context, id string) (User, error)

	// Upsert creates or replaces the profile for u.ID.
	Upsert(ctx context.Context, u User) error
}
