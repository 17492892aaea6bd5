package usecase

import (
	"context"
	"fmt"
	"strings"

	"storefront/internal/domain/common"
	userdom "storefront/internal/domain/user"
)

// UserUsecase manages the principal-bound profile.
type UserUsecase struct {
	users userdom.Repository
	clock Clock
}

func NewUserUsecase(users userdom.Repository) *UserUsecase {
	return &UserUsecase{users: users, clock: systemClock{}}
}

// NewUserUsecaseWithClock is useful for tests.
func NewUserUsecaseWithClock(users userdom.Repository, clock Clock) *UserUsecase {
	uc := NewUserUsecase(users)
	if clock != nil {
		uc.clock = clock
	}
	return uc
}

// Get returns the profile for uid.
func (uc *UserUsecase) Get(ctx context.Context, uid string) (userdom.User, error) {
	id := strings.TrimSpace(uid)
	if id == "" {
		return userdom.User{}, fmt.Errorf("%w: uid required", common.ErrInvalidArgument)
	}
	return uc.users.GetByID(ctx, id)
}

// Upsert creates or replaces the profile bound to uid.
func (uc *UserUsecase) Upsert(ctx context.Context, uid, firstName, lastName string) (userdom.User, error) {
	id := strings.TrimSpace(uid)
	if id == "" {
		return userdom.User{}, fmt.Errorf("%w: uid required", common.ErrInvalidArgument)
	}

	u, err := userdom.New(id, firstName, lastName, uc.clock.Now())
	if err != nil {
		return userdom.User{}, fmt.Errorf("%w: %v", common.ErrInvalidArgument, err)
	}

	// Keep the original CreatedAt when replacing an existing profile.
	if existing, err := uc.users.GetByID(ctx, id); err == nil && !existing.CreatedAt.IsZero() {
		u.CreatedAt = existing.CreatedAt
	}

	if err := uc.users.Upsert(ctx, u); err != nil {
		return userdom.User{}, err
	}
	return u, nil
}
