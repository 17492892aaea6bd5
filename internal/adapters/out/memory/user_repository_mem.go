package memory

import (
	"context"
	"fmt"

	"storefront/internal/domain/common"
	userdom "storefront/internal/domain/user"
)

type userRecord struct {
	user userdom.User
}

// UserRepository implements user.Repository over the in-memory store.
type UserRepository struct {
	s *Store
}

// Users returns the user repository view of the store.
func (s *Store) Users() *UserRepository { return &UserRepository{s: s} }

func (r *UserRepository) GetByID(ctx context.Context, id string) (userdom.User, error) {
	uid, err := trimmed(id)
	if err != nil {
		return userdom.User{}, err
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	rec, ok := r.s.users[uid]
	if !ok {
		return userdom.User{}, fmt.Errorf("%w: user %s", common.ErrNotFound, uid)
	}
	return rec.user, nil
}

func (r *UserRepository) Upsert(ctx context.Context, u userdom.User) error {
	uid, err := trimmed(u.ID)
	if err != nil {
		return err
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	u.ID = uid
	r.s.users[uid] = userRecord{user: u}
	return nil
}
