package firestore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"storefront/internal/domain/common"
	userdom "storefront/internal/domain/user"
)

// UserRepositoryFS implements user.Repository using Firestore.
// Collection: users, docId = principal uid. Upsert is a full-doc Set
// (create-or-replace); profiles carry no versioned mutation surface.
type UserRepositoryFS struct {
	Client *firestore.Client
}

func NewUserRepositoryFS(client *firestore.Client) *UserRepositoryFS {
	return &UserRepositoryFS{Client: client}
}

func (r *UserRepositoryFS) col() *firestore.CollectionRef {
	return r.Client.Collection("users")
}

func (r *UserRepositoryFS) GetByID(ctx context.Context, id string) (userdom.User, error) {
	if r == nil || r.Client == nil {
		return userdom.User{}, errors.New("user_repository_fs: firestore client is nil")
	}
	uid := strings.TrimSpace(id)
	if uid == "" {
		return userdom.User{}, fmt.Errorf("%w: uid is empty", common.ErrInvalidArgument)
	}

	snap, err := r.col().Doc(uid).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return userdom.User{}, fmt.Errorf("%w: user %s", common.ErrNotFound, uid)
		}
		return userdom.User{}, err
	}

	raw := snap.Data()
	u := userdom.User{ID: uid}
	if raw != nil {
		u.FirstName = strings.TrimSpace(asString(raw["firstName"]))
		u.LastName = strings.TrimSpace(asString(raw["lastName"]))
		if t, ok := asTime(raw["createdAt"]); ok {
			u.CreatedAt = t
		}
		if t, ok := asTime(raw["updatedAt"]); ok {
			u.UpdatedAt = t
		}
	}
	return u, nil
}

func (r *UserRepositoryFS) Upsert(ctx context.Context, u userdom.User) error {
	if r == nil || r.Client == nil {
		return errors.New("user_repository_fs: firestore client is nil")
	}
	uid := strings.TrimSpace(u.ID)
	if uid == "" {
		return fmt.Errorf("%w: uid is empty", common.ErrInvalidArgument)
	}

	_, err := r.col().Doc(uid).Set(ctx, userDoc{
		FirstName: u.FirstName,
		LastName:  u.LastName,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	})
	return err
}

type userDoc struct {
	FirstName string    `firestore:"firstName"`
	LastName  string    `firestore:"lastName"`
	CreatedAt time.Time `firestore:"createdAt"`
	UpdatedAt time.Time `firestore:"updatedAt"`
}
