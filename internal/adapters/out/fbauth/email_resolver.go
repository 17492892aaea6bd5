package fbauth

import (
	"context"
	"errors"
	"strings"

	firebaseauth "firebase.google.com/go/v4/auth"
)

// EmailResolver resolves a principal uid to its Firebase account email.
// Used by the checkout receipt sender; profiles deliberately do not store
// addresses, the identity provider owns them.
type EmailResolver struct {
	Auth *firebaseauth.Client
}

func NewEmailResolver(auth *firebaseauth.Client) *EmailResolver {
	return &EmailResolver{Auth: auth}
}

func (r *EmailResolver) EmailByUID(ctx context.Context, uid string) (string, error) {
	if r == nil || r.Auth == nil {
		return "", errors.New("fbauth: auth client is nil")
	}
	uid = strings.TrimSpace(uid)
	if uid == "" {
		return "", errors.New("fbauth: uid is empty")
	}

	rec, err := r.Auth.GetUser(ctx, uid)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(rec.Email), nil
}
