package user

import (
	"errors"
	"strings"
	"time"
)

// User is the storefront profile bound 1:1 to the authenticated principal;
// the document ID is the verified UID supplied by the inbound boundary.
type User struct {
	ID        string    `json:"id"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Errors
var (
	ErrInvalidID        = errors.New("user: invalid id")
	ErrInvalidFirstName = errors.New("user: invalid firstName")
	ErrInvalidLastName  = errors.New("user: invalid lastName")
)

// Policy
var MaxNameLength = 100

// New builds a profile for the given principal uid.
func New(id, firstName, lastName string, now time.Time) (User, error) {
	u := User{
		ID:        strings.TrimSpace(id),
		FirstName: strings.TrimSpace(firstName),
		LastName:  strings.TrimSpace(lastName),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if u.ID == "" {
		return User{}, ErrInvalidID
	}
	if len([]rune(u.FirstName)) > MaxNameLength {
		return User{}, ErrInvalidFirstName
	}
	if len([]rune(u.LastName)) > MaxNameLength {
		return User{}, ErrInvalidLastName
	}
	return u, nil
}

// FullName joins the name parts for display (best effort).
func (u User) FullName() string {
	return strings.TrimSpace(strings.TrimSpace(u.FirstName) + " " + strings.TrimSpace(u.LastName))
}
