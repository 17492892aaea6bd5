package common

import "errors"

// Shared error taxonomy. Every failure an operation can surface is one of these
// (possibly wrapped); handlers and callers classify with errors.Is.
var (
	// ErrInvalidArgument signals a malformed quantity/ID at the domain level.
	ErrInvalidArgument = errors.New("common: invalid argument")

	// ErrNotFound signals a missing product, pending cart, line or user.
	ErrNotFound = errors.New("common: not found")

	// ErrUnavailable signals an inactive product or insufficient stock.
	ErrUnavailable = errors.New("common: unavailable")

	// ErrPermissionDenied signals a mutation attempted by a non-owner.
	ErrPermissionDenied = errors.New("common: permission denied")

	// ErrVersionConflict signals a conditional write that lost against a
	// concurrent writer. Retryable; the transaction runner re-reads and
	// re-applies. Never surfaced to callers directly.
	ErrVersionConflict = errors.New("common: version conflict")

	// ErrConflict signals retry exhaustion in the transaction runner.
	// Transient; safe for the caller to retry at a higher layer.
	ErrConflict = errors.New("common: conflict")

	// ErrInvariantViolation signals a stored-state invariant breach
	// (e.g. more than one pending cart for an owner). Logged, never
	// silently repaired.
	ErrInvariantViolation = errors.New("common: invariant violation")
)

// IsDomainError reports whether err is a terminal business-rule failure.
// Terminal failures abort a transaction attempt immediately and are never
// retried; everything else is treated as infrastructure.
func IsDomainError(err error) bool {
	return errors.Is(err, ErrInvalidArgument) ||
		errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrUnavailable) ||
		errors.Is(err, ErrPermissionDenied)
}
