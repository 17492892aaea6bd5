package common

import "time"

// Revision is the opaque optimistic-concurrency token attached to every
// versioned read. A conditional write succeeds only if the stored record's
// revision still equals the one handed out by the read.
//
// Firestore adapters carry the document UpdateTime here; the in-memory
// adapter fabricates monotonically increasing instants.
type Revision struct {
	updateTime time.Time
}

// NewRevision wraps a store-reported update time.
func NewRevision(t time.Time) Revision {
	return Revision{updateTime: t}
}

// UpdateTime exposes the underlying instant for adapters that need it
// (e.g. Firestore preconditions).
func (r Revision) UpdateTime() time.Time { return r.updateTime }

// IsZero reports whether the revision was never issued by a read.
func (r Revision) IsZero() bool { return r.updateTime.IsZero() }

// Equal reports whether two revisions refer to the same record state.
func (r Revision) Equal(other Revision) bool {
	return r.updateTime.Equal(other.updateTime)
}
