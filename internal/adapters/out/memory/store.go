// In-memory implementations of the storage ports. Used by tests and by
// local boot when no GCP project is configured. The conditional-write
// contract is identical to the Firestore adapters: every write bumps the
// record revision and Save fails with a version conflict when the expected
// revision is stale.
package memory

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"storefront/internal/domain/common"
)

// Store is the shared backing state. Repositories hang off it via Carts(),
// Products() and Users().
type Store struct {
	mu sync.Mutex

	carts        map[string]cartRecord
	pendingIndex map[string]string // ownerID -> pending cart ID

	products map[string]productRecord
	users    map[string]userRecord

	revSeq int64
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		carts:        map[string]cartRecord{},
		pendingIndex: map[string]string{},
		products:     map[string]productRecord{},
		users:        map[string]userRecord{},
	}
}

// nextRevision fabricates a strictly increasing revision. Callers must hold mu.
func (s *Store) nextRevision() common.Revision {
	s.revSeq++
	return common.NewRevision(time.Unix(0, s.revSeq))
}

func trimmed(id string) (string, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return "", fmt.Errorf("%w: empty id", common.ErrInvalidArgument)
	}
	return id, nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
