package memory

import (
	"context"
	"fmt"
	"log"
	"strings"

	cartdom "storefront/internal/domain/cart"
	"storefront/internal/domain/common"
)

type cartRecord struct {
	cart cartdom.Cart
	rev  common.Revision
}

// CartRepository implements cart.Repository over the in-memory store.
type CartRepository struct {
	s *Store
}

// Carts returns the cart repository view of the store.
func (s *Store) Carts() *CartRepository { return &CartRepository{s: s} }

func (r *CartRepository) FindPending(ctx context.Context, ownerID string) (*cartdom.Cart, common.Revision, error) {
	oid, err := trimmed(ownerID)
	if err != nil {
		return nil, common.Revision{}, err
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if id, ok := r.s.pendingIndex[oid]; ok {
		if rec, ok := r.s.carts[id]; ok && rec.cart.Status == cartdom.StatusPending {
			c := cloneCart(rec.cart)
			return &c, rec.rev, nil
		}
		// stale index entry; fall through to the defensive scan
		delete(r.s.pendingIndex, oid)
	}

	// Defensive scan: the index is the source of truth, but a historical bug
	// could leave pending carts it does not know about. Deterministically
	// pick the lowest ID and report the violation; never merge.
	var pendingIDs []string
	for id, rec := range r.s.carts {
		if rec.cart.OwnerID == oid && rec.cart.Status == cartdom.StatusPending {
			pendingIDs = append(pendingIDs, id)
		}
	}
	if len(pendingIDs) == 0 {
		return nil, common.Revision{}, nil
	}
	if len(pendingIDs) > 1 {
		log.Printf("[memory.cart] %v: owner=%s has %d pending carts, picking lowest id", common.ErrInvariantViolation, oid, len(pendingIDs))
	}
	lowest := pendingIDs[0]
	for _, id := range pendingIDs[1:] {
		if strings.Compare(id, lowest) < 0 {
			lowest = id
		}
	}
	r.s.pendingIndex[oid] = lowest

	rec := r.s.carts[lowest]
	c := cloneCart(rec.cart)
	return &c, rec.rev, nil
}

func (r *CartRepository) Create(ctx context.Context, c *cartdom.Cart) error {
	if c == nil {
		return fmt.Errorf("%w: nil cart", common.ErrInvalidArgument)
	}
	if err := c.Validate(); err != nil {
		return err
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, exists := r.s.pendingIndex[c.OwnerID]; exists {
		// A concurrent request registered a pending cart first; the caller's
		// transaction runner re-reads and lands on the winner.
		return fmt.Errorf("%w: owner %s already has a pending cart", common.ErrVersionConflict, c.OwnerID)
	}
	if _, exists := r.s.carts[c.ID]; exists {
		return fmt.Errorf("%w: cart %s already exists", common.ErrVersionConflict, c.ID)
	}

	r.s.carts[c.ID] = cartRecord{cart: cloneCart(*c), rev: r.s.nextRevision()}
	r.s.pendingIndex[c.OwnerID] = c.ID
	return nil
}

func (r *CartRepository) Save(ctx context.Context, c *cartdom.Cart, expected common.Revision) error {
	if c == nil {
		return fmt.Errorf("%w: nil cart", common.ErrInvalidArgument)
	}
	if err := c.Validate(); err != nil {
		return err
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	rec, ok := r.s.carts[c.ID]
	if !ok {
		return fmt.Errorf("%w: cart %s", common.ErrNotFound, c.ID)
	}
	if !rec.rev.Equal(expected) {
		return fmt.Errorf("%w: cart %s changed since read", common.ErrVersionConflict, c.ID)
	}

	r.s.carts[c.ID] = cartRecord{cart: cloneCart(*c), rev: r.s.nextRevision()}

	// Keep the owner pending index in step with the status.
	if c.Status == cartdom.StatusPending {
		r.s.pendingIndex[c.OwnerID] = c.ID
	} else if cur, ok := r.s.pendingIndex[c.OwnerID]; ok && cur == c.ID {
		delete(r.s.pendingIndex, c.OwnerID)
	}
	return nil
}

// GetByID is a test helper for observing carts past checkout.
func (r *CartRepository) GetByID(ctx context.Context, id string) (*cartdom.Cart, common.Revision, error) {
	cid, err := trimmed(id)
	if err != nil {
		return nil, common.Revision{}, err
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	rec, ok := r.s.carts[cid]
	if !ok {
		return nil, common.Revision{}, fmt.Errorf("%w: cart %s", common.ErrNotFound, cid)
	}
	c := cloneCart(rec.cart)
	return &c, rec.rev, nil
}

func cloneCart(c cartdom.Cart) cartdom.Cart {
	lines := make(map[string]cartdom.Line, len(c.Lines))
	for k, v := range c.Lines {
		lines[k] = v
	}
	c.Lines = lines
	return c
}
