package cart

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"storefront/internal/domain/common"
)

// Status is the cart lifecycle state. pending -> completed is the only
// transition out of pending that leaves the pending state; completed is
// terminal.
type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
)

// Line is one product entry in a cart: a quantity and a price snapshot.
// The snapshot is taken when the line is first added and survives later
// changes to the product's live price.
type Line struct {
	Price int64 `json:"price"`
	Qty   int   `json:"qty"`
}

// Cart is one cart document. Invariants:
//   - at most one cart with status pending exists per owner (enforced by the
//     repository's owner index, re-checked defensively on lookup)
//   - every line has Qty > 0; removing means deleting the key
//   - Line.Price never tracks the live product price
type Cart struct {
	ID      string          `json:"id"`
	OwnerID string          `json:"ownerId"`
	Status  Status          `json:"status"`
	Lines   map[string]Line `json:"lines"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Errors
var (
	ErrInvalidCart = errors.New("cart: invalid")
	ErrNotPending  = errors.New("cart: not pending")
)

// New creates a pending cart with empty lines.
func New(id, ownerID string, now time.Time) (*Cart, error) {
	c := &Cart{
		ID:        strings.TrimSpace(id),
		OwnerID:   strings.TrimSpace(ownerID),
		Status:    StatusPending,
		Lines:     map[string]Line{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// AddLine increments the quantity for productID, inserting the line with
// priceSnapshot when absent. An existing line keeps its original snapshot;
// priceSnapshot is ignored in that case.
func (c *Cart) AddLine(productID string, priceSnapshot int64, qty int, now time.Time) error {
	if c == nil {
		return ErrInvalidCart
	}
	if c.Status != StatusPending {
		return ErrNotPending
	}
	pid := strings.TrimSpace(productID)
	if pid == "" || qty <= 0 {
		return fmt.Errorf("%w: productId and positive qty required", common.ErrInvalidArgument)
	}
	if priceSnapshot < 0 {
		return fmt.Errorf("%w: negative price snapshot", common.ErrInvalidArgument)
	}

	if c.Lines == nil {
		c.Lines = map[string]Line{}
	}
	if ln, ok := c.Lines[pid]; ok {
		ln.Qty += qty
		c.Lines[pid] = ln
	} else {
		c.Lines[pid] = Line{Price: priceSnapshot, Qty: qty}
	}

	c.touch(now)
	return c.Validate()
}

// SetLineQty sets the absolute quantity for an existing productID line.
// The price snapshot is left untouched. Missing line -> common.ErrNotFound.
func (c *Cart) SetLineQty(productID string, qty int, now time.Time) error {
	if c == nil {
		return ErrInvalidCart
	}
	if c.Status != StatusPending {
		return ErrNotPending
	}
	pid := strings.TrimSpace(productID)
	if pid == "" || qty <= 0 {
		return fmt.Errorf("%w: productId and positive qty required", common.ErrInvalidArgument)
	}

	ln, ok := c.Lines[pid]
	if !ok {
		return fmt.Errorf("%w: no line for product %s", common.ErrNotFound, pid)
	}
	ln.Qty = qty
	c.Lines[pid] = ln

	c.touch(now)
	return c.Validate()
}

// RemoveLine deletes the productID line entirely (key removed, never a
// zero-quantity line). Missing line -> common.ErrNotFound.
func (c *Cart) RemoveLine(productID string, now time.Time) error {
	if c == nil {
		return ErrInvalidCart
	}
	if c.Status != StatusPending {
		return ErrNotPending
	}
	pid := strings.TrimSpace(productID)
	if pid == "" {
		return fmt.Errorf("%w: productId required", common.ErrInvalidArgument)
	}

	if _, ok := c.Lines[pid]; !ok {
		return fmt.Errorf("%w: no line for product %s", common.ErrNotFound, pid)
	}
	delete(c.Lines, pid)

	c.touch(now)
	return c.Validate()
}

// Clear empties the line map. The cart stays pending.
func (c *Cart) Clear(now time.Time) error {
	if c == nil {
		return ErrInvalidCart
	}
	if c.Status != StatusPending {
		return ErrNotPending
	}
	c.Lines = map[string]Line{}
	c.touch(now)
	return c.Validate()
}

// Checkout transitions pending -> completed and freezes the lines.
// Terminal: no transition out of completed.
func (c *Cart) Checkout(now time.Time) error {
	if c == nil {
		return ErrInvalidCart
	}
	if c.Status != StatusPending {
		return ErrNotPending
	}
	c.Status = StatusCompleted
	c.touch(now)
	return c.Validate()
}

// Total returns the sum of price-snapshot * qty over all lines.
func (c *Cart) Total() int64 {
	if c == nil {
		return 0
	}
	var total int64
	for _, ln := range c.Lines {
		total += ln.Price * int64(ln.Qty)
	}
	return total
}

func (c *Cart) touch(now time.Time) { c.UpdatedAt = now }

// Validate enforces structural invariants of the document.
func (c *Cart) Validate() error {
	if c == nil {
		return ErrInvalidCart
	}
	if strings.TrimSpace(c.ID) == "" || strings.TrimSpace(c.OwnerID) == "" {
		return ErrInvalidCart
	}
	switch c.Status {
	case StatusPending, StatusCompleted:
	default:
		return ErrInvalidCart
	}
	if c.CreatedAt.IsZero() || c.UpdatedAt.IsZero() || c.UpdatedAt.Before(c.CreatedAt) {
		return ErrInvalidCart
	}
	for pid, ln := range c.Lines {
		if strings.TrimSpace(pid) == "" || ln.Qty <= 0 || ln.Price < 0 {
			return ErrInvalidCart
		}
	}
	return nil
}
