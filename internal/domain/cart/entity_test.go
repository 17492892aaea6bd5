package cart

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/domain/common"
)

var t0 = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestCart(t *testing.T) *Cart {
	t.Helper()
	c, err := New("cart-1", "owner-1", t0)
	require.NoError(t, err)
	return c
}

func TestNew(t *testing.T) {
	c := newTestCart(t)
	assert.Equal(t, StatusPending, c.Status)
	assert.Empty(t, c.Lines)
	assert.Equal(t, int64(0), c.Total())

	_, err := New("", "owner-1", t0)
	assert.Error(t, err)
	_, err = New("cart-1", "  ", t0)
	assert.Error(t, err)
}

func TestAddLineIncrementsKeepingSnapshot(t *testing.T) {
	c := newTestCart(t)

	require.NoError(t, c.AddLine("p1", 1000, 2, t0))
	require.Equal(t, Line{Price: 1000, Qty: 2}, c.Lines["p1"])

	// Second add with a different live price: qty accumulates, the original
	// snapshot stays.
	require.NoError(t, c.AddLine("p1", 1500, 1, t0.Add(time.Minute)))
	require.Equal(t, Line{Price: 1000, Qty: 3}, c.Lines["p1"])

	assert.Equal(t, int64(3000), c.Total())
}

func TestAddLineRejectsBadInput(t *testing.T) {
	c := newTestCart(t)

	assert.ErrorIs(t, c.AddLine("", 100, 1, t0), common.ErrInvalidArgument)
	assert.ErrorIs(t, c.AddLine("p1", 100, 0, t0), common.ErrInvalidArgument)
	assert.ErrorIs(t, c.AddLine("p1", 100, -3, t0), common.ErrInvalidArgument)
	assert.ErrorIs(t, c.AddLine("p1", -1, 1, t0), common.ErrInvalidArgument)
	assert.Empty(t, c.Lines)
}

func TestSetLineQty(t *testing.T) {
	c := newTestCart(t)
	require.NoError(t, c.AddLine("p1", 500, 2, t0))

	require.NoError(t, c.SetLineQty("p1", 7, t0.Add(time.Minute)))
	assert.Equal(t, Line{Price: 500, Qty: 7}, c.Lines["p1"])

	assert.ErrorIs(t, c.SetLineQty("p1", 0, t0), common.ErrInvalidArgument)
	assert.ErrorIs(t, c.SetLineQty("missing", 1, t0), common.ErrNotFound)
}

func TestRemoveLineDeletesKey(t *testing.T) {
	c := newTestCart(t)
	require.NoError(t, c.AddLine("p1", 500, 2, t0))

	require.NoError(t, c.RemoveLine("p1", t0.Add(time.Minute)))
	_, exists := c.Lines["p1"]
	assert.False(t, exists, "removed line must not linger as a zero-qty entry")

	assert.ErrorIs(t, c.RemoveLine("p1", t0), common.ErrNotFound)
}

func TestClear(t *testing.T) {
	c := newTestCart(t)
	require.NoError(t, c.AddLine("p1", 500, 2, t0))
	require.NoError(t, c.AddLine("p2", 300, 1, t0))

	require.NoError(t, c.Clear(t0.Add(time.Minute)))
	assert.Empty(t, c.Lines)
	assert.Equal(t, StatusPending, c.Status, "clear keeps the cart pending")
}

func TestCheckoutIsTerminal(t *testing.T) {
	c := newTestCart(t)
	require.NoError(t, c.AddLine("p1", 500, 2, t0))

	require.NoError(t, c.Checkout(t0.Add(time.Minute)))
	assert.Equal(t, StatusCompleted, c.Status)
	assert.Equal(t, Line{Price: 500, Qty: 2}, c.Lines["p1"], "lines are frozen by checkout")

	// Every mutation is rejected on a completed cart.
	assert.True(t, errors.Is(c.Checkout(t0), ErrNotPending))
	assert.True(t, errors.Is(c.AddLine("p2", 100, 1, t0), ErrNotPending))
	assert.True(t, errors.Is(c.SetLineQty("p1", 1, t0), ErrNotPending))
	assert.True(t, errors.Is(c.RemoveLine("p1", t0), ErrNotPending))
	assert.True(t, errors.Is(c.Clear(t0), ErrNotPending))
}

func TestValidate(t *testing.T) {
	c := newTestCart(t)
	require.NoError(t, c.Validate())

	c.Lines = map[string]Line{"p1": {Price: 100, Qty: 0}}
	assert.ErrorIs(t, c.Validate(), ErrInvalidCart)

	c.Lines = map[string]Line{"p1": {Price: -1, Qty: 1}}
	assert.ErrorIs(t, c.Validate(), ErrInvalidCart)

	c.Lines = nil
	c.Status = Status("draft")
	assert.ErrorIs(t, c.Validate(), ErrInvalidCart)
}
