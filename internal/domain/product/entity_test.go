package product

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/domain/common"
)

var t0 = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestProduct(t *testing.T, stock int) Product {
	t.Helper()
	p, err := New("p1", "owner-1", "Wool Scarf", "hand woven", "Acme", 4200, stock, []string{"winter", " wool "}, t0)
	require.NoError(t, err)
	return p
}

func TestNew(t *testing.T) {
	p := newTestProduct(t, 5)
	assert.True(t, p.Active, "new listings are sellable")
	assert.Equal(t, []string{"winter", "wool"}, p.Tags)

	_, err := New("p1", "owner-1", "Scarf", "", "", 0, 5, nil, t0)
	assert.ErrorIs(t, err, ErrInvalidPrice, "creation requires price > 0")

	_, err = New("p1", "owner-1", "Scarf", "", "", 100, 0, nil, t0)
	assert.ErrorIs(t, err, ErrInvalidStock, "creation requires stock > 0")

	_, err = New("p1", "owner-1", "   ", "", "", 100, 5, nil, t0)
	assert.ErrorIs(t, err, ErrInvalidTitle)
}

func TestSetStockAllowsZeroAfterCreation(t *testing.T) {
	p := newTestProduct(t, 5)
	require.NoError(t, p.SetStock(0, t0.Add(time.Minute)))
	assert.Equal(t, 0, p.Stock)
	assert.ErrorIs(t, p.SetStock(-1, t0), ErrInvalidStock)
}

func TestOwnedBy(t *testing.T) {
	p := newTestProduct(t, 5)
	assert.True(t, p.OwnedBy("owner-1"))
	assert.False(t, p.OwnedBy("owner-2"))
	assert.False(t, p.OwnedBy(""), "blank caller never matches")
}

func TestCheckActive(t *testing.T) {
	p := newTestProduct(t, 5)
	require.NoError(t, CheckActive(p))

	p.SetActive(false, t0)
	assert.ErrorIs(t, CheckActive(p), common.ErrUnavailable)
}

func TestCheckStockBoundaries(t *testing.T) {
	p := newTestProduct(t, 3)

	require.NoError(t, CheckStock(p, 1))
	require.NoError(t, CheckStock(p, 3), "requesting exactly the remaining stock succeeds")
	assert.ErrorIs(t, CheckStock(p, 4), common.ErrUnavailable)

	require.NoError(t, p.SetStock(0, t0))
	assert.ErrorIs(t, CheckStock(p, 1), common.ErrUnavailable, "zero stock is out of stock")
}

func TestSettersValidate(t *testing.T) {
	p := newTestProduct(t, 5)

	assert.ErrorIs(t, p.SetTitle("", t0), ErrInvalidTitle)
	assert.ErrorIs(t, p.SetPrice(-1, t0), ErrInvalidPrice)
	assert.ErrorIs(t, p.SetPrice(MaxPrice+1, t0), ErrInvalidPrice)

	require.NoError(t, p.SetPrice(0, t0), "updates may drop the live price to zero")
	assert.Equal(t, int64(0), p.Price)

	p.SetTags([]string{" ", "a", ""}, t0)
	assert.Equal(t, []string{"a"}, p.Tags)
}
