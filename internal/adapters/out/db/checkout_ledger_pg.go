package db

import (
	"context"
	"database/sql"
	"errors"
	"sort"
	"time"

	"github.com/lib/pq"

	cartdom "storefront/internal/domain/cart"
)

// CheckoutLedgerPG records completed checkouts append-only in PostgreSQL.
// Optional infrastructure: wired only when a DSN is configured. Reporting
// and downstream fulfillment read this table; the cart engine never does.
type CheckoutLedgerPG struct {
	db *sql.DB
}

func NewCheckoutLedgerPG(db *sql.DB) *CheckoutLedgerPG {
	return &CheckoutLedgerPG{db: db}
}

// EnsureSchema creates the ledger table when missing.
func (r *CheckoutLedgerPG) EnsureSchema(ctx context.Context) error {
	if r == nil || r.db == nil {
		return errors.New("checkout_ledger_pg: db is nil")
	}
	const q = `
CREATE TABLE IF NOT EXISTS checkouts (
  id            BIGSERIAL PRIMARY KEY,
  cart_id       TEXT        NOT NULL,
  owner_id      TEXT        NOT NULL,
  total         BIGINT      NOT NULL,
  item_count    INTEGER     NOT NULL,
  product_ids   TEXT[]      NOT NULL,
  completed_at  TIMESTAMPTZ NOT NULL
)
`
	_, err := r.db.ExecContext(ctx, q)
	return err
}

func (r *CheckoutLedgerPG) Append(ctx context.Context, ownerID string, c *cartdom.Cart, at time.Time) error {
	if r == nil || r.db == nil {
		return errors.New("checkout_ledger_pg: db is nil")
	}
	if c == nil {
		return errors.New("checkout_ledger_pg: cart is nil")
	}

	productIDs := make([]string, 0, len(c.Lines))
	itemCount := 0
	for pid, ln := range c.Lines {
		productIDs = append(productIDs, pid)
		itemCount += ln.Qty
	}
	sort.Strings(productIDs)

	const q = `
INSERT INTO checkouts (cart_id, owner_id, total, item_count, product_ids, completed_at)
VALUES ($1, $2, $3, $4, $5, $6)
`
	_, err := r.db.ExecContext(ctx, q,
		c.ID,
		ownerID,
		c.Total(),
		itemCount,
		pq.Array(productIDs),
		at.UTC(),
	)
	return err
}
