package usecase

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"storefront/internal/application/txn"
	cartdom "storefront/internal/domain/cart"
	"storefront/internal/domain/common"
	productdom "storefront/internal/domain/product"
)

// Clock provides current time (for testability).
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now().UTC() }

// ReceiptNotifier delivers a best-effort checkout confirmation. Failures are
// logged by the usecase and never affect the committed checkout.
type ReceiptNotifier interface {
	CheckoutCompleted(ctx context.Context, ownerID string, c *cartdom.Cart) error
}

// CheckoutLedger records completed checkouts append-only (reporting /
// downstream fulfillment). Best-effort, same policy as ReceiptNotifier.
type CheckoutLedger interface {
	Append(ctx context.Context, ownerID string, c *cartdom.Cart, at time.Time) error
}

// CartUsecase orchestrates every public cart operation. All mutations run
// as a single optimistic transaction over the owner's pending cart; product
// snapshots and availability predicates are re-read on every attempt.
type CartUsecase struct {
	carts    cartdom.Repository
	products productdom.Repository
	runner   *txn.Runner
	clock    Clock

	// optional post-checkout effects
	notifier ReceiptNotifier
	ledger   CheckoutLedger
}

func NewCartUsecase(carts cartdom.Repository, products productdom.Repository, runner *txn.Runner) *CartUsecase {
	if runner == nil {
		runner = txn.New()
	}
	return &CartUsecase{
		carts:    carts,
		products: products,
		runner:   runner,
		clock:    systemClock{},
	}
}

// NewCartUsecaseWithClock is useful for tests.
func NewCartUsecaseWithClock(carts cartdom.Repository, products productdom.Repository, runner *txn.Runner, clock Clock) *CartUsecase {
	uc := NewCartUsecase(carts, products, runner)
	if clock != nil {
		uc.clock = clock
	}
	return uc
}

// WithNotifier attaches the checkout receipt notifier.
func (uc *CartUsecase) WithNotifier(n ReceiptNotifier) *CartUsecase {
	uc.notifier = n
	return uc
}

// WithLedger attaches the checkout ledger.
func (uc *CartUsecase) WithLedger(l CheckoutLedger) *CartUsecase {
	uc.ledger = l
	return uc
}

// Get returns the owner's pending cart.
func (uc *CartUsecase) Get(ctx context.Context, ownerID string) (*cartdom.Cart, error) {
	oid := strings.TrimSpace(ownerID)
	if oid == "" {
		return nil, fmt.Errorf("%w: ownerId required", common.ErrInvalidArgument)
	}

	c, _, err := uc.carts.FindPending(ctx, oid)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, fmt.Errorf("%w: no pending cart for owner", common.ErrNotFound)
	}
	return c, nil
}

// AddLine adds qty of productID to the owner's pending cart, creating the
// cart on first add. The product must exist, be active, and have stock for
// qty (stock is checked, not reserved). An existing line is incremented and
// keeps its original price snapshot; a new line snapshots the current price.
func (uc *CartUsecase) AddLine(ctx context.Context, ownerID, productID string, qty int) (*cartdom.Cart, error) {
	oid := strings.TrimSpace(ownerID)
	pid := strings.TrimSpace(productID)
	if oid == "" || pid == "" {
		return nil, fmt.Errorf("%w: ownerId and productId required", common.ErrInvalidArgument)
	}
	if qty <= 0 {
		return nil, fmt.Errorf("%w: qty must be a positive integer", common.ErrInvalidArgument)
	}

	var result *cartdom.Cart
	err := uc.runner.Run(ctx, func(ctx context.Context) error {
		p, _, err := uc.products.GetByID(ctx, pid)
		if err != nil {
			return err
		}
		if err := productdom.CheckActive(p); err != nil {
			return err
		}
		if err := productdom.CheckStock(p, qty); err != nil {
			return err
		}

		c, rev, err := uc.carts.FindPending(ctx, oid)
		if err != nil {
			return err
		}

		now := uc.clock.Now()
		if c == nil {
			// First add: create the pending cart with this single line.
			// A racing request that registers a pending cart first makes
			// Create fail with a version conflict; the retry then lands
			// on the winner's cart.
			nc, err := cartdom.New(uuid.NewString(), oid, now)
			if err != nil {
				return err
			}
			if err := nc.AddLine(pid, p.Price, qty, now); err != nil {
				return err
			}
			if err := uc.carts.Create(ctx, nc); err != nil {
				return err
			}
			result = nc
			return nil
		}

		if err := c.AddLine(pid, p.Price, qty, now); err != nil {
			return err
		}
		if err := uc.carts.Save(ctx, c, rev); err != nil {
			return err
		}
		result = c
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// SetLineQty sets the absolute quantity of an existing line. A pending cart
// must already exist (NotFound otherwise); the product is then re-resolved
// and active/stock re-checked against the new absolute quantity. The price
// snapshot is left untouched.
func (uc *CartUsecase) SetLineQty(ctx context.Context, ownerID, productID string, qty int) (*cartdom.Cart, error) {
	oid := strings.TrimSpace(ownerID)
	pid := strings.TrimSpace(productID)
	if oid == "" || pid == "" {
		return nil, fmt.Errorf("%w: ownerId and productId required", common.ErrInvalidArgument)
	}
	if qty <= 0 {
		return nil, fmt.Errorf("%w: qty must be a positive integer", common.ErrInvalidArgument)
	}

	var result *cartdom.Cart
	err := uc.runner.Run(ctx, func(ctx context.Context) error {
		c, rev, err := uc.carts.FindPending(ctx, oid)
		if err != nil {
			return err
		}
		if c == nil {
			return fmt.Errorf("%w: no pending cart for owner", common.ErrNotFound)
		}

		p, _, err := uc.products.GetByID(ctx, pid)
		if err != nil {
			return err
		}
		if err := productdom.CheckActive(p); err != nil {
			return err
		}
		if err := productdom.CheckStock(p, qty); err != nil {
			return err
		}

		if err := c.SetLineQty(pid, qty, uc.clock.Now()); err != nil {
			return err
		}
		if err := uc.carts.Save(ctx, c, rev); err != nil {
			return err
		}
		result = c
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// RemoveLine deletes the productID line from the owner's pending cart.
func (uc *CartUsecase) RemoveLine(ctx context.Context, ownerID, productID string) (*cartdom.Cart, error) {
	oid := strings.TrimSpace(ownerID)
	pid := strings.TrimSpace(productID)
	if oid == "" || pid == "" {
		return nil, fmt.Errorf("%w: ownerId and productId required", common.ErrInvalidArgument)
	}

	var result *cartdom.Cart
	err := uc.runner.Run(ctx, func(ctx context.Context) error {
		c, rev, err := uc.carts.FindPending(ctx, oid)
		if err != nil {
			return err
		}
		if c == nil {
			return fmt.Errorf("%w: no pending cart for owner", common.ErrNotFound)
		}

		if err := c.RemoveLine(pid, uc.clock.Now()); err != nil {
			return err
		}
		if err := uc.carts.Save(ctx, c, rev); err != nil {
			return err
		}
		result = c
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Clear empties the pending cart's lines; status stays pending.
func (uc *CartUsecase) Clear(ctx context.Context, ownerID string) (*cartdom.Cart, error) {
	oid := strings.TrimSpace(ownerID)
	if oid == "" {
		return nil, fmt.Errorf("%w: ownerId required", common.ErrInvalidArgument)
	}

	var result *cartdom.Cart
	err := uc.runner.Run(ctx, func(ctx context.Context) error {
		c, rev, err := uc.carts.FindPending(ctx, oid)
		if err != nil {
			return err
		}
		if c == nil {
			return fmt.Errorf("%w: no pending cart for owner", common.ErrNotFound)
		}

		if err := c.Clear(uc.clock.Now()); err != nil {
			return err
		}
		if err := uc.carts.Save(ctx, c, rev); err != nil {
			return err
		}
		result = c
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Checkout flips the pending cart to completed. No stock decrement and no
// payment step here; a second immediate Checkout fails with not-found
// because no pending cart remains — the only observable idempotency
// guarantee. Post-commit receipt/ledger effects are best-effort.
func (uc *CartUsecase) Checkout(ctx context.Context, ownerID string) (*cartdom.Cart, error) {
	oid := strings.TrimSpace(ownerID)
	if oid == "" {
		return nil, fmt.Errorf("%w: ownerId required", common.ErrInvalidArgument)
	}

	var result *cartdom.Cart
	err := uc.runner.Run(ctx, func(ctx context.Context) error {
		c, rev, err := uc.carts.FindPending(ctx, oid)
		if err != nil {
			return err
		}
		if c == nil {
			return fmt.Errorf("%w: no pending cart for owner", common.ErrNotFound)
		}

		if err := c.Checkout(uc.clock.Now()); err != nil {
			return err
		}
		if err := uc.carts.Save(ctx, c, rev); err != nil {
			return err
		}
		result = c
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.afterCheckout(ctx, oid, result)
	return result, nil
}

func (uc *CartUsecase) afterCheckout(ctx context.Context, ownerID string, c *cartdom.Cart) {
	if uc.ledger != nil {
		if err := uc.ledger.Append(ctx, ownerID, c, uc.clock.Now()); err != nil {
			log.Printf("[cart_usecase] WARN: checkout ledger append failed owner=%s cart=%s: %v", ownerID, c.ID, err)
		}
	}
	if uc.notifier != nil {
		if err := uc.notifier.CheckoutCompleted(ctx, ownerID, c); err != nil {
			log.Printf("[cart_usecase] WARN: checkout receipt failed owner=%s cart=%s: %v", ownerID, c.ID, err)
		}
	}
}
