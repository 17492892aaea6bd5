package firestore

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	cartdom "storefront/internal/domain/cart"
	"storefront/internal/domain/common"
)

// CartRepositoryFS implements cart.Repository using Firestore.
//
// Collection design:
//   - carts: docId = cartId, fields ownerId/status/lines/createdAt/updatedAt
//   - cart_index: docId = ownerId, field pendingCartId
//
// The index doc is created and deleted in the same transaction as the cart
// write it reflects, which makes "at most one pending cart per owner" a
// structural property instead of a query-time assumption. The document
// UpdateTime doubles as the optimistic-concurrency revision.
type CartRepositoryFS struct {
	Client *firestore.Client
}

func NewCartRepositoryFS(client *firestore.Client) *CartRepositoryFS {
	return &CartRepositoryFS{Client: client}
}

func (r *CartRepositoryFS) col() *firestore.CollectionRef {
	return r.Client.Collection("carts")
}

func (r *CartRepositoryFS) indexCol() *firestore.CollectionRef {
	return r.Client.Collection("cart_index")
}

func (r *CartRepositoryFS) FindPending(ctx context.Context, ownerID string) (*cartdom.Cart, common.Revision, error) {
	if r == nil || r.Client == nil {
		return nil, common.Revision{}, errors.New("cart_repository_fs: firestore client is nil")
	}
	oid := strings.TrimSpace(ownerID)
	if oid == "" {
		return nil, common.Revision{}, fmt.Errorf("%w: ownerId is empty", common.ErrInvalidArgument)
	}

	// Fast path: keyed index lookup.
	idxSnap, err := r.indexCol().Doc(oid).Get(ctx)
	switch {
	case err == nil:
		id := strings.TrimSpace(asString(idxSnap.Data()["pendingCartId"]))
		if id != "" {
			c, rev, err := r.getByID(ctx, id)
			if err == nil && c != nil && c.Status == cartdom.StatusPending {
				return c, rev, nil
			}
			if err != nil && !errors.Is(err, common.ErrNotFound) {
				return nil, common.Revision{}, err
			}
			// dangling or stale index entry -> fall through to the scan
			log.Printf("[cart_repository_fs] stale cart_index entry owner=%s pendingCartId=%s", oid, id)
		}
	case status.Code(err) == codes.NotFound:
		// no index entry; scan defensively below
	default:
		return nil, common.Revision{}, err
	}

	// Defensive path: filter carts on owner+status. More than one result is
	// an invariant breach from a historical bug or race; pick the lowest ID
	// deterministically and log it, never merge.
	it := r.col().
		Where("ownerId", "==", oid).
		Where("status", "==", string(cartdom.StatusPending)).
		Documents(ctx)
	defer it.Stop()

	var (
		bestSnap *firestore.DocumentSnapshot
		count    int
	)
	for {
		snap, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, common.Revision{}, err
		}
		count++
		if bestSnap == nil || snap.Ref.ID < bestSnap.Ref.ID {
			bestSnap = snap
		}
	}
	if bestSnap == nil {
		return nil, common.Revision{}, nil
	}
	if count > 1 {
		log.Printf("[cart_repository_fs] %v: owner=%s has %d pending carts, picking lowest id=%s", common.ErrInvariantViolation, oid, count, bestSnap.Ref.ID)
	}

	doc, err := decodeCartDoc(bestSnap)
	if err != nil {
		return nil, common.Revision{}, err
	}
	c := doc.toDomain(bestSnap.Ref.ID)
	return c, common.NewRevision(bestSnap.UpdateTime), nil
}

func (r *CartRepositoryFS) Create(ctx context.Context, c *cartdom.Cart) error {
	if r == nil || r.Client == nil {
		return errors.New("cart_repository_fs: firestore client is nil")
	}
	if c == nil {
		return errors.New("cart_repository_fs: cart is nil")
	}
	if err := c.Validate(); err != nil {
		return err
	}

	cartRef := r.col().Doc(c.ID)
	idxRef := r.indexCol().Doc(c.OwnerID)

	err := r.Client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		if err := tx.Create(cartRef, encodeCartDoc(c)); err != nil {
			return err
		}
		// Registering the index in the same transaction is what serializes
		// two racing first-adds: the loser sees AlreadyExists here.
		return tx.Create(idxRef, cartIndexDoc{PendingCartID: c.ID, OwnerID: c.OwnerID, UpdatedAt: c.UpdatedAt})
	})
	if err != nil {
		if status.Code(err) == codes.AlreadyExists || status.Code(err) == codes.Aborted {
			return fmt.Errorf("%w: %v", common.ErrVersionConflict, err)
		}
		return err
	}
	return nil
}

func (r *CartRepositoryFS) Save(ctx context.Context, c *cartdom.Cart, expected common.Revision) error {
	if r == nil || r.Client == nil {
		return errors.New("cart_repository_fs: firestore client is nil")
	}
	if c == nil {
		return errors.New("cart_repository_fs: cart is nil")
	}
	if err := c.Validate(); err != nil {
		return err
	}
	if expected.IsZero() {
		return fmt.Errorf("%w: Save requires the revision from FindPending", common.ErrInvalidArgument)
	}

	cartRef := r.col().Doc(c.ID)
	idxRef := r.indexCol().Doc(c.OwnerID)

	err := r.Client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		// All reads first (Firestore transaction rule), then writes.
		snap, err := tx.Get(cartRef)
		if err != nil {
			if status.Code(err) == codes.NotFound {
				return fmt.Errorf("%w: cart %s", common.ErrNotFound, c.ID)
			}
			return err
		}
		if !snap.UpdateTime.Equal(expected.UpdateTime()) {
			return fmt.Errorf("%w: cart %s changed since read", common.ErrVersionConflict, c.ID)
		}

		idxSnap, err := tx.Get(idxRef)
		if err != nil && status.Code(err) != codes.NotFound {
			return err
		}
		hasIdx := err == nil

		if err := tx.Set(cartRef, encodeCartDoc(c)); err != nil {
			return err
		}

		if c.Status == cartdom.StatusPending {
			return tx.Set(idxRef, cartIndexDoc{PendingCartID: c.ID, OwnerID: c.OwnerID, UpdatedAt: c.UpdatedAt})
		}
		// Left the pending state: deregister, but only if the index still
		// points at this cart.
		if hasIdx && strings.TrimSpace(asString(idxSnap.Data()["pendingCartId"])) == c.ID {
			return tx.Delete(idxRef)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, common.ErrVersionConflict) || errors.Is(err, common.ErrNotFound) {
			return err
		}
		if status.Code(err) == codes.Aborted {
			return fmt.Errorf("%w: %v", common.ErrVersionConflict, err)
		}
		return err
	}
	return nil
}

func (r *CartRepositoryFS) getByID(ctx context.Context, id string) (*cartdom.Cart, common.Revision, error) {
	snap, err := r.col().Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, common.Revision{}, fmt.Errorf("%w: cart %s", common.ErrNotFound, id)
		}
		return nil, common.Revision{}, err
	}
	doc, err := decodeCartDoc(snap)
	if err != nil {
		return nil, common.Revision{}, err
	}
	return doc.toDomain(snap.Ref.ID), common.NewRevision(snap.UpdateTime), nil
}

// -----------------------------------------
// Firestore DTO
// -----------------------------------------

type cartDoc struct {
	OwnerID   string             `firestore:"ownerId"`
	Status    string             `firestore:"status"`
	Lines     map[string]lineDoc `firestore:"lines"`
	CreatedAt time.Time          `firestore:"createdAt"`
	UpdatedAt time.Time          `firestore:"updatedAt"`
}

type lineDoc struct {
	Price int64 `firestore:"price"`
	Qty   int   `firestore:"qty"`
}

type cartIndexDoc struct {
	PendingCartID string    `firestore:"pendingCartId"`
	OwnerID       string    `firestore:"ownerId"`
	UpdatedAt     time.Time `firestore:"updatedAt"`
}

func encodeCartDoc(c *cartdom.Cart) cartDoc {
	lines := map[string]lineDoc{}
	for pid, ln := range c.Lines {
		pid = strings.TrimSpace(pid)
		if pid == "" || ln.Qty <= 0 {
			continue
		}
		lines[pid] = lineDoc{Price: ln.Price, Qty: ln.Qty}
	}
	return cartDoc{
		OwnerID:   c.OwnerID,
		Status:    string(c.Status),
		Lines:     lines,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

// decodeCartDoc parses document data leniently: lines written by older
// schema revisions may miss fields, and a malformed entry must not turn a
// read into a 500.
func decodeCartDoc(snap *firestore.DocumentSnapshot) (cartDoc, error) {
	if snap == nil {
		return cartDoc{}, errors.New("cart_repository_fs: snapshot is nil")
	}

	raw := snap.Data()
	out := cartDoc{Lines: map[string]lineDoc{}}
	if raw == nil {
		return out, nil
	}

	out.OwnerID = strings.TrimSpace(asString(raw["ownerId"]))
	out.Status = strings.TrimSpace(asString(raw["status"]))
	if t, ok := asTime(raw["createdAt"]); ok {
		out.CreatedAt = t
	}
	if t, ok := asTime(raw["updatedAt"]); ok {
		out.UpdatedAt = t
	}

	m, ok := raw["lines"].(map[string]any)
	if !ok || m == nil {
		return out, nil
	}
	for k, v := range m {
		pid := strings.TrimSpace(k)
		if pid == "" {
			continue
		}
		mv, ok := v.(map[string]any)
		if !ok {
			continue
		}
		qty := asInt(mv["qty"])
		if qty <= 0 {
			continue
		}
		out.Lines[pid] = lineDoc{Price: asInt64(mv["price"]), Qty: qty}
	}
	return out, nil
}

func (d cartDoc) toDomain(docID string) *cartdom.Cart {
	lines := map[string]cartdom.Line{}
	for pid, ln := range d.Lines {
		lines[pid] = cartdom.Line{Price: ln.Price, Qty: ln.Qty}
	}
	st := cartdom.Status(d.Status)
	if st != cartdom.StatusPending && st != cartdom.StatusCompleted {
		st = cartdom.StatusPending
	}
	return &cartdom.Cart{
		ID:        docID,
		OwnerID:   d.OwnerID,
		Status:    st,
		Lines:     lines,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}
