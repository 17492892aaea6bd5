package memory

import (
	"context"
	"fmt"
	"sort"

	"storefront/internal/domain/common"
	productdom "storefront/internal/domain/product"
)

type productRecord struct {
	product productdom.Product
	rev     common.Revision
}

// ProductRepository implements product.Repository over the in-memory store.
type ProductRepository struct {
	s *Store
}

// Products returns the product repository view of the store.
func (s *Store) Products() *ProductRepository { return &ProductRepository{s: s} }

func (r *ProductRepository) GetByID(ctx context.Context, id string) (productdom.Product, common.Revision, error) {
	pid, err := trimmed(id)
	if err != nil {
		return productdom.Product{}, common.Revision{}, err
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	rec, ok := r.s.products[pid]
	if !ok {
		return productdom.Product{}, common.Revision{}, fmt.Errorf("%w: product %s", common.ErrNotFound, pid)
	}
	return cloneProduct(rec.product), rec.rev, nil
}

func (r *ProductRepository) Create(ctx context.Context, p productdom.Product) error {
	if err := p.Validate(); err != nil {
		return fmt.Errorf("%w: %v", common.ErrInvalidArgument, err)
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, exists := r.s.products[p.ID]; exists {
		return fmt.Errorf("%w: product %s already exists", common.ErrVersionConflict, p.ID)
	}
	r.s.products[p.ID] = productRecord{product: cloneProduct(p), rev: r.s.nextRevision()}
	return nil
}

func (r *ProductRepository) Save(ctx context.Context, p productdom.Product, expected common.Revision) error {
	if err := p.Validate(); err != nil {
		return fmt.Errorf("%w: %v", common.ErrInvalidArgument, err)
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	rec, ok := r.s.products[p.ID]
	if !ok {
		return fmt.Errorf("%w: product %s", common.ErrNotFound, p.ID)
	}
	if !rec.rev.Equal(expected) {
		return fmt.Errorf("%w: product %s changed since read", common.ErrVersionConflict, p.ID)
	}
	r.s.products[p.ID] = productRecord{product: cloneProduct(p), rev: r.s.nextRevision()}
	return nil
}

func (r *ProductRepository) ListByOwner(ctx context.Context, ownerID string) ([]productdom.Product, error) {
	oid, err := trimmed(ownerID)
	if err != nil {
		return nil, err
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var out []productdom.Product
	for _, id := range sortedKeys(r.s.products) {
		rec := r.s.products[id]
		if rec.product.OwnerID == oid {
			out = append(out, cloneProduct(rec.product))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func cloneProduct(p productdom.Product) productdom.Product {
	if p.Tags != nil {
		tags := make([]string, len(p.Tags))
		copy(tags, p.Tags)
		p.Tags = tags
	}
	return p
}
