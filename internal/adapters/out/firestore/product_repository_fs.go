package firestore

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"storefront/internal/domain/common"
	productdom "storefront/internal/domain/product"
)

// ProductRepositoryFS implements product.Repository using Firestore.
// Collection: products, docId = productId. The document UpdateTime is the
// optimistic-concurrency revision.
type ProductRepositoryFS struct {
	Client *firestore.Client
}

func NewProductRepositoryFS(client *firestore.Client) *ProductRepositoryFS {
	return &ProductRepositoryFS{Client: client}
}

func (r *ProductRepositoryFS) col() *firestore.CollectionRef {
	return r.Client.Collection("products")
}

func (r *ProductRepositoryFS) GetByID(ctx context.Context, id string) (productdom.Product, common.Revision, error) {
	if r == nil || r.Client == nil {
		return productdom.Product{}, common.Revision{}, errors.New("product_repository_fs: firestore client is nil")
	}
	pid := strings.TrimSpace(id)
	if pid == "" {
		return productdom.Product{}, common.Revision{}, fmt.Errorf("%w: product id is empty", common.ErrInvalidArgument)
	}

	snap, err := r.col().Doc(pid).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return productdom.Product{}, common.Revision{}, fmt.Errorf("%w: product %s", common.ErrNotFound, pid)
		}
		return productdom.Product{}, common.Revision{}, err
	}

	p := decodeProductDoc(snap)
	return p, common.NewRevision(snap.UpdateTime), nil
}

func (r *ProductRepositoryFS) Create(ctx context.Context, p productdom.Product) error {
	if r == nil || r.Client == nil {
		return errors.New("product_repository_fs: firestore client is nil")
	}
	if err := p.Validate(); err != nil {
		return fmt.Errorf("%w: %v", common.ErrInvalidArgument, err)
	}

	_, err := r.col().Doc(p.ID).Create(ctx, encodeProductDoc(p))
	if err != nil {
		if status.Code(err) == codes.AlreadyExists {
			return fmt.Errorf("%w: product %s already exists", common.ErrVersionConflict, p.ID)
		}
		return err
	}
	return nil
}

func (r *ProductRepositoryFS) Save(ctx context.Context, p productdom.Product, expected common.Revision) error {
	if r == nil || r.Client == nil {
		return errors.New("product_repository_fs: firestore client is nil")
	}
	if err := p.Validate(); err != nil {
		return fmt.Errorf("%w: %v", common.ErrInvalidArgument, err)
	}
	if expected.IsZero() {
		return fmt.Errorf("%w: Save requires the revision from GetByID", common.ErrInvalidArgument)
	}

	ref := r.col().Doc(p.ID)
	err := r.Client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(ref)
		if err != nil {
			if status.Code(err) == codes.NotFound {
				return fmt.Errorf("%w: product %s", common.ErrNotFound, p.ID)
			}
			return err
		}
		if !snap.UpdateTime.Equal(expected.UpdateTime()) {
			return fmt.Errorf("%w: product %s changed since read", common.ErrVersionConflict, p.ID)
		}
		return tx.Set(ref, encodeProductDoc(p))
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

func (r *ProductRepositoryFS) ListByOwner(ctx context.Context, ownerID string) ([]productdom.Product, error) {
	if r == nil || r.Client == nil {
		return nil, errors.New("product_repository_fs: firestore client is nil")
	}
	oid := strings.TrimSpace(ownerID)
	if oid == "" {
		return nil, fmt.Errorf("%w: ownerId is empty", common.ErrInvalidArgument)
	}

	it := r.col().Where("ownerId", "==", oid).Documents(ctx)
	defer it.Stop()

	var out []productdom.Product
	for {
		snap, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, err
		}
		out = append(out, decodeProductDoc(snap))
	}

	// Sort in memory instead of OrderBy so the query needs no composite index.
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// -----------------------------------------
// Firestore DTO
// -----------------------------------------

type productDoc struct {
	Title       string    `firestore:"title"`
	Description string    `firestore:"description"`
	Price       int64     `firestore:"price"`
	Stock       int       `firestore:"stock"`
	Active      bool      `firestore:"active"`
	OwnerID     string    `firestore:"ownerId"`
	Brand       string    `firestore:"brand"`
	Tags        []string  `firestore:"tags"`
	ImageID     string    `firestore:"imageId"`
	CreatedAt   time.Time `firestore:"createdAt"`
	UpdatedAt   time.Time `firestore:"updatedAt"`
}

func encodeProductDoc(p productdom.Product) productDoc {
	return productDoc{
		Title:       p.Title,
		Description: p.Description,
		Price:       p.Price,
		Stock:       p.Stock,
		Active:      p.Active,
		OwnerID:     p.OwnerID,
		Brand:       p.Brand,
		Tags:        p.Tags,
		ImageID:     p.ImageID,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func decodeProductDoc(snap *firestore.DocumentSnapshot) productdom.Product {
	raw := snap.Data()
	p := productdom.Product{ID: snap.Ref.ID}
	if raw == nil {
		return p
	}
	p.Title = strings.TrimSpace(asString(raw["title"]))
	p.Description = asString(raw["description"])
	p.Price = asInt64(raw["price"])
	p.Stock = asInt(raw["stock"])
	p.Active = asBool(raw["active"])
	p.OwnerID = strings.TrimSpace(asString(raw["ownerId"]))
	p.Brand = strings.TrimSpace(asString(raw["brand"]))
	p.Tags = asStringSlice(raw["tags"])
	p.ImageID = strings.TrimSpace(asString(raw["imageId"]))
	if t, ok := asTime(raw["createdAt"]); ok {
		p.CreatedAt = t
	}
	if t, ok := asTime(raw["updatedAt"]); ok {
		p.UpdatedAt = t
	}
	return p
}
