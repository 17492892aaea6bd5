package product

import (
	"context"

	"storefront/internal/domain/common"
)

// Repository is the catalog port. Reads are versioned: the returned Revision
// guards any later conditional write of the same record.
type Repository interface {
	// GetByID returns the product and the revision observed at read time.
	// Returns common.ErrNotFound if no record exists.
	GetByID(ctx context.Context, id string) (Product, common.Revision, error)

	// Create persists a new listing. The product ID must be set.
	Create(ctx context.Context, p Product) error

	// Save writes p conditioned on expected matching the stored revision.
	// Returns common.ErrVersionConflict when another writer got there first.
	Save(ctx context.Context, p Product, expected common.Revision) error

	// ListByOwner returns all listings owned by ownerID, newest first.
	ListByOwner(ctx context.Context, ownerID string) ([]Product, error)
}

// ImageRepository stores product image bytes and hands back a reference
// (imageID) plus a serveable URL.
type ImageRepository interface {
	Put(ctx context.Context, productID, fileName, contentType string, data []byte) (imageID string, url string, err error)
}
