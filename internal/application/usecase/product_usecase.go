package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"storefront/internal/application/txn"
	"storefront/internal/domain/common"
	productdom "storefront/internal/domain/product"
)

// CreateProductInput carries the creation payload (field-shape validation
// happened at the boundary; domain constraints are checked here).
type CreateProductInput struct {
	Title       string
	Description string
	Brand       string
	Price       int64
	Stock       int
	Tags        []string
}

// ProductPatch is a partial update; nil fields are left untouched.
type ProductPatch struct {
	Title       *string
	Description *string
	Brand       *string
	Price       *int64
	Stock       *int
	Active      *bool
	Tags        []string
}

func (p ProductPatch) empty() bool {
	return p.Title == nil && p.Description == nil && p.Brand == nil &&
		p.Price == nil && p.Stock == nil && p.Active == nil && p.Tags == nil
}

// ProductUsecase covers owner-side listing management plus public reads.
// Every mutation is owner-checked and version-guarded.
type ProductUsecase struct {
	products productdom.Repository
	images   productdom.ImageRepository
	runner   *txn.Runner
	clock    Clock
}

func NewProductUsecase(products productdom.Repository, images productdom.ImageRepository, runner *txn.Runner) *ProductUsecase {
	if runner == nil {
		runner = txn.New()
	}
	return &ProductUsecase{
		products: products,
		images:   images,
		runner:   runner,
		clock:    systemClock{},
	}
}

// NewProductUsecaseWithClock is useful for tests.
func NewProductUsecaseWithClock(products productdom.Repository, images productdom.ImageRepository, runner *txn.Runner, clock Clock) *ProductUsecase {
	uc := NewProductUsecase(products, images, runner)
	if clock != nil {
		uc.clock = clock
	}
	return uc
}

// Get returns one listing.
func (uc *ProductUsecase) Get(ctx context.Context, id string) (productdom.Product, error) {
	pid := strings.TrimSpace(id)
	if pid == "" {
		return productdom.Product{}, fmt.Errorf("%w: product id required", common.ErrInvalidArgument)
	}
	p, _, err := uc.products.GetByID(ctx, pid)
	return p, err
}

// ListByOwner returns the caller's own listings.
func (uc *ProductUsecase) ListByOwner(ctx context.Context, ownerID string) ([]productdom.Product, error) {
	oid := strings.TrimSpace(ownerID)
	if oid == "" {
		return nil, fmt.Errorf("%w: ownerId required", common.ErrInvalidArgument)
	}
	return uc.products.ListByOwner(ctx, oid)
}

// Create registers a new listing owned by ownerID. Price and stock must be
// strictly positive at creation.
func (uc *ProductUsecase) Create(ctx context.Context, ownerID string, in CreateProductInput) (productdom.Product, error) {
	oid := strings.TrimSpace(ownerID)
	if oid == "" {
		return productdom.Product{}, fmt.Errorf("%w: ownerId required", common.ErrInvalidArgument)
	}

	p, err := productdom.New(uuid.NewString(), oid, in.Title, in.Description, in.Brand, in.Price, in.Stock, in.Tags, uc.clock.Now())
	if err != nil {
		return productdom.Product{}, fmt.Errorf("%w: %v", common.ErrInvalidArgument, err)
	}
	if err := uc.products.Create(ctx, p); err != nil {
		return productdom.Product{}, err
	}
	return p, nil
}

// Update applies patch to the caller's own listing. A non-owner caller gets
// permission denied; the write is conditioned on the revision read in the
// same attempt, so concurrent owner edits never lose updates.
func (uc *ProductUsecase) Update(ctx context.Context, callerID, id string, patch ProductPatch) (productdom.Product, error) {
	cid := strings.TrimSpace(callerID)
	pid := strings.TrimSpace(id)
	if cid == "" || pid == "" {
		return productdom.Product{}, fmt.Errorf("%w: callerId and product id required", common.ErrInvalidArgument)
	}
	if patch.empty() {
		return productdom.Product{}, fmt.Errorf("%w: empty patch", common.ErrInvalidArgument)
	}

	var result productdom.Product
	err := uc.runner.Run(ctx, func(ctx context.Context) error {
		p, rev, err := uc.products.GetByID(ctx, pid)
		if err != nil {
			return err
		}
		if !p.OwnedBy(cid) {
			return fmt.Errorf("%w: product %s is not owned by caller", common.ErrPermissionDenied, pid)
		}

		now := uc.clock.Now()
		if patch.Title != nil {
			if err := p.SetTitle(*patch.Title, now); err != nil {
				return fmt.Errorf("%w: %v", common.ErrInvalidArgument, err)
			}
		}
		if patch.Description != nil {
			if err := p.SetDescription(*patch.Description, now); err != nil {
				return fmt.Errorf("%w: %v", common.ErrInvalidArgument, err)
			}
		}
		if patch.Brand != nil {
			p.SetBrand(*patch.Brand, now)
		}
		if patch.Price != nil {
			if err := p.SetPrice(*patch.Price, now); err != nil {
				return fmt.Errorf("%w: %v", common.ErrInvalidArgument, err)
			}
		}
		if patch.Stock != nil {
			if err := p.SetStock(*patch.Stock, now); err != nil {
				return fmt.Errorf("%w: %v", common.ErrInvalidArgument, err)
			}
		}
		if patch.Active != nil {
			p.SetActive(*patch.Active, now)
		}
		if patch.Tags != nil {
			p.SetTags(patch.Tags, now)
		}

		if err := uc.products.Save(ctx, p, rev); err != nil {
			return err
		}
		result = p
		return nil
	})
	if err != nil {
		return productdom.Product{}, err
	}
	return result, nil
}

// AttachImage stores image bytes for the caller's own listing and records
// the resulting image reference on the product.
func (uc *ProductUsecase) AttachImage(ctx context.Context, callerID, id, fileName, contentType string, data []byte) (productdom.Product, error) {
	cid := strings.TrimSpace(callerID)
	pid := strings.TrimSpace(id)
	if cid == "" || pid == "" || len(data) == 0 {
		return productdom.Product{}, fmt.Errorf("%w: callerId, product id and image data required", common.ErrInvalidArgument)
	}
	if uc.images == nil {
		return productdom.Product{}, fmt.Errorf("product_usecase: image repository is not configured")
	}

	// Ownership gate before the upload; re-checked inside the save attempt.
	p, _, err := uc.products.GetByID(ctx, pid)
	if err != nil {
		return productdom.Product{}, err
	}
	if !p.OwnedBy(cid) {
		return productdom.Product{}, fmt.Errorf("%w: product %s is not owned by caller", common.ErrPermissionDenied, pid)
	}

	imageID, _, err := uc.images.Put(ctx, pid, fileName, contentType, data)
	if err != nil {
		return productdom.Product{}, err
	}

	var result productdom.Product
	err = uc.runner.Run(ctx, func(ctx context.Context) error {
		p, rev, err := uc.products.GetByID(ctx, pid)
		if err != nil {
			return err
		}
		if !p.OwnedBy(cid) {
			return fmt.Errorf("%w: product %s is not owned by caller", common.ErrPermissionDenied, pid)
		}
		p.SetImageID(imageID, uc.clock.Now())
		if err := uc.products.Save(ctx, p, rev); err != nil {
			return err
		}
		result = p
		return nil
	})
	if err != nil {
		return productdom.Product{}, err
	}
	return result, nil
}
