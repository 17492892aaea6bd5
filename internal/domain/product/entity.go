package product

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"storefront/internal/domain/common"
)

// Product is one sellable listing. Owned by exactly one user; mutated only
// through owner-checked catalog operations. Price and stock are live values:
// carts snapshot the price at line insertion and never track it afterwards,
// and stock is checked (not decremented) when lines are added.
type Product struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Price       int64    `json:"price"`
	Stock       int      `json:"stock"`
	Active      bool     `json:"active"`
	OwnerID     string   `json:"ownerId"`
	Brand       string   `json:"brand"`
	Tags        []string `json:"tags"`
	ImageID     string   `json:"imageId,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Errors
var (
	ErrInvalidID          = errors.New("product: invalid id")
	ErrInvalidTitle       = errors.New("product: invalid title")
	ErrInvalidDescription = errors.New("product: invalid description")
	ErrInvalidPrice       = errors.New("product: invalid price")
	ErrInvalidStock       = errors.New("product: invalid stock")
	ErrInvalidOwnerID     = errors.New("product: invalid ownerId")
)

// Policy
var (
	MaxTitleLength       = 200
	MaxDescriptionLength = 2000
	MaxPrice             = int64(10_000_000)
	MaxTags              = 20
)

// New builds a product listing. Creation requires price and stock to be
// strictly positive; later updates may lower stock to zero but never below.
func New(id, ownerID, title, description, brand string, price int64, stock int, tags []string, now time.Time) (Product, error) {
	p := Product{
		ID:          strings.TrimSpace(id),
		Title:       strings.TrimSpace(title),
		Description: strings.TrimSpace(description),
		Price:       price,
		Stock:       stock,
		Active:      true,
		OwnerID:     strings.TrimSpace(ownerID),
		Brand:       strings.TrimSpace(brand),
		Tags:        normalizeTags(tags),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if p.Price <= 0 {
		return Product{}, fmt.Errorf("%w: price must be > 0 at creation", ErrInvalidPrice)
	}
	if p.Stock <= 0 {
		return Product{}, fmt.Errorf("%w: stock must be > 0 at creation", ErrInvalidStock)
	}
	if err := p.Validate(); err != nil {
		return Product{}, err
	}
	return p, nil
}

// Validate checks field-level invariants (not creation-time strictness).
func (p *Product) Validate() error {
	if p == nil {
		return ErrInvalidID
	}
	if strings.TrimSpace(p.ID) == "" {
		return ErrInvalidID
	}
	if strings.TrimSpace(p.OwnerID) == "" {
		return ErrInvalidOwnerID
	}
	t := strings.TrimSpace(p.Title)
	if t == "" || len([]rune(t)) > MaxTitleLength {
		return ErrInvalidTitle
	}
	if len([]rune(p.Description)) > MaxDescriptionLength {
		return ErrInvalidDescription
	}
	if p.Price < 0 || p.Price > MaxPrice {
		return ErrInvalidPrice
	}
	if p.Stock < 0 {
		return ErrInvalidStock
	}
	return nil
}

// OwnedBy reports whether callerID is the listing owner.
func (p Product) OwnedBy(callerID string) bool {
	callerID = strings.TrimSpace(callerID)
	return callerID != "" && callerID == p.OwnerID
}

func (p *Product) touch(now time.Time) { p.UpdatedAt = now }

// SetTitle updates the title.
func (p *Product) SetTitle(v string, now time.Time) error {
	v = strings.TrimSpace(v)
	if v == "" || len([]rune(v)) > MaxTitleLength {
		return ErrInvalidTitle
	}
	p.Title = v
	p.touch(now)
	return nil
}

// SetDescription updates the description.
func (p *Product) SetDescription(v string, now time.Time) error {
	v = strings.TrimSpace(v)
	if len([]rune(v)) > MaxDescriptionLength {
		return ErrInvalidDescription
	}
	p.Description = v
	p.touch(now)
	return nil
}

// SetPrice updates the live price. Existing cart lines keep their snapshot.
func (p *Product) SetPrice(v int64, now time.Time) error {
	if v < 0 || v > MaxPrice {
		return ErrInvalidPrice
	}
	p.Price = v
	p.touch(now)
	return nil
}

// SetStock updates the live stock level.
func (p *Product) SetStock(v int, now time.Time) error {
	if v < 0 {
		return ErrInvalidStock
	}
	p.Stock = v
	p.touch(now)
	return nil
}

// SetActive toggles sellability.
func (p *Product) SetActive(v bool, now time.Time) {
	p.Active = v
	p.touch(now)
}

// SetBrand updates the brand label.
func (p *Product) SetBrand(v string, now time.Time) {
	p.Brand = strings.TrimSpace(v)
	p.touch(now)
}

// SetTags replaces the tag list (order preserved, blanks dropped).
func (p *Product) SetTags(tags []string, now time.Time) {
	p.Tags = normalizeTags(tags)
	p.touch(now)
}

// SetImageID records the attached image reference.
func (p *Product) SetImageID(v string, now time.Time) {
	p.ImageID = strings.TrimSpace(v)
	p.touch(now)
}

// ----------------------------
// Availability predicates
// ----------------------------
//
// Pure checks over a snapshot already read inside the caller's transaction.
// Callers must re-evaluate them against the freshest read on every
// transaction attempt; results are never cached across retries.

// CheckActive fails when the listing is not sellable.
func CheckActive(p Product) error {
	if !p.Active {
		return fmt.Errorf("%w: product %s is not active", common.ErrUnavailable, p.ID)
	}
	return nil
}

// CheckStock fails when the listing is out of stock, or when requestedQty
// exceeds remaining stock. Requesting exactly the remaining stock succeeds.
func CheckStock(p Product, requestedQty int) error {
	if p.Stock <= 0 {
		return fmt.Errorf("%w: product %s is out of stock", common.ErrUnavailable, p.ID)
	}
	if requestedQty > 0 && p.Stock < requestedQty {
		return fmt.Errorf("%w: product %s has stock %d, requested %d", common.ErrUnavailable, p.ID, p.Stock, requestedQty)
	}
	return nil
}

func normalizeTags(tags []string) []string {
	if len(tags) == 0 {
		return nil
	}
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		out = append(out, t)
		if len(out) == MaxTags {
			break
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
