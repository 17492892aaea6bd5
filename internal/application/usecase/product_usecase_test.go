package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/adapters/out/memory"
	"storefront/internal/application/txn"
	"storefront/internal/domain/common"
	productdom "storefront/internal/domain/product"
)

type stubImageRepo struct {
	puts int
	fail error
}

func (s *stubImageRepo) Put(ctx context.Context, productID, fileName, contentType string, data []byte) (string, string, error) {
	s.puts++
	if s.fail != nil {
		return "", "", s.fail
	}
	return "img-1", "https://img.example.com/" + productID + "/img-1/" + fileName, nil
}

func newProductFixture(t *testing.T) (*memory.Store, *ProductUsecase, *stubImageRepo) {
	t.Helper()
	store := memory.NewStore()
	images := &stubImageRepo{}
	runner := txn.New(txn.WithBaseBackoff(0))
	uc := NewProductUsecaseWithClock(store.Products(), images, runner, newStubClock())
	return store, uc, images
}

func TestProductCreateAndGet(t *testing.T) {
	_, uc, _ := newProductFixture(t)
	ctx := context.Background()

	p, err := uc.Create(ctx, "seller-1", CreateProductInput{
		Title: "Wool Scarf",
		Brand: "Acme",
		Price: 4200,
		Stock: 5,
		Tags:  []string{"winter"},
	})
	require.NoError(t, err)
	require.NotEmpty(t, p.ID)
	assert.True(t, p.Active)

	got, err := uc.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, p.ID, got.ID)

	_, err = uc.Get(ctx, "missing")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestProductCreateValidation(t *testing.T) {
	_, uc, _ := newProductFixture(t)
	ctx := context.Background()

	_, err := uc.Create(ctx, "seller-1", CreateProductInput{Title: "X", Price: 0, Stock: 5})
	assert.ErrorIs(t, err, common.ErrInvalidArgument)

	_, err = uc.Create(ctx, "seller-1", CreateProductInput{Title: "X", Price: 100, Stock: 0})
	assert.ErrorIs(t, err, common.ErrInvalidArgument)

	_, err = uc.Create(ctx, "", CreateProductInput{Title: "X", Price: 100, Stock: 5})
	assert.ErrorIs(t, err, common.ErrInvalidArgument)
}

func TestProductUpdateOwnerOnly(t *testing.T) {
	_, uc, _ := newProductFixture(t)
	ctx := context.Background()

	p, err := uc.Create(ctx, "seller-1", CreateProductInput{Title: "X", Price: 100, Stock: 5})
	require.NoError(t, err)

	newPrice := int64(250)
	_, err = uc.Update(ctx, "intruder", p.ID, ProductPatch{Price: &newPrice})
	assert.ErrorIs(t, err, common.ErrPermissionDenied)

	got, err := uc.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(100), got.Price, "denied update must not leak through")

	updated, err := uc.Update(ctx, "seller-1", p.ID, ProductPatch{Price: &newPrice})
	require.NoError(t, err)
	assert.Equal(t, int64(250), updated.Price)
}

func TestProductUpdatePatchSemantics(t *testing.T) {
	_, uc, _ := newProductFixture(t)
	ctx := context.Background()

	p, err := uc.Create(ctx, "seller-1", CreateProductInput{Title: "X", Brand: "Acme", Price: 100, Stock: 5})
	require.NoError(t, err)

	_, err = uc.Update(ctx, "seller-1", p.ID, ProductPatch{})
	assert.ErrorIs(t, err, common.ErrInvalidArgument, "empty patch is rejected")

	zeroStock := 0
	inactive := false
	updated, err := uc.Update(ctx, "seller-1", p.ID, ProductPatch{Stock: &zeroStock, Active: &inactive})
	require.NoError(t, err)
	assert.Equal(t, 0, updated.Stock)
	assert.False(t, updated.Active)
	assert.Equal(t, "Acme", updated.Brand, "untouched fields survive")

	badPrice := int64(-1)
	_, err = uc.Update(ctx, "seller-1", p.ID, ProductPatch{Price: &badPrice})
	assert.ErrorIs(t, err, common.ErrInvalidArgument)
}

func TestProductListByOwner(t *testing.T) {
	_, uc, _ := newProductFixture(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := uc.Create(ctx, "seller-1", CreateProductInput{Title: "X", Price: 100, Stock: 5})
		require.NoError(t, err)
	}
	_, err := uc.Create(ctx, "seller-2", CreateProductInput{Title: "Y", Price: 100, Stock: 5})
	require.NoError(t, err)

	mine, err := uc.ListByOwner(ctx, "seller-1")
	require.NoError(t, err)
	assert.Len(t, mine, 3)
	for _, p := range mine {
		assert.Equal(t, "seller-1", p.OwnerID)
	}
}

func TestProductAttachImage(t *testing.T) {
	_, uc, images := newProductFixture(t)
	ctx := context.Background()

	p, err := uc.Create(ctx, "seller-1", CreateProductInput{Title: "X", Price: 100, Stock: 5})
	require.NoError(t, err)

	_, err = uc.AttachImage(ctx, "intruder", p.ID, "a.png", "image/png", []byte{1})
	assert.ErrorIs(t, err, common.ErrPermissionDenied)
	assert.Equal(t, 0, images.puts, "no upload happens for a denied caller")

	updated, err := uc.AttachImage(ctx, "seller-1", p.ID, "a.png", "image/png", []byte{1})
	require.NoError(t, err)
	assert.Equal(t, "img-1", updated.ImageID)
	assert.Equal(t, 1, images.puts)
}

func TestProductAttachImageWithoutRepo(t *testing.T) {
	store := memory.NewStore()
	uc := NewProductUsecase(store.Products(), nil, txn.New(txn.WithBaseBackoff(0)))
	ctx := context.Background()

	p, err := productdom.New("p1", "seller-1", "X", "", "", 100, 5, nil, newStubClock().Now())
	require.NoError(t, err)
	require.NoError(t, store.Products().Create(ctx, p))

	_, err = uc.AttachImage(ctx, "seller-1", "p1", "a.png", "image/png", []byte{1})
	assert.Error(t, err)
}
