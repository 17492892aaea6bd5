package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/adapters/in/http/middleware"
	"storefront/internal/adapters/out/memory"
	"storefront/internal/application/txn"
	"storefront/internal/application/usecase"
	productdom "storefront/internal/domain/product"
)

func newCartTestHandler(t *testing.T) (*CartHandler, *memory.Store) {
	t.Helper()
	store := memory.NewStore()
	runner := txn.New(txn.WithBaseBackoff(0))
	uc := usecase.NewCartUsecase(store.Carts(), store.Products(), runner)

	p, err := productdom.New("p1", "seller-1", "Item", "", "", 1000, 5, nil, time.Now().UTC())
	require.NoError(t, err)
	require.NoError(t, store.Products().Create(context.Background(), p))

	return NewCartHandler(uc), store
}

func doCart(h *CartHandler, uid, method, path, body string) *httptest.ResponseRecorder {
	var r *http.Request
	if body != "" {
		r = httptest.NewRequest(method, path, strings.NewReader(body))
		r.Header.Set("Content-Type", "application/json")
	} else {
		r = httptest.NewRequest(method, path, nil)
	}
	if uid != "" {
		r = middleware.WithTestUID(r, uid)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)
	return w
}

func TestCartHandlerRequiresPrincipal(t *testing.T) {
	h, _ := newCartTestHandler(t)
	w := doCart(h, "", http.MethodGet, "/api/cart", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCartHandlerStatusMapping(t *testing.T) {
	h, _ := newCartTestHandler(t)

	// No pending cart -> 404.
	w := doCart(h, "alice", http.MethodGet, "/api/cart", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	// Bad payload -> 400.
	w = doCart(h, "alice", http.MethodPost, "/api/cart/items", `{"productId":"p1","qty":0}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Unknown product -> 404.
	w = doCart(h, "alice", http.MethodPost, "/api/cart/items", `{"productId":"nope","qty":1}`)
	assert.Equal(t, http.StatusNotFound, w.Code)

	// Beyond stock -> 422.
	w = doCart(h, "alice", http.MethodPost, "/api/cart/items", `{"productId":"p1","qty":6}`)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	// Wrong verb -> 405.
	w = doCart(h, "alice", http.MethodGet, "/api/cart/checkout", "")
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func TestCartHandlerFlow(t *testing.T) {
	h, _ := newCartTestHandler(t)

	w := doCart(h, "alice", http.MethodPost, "/api/cart/items", `{"productId":"p1","qty":2}`)
	require.Equal(t, http.StatusOK, w.Code)

	var dto cartDTO
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &dto))
	assert.Equal(t, "alice", dto.OwnerID)
	assert.Equal(t, "pending", dto.Status)
	assert.Equal(t, cartLineDTO{Price: 1000, Qty: 2}, dto.Lines["p1"])
	assert.Equal(t, int64(2000), dto.Total)

	// Absolute quantity update.
	w = doCart(h, "alice", http.MethodPut, "/api/cart/items", `{"productId":"p1","qty":5}`)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &dto))
	assert.Equal(t, 5, dto.Lines["p1"].Qty)

	// Line removal via query parameter.
	w = doCart(h, "alice", http.MethodDelete, "/api/cart/items?productId=p1", "")
	require.Equal(t, http.StatusOK, w.Code)
	// Unmarshal merges into a non-nil map, so reset before decoding.
	dto = cartDTO{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &dto))
	assert.Empty(t, dto.Lines)

	w = doCart(h, "alice", http.MethodDelete, "/api/cart/items", "")
	assert.Equal(t, http.StatusBadRequest, w.Code, "productId query is required")
}

func TestCartHandlerCheckout(t *testing.T) {
	h, _ := newCartTestHandler(t)

	w := doCart(h, "alice", http.MethodPost, "/api/cart/items", `{"productId":"p1","qty":1}`)
	require.Equal(t, http.StatusOK, w.Code)

	w = doCart(h, "alice", http.MethodPost, "/api/cart/checkout", "")
	require.Equal(t, http.StatusOK, w.Code)

	var dto cartDTO
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &dto))
	assert.Equal(t, "completed", dto.Status)

	// The pending cart is gone afterwards.
	w = doCart(h, "alice", http.MethodPost, "/api/cart/checkout", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	w = doCart(h, "alice", http.MethodGet, "/api/cart", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}
