package handler

import (
	"net/http"
	"strings"

	"storefront/internal/adapters/in/http/middleware"
	"storefront/internal/application/usecase"
)

// CartHandler serves the authenticated shopper's pending cart.
//
//	GET    /api/cart            current pending cart (404 if none yet)
//	DELETE /api/cart            drop every line
//	POST   /api/cart/items      add a line (or bump an existing one)
//	PUT    /api/cart/items      set a line's quantity
//	DELETE /api/cart/items      remove a line (?productId=...)
//	POST   /api/cart/checkout   complete the pending cart
type CartHandler struct {
	Carts *usecase.CartUsecase
}

func NewCartHandler(carts *usecase.CartUsecase) *CartHandler {
	return &CartHandler{Carts: carts}
}

type cartItemRequest struct {
	ProductID string `json:"productId"`
	Qty       int    `json:"qty"`
}

func (h *CartHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.Carts == nil {
		writeErr(w, http.StatusServiceUnavailable, "cart service not configured")
		return
	}
	uid, ok := middleware.CurrentUserUID(r)
	if !ok || strings.TrimSpace(uid) == "" {
		writeErr(w, http.StatusUnauthorized, "unauthenticated")
		return
	}

	path := strings.TrimSuffix(r.URL.Path, "/")
	switch path {
	case "/api/cart":
		switch r.Method {
		case http.MethodGet:
			h.get(w, r, uid)
		case http.MethodDelete:
			h.clear(w, r, uid)
		default:
			methodNotAllowed(w)
		}
	case "/api/cart/items":
		switch r.Method {
		case http.MethodPost:
			h.addItem(w, r, uid)
		case http.MethodPut:
			h.setItemQty(w, r, uid)
		case http.MethodDelete:
			h.removeItem(w, r, uid)
		default:
			methodNotAllowed(w)
		}
	case "/api/cart/checkout":
		if r.Method != http.MethodPost {
			methodNotAllowed(w)
			return
		}
		h.checkout(w, r, uid)
	default:
		writeErr(w, http.StatusNotFound, "not found")
	}
}

func (h *CartHandler) get(w http.ResponseWriter, r *http.Request, uid string) {
	c, err := h.Carts.Get(r.Context(), uid)
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toCartDTO(c))
}

func (h *CartHandler) addItem(w http.ResponseWriter, r *http.Request, uid string) {
	var req cartItemRequest
	if err := readJSON(r, &req); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid json body")
		return
	}
	c, err := h.Carts.AddLine(r.Context(), uid, req.ProductID, req.Qty)
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toCartDTO(c))
}

func (h *CartHandler) setItemQty(w http.ResponseWriter, r *http.Request, uid string) {
	var req cartItemRequest
	if err := readJSON(r, &req); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid json body")
		return
	}
	c, err := h.Carts.SetLineQty(r.Context(), uid, req.ProductID, req.Qty)
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toCartDTO(c))
}

func (h *CartHandler) removeItem(w http.ResponseWriter, r *http.Request, uid string) {
	productID := strings.TrimSpace(r.URL.Query().Get("productId"))
	if productID == "" {
		writeErr(w, http.StatusBadRequest, "productId is required")
		return
	}
	c, err := h.Carts.RemoveLine(r.Context(), uid, productID)
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toCartDTO(c))
}

func (h *CartHandler) clear(w http.ResponseWriter, r *http.Request, uid string) {
	c, err := h.Carts.Clear(r.Context(), uid)
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toCartDTO(c))
}

func (h *CartHandler) checkout(w http.ResponseWriter, r *http.Request, uid string) {
	c, err := h.Carts.Checkout(r.Context(), uid)
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toCartDTO(c))
}
