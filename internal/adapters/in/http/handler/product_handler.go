package handler

import (
	"io"
	"net/http"
	"strings"

	"storefront/internal/adapters/in/http/middleware"
	"storefront/internal/application/usecase"
	productdom "storefront/internal/domain/product"
)

const maxImageBytes = 8 << 20 // 8MB

// ProductHandler serves the product catalog.
//
//	GET    /api/products/{id}         public read
//	POST   /api/products              create a listing (authenticated)
//	PATCH  /api/products/{id}         partial update (owner only)
//	POST   /api/products/{id}/image   upload a listing image (owner only)
//	GET    /api/me/products           the caller's own listings
type ProductHandler struct {
	Products *usecase.ProductUsecase
}

func NewProductHandler(products *usecase.ProductUsecase) *ProductHandler {
	return &ProductHandler{Products: products}
}

type createProductRequest struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Brand       string   `json:"brand"`
	Price       int64    `json:"price"`
	Stock       int      `json:"stock"`
	Tags        []string `json:"tags"`
}

type patchProductRequest struct {
	Title       *string  `json:"title"`
	Description *string  `json:"description"`
	Brand       *string  `json:"brand"`
	Price       *int64   `json:"price"`
	Stock       *int     `json:"stock"`
	Active      *bool    `json:"active"`
	Tags        []string `json:"tags"`
}

func (h *ProductHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.Products == nil {
		writeErr(w, http.StatusServiceUnavailable, "product service not configured")
		return
	}

	path := strings.TrimSuffix(r.URL.Path, "/")
	if path == "/api/me/products" {
		if r.Method != http.MethodGet {
			methodNotAllowed(w)
			return
		}
		h.listMine(w, r)
		return
	}
	if path == "/api/products" {
		if r.Method != http.MethodPost {
			methodNotAllowed(w)
			return
		}
		h.create(w, r)
		return
	}

	rest := strings.TrimPrefix(path, "/api/products/")
	if rest == path || rest == "" {
		writeErr(w, http.StatusNotFound, "not found")
		return
	}
	if id, ok := strings.CutSuffix(rest, "/image"); ok {
		if r.Method != http.MethodPost {
			methodNotAllowed(w)
			return
		}
		h.uploadImage(w, r, id)
		return
	}
	if strings.Contains(rest, "/") {
		writeErr(w, http.StatusNotFound, "not found")
		return
	}
	switch r.Method {
	case http.MethodGet:
		h.get(w, r, rest)
	case http.MethodPatch:
		h.patch(w, r, rest)
	default:
		methodNotAllowed(w)
	}
}

func (h *ProductHandler) get(w http.ResponseWriter, r *http.Request, id string) {
	p, err := h.Products.Get(r.Context(), id)
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *ProductHandler) listMine(w http.ResponseWriter, r *http.Request) {
	uid, ok := middleware.CurrentUserUID(r)
	if !ok {
		writeErr(w, http.StatusUnauthorized, "unauthenticated")
		return
	}
	items, err := h.Products.ListByOwner(r.Context(), uid)
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	if items == nil {
		items = []productdom.Product{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}

func (h *ProductHandler) create(w http.ResponseWriter, r *http.Request) {
	uid, ok := middleware.CurrentUserUID(r)
	if !ok {
		writeErr(w, http.StatusUnauthorized, "unauthenticated")
		return
	}
	var req createProductRequest
	if err := readJSON(r, &req); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid json body")
		return
	}
	p, err := h.Products.Create(r.Context(), uid, usecase.CreateProductInput{
		Title:       req.Title,
		Description: req.Description,
		Brand:       req.Brand,
		Price:       req.Price,
		Stock:       req.Stock,
		Tags:        req.Tags,
	})
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (h *ProductHandler) patch(w http.ResponseWriter, r *http.Request, id string) {
	uid, ok := middleware.CurrentUserUID(r)
	if !ok {
		writeErr(w, http.StatusUnauthorized, "unauthenticated")
		return
	}
	var req patchProductRequest
	if err := readJSON(r, &req); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid json body")
		return
	}
	p, err := h.Products.Update(r.Context(), uid, id, usecase.ProductPatch{
		Title:       req.Title,
		Description: req.Description,
		Brand:       req.Brand,
		Price:       req.Price,
		Stock:       req.Stock,
		Active:      req.Active,
		Tags:        req.Tags,
	})
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *ProductHandler) uploadImage(w http.ResponseWriter, r *http.Request, id string) {
	uid, ok := middleware.CurrentUserUID(r)
	if !ok {
		writeErr(w, http.StatusUnauthorized, "unauthenticated")
		return
	}
	if err := r.ParseMultipartForm(maxImageBytes); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid multipart body")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeErr(w, http.StatusBadRequest, "file field is required")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxImageBytes+1))
	if err != nil {
		writeErr(w, http.StatusBadRequest, "failed to read file")
		return
	}
	if len(data) > maxImageBytes {
		writeErr(w, http.StatusRequestEntityTooLarge, "file too large")
		return
	}
	contentType := header.Header.Get("Content-Type")

	p, err := h.Products.AttachImage(r.Context(), uid, id, header.Filename, contentType, data)
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}
