package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	cartdom "storefront/internal/domain/cart"
	"storefront/internal/domain/common"
)

// ============================================================
// HTTP helpers
// ============================================================

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": strings.TrimSpace(msg)})
}

func methodNotAllowed(w http.ResponseWriter) {
	writeErr(w, http.StatusMethodNotAllowed, "method_not_allowed")
}

func readJSON(r *http.Request, dst any) error {
	if dst == nil {
		return errors.New("dst is nil")
	}
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, 1<<20)) // 1MB
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

// writeDomainErr maps the shared error taxonomy onto HTTP statuses. The
// boundary owns this mapping; usecases never see status codes.
func writeDomainErr(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, common.ErrInvalidArgument):
		writeErr(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, common.ErrNotFound):
		writeErr(w, http.StatusNotFound, err.Error())
	case errors.Is(err, common.ErrPermissionDenied):
		writeErr(w, http.StatusForbidden, err.Error())
	case errors.Is(err, common.ErrUnavailable):
		writeErr(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, common.ErrConflict):
		writeErr(w, http.StatusConflict, err.Error())
	default:
		writeErr(w, http.StatusInternalServerError, "internal error")
	}
}

func toRFC3339(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

// ============================================================
// Cart response DTO
// ============================================================

type cartLineDTO struct {
	Price int64 `json:"price"`
	Qty   int   `json:"qty"`
}

type cartDTO struct {
	ID        string                 `json:"id"`
	OwnerID   string                 `json:"ownerId"`
	Status    string                 `json:"status"`
	Lines     map[string]cartLineDTO `json:"lines"`
	Total     int64                  `json:"total"`
	CreatedAt string                 `json:"createdAt"`
	UpdatedAt string                 `json:"updatedAt"`
}

func toCartDTO(c *cartdom.Cart) cartDTO {
	dto := cartDTO{
		ID:        c.ID,
		OwnerID:   c.OwnerID,
		Status:    string(c.Status),
		Lines:     map[string]cartLineDTO{},
		Total:     c.Total(),
		CreatedAt: toRFC3339(c.CreatedAt),
		UpdatedAt: toRFC3339(c.UpdatedAt),
	}
	for pid, ln := range c.Lines {
		dto.Lines[pid] = cartLineDTO{Price: ln.Price, Qty: ln.Qty}
	}
	return dto
}
