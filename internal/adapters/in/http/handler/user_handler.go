package handler

import (
	"net/http"

	"storefront/internal/adapters/in/http/middleware"
	"storefront/internal/application/usecase"
)

// UserHandler serves the authenticated shopper's profile.
//
//	GET /api/me   current profile
//	PUT /api/me   create or update the profile
type UserHandler struct {
	Users *usecase.UserUsecase
}

func NewUserHandler(users *usecase.UserUsecase) *UserHandler {
	return &UserHandler{Users: users}
}

type upsertUserRequest struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

func (h *UserHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.Users == nil {
		writeErr(w, http.StatusServiceUnavailable, "user service not configured")
		return
	}
	uid, ok := middleware.CurrentUserUID(r)
	if !ok {
		writeErr(w, http.StatusUnauthorized, "unauthenticated")
		return
	}

	switch r.Method {
	case http.MethodGet:
		u, err := h.Users.Get(r.Context(), uid)
		if err != nil {
			writeDomainErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, u)
	case http.MethodPut:
		var req upsertUserRequest
		if err := readJSON(r, &req); err != nil {
			writeErr(w, http.StatusBadRequest, "invalid json body")
			return
		}
		u, err := h.Users.Upsert(r.Context(), uid, req.FirstName, req.LastName)
		if err != nil {
			writeDomainErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, u)
	default:
		methodNotAllowed(w)
	}
}
