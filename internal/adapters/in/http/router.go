package httpin

import (
	"net/http"

	"storefront/internal/adapters/in/http/handler"
	"storefront/internal/adapters/in/http/middleware"
	"storefront/internal/application/usecase"
)

// RouterDeps collects everything injected from the DI container.
type RouterDeps struct {
	CartUC    *usecase.CartUsecase
	ProductUC *usecase.ProductUsecase
	UserUC    *usecase.UserUsecase

	// Auth is optional; without it every /api route answers 503 rather
	// than serving unauthenticated traffic.
	Auth *middleware.UserAuth

	// AllowedOrigin feeds the CORS middleware ("*" when empty).
	AllowedOrigin string
}

// NewRouter mounts the storefront endpoints. Handlers for usecases that
// were not wired simply stay unmounted.
func NewRouter(deps RouterDeps) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	api := http.NewServeMux()
	if deps.CartUC != nil {
		h := handler.NewCartHandler(deps.CartUC)
		api.Handle("/api/cart", h)
		api.Handle("/api/cart/", h)
	}
	if deps.ProductUC != nil {
		h := handler.NewProductHandler(deps.ProductUC)
		api.Handle("/api/products", h)
		api.Handle("/api/products/", h)
		api.Handle("/api/me/products", h)
	}
	if deps.UserUC != nil {
		api.Handle("/api/me", handler.NewUserHandler(deps.UserUC))
	}

	var apiChain http.Handler = api
	if deps.Auth != nil {
		apiChain = deps.Auth.Handler(apiChain)
	} else {
		apiChain = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"error":"auth not configured"}`))
		})
	}
	mux.Handle("/api/", apiChain)

	var root http.Handler = mux
	root = middleware.CORS(deps.AllowedOrigin)(root)
	root = middleware.Recover(root)
	return root
}
