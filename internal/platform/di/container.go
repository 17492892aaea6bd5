package di

import (
	"context"
	"log"
	"net/http"
	"strings"

	httpin "storefront/internal/adapters/in/http"
	"storefront/internal/adapters/in/http/middleware"
	"storefront/internal/adapters/out/db"
	"storefront/internal/adapters/out/fbauth"
	outfs "storefront/internal/adapters/out/firestore"
	"storefront/internal/adapters/out/gcs"
	"storefront/internal/adapters/out/mail"
	"storefront/internal/adapters/out/memory"
	"storefront/internal/application/txn"
	"storefront/internal/application/usecase"
	cartdom "storefront/internal/domain/cart"
	productdom "storefront/internal/domain/product"
	userdom "storefront/internal/domain/user"
)

// Container bundles everything main.go needs: the root handler, the port to
// listen on, and a Close for owned resources.
type Container struct {
	Handler http.Handler
	Port    string

	infra *Infra
}

func (c *Container) Close() {
	if c == nil {
		return
	}
	c.infra.Close()
}

// Build wires repositories, usecases, and the router.
func Build(ctx context.Context) (*Container, error) {
	inf, err := NewInfra(ctx)
	if err != nil {
		return nil, err
	}

	var (
		cartRepo    cartdom.Repository
		productRepo productdom.Repository
		userRepo    userdom.Repository
	)
	if inf.Firestore != nil {
		cartRepo = outfs.NewCartRepositoryFS(inf.Firestore)
		productRepo = outfs.NewProductRepositoryFS(inf.Firestore)
		userRepo = outfs.NewUserRepositoryFS(inf.Firestore)
	} else {
		store := memory.NewStore()
		cartRepo = store.Carts()
		productRepo = store.Products()
		userRepo = store.Users()
	}

	var imageRepo productdom.ImageRepository
	if inf.GCS != nil && strings.TrimSpace(inf.Config.GCSBucket) != "" {
		imgs := gcs.NewProductImageRepositoryGCS(inf.GCS, inf.Config.GCSBucket)
		if base := strings.TrimSpace(inf.Config.GCSBaseURL); base != "" {
			imgs.PublicBaseURL = base
		}
		imageRepo = imgs
	}

	runner := txn.New()

	cartUC := usecase.NewCartUsecase(cartRepo, productRepo, runner)
	productUC := usecase.NewProductUsecase(productRepo, imageRepo, runner)
	userUC := usecase.NewUserUsecase(userRepo)

	if inf.SendGridKey != "" && inf.FirebaseAuth != nil {
		sender := mail.NewReceiptSender(
			mail.NewSendGridClient(inf.SendGridKey),
			fbauth.NewEmailResolver(inf.FirebaseAuth),
			inf.Config.ReceiptFromEmail,
		)
		cartUC = cartUC.WithNotifier(sender)
		log.Printf("[di] receipt mail enabled")
	}

	if inf.Postgres != nil {
		ledger := db.NewCheckoutLedgerPG(inf.Postgres.Client)
		if err := ledger.EnsureSchema(ctx); err != nil {
			log.Printf("[di] WARN: checkout ledger schema init failed: %v (ledger disabled)", err)
		} else {
			cartUC = cartUC.WithLedger(ledger)
			log.Printf("[di] checkout ledger enabled")
		}
	}

	var auth *middleware.UserAuth
	if inf.FirebaseAuth != nil {
		auth = &middleware.UserAuth{FirebaseAuth: inf.FirebaseAuth}
	}

	router := httpin.NewRouter(httpin.RouterDeps{
		CartUC:        cartUC,
		ProductUC:     productUC,
		UserUC:        userUC,
		Auth:          auth,
		AllowedOrigin: inf.Config.WebOrigin,
	})

	return &Container{
		Handler: router,
		Port:    inf.Config.Port,
		infra:   inf,
	}, nil
}
