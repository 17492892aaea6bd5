package di

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"cloud.google.com/go/firestore"
	secretmanager "cloud.google.com/go/secretmanager/apiv1"
	"cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"
	"cloud.google.com/go/storage"
	firebase "firebase.google.com/go/v4"
	firebaseauth "firebase.google.com/go/v4/auth"
	"google.golang.org/api/option"

	appcfg "storefront/internal/infra/config"
	"storefront/internal/infra/database"
)

// Infra owns the external clients shared by the whole API.
//
// Firestore is strict: when a project ID is configured and the client cannot
// be created, startup fails. Everything else is best-effort (warn + continue)
// so a partially configured environment still serves what it can.
// Without a project ID the storage ports fall back to the in-memory adapters.
type Infra struct {
	Config    *appcfg.Config
	ProjectID string

	Firestore     *firestore.Client
	GCS           *storage.Client
	FirebaseApp   *firebase.App
	FirebaseAuth  *firebaseauth.Client
	SecretManager *secretmanager.Client
	Postgres      *database.DB

	// SendGridKey is resolved once: env var first, Secret Manager second.
	SendGridKey string
}

func NewInfra(ctx context.Context) (*Infra, error) {
	cfg := appcfg.Load()
	if cfg == nil {
		return nil, errors.New("di: config is nil")
	}

	inf := &Infra{
		Config:    cfg,
		ProjectID: strings.TrimSpace(cfg.FirestoreProjectID),
	}

	credFile := strings.TrimSpace(cfg.FirestoreCredentialsFile)
	if credFile == "" {
		credFile = strings.TrimSpace(cfg.GCPCreds)
	}
	var clientOpts []option.ClientOption
	if credFile != "" {
		clientOpts = append(clientOpts, option.WithCredentialsFile(credFile))
		log.Printf("[di] using credentials file for GCP clients")
	}

	if inf.ProjectID == "" {
		log.Printf("[di] no project configured; storage ports fall back to in-memory adapters")
		inf.resolveSendGridKey(ctx)
		inf.openPostgres()
		return inf, nil
	}

	// Firestore (strict)
	fsClient, err := firestore.NewClient(ctx, inf.ProjectID, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("di: firestore.NewClient failed (project=%s): %w", inf.ProjectID, err)
	}
	inf.Firestore = fsClient
	log.Printf("[di] Firestore connected project=%s", inf.ProjectID)

	// GCS (best-effort; product images disabled without it)
	if gcsClient, err := storage.NewClient(ctx, clientOpts...); err != nil {
		log.Printf("[di] WARN: storage.NewClient failed: %v (product images disabled)", err)
	} else {
		inf.GCS = gcsClient
	}

	// Firebase App/Auth (best-effort; API routes answer 503 without it)
	fbProject := strings.TrimSpace(cfg.FirebaseProjectID)
	if fbProject == "" {
		fbProject = inf.ProjectID
	}
	if fbApp, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: fbProject}, clientOpts...); err != nil {
		log.Printf("[di] WARN: firebase app init failed: %v", err)
	} else {
		inf.FirebaseApp = fbApp
		if authClient, err := fbApp.Auth(ctx); err != nil {
			log.Printf("[di] WARN: firebase auth init failed: %v", err)
		} else {
			inf.FirebaseAuth = authClient
		}
	}

	// Secret Manager (best-effort; only needed to resolve the SendGrid key)
	if sm, err := secretmanager.NewClient(ctx, clientOpts...); err != nil {
		log.Printf("[di] WARN: secretmanager.NewClient failed: %v", err)
	} else {
		inf.SecretManager = sm
	}

	inf.resolveSendGridKey(ctx)
	inf.openPostgres()
	return inf, nil
}

// resolveSendGridKey prefers the env var and falls back to Secret Manager.
func (inf *Infra) resolveSendGridKey(ctx context.Context) {
	if key := strings.TrimSpace(inf.Config.SendGridKey); key != "" {
		inf.SendGridKey = key
		return
	}
	secretName := strings.TrimSpace(inf.Config.SendGridSecretName)
	if secretName == "" || inf.SecretManager == nil || inf.ProjectID == "" {
		log.Printf("[di] SendGrid key not configured (receipt mail disabled)")
		return
	}
	name := "projects/" + inf.ProjectID + "/secrets/" + secretName + "/versions/latest"
	resp, err := inf.SecretManager.AccessSecretVersion(ctx, &secretmanagerpb.AccessSecretVersionRequest{Name: name})
	if err != nil {
		log.Printf("[di] WARN: AccessSecretVersion failed (%s): %v (receipt mail disabled)", name, err)
		return
	}
	if resp == nil || resp.Payload == nil {
		log.Printf("[di] WARN: empty secret payload (%s)", name)
		return
	}
	inf.SendGridKey = strings.TrimSpace(string(resp.Payload.Data))
}

// openPostgres connects the checkout ledger DB when a DSN is configured.
func (inf *Infra) openPostgres() {
	dsn := strings.TrimSpace(inf.Config.PostgresDSN)
	if dsn == "" {
		log.Printf("[di] DATABASE_URL not set (checkout ledger disabled)")
		return
	}
	db, err := database.NewConnection(dsn)
	if err != nil {
		log.Printf("[di] WARN: postgres connect failed: %v (checkout ledger disabled)", err)
		return
	}
	inf.Postgres = db
}

func (inf *Infra) Close() {
	if inf == nil {
		return
	}
	if inf.Postgres != nil {
		_ = inf.Postgres.Close()
	}
	if inf.SecretManager != nil {
		_ = inf.SecretManager.Close()
	}
	if inf.GCS != nil {
		_ = inf.GCS.Close()
	}
	if inf.Firestore != nil {
		_ = inf.Firestore.Close()
	}
}
