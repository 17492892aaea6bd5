package config

import "os"

// Config holds every environment-driven setting of the storefront API.
type Config struct {
	Port string

	// GCP / Firestore
	FirestoreProjectID       string
	FirestoreCredentialsFile string
	GCPCreds                 string

	// Firebase Auth (defaults to the Firestore project)
	FirebaseProjectID string

	// Product image storage
	GCSBucket  string
	GCSBaseURL string

	// Browser origin allowed by CORS ("*" when empty)
	WebOrigin string

	// Checkout ledger (optional; empty disables the ledger)
	PostgresDSN string

	// Receipt mail. SendGridKey wins when set; otherwise the key is
	// resolved from Secret Manager via SendGridSecretName.
	SendGridKey        string
	SendGridSecretName string
	ReceiptFromEmail   string
}

// Load reads the environment and returns a Config. All values are optional;
// subsystems without their settings are simply not wired.
func Load() *Config {
	defaultProject := getenvDefault("GCP_PROJECT_ID", "")

	return &Config{
		Port: getenvDefault("PORT", "8080"),

		FirestoreProjectID:       getenvDefault("FIRESTORE_PROJECT_ID", defaultProject),
		FirestoreCredentialsFile: os.Getenv("FIRESTORE_CREDENTIALS_FILE"),
		GCPCreds:                 os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"),

		FirebaseProjectID: getenvDefault("FIREBASE_PROJECT_ID", defaultProject),

		GCSBucket:  os.Getenv("GCS_BUCKET"),
		GCSBaseURL: os.Getenv("GCS_PUBLIC_BASE_URL"),

		WebOrigin: os.Getenv("STOREFRONT_WEB_ORIGIN"),

		PostgresDSN: os.Getenv("DATABASE_URL"),

		SendGridKey:        os.Getenv("SENDGRID_API_KEY"),
		SendGridSecretName: os.Getenv("SENDGRID_SECRET_NAME"),
		ReceiptFromEmail:   getenvDefault("RECEIPT_FROM_EMAIL", "no-reply@storefront.example.com"),
	}
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
