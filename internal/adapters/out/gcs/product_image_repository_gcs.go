package gcs

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/google/uuid"
)

// ProductImageRepositoryGCS stores product images as GCS objects.
//
// Layout (single bucket):
//   - bucket: <configured product image bucket>
//   - objectPath: products/{productId}/{imageId}/{fileName}
//
// Public access: with "allUsers: Storage Object Viewer" on the bucket
// (uniform access), uploaded objects are publicly readable without
// per-object ACL changes.
type ProductImageRepositoryGCS struct {
	Client *storage.Client
	Bucket string
	// Optional: if empty, uses https://storage.googleapis.com
	PublicBaseURL string
}

func NewProductImageRepositoryGCS(client *storage.Client, bucket string) *ProductImageRepositoryGCS {
	return &ProductImageRepositoryGCS{
		Client:        client,
		Bucket:        strings.TrimSpace(bucket),
		PublicBaseURL: "https://storage.googleapis.com",
	}
}

// Put uploads image bytes and returns the image reference recorded on the
// product plus a serveable URL.
func (r *ProductImageRepositoryGCS) Put(ctx context.Context, productID, fileName, contentType string, data []byte) (string, string, error) {
	if r == nil || r.Client == nil {
		return "", "", errors.New("product_image_repository_gcs: storage client is nil")
	}
	bucket := strings.TrimSpace(r.Bucket)
	if bucket == "" {
		return "", "", errors.New("product_image_repository_gcs: bucket is empty")
	}
	pid := strings.TrimSpace(productID)
	if pid == "" || len(data) == 0 {
		return "", "", errors.New("product_image_repository_gcs: productId and data are required")
	}

	name := sanitizeFileName(fileName)
	imageID := uuid.NewString()
	objectPath := fmt.Sprintf("products/%s/%s/%s", pid, imageID, name)

	w := r.Client.Bucket(bucket).Object(objectPath).NewWriter(ctx)
	if ct := strings.TrimSpace(contentType); ct != "" {
		w.ContentType = ct
	}
	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return "", "", fmt.Errorf("product_image_repository_gcs: write failed: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", "", fmt.Errorf("product_image_repository_gcs: close failed: %w", err)
	}

	return imageID, r.publicURL(bucket, objectPath), nil
}

func (r *ProductImageRepositoryGCS) publicURL(bucket, objectPath string) string {
	base := strings.TrimSpace(r.PublicBaseURL)
	if base == "" {
		base = "https://storage.googleapis.com"
	}
	base = strings.TrimRight(base, "/")

	parts := strings.Split(objectPath, "/")
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	return base + "/" + url.PathEscape(bucket) + "/" + strings.Join(parts, "/")
}

func sanitizeFileName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return "image"
	}
	// keep only the base name
	if i := strings.LastIndexAny(name, "/\\"); i >= 0 {
		name = name[i+1:]
	}
	name = strings.ReplaceAll(name, " ", "_")
	if name == "" {
		return "image"
	}
	return name
}
