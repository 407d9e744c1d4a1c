package services

import (
	"context"
	"errors"
	"fmt"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/kendall-kelly/campus-requests-api/config"
)

// ReceiptPrefix is the key prefix shared by every stored receipt
const ReceiptPrefix = "receipts/"

// ErrReceiptNotFound is returned by Get when no blob exists at the path
var ErrReceiptNotFound = errors.New("receipt not found")

// ReceiptStore is durable blob storage for payment receipts
type ReceiptStore interface {
	// Put stores data and returns the path it was stored under.
	// pathHint is the client filename; only its extension is kept.
	Put(ctx context.Context, data []byte, pathHint string) (string, error)

	// Get returns the stored bytes
	Get(ctx context.Context, path string) ([]byte, error)

	// Delete removes a stored receipt. Deleting a missing path is not an error.
	Delete(ctx context.Context, path string) error

	// URL returns a link the client can use to view the receipt
	URL(ctx context.Context, path string) (string, error)
}

// NewReceiptStore builds the backend selected by RECEIPT_STORAGE
func NewReceiptStore(ctx context.Context, cfg *config.Config) (ReceiptStore, error) {
	switch cfg.ReceiptStorage {
	case config.ReceiptStorageS3:
		return NewS3ReceiptStore(ctx, cfg)
	case config.ReceiptStorageLocal, "":
		return NewLocalReceiptStore(cfg.UploadDir)
	default:
		return nil, fmt.Errorf("unknown receipt storage %q", cfg.ReceiptStorage)
	}
}

// newReceiptKey generates a collision-free key such as receipts/<uuid>.png
func newReceiptKey(pathHint string) string {
	return ReceiptPrefix + uuid.NewString() + strings.ToLower(filepath.Ext(pathHint))
}

// ReceiptFilename returns the last element of a receipt path
func ReceiptFilename(p string) string {
	if p == "" {
		return ""
	}
	return path.Base(p)
}

// ReceiptPath is the inverse of ReceiptFilename
func ReceiptPath(filename string) string {
	return ReceiptPrefix + filename
}

// ReceiptRoute returns the API path that serves a receipt
func ReceiptRoute(p string) string {
	if p == "" {
		return ""
	}
	return "/api/v1/receipts/" + ReceiptFilename(p)
}
