// Package storage provides an S3-compatible object store used for ledger
// archives. The interface is domain-agnostic so other modules can reuse it.
package storage

import (
	"context"
	"io"
	"time"
)

// PresignedURL carries a time-limited download link for an archived object.
type PresignedURL struct {
	URL       string    `json:"url"`
	ObjectKey string    `json:"objectKey"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// ObjectStore defines the object storage operations the archiver needs.
type ObjectStore interface {
	// EnsureBucketExists creates the bucket if it does not exist.
	EnsureBucketExists(ctx context.Context, bucket string) error

	// Upload writes an object and returns the key it was stored under.
	Upload(ctx context.Context, bucket, objectKey, contentType string, reader io.Reader, size int64) (string, error)

	// Download reads an object. The caller closes the returned ReadCloser.
	Download(ctx context.Context, bucket, objectKey string) (io.ReadCloser, error)

	// PresignedDownloadURL creates a time-limited download link.
	PresignedDownloadURL(ctx context.Context, bucket, objectKey string) (*PresignedURL, error)
}

// Config defines the configuration interface for storage.
type Config interface {
	GetMinIOEndpoint() string
	GetMinIOAccessKey() string
	GetMinIOSecretKey() string
	GetMinIOBucket() string
	GetMinIOUseSSL() bool
}
