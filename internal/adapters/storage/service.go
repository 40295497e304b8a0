// Package storage provides a domain-agnostic interface for S3-compatible
// object storage of claim document dumps.
package storage

import (
	"context"
	"errors"
)

// ErrObjectNotFound is returned when the requested key does not exist.
var ErrObjectNotFound = errors.New("object not found")

// TextStore defines the object storage operations used for document dumps.
type TextStore interface {
	// UploadText stores body under key. The content type is validated.
	UploadText(ctx context.Context, bucket, key, contentType string, body []byte) error

	// DownloadText reads an object fully, bounded by the configured
	// maximum size. Missing keys return ErrObjectNotFound.
	DownloadText(ctx context.Context, bucket, key string) (string, error)

	// ObjectExists reports whether key is present in bucket.
	ObjectExists(ctx context.Context, bucket, key string) (bool, error)

	// DeleteObject removes an object from storage.
	DeleteObject(ctx context.Context, bucket, key string) error

	// EnsureBucketExists creates the bucket if it doesn't exist.
	EnsureBucketExists(ctx context.Context, bucket string) error
}

// Config defines the configuration interface for storage.
type Config interface {
	GetMinIOEndpoint() string
	GetMinIOAccessKey() string
	GetMinIOSecretKey() string
	GetMinIOUseSSL() bool
	GetMinIOMaxFileSize() int64
	IsMinIOEnabled() bool
}
