package textsource

import (
	"context"
	"errors"
	"fmt"
	"path"

	"claim_contact_backend/internal/adapters/storage"
)

// ObjectStore reads dumps stored as <prefix>/<claimNumber>.txt.
type ObjectStore struct {
	store  storage.TextStore
	bucket string
	prefix string
}

// NewObjectStore creates an ObjectStore source over bucket.
func NewObjectStore(store storage.TextStore, bucket, prefix string) *ObjectStore {
	return &ObjectStore{store: store, bucket: bucket, prefix: prefix}
}

// Key returns the object key for a claim number.
func (o *ObjectStore) Key(claimNumber string) string {
	return path.Join(o.prefix, claimNumber+".txt")
}

// FetchText implements Source.
func (o *ObjectStore) FetchText(ctx context.Context, claimNumber string) (string, error) {
	text, err := o.store.DownloadText(ctx, o.bucket, o.Key(claimNumber))
	if errors.Is(err, storage.ErrObjectNotFound) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("download dump for %s: %w", claimNumber, err)
	}
	return text, nil
}

// SaveText stores a dump for later runs.
func (o *ObjectStore) SaveText(ctx context.Context, claimNumber, text string) error {
	body := []byte(text)
	return o.store.UploadText(ctx, o.bucket, o.Key(claimNumber), storage.ContentTypeFor(body), body)
}
