// Package extractcache memoizes phone extraction results by document hash.
// The extraction engine stays pure; callers that see the same document
// repeatedly wrap it with Memoized.
package extractcache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"
)

const keyPrefix = "claimphone:v1:"

// Cache stores opaque values by key.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// Key derives the cache key for a document under a classifier variant.
// Results differ between classifiers, so the variant is part of the key.
func Key(variant, text string) string {
	hash := sha256.Sum256([]byte(text))
	return keyPrefix + variant + ":" + hex.EncodeToString(hash[:])
}
