package extractcache

import (
	"context"
	"errors"
	"time"
)

// Layered reads through a fast local cache to a shared one and back-fills
// the local layer on shared hits.
type Layered struct {
	local  Cache
	shared Cache
	// localTTL bounds how long a back-filled entry lives locally.
	localTTL time.Duration
}

// NewLayered combines local and shared. Either may be nil.
func NewLayered(local, shared Cache, localTTL time.Duration) *Layered {
	return &Layered{local: local, shared: shared, localTTL: localTTL}
}

// Get implements Cache.
func (l *Layered) Get(ctx context.Context, key string) ([]byte, bool) {
	if l.local != nil {
		if v, ok := l.local.Get(ctx, key); ok {
			return v, true
		}
	}
	if l.shared == nil {
		return nil, false
	}
	v, ok := l.shared.Get(ctx, key)
	if ok && l.local != nil {
		_ = l.local.Set(ctx, key, v, l.localTTL)
	}
	return v, ok
}

// Set writes both layers.
func (l *Layered) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	var errs []error
	if l.local != nil {
		errs = append(errs, l.local.Set(ctx, key, value, min(ttl, l.localTTL)))
	}
	if l.shared != nil {
		errs = append(errs, l.shared.Set(ctx, key, value, ttl))
	}
	return errors.Join(errs...)
}

// Delete removes the key from both layers.
func (l *Layered) Delete(ctx context.Context, key string) error {
	var errs []error
	if l.local != nil {
		errs = append(errs, l.local.Delete(ctx, key))
	}
	if l.shared != nil {
		errs = append(errs, l.shared.Delete(ctx, key))
	}
	return errors.Join(errs...)
}
