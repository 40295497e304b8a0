package extractcache

import (
	"context"
	"strings"
	"testing"
	"time"

	"claim_contact_backend/internal/phoneextract"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newRedisCache(t *testing.T) (*RedisCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisCache(client), mr
}

func TestKey(t *testing.T) {
	a := Key("metadata", "DESCRIPCION: 612345678")
	b := Key("permissive", "DESCRIPCION: 612345678")
	if a == b {
		t.Fatal("expected variants to produce distinct keys")
	}
	if !strings.HasPrefix(a, "claimphone:v1:metadata:") || len(a) != len("claimphone:v1:metadata:")+64 {
		t.Fatalf("unexpected key shape %q", a)
	}
	if Key("metadata", "DESCRIPCION: 612345678") != a {
		t.Fatal("expected key to be deterministic")
	}
}

func TestMemoryCache(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache(time.Minute, time.Minute)

	if _, ok := c.Get(ctx, "k"); ok {
		t.Fatal("expected miss")
	}
	_ = c.Set(ctx, "k", []byte("v"), 0)
	if v, ok := c.Get(ctx, "k"); !ok || string(v) != "v" {
		t.Fatalf("expected hit, got (%q, %v)", v, ok)
	}
	_ = c.Delete(ctx, "k")
	if c.Len() != 0 {
		t.Fatalf("expected empty cache, got %d", c.Len())
	}
}

func TestRedisCacheExpiry(t *testing.T) {
	ctx := context.Background()
	c, mr := newRedisCache(t)

	if err := c.Set(ctx, "k", []byte("v"), time.Minute); err != nil {
		t.Fatalf("set: %v", err)
	}
	if v, ok := c.Get(ctx, "k"); !ok || string(v) != "v" {
		t.Fatalf("expected hit, got (%q, %v)", v, ok)
	}

	mr.FastForward(2 * time.Minute)
	if _, ok := c.Get(ctx, "k"); ok {
		t.Fatal("expected entry to expire")
	}
}

func TestLayeredBackfillsLocal(t *testing.T) {
	ctx := context.Background()
	local := NewMemoryCache(time.Minute, time.Minute)
	shared, _ := newRedisCache(t)
	l := NewLayered(local, shared, time.Minute)

	_ = shared.Set(ctx, "k", []byte("v"), time.Hour)
	if v, ok := l.Get(ctx, "k"); !ok || string(v) != "v" {
		t.Fatalf("expected shared hit, got (%q, %v)", v, ok)
	}
	if v, ok := local.Get(ctx, "k"); !ok || string(v) != "v" {
		t.Fatal("expected local layer to be back-filled")
	}

	if err := l.Delete(ctx, "k"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, ok := l.Get(ctx, "k"); ok {
		t.Fatal("expected delete to clear both layers")
	}
}

type countingCache struct {
	*MemoryCache
	sets int
}

func (c *countingCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	c.sets++
	return c.MemoryCache.Set(ctx, key, value, ttl)
}

func TestMemoizedCachesHitsAndMisses(t *testing.T) {
	ctx := context.Background()
	cache := &countingCache{MemoryCache: NewMemoryCache(time.Minute, time.Minute)}
	m := NewMemoized(phoneextract.New(nil), cache, "permissive", time.Minute)

	hit := "OBSERVACIONES MANUALES: llamar 612 345 678"
	miss := "sin telefono"

	for i := 0; i < 3; i++ {
		got, ok := m.Extract(ctx, hit)
		if !ok || got.Number != "612345678" || got.Label != phoneextract.LabelManualNotes {
			t.Fatalf("unexpected match %+v (%v)", got, ok)
		}
		if _, ok := m.Extract(ctx, miss); ok {
			t.Fatal("expected miss")
		}
	}

	if cache.sets != 2 {
		t.Fatalf("expected one store per document, got %d", cache.sets)
	}
}

func TestMemoizedDropsCorruptEntries(t *testing.T) {
	ctx := context.Background()
	cache := NewMemoryCache(time.Minute, time.Minute)
	m := NewMemoized(phoneextract.New(nil), cache, "permissive", time.Minute)

	text := "TELEF-1: 699888777"
	_ = cache.Set(ctx, Key("permissive", text), []byte("{not json"), 0)

	got, ok := m.Extract(ctx, text)
	if !ok || got.Number != "699888777" {
		t.Fatalf("expected recomputed match, got %+v (%v)", got, ok)
	}
}

func TestMemoizedWithoutCache(t *testing.T) {
	m := NewMemoized(phoneextract.New(nil), nil, "permissive", 0)
	if _, ok := m.Extract(context.Background(), "TELEF-2: 612345678"); !ok {
		t.Fatal("expected direct extraction")
	}
}
