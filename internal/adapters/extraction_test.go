package adapters

import (
	"context"
	"testing"
	"time"

	"claim_contact_backend/platform/config"
	"claim_contact_backend/platform/logger"

	"github.com/alicebob/miniredis/v2"
)

func TestNewPhoneExtractorVariants(t *testing.T) {
	cases := []struct {
		name     string
		metadata bool
		text     string
		variant  string
		found    bool
	}{
		{name: "metadata rejects foreign landline", metadata: true, text: "DESCRIPCION: fijo +33142685300", variant: VariantMetadata},
		{name: "permissive accepts foreign number", metadata: false, text: "DESCRIPCION: fijo +33142685300", variant: VariantPermissive, found: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := &config.Config{PhoneMetadataEnabled: tc.metadata, ExtractionCacheTTL: time.Minute}
			extractor, closeFn := NewPhoneExtractor(cfg, logger.Discard())
			defer closeFn()

			if extractor.Variant() != tc.variant {
				t.Fatalf("unexpected variant %q", extractor.Variant())
			}
			if _, found := extractor.Extract(context.Background(), tc.text); found != tc.found {
				t.Fatalf("expected found=%v", tc.found)
			}
		})
	}
}

func TestNewPhoneExtractorSharesResultsThroughRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := &config.Config{
		PhoneMetadataEnabled: true,
		ExtractionCacheTTL:   time.Hour,
		RedisURL:             "redis://" + mr.Addr(),
	}

	extractor, closeFn := NewPhoneExtractor(cfg, logger.Discard())
	defer closeFn()

	match, found := extractor.Extract(context.Background(), "TELEF-1: 612345678")
	if !found || string(match.Number) != "612345678" {
		t.Fatalf("unexpected extraction (%+v, %v)", match, found)
	}
	if len(mr.Keys()) != 1 {
		t.Fatalf("expected one shared cache entry, got %v", mr.Keys())
	}
}

func TestNewPhoneExtractorWithoutCache(t *testing.T) {
	cfg := &config.Config{PhoneMetadataEnabled: true, RedisURL: "redis://127.0.0.1:1"}
	extractor, closeFn := NewPhoneExtractor(cfg, logger.Discard())
	defer closeFn()

	if _, found := extractor.Extract(context.Background(), "TELEF-2: 699888777"); !found {
		t.Fatal("expected extraction without cache")
	}
}

func TestNewTextSourceWithoutBackends(t *testing.T) {
	sources, err := NewTextSource(context.Background(), &config.Config{}, logger.Discard())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sources.Source != nil || sources.Archive != nil || sources.Portal != nil {
		t.Fatalf("expected no sources, got %+v", sources)
	}
	if err := sources.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
}

func TestNewTextSourcePortalOnly(t *testing.T) {
	cfg := &config.Config{PortalBaseURL: "https://portal.example", PortalUsername: "perito"}
	sources, err := NewTextSource(context.Background(), cfg, logger.Discard())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sources.Portal == nil || sources.Source == nil {
		t.Fatalf("expected portal source, got %+v", sources)
	}
	if sources.Archive != nil {
		t.Fatal("expected no archive without MinIO")
	}
}
