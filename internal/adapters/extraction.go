// Package adapters wires infrastructure collaborators into the claims
// domain: the memoized phone extractor and the document text sources.
package adapters

import (
	"context"
	"time"

	"claim_contact_backend/internal/adapters/storage"
	"claim_contact_backend/internal/extractcache"
	"claim_contact_backend/internal/phoneextract"
	"claim_contact_backend/internal/portal"
	"claim_contact_backend/internal/textsource"
	"claim_contact_backend/platform/config"
	"claim_contact_backend/platform/logger"
	"claim_contact_backend/platform/phone"
)

const (
	VariantMetadata   = "metadata"
	VariantPermissive = "permissive"

	localCacheTTL     = 10 * time.Minute
	localCacheCleanup = 30 * time.Minute
)

// ExtractorConfig is what NewPhoneExtractor reads.
type ExtractorConfig interface {
	config.ExtractionConfig
	GetRedisURL() string
}

// NewPhoneExtractor builds the extractor used by every binary. The
// classifier uses phone metadata unless disabled. Results are cached in
// process and, when REDIS_URL is set, in redis. The returned func releases
// the redis client.
func NewPhoneExtractor(cfg ExtractorConfig, log *logger.Logger) (*extractcache.Memoized, func()) {
	var classifier phoneextract.Classifier
	variant := VariantPermissive
	if cfg.GetPhoneMetadataEnabled() {
		classifier = phoneextract.NewClassifier(phone.NewLibMetadata())
		variant = VariantMetadata
	} else {
		log.ClassifierFallback("PHONE_METADATA_ENABLED is false")
	}

	ttl := cfg.GetExtractionCacheTTL()
	if ttl <= 0 {
		return extractcache.NewMemoized(phoneextract.New(classifier), nil, variant, 0), func() {}
	}

	var cache extractcache.Cache = extractcache.NewMemoryCache(min(ttl, localCacheTTL), localCacheCleanup)
	closeFn := func() {}

	if redisURL := cfg.GetRedisURL(); redisURL != "" {
		shared, err := extractcache.NewRedisCacheFromURL(redisURL)
		if err != nil {
			log.Warn("extraction cache: redis unavailable, using in-process cache only", "error", err)
		} else {
			cache = extractcache.NewLayered(cache, shared, min(ttl, localCacheTTL))
			closeFn = func() { _ = shared.Close() }
		}
	}

	return extractcache.NewMemoized(phoneextract.New(classifier), cache, variant, ttl), closeFn
}

// TextSourceConfig is what NewTextSource reads.
type TextSourceConfig interface {
	config.MinIOConfig
	config.PortalConfig
}

// TextSources holds the configured document text sources.
type TextSources struct {
	// Source tries object storage first, then the portal.
	Source textsource.Source
	// Archive is the object store, nil when MinIO is not configured.
	Archive *textsource.ObjectStore
	// Portal is the portal reader, nil when the portal is not configured.
	Portal *portal.Reader
}

// Close releases the portal browser.
func (t *TextSources) Close() error {
	if t == nil || t.Portal == nil {
		return nil
	}
	return t.Portal.Close()
}

// NewTextSource assembles the text sources enabled by cfg. Text read from
// the portal is archived to object storage when both are configured.
// Source is nil when neither is.
func NewTextSource(ctx context.Context, cfg TextSourceConfig, log *logger.Logger) (*TextSources, error) {
	sources := &TextSources{}
	var chain textsource.Chain

	if cfg.IsMinIOEnabled() {
		store, err := storage.NewMinIOService(cfg)
		if err != nil {
			return nil, err
		}
		bucket := cfg.GetMinioBucketClaimDocuments()
		if err := store.EnsureBucketExists(ctx, bucket); err != nil {
			return nil, err
		}
		sources.Archive = textsource.NewObjectStore(store, bucket, cfg.GetClaimDocumentPrefix())
		chain = append(chain, sources.Archive)
	}

	if cfg.IsPortalEnabled() {
		profile, err := portal.LoadProfile(cfg.GetPortalProfilePath())
		if err != nil {
			return nil, err
		}
		sources.Portal = portal.NewReader(cfg, profile, log)

		var portalSource textsource.Source = sources.Portal
		if sources.Archive != nil {
			portalSource = textsource.Archived{
				Source:  sources.Portal,
				Archive: sources.Archive,
				OnError: func(claimNumber string, err error) {
					log.Warn("failed to archive portal text", "claim_number", claimNumber, "error", err)
				},
			}
		}
		chain = append(chain, portalSource)
	}

	switch len(chain) {
	case 0:
		log.Warn("no document text source configured; claims need text on import")
	case 1:
		sources.Source = chain[0]
	default:
		sources.Source = chain
	}
	return sources, nil
}
