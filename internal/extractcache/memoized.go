package extractcache

import (
	"context"
	"encoding/json"
	"time"

	"claim_contact_backend/internal/phoneextract"
)

// Entry is the cached form of one extraction. Misses are cached too.
type Entry struct {
	Found  bool   `json:"found"`
	Number string `json:"number,omitempty"`
	Label  string `json:"label,omitempty"`
	Raw    string `json:"raw,omitempty"`
}

// Match converts the entry back to an extraction result.
func (e Entry) Match() (phoneextract.Match, bool) {
	if !e.Found {
		return phoneextract.Match{}, false
	}
	return phoneextract.Match{
		Number: phoneextract.CanonicalNumber(e.Number),
		Label:  phoneextract.SectionLabel(e.Label),
		Raw:    e.Raw,
	}, true
}

// Memoized wraps an extractor with a cache. Cache failures fall back to a
// direct extraction.
type Memoized struct {
	extractor *phoneextract.Extractor
	cache     Cache
	variant   string
	ttl       time.Duration
}

// NewMemoized creates a Memoized extractor. variant names the classifier
// configuration so results from different classifiers never mix. A nil
// cache disables memoization.
func NewMemoized(extractor *phoneextract.Extractor, cache Cache, variant string, ttl time.Duration) *Memoized {
	return &Memoized{extractor: extractor, cache: cache, variant: variant, ttl: ttl}
}

// Variant returns the classifier variant this instance was built with.
func (m *Memoized) Variant() string {
	return m.variant
}

// Extract returns the cached result for text or computes and stores it.
func (m *Memoized) Extract(ctx context.Context, text string) (phoneextract.Match, bool) {
	if m.cache == nil {
		return m.extractor.Extract(text)
	}

	key := Key(m.variant, text)
	if data, ok := m.cache.Get(ctx, key); ok {
		var entry Entry
		if err := json.Unmarshal(data, &entry); err == nil {
			return entry.Match()
		}
		_ = m.cache.Delete(ctx, key)
	}

	match, found := m.extractor.Extract(text)
	entry := Entry{Found: found}
	if found {
		entry.Number = string(match.Number)
		entry.Label = string(match.Label)
		entry.Raw = match.Raw
	}
	if data, err := json.Marshal(entry); err == nil {
		_ = m.cache.Set(ctx, key, data, m.ttl)
	}
	return match, found
}

// Inspect runs the full diagnostic walk. Reports are never cached.
func (m *Memoized) Inspect(text string) phoneextract.Report {
	return m.extractor.Inspect(text)
}
