package deka

import (
	"context"
	"encoding/json"

	"github.com/rs/zerolog"
)

// TranslationCache is the interface for translation caching.
type TranslationCache interface {
	// Get retrieves a cached value. Returns "" and false if not found or expired.
	Get(ctx context.Context, key string) (string, bool)

	// Set stores a value in the cache.
	Set(ctx context.Context, key string, value string) error
}

// cachedTranslation is the value stored per cache key.
type cachedTranslation struct {
	Text           string       `json:"text"`
	Model          string       `json:"model,omitempty"`
	SourceLanguage LanguageCode `json:"source_language,omitempty"`
}

// CachedProvider serves repeated requests from a TranslationCache and only
// calls the wrapped provider on a miss. Cache failures never fail a
// translation; they are logged and the call proceeds uncached.
type CachedProvider struct {
	Provider
	cache  TranslationCache
	logger zerolog.Logger
}

// NewCachedProvider wraps provider with cache.
func NewCachedProvider(provider Provider, cache TranslationCache, logger zerolog.Logger) *CachedProvider {
	return &CachedProvider{
		Provider: provider,
		cache:    cache,
		logger:   logger,
	}
}

// Translate implements Provider.
func (p *CachedProvider) Translate(ctx context.Context, req TranslateRequest) (*TranslationResult, error) {
	id := p.Descriptor().ID
	key := CacheKey(HashText(req.Text), id, req.Model, req.Source, req.Target)

	if raw, ok := p.cache.Get(ctx, key); ok {
		var entry cachedTranslation
		if err := json.Unmarshal([]byte(raw), &entry); err == nil {
			return &TranslationResult{
				Text:           entry.Text,
				Provider:       id,
				Model:          entry.Model,
				SourceLanguage: entry.SourceLanguage,
				TargetLanguage: req.Target,
				Success:        true,
				Metadata:       map[string]any{"cached": true},
			}, nil
		}
		p.logger.Warn().Str("provider", id).Msg("discarding unreadable cache entry")
	}

	res, err := p.Provider.Translate(ctx, req)
	if err != nil {
		return nil, err
	}

	data, err := json.Marshal(cachedTranslation{
		Text:           res.Text,
		Model:          res.Model,
		SourceLanguage: res.SourceLanguage,
	})
	if err == nil {
		err = p.cache.Set(ctx, key, string(data))
	}
	if err != nil {
		p.logger.Warn().Err(err).Str("provider", id).Msg("cache write failed")
	}
	return res, nil
}

// Unwrap returns the wrapped provider.
func (p *CachedProvider) Unwrap() Provider {
	return p.Provider
}
