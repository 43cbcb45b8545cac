package deka

import (
	"context"
	"strings"

	"github.com/rs/zerolog"
)

// Translator dispatches translation requests to providers held by a Registry.
// It is safe for concurrent use once configured.
type Translator struct {
	registry       *Registry
	cache          TranslationCache
	logger         zerolog.Logger
	maxConcurrency int
}

// TranslatorOption is a functional option for configuring the Translator.
type TranslatorOption func(*Translator)

// WithLogger sets the logger used for diagnostics and comparison summaries.
func WithLogger(logger zerolog.Logger) TranslatorOption {
	return func(t *Translator) {
		t.logger = logger
	}
}

// WithCache sets the translation cache. Cached results are keyed by text,
// provider, model and languages.
func WithCache(cache TranslationCache) TranslatorOption {
	return func(t *Translator) {
		t.cache = cache
	}
}

// WithMaxConcurrency bounds the number of providers invoked at once during a
// comparison. Zero or negative means unbounded.
func WithMaxConcurrency(n int) TranslatorOption {
	return func(t *Translator) {
		t.maxConcurrency = n
	}
}

// NewTranslator creates a Translator over registry.
func NewTranslator(registry *Registry, opts ...TranslatorOption) *Translator {
	if registry == nil {
		registry = NewRegistry()
	}
	t := &Translator{
		registry: registry,
		logger:   zerolog.Nop(),
	}

	for _, opt := range opts {
		opt(t)
	}

	return t
}

// Registry returns the registry the translator resolves providers from.
func (t *Translator) Registry() *Registry {
	return t.registry
}

// CallOption customizes a single Translate or Compare call.
type CallOption func(*callOptions)

type callOptions struct {
	provider string
	source   string
}

// WithProvider selects the provider ("provider" or "provider/model") for
// Translate. Without it the registry's default provider is used.
func WithProvider(selector string) CallOption {
	return func(o *callOptions) {
		o.provider = selector
	}
}

// WithSource sets the source language. Without it, or with "auto", the
// provider detects the source language.
func WithSource(selector string) CallOption {
	return func(o *callOptions) {
		o.source = selector
	}
}

func applyCallOptions(opts []CallOption) callOptions {
	var o callOptions
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Translate translates text with a single provider. Unlike Compare, every
// failure is returned as an error.
func (t *Translator) Translate(ctx context.Context, text, target string, opts ...CallOption) (*TranslationResult, error) {
	o := applyCallOptions(opts)

	if strings.TrimSpace(text) == "" {
		return nil, &InvalidRequestError{Message: "text is empty"}
	}
	targetCode, err := NormalizeLanguage(target)
	if err != nil {
		return nil, err
	}
	source, err := normalizeSource(o.source)
	if err != nil {
		return nil, err
	}

	selector := o.provider
	if strings.TrimSpace(selector) == "" {
		selector = t.registry.DefaultProvider()
	}
	if selector == "" {
		return nil, &InvalidRequestError{Message: "no provider selected and no default provider registered"}
	}

	r, err := t.resolve(selector, targetCode)
	if err != nil {
		return nil, err
	}
	t.logDiagnostics(selector, r.diagnostics)

	outcome := Outcome{
		Selector:    selector,
		Provider:    r.id,
		Model:       r.model,
		Diagnostics: r.diagnostics,
	}
	t.invoke(ctx, &outcome, r.provider, TranslateRequest{
		Text:   text,
		Target: targetCode,
		Source: source,
		Model:  r.model,
	})
	if outcome.Err != nil {
		return nil, outcome.Err
	}
	return outcome.Result, nil
}
