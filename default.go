package deka

import (
	"context"
	"sync/atomic"
)

var defaultTranslator atomic.Pointer[Translator]

func init() {
	defaultTranslator.Store(NewTranslator(NewRegistry()))
}

// Default returns the process-wide Translator used by the package-level
// functions. Built-in providers are registered into its registry by
// importing github.com/ZaguanLabs/deka/provider.
func Default() *Translator {
	return defaultTranslator.Load()
}

// SetDefault replaces the process-wide Translator, for example to attach a
// logger or cache to the default registry:
//
//	deka.SetDefault(deka.NewTranslator(deka.Default().Registry(), deka.WithLogger(logger)))
func SetDefault(t *Translator) {
	if t != nil {
		defaultTranslator.Store(t)
	}
}

// Translate translates text with a single provider of the default Translator.
func Translate(ctx context.Context, text, target string, opts ...CallOption) (*TranslationResult, error) {
	return Default().Translate(ctx, text, target, opts...)
}

// Compare fans text out to the selected providers of the default Translator.
func Compare(ctx context.Context, text, target string, selectors []string, opts ...CallOption) (*ComparisonResult, error) {
	return Default().Compare(ctx, text, target, selectors, opts...)
}

// CompareAsync is Compare running in the background.
func CompareAsync(ctx context.Context, text, target string, selectors []string, opts ...CallOption) *Future {
	return Default().CompareAsync(ctx, text, target, selectors, opts...)
}

// ListProviders lists the providers registered in the default registry.
func ListProviders() []ProviderDescriptor {
	return Default().Registry().ListProviders()
}

// Configure applies provider settings to the default registry. See
// Registry.Configure for the accepted keys. It must not run concurrently with
// translations.
func Configure(settings map[string]string) error {
	return Default().Registry().Configure(settings)
}
