package deka

import (
	"context"
	"time"
)

// Provider is the capability every translation back-end implements, whether
// a classical translation API or a language model used as a translator.
// Implementations must be safe for concurrent use.
type Provider interface {
	// Descriptor returns the provider's static metadata.
	Descriptor() ProviderDescriptor

	// Translate performs one translation. Failures are reported as
	// *ProviderError.
	Translate(ctx context.Context, req TranslateRequest) (*TranslationResult, error)

	// SupportedLanguages returns the languages the back-end declares; nil
	// means it does not restrict the target language.
	SupportedLanguages() []LanguageCode

	// DefaultModel returns the model used when the selector names none, or ""
	// when the provider has no notion of models.
	DefaultModel() string

	// KnownModels lists model identifiers known at build time. The list lags
	// the vendor catalog, so it is only used for warnings.
	KnownModels() []string
}

// ProviderConfig is the per-provider configuration applied through Configure.
type ProviderConfig struct {
	APIKey     string
	BaseURL    string
	Model      string        // default model override
	Timeout    time.Duration // HTTP timeout, 0 uses the provider default
	MaxRetries int           // >0 wraps the instance with retry
	Options    map[string]string
}

// Option returns a provider-specific option value.
func (c ProviderConfig) Option(name string) string {
	if c.Options == nil {
		return ""
	}
	return c.Options[name]
}

func (c ProviderConfig) clone() ProviderConfig {
	out := c
	if c.Options != nil {
		out.Options = make(map[string]string, len(c.Options))
		for k, v := range c.Options {
			out.Options[k] = v
		}
	}
	return out
}

// Factory builds a configured provider instance.
type Factory func(cfg ProviderConfig) (Provider, error)

// Registration binds a descriptor (including its aliases) to a factory.
type Registration struct {
	Descriptor ProviderDescriptor
	Factory    Factory
}

// NotConfigured is the error factories return when a required credential is
// missing.
func NotConfigured(provider, credentialKey string) *ProviderError {
	return &ProviderError{
		Kind:     KindNotConfigured,
		Provider: provider,
		Message:  "missing credential " + credentialKey,
	}
}
