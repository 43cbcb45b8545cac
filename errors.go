package deka

import (
	"fmt"
	"strings"
)

// UnknownLanguageError is returned when a language selector has no mapping,
// or maps to more than one language. Candidates is set in the second case.
type UnknownLanguageError struct {
	Selector   string
	Candidates []LanguageCode
}

func (e *UnknownLanguageError) Error() string {
	if len(e.Candidates) == 0 {
		return fmt.Sprintf("unknown language %q", e.Selector)
	}
	parts := make([]string, 0, len(e.Candidates))
	for _, code := range e.Candidates {
		parts = append(parts, fmt.Sprintf("%s (%s)", LanguageName(code), strings.Join(selectorHints(code), ", ")))
	}
	return fmt.Sprintf("ambiguous language %q: could be %s", e.Selector, strings.Join(parts, " or "))
}

// UnknownProviderError is returned when a provider token matches neither a
// canonical id nor an alias.
type UnknownProviderError struct {
	Token     string
	Providers []string // canonical ids
	Aliases   []string
}

func (e *UnknownProviderError) Error() string {
	available := append(append([]string{}, e.Providers...), e.Aliases...)
	if len(available) == 0 {
		return fmt.Sprintf("provider %q not found: no providers are registered", e.Token)
	}
	return fmt.Sprintf("provider %q not found (available: %s)", e.Token, strings.Join(available, ", "))
}

// InvalidSelectorError is returned for malformed "provider/model" selectors.
type InvalidSelectorError struct {
	Selector string
	Reason   string
}

func (e *InvalidSelectorError) Error() string {
	return fmt.Sprintf("invalid provider selector %q: %s", e.Selector, e.Reason)
}

// ErrorKind classifies provider failures.
type ErrorKind string

const (
	KindTransport         ErrorKind = "transport"
	KindAuthentication    ErrorKind = "authentication"
	KindQuota             ErrorKind = "quota"
	KindMalformedResponse ErrorKind = "malformed_response"
	KindInvalidRequest    ErrorKind = "invalid_request"
	KindNotConfigured     ErrorKind = "not_configured"
	KindInternal          ErrorKind = "internal"
)

// ProviderError indicates a back-end failure (transport, auth, quota,
// malformed response).
type ProviderError struct {
	Kind       ErrorKind
	Provider   string
	Message    string
	StatusCode int // HTTP status when the failure came from the vendor, 0 otherwise
	Cause      error
	Retryable  bool // Whether the operation can be retried
}

func (e *ProviderError) Error() string {
	prefix := "provider error"
	if e.Provider != "" {
		prefix = fmt.Sprintf("provider error (%s, %s)", e.Provider, e.Kind)
	} else if e.Kind != "" {
		prefix = fmt.Sprintf("provider error (%s)", e.Kind)
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", prefix, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", prefix, e.Message)
}

func (e *ProviderError) Unwrap() error {
	return e.Cause
}

// CancellationError marks a slot aborted by the caller's context.
type CancellationError struct {
	Provider string
	Cause    error
}

func (e *CancellationError) Error() string {
	if e.Provider != "" {
		return fmt.Sprintf("translation with %s cancelled: %v", e.Provider, e.Cause)
	}
	return fmt.Sprintf("translation cancelled: %v", e.Cause)
}

func (e *CancellationError) Unwrap() error {
	return e.Cause
}

// InvalidRequestError rejects a call before any provider is contacted.
type InvalidRequestError struct {
	Message string
}

func (e *InvalidRequestError) Error() string {
	return "invalid request: " + e.Message
}

// ConfigError indicates a configuration key or value that cannot be applied.
type ConfigError struct {
	Key     string
	Message string
	Cause   error
}

func (e *ConfigError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("config error (%s): %s: %v", e.Key, e.Message, e.Cause)
	}
	return fmt.Sprintf("config error (%s): %s", e.Key, e.Message)
}

func (e *ConfigError) Unwrap() error {
	return e.Cause
}

// CacheError indicates a cache operation failure.
type CacheError struct {
	Message string
	Cause   error
}

func (e *CacheError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("cache error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("cache error: %s", e.Message)
}

func (e *CacheError) Unwrap() error {
	return e.Cause
}
