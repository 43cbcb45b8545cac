package provider

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ZaguanLabs/deka"
)

// MockProvider is an in-process provider for tests and offline demos.
type MockProvider struct {
	ID           string            // provider id (default: "mock")
	Translations map[string]string // Map of source text to translation
	Languages    []deka.LanguageCode
	Model        string
	Models       []string
	Delay        time.Duration // simulated latency, honours ctx
	Err          error         // returned instead of a translation

	mu          sync.Mutex
	callCount   int
	lastRequest *deka.TranslateRequest
}

// NewMockProvider creates a new mock provider with default translations.
func NewMockProvider() *MockProvider {
	return &MockProvider{
		ID: "mock",
		Translations: map[string]string{
			"Hello":        "Hola",
			"World":        "Mundo",
			"Hello World":  "Hola Mundo",
			"Good morning": "Buenos días",
		},
	}
}

// Descriptor implements deka.Provider.
func (m *MockProvider) Descriptor() deka.ProviderDescriptor {
	return deka.ProviderDescriptor{
		ID:           m.id(),
		DisplayName:  "Mock",
		Description:  "In-process provider for tests",
		Category:     deka.CategoryClassical,
		DefaultModel: m.Model,
	}
}

func (m *MockProvider) id() string {
	if m.ID == "" {
		return "mock"
	}
	return m.ID
}

func (m *MockProvider) SupportedLanguages() []deka.LanguageCode { return m.Languages }
func (m *MockProvider) DefaultModel() string                    { return m.Model }
func (m *MockProvider) KnownModels() []string                   { return m.Models }

// Translate returns mock translations.
func (m *MockProvider) Translate(ctx context.Context, req deka.TranslateRequest) (*deka.TranslationResult, error) {
	m.mu.Lock()
	m.callCount++
	m.lastRequest = &req
	m.mu.Unlock()

	if m.Delay > 0 {
		select {
		case <-time.After(m.Delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if m.Err != nil {
		return nil, m.Err
	}

	text, ok := m.Translations[req.Text]
	if !ok {
		// Bracketed text for unknown translations
		text = fmt.Sprintf("[%s] %s", req.Target, req.Text)
	}

	return &deka.TranslationResult{
		Text:           text,
		Provider:       m.id(),
		Model:          req.Model,
		SourceLanguage: req.Source,
		TargetLanguage: req.Target,
	}, nil
}

// CallCount returns the number of Translate calls.
func (m *MockProvider) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.callCount
}

// LastRequest returns the last request received, or nil.
func (m *MockProvider) LastRequest() *deka.TranslateRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastRequest
}

// Reset resets the call count and last request.
func (m *MockProvider) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.callCount = 0
	m.lastRequest = nil
}

// Registration registers m under its id; every instance is m itself.
func (m *MockProvider) Registration(aliases ...string) deka.Registration {
	desc := m.Descriptor()
	desc.Aliases = aliases
	return deka.Registration{
		Descriptor: desc,
		Factory: func(deka.ProviderConfig) (deka.Provider, error) {
			return m, nil
		},
	}
}

// Verify MockProvider implements deka.Provider
var _ deka.Provider = (*MockProvider)(nil)
