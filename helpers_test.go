package deka

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// stubProvider is a configurable in-process provider.
type stubProvider struct {
	id           string
	languages    []LanguageCode
	defaultModel string
	models       []string
	delay        time.Duration
	ignoreCtx    bool // sleep through cancellation
	err          error
	panicValue   any

	calls   atomic.Int32
	lastReq atomic.Pointer[TranslateRequest]
}

func (p *stubProvider) Descriptor() ProviderDescriptor {
	return ProviderDescriptor{ID: p.id, DisplayName: p.id, Category: CategoryClassical}
}

func (p *stubProvider) Translate(ctx context.Context, req TranslateRequest) (*TranslationResult, error) {
	p.calls.Add(1)
	p.lastReq.Store(&req)

	if p.panicValue != nil {
		panic(p.panicValue)
	}
	if p.delay > 0 {
		if p.ignoreCtx {
			time.Sleep(p.delay)
		} else {
			select {
			case <-time.After(p.delay):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
	}
	if p.err != nil {
		return nil, p.err
	}
	return &TranslationResult{
		Text:  fmt.Sprintf("[%s:%s] %s", p.id, req.Target, req.Text),
		Model: req.Model,
	}, nil
}

func (p *stubProvider) SupportedLanguages() []LanguageCode { return p.languages }
func (p *stubProvider) DefaultModel() string               { return p.defaultModel }
func (p *stubProvider) KnownModels() []string              { return p.models }

func stubRegistration(p *stubProvider, aliases ...string) Registration {
	return Registration{
		Descriptor: ProviderDescriptor{ID: p.id, DisplayName: p.id, Category: CategoryClassical, Aliases: aliases},
		Factory: func(ProviderConfig) (Provider, error) {
			return p, nil
		},
	}
}

func newStubTranslator(t *testing.T, providers []*stubProvider, opts ...TranslatorOption) *Translator {
	t.Helper()
	reg := NewRegistry()
	for _, p := range providers {
		if err := reg.Register(stubRegistration(p)); err != nil {
			t.Fatalf("Register(%s) failed: %v", p.id, err)
		}
	}
	return NewTranslator(reg, opts...)
}

// memCache is a map-backed TranslationCache.
type memCache struct {
	mu     sync.Mutex
	data   map[string]string
	setErr error
}

func newMemCache() *memCache {
	return &memCache{data: make(map[string]string)}
}

func (c *memCache) Get(_ context.Context, key string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	val, ok := c.data[key]
	return val, ok
}

func (c *memCache) Set(_ context.Context, key string, value string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.setErr != nil {
		return c.setErr
	}
	c.data[key] = value
	return nil
}
