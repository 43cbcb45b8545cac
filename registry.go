package deka

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Registry maps provider ids and aliases to descriptors, factories and
// configuration.
//
// Registration and Configure mutate the registry and must happen before
// concurrent use begins; they are not synchronized against in-flight
// translations. Lookups and CreateInstance are safe for concurrent use.
type Registry struct {
	descriptors     map[string]ProviderDescriptor
	factories       map[string]Factory
	aliases         map[string]string
	configs         map[string]ProviderConfig
	defaultProvider string

	mu        sync.Mutex
	instances map[string]Provider
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		descriptors: make(map[string]ProviderDescriptor),
		factories:   make(map[string]Factory),
		aliases:     make(map[string]string),
		configs:     make(map[string]ProviderConfig),
		instances:   make(map[string]Provider),
	}
}

// Register adds a provider and its aliases. Ids and aliases share one
// namespace; a clash is an error.
func (r *Registry) Register(reg Registration) error {
	if r == nil {
		return fmt.Errorf("registry is nil")
	}
	if reg.Factory == nil {
		return fmt.Errorf("provider %q has no factory", reg.Descriptor.ID)
	}
	id := normalizeProviderName(reg.Descriptor.ID)
	if id == "" {
		return fmt.Errorf("provider id is required")
	}
	if strings.Contains(id, SelectorSeparator) {
		return fmt.Errorf("provider id %q must not contain %q", id, SelectorSeparator)
	}
	if r.taken(id) {
		return fmt.Errorf("provider %q is already registered", id)
	}

	aliases := make([]string, 0, len(reg.Descriptor.Aliases))
	for _, alias := range reg.Descriptor.Aliases {
		a := normalizeProviderName(alias)
		if a == "" || a == id {
			continue
		}
		if r.taken(a) {
			return fmt.Errorf("alias %q of provider %q is already registered", a, id)
		}
		aliases = append(aliases, a)
	}

	desc := reg.Descriptor
	desc.ID = id
	desc.Aliases = aliases
	if desc.CredentialKey == "" {
		desc.CredentialKey = id + "_api_key"
	}

	r.descriptors[id] = desc
	r.factories[id] = reg.Factory
	for _, a := range aliases {
		r.aliases[a] = id
	}
	if r.defaultProvider == "" {
		r.defaultProvider = id
	}
	return nil
}

// MustRegister registers providers and panics on error. It is meant for
// initialization code.
func (r *Registry) MustRegister(regs ...Registration) {
	for _, reg := range regs {
		if err := r.Register(reg); err != nil {
			panic("deka: " + err.Error())
		}
	}
}

func (r *Registry) taken(name string) bool {
	if _, ok := r.descriptors[name]; ok {
		return true
	}
	_, ok := r.aliases[name]
	return ok
}

// canonical resolves an id or alias to the canonical id.
func (r *Registry) canonical(token string) (string, bool) {
	name := normalizeProviderName(token)
	if id, ok := r.aliases[name]; ok {
		return id, true
	}
	if _, ok := r.descriptors[name]; ok {
		return name, true
	}
	return "", false
}

// Resolve returns the descriptor for a provider id or alias.
func (r *Registry) Resolve(token string) (ProviderDescriptor, error) {
	id, ok := r.canonical(token)
	if !ok {
		return ProviderDescriptor{}, r.unknown(token)
	}
	return r.descriptors[id], nil
}

func (r *Registry) unknown(token string) *UnknownProviderError {
	return &UnknownProviderError{
		Token:     token,
		Providers: r.ProviderNames(),
		Aliases:   r.aliasNames(),
	}
}

// ListProviders returns every registered provider exactly once, sorted by id.
func (r *Registry) ListProviders() []ProviderDescriptor {
	out := make([]ProviderDescriptor, 0, len(r.descriptors))
	for _, id := range r.ProviderNames() {
		out = append(out, r.descriptors[id])
	}
	return out
}

// ProviderNames returns the sorted canonical ids.
func (r *Registry) ProviderNames() []string {
	names := make([]string, 0, len(r.descriptors))
	for name := range r.descriptors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (r *Registry) aliasNames() []string {
	names := make([]string, 0, len(r.aliases))
	for name := range r.aliases {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Aliases returns a copy of the alias table (alias -> canonical id).
func (r *Registry) Aliases() map[string]string {
	out := make(map[string]string, len(r.aliases))
	for k, v := range r.aliases {
		out[k] = v
	}
	return out
}

// DefaultProvider returns the id used when a call names no provider.
func (r *Registry) DefaultProvider() string {
	return r.defaultProvider
}

// SetDefaultProvider changes the provider used when a call names none.
func (r *Registry) SetDefaultProvider(token string) error {
	id, ok := r.canonical(token)
	if !ok {
		return r.unknown(token)
	}
	r.defaultProvider = id
	return nil
}

// Config returns a copy of the configuration stored for a provider.
func (r *Registry) Config(token string) (ProviderConfig, error) {
	id, ok := r.canonical(token)
	if !ok {
		return ProviderConfig{}, r.unknown(token)
	}
	return r.configs[id].clone(), nil
}

// CreateInstance returns a configured provider instance. Instances are built
// once per configuration and shared; concurrent callers get the same value.
func (r *Registry) CreateInstance(token string) (Provider, error) {
	id, ok := r.canonical(token)
	if !ok {
		return nil, r.unknown(token)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if p, ok := r.instances[id]; ok {
		return p, nil
	}

	cfg := r.configs[id].clone()
	p, err := r.factories[id](cfg)
	if err != nil {
		var provErr *ProviderError
		if errors.As(err, &provErr) {
			return nil, err
		}
		return nil, &ProviderError{
			Kind:     KindNotConfigured,
			Provider: id,
			Message:  "cannot create provider instance",
			Cause:    err,
		}
	}
	if p == nil {
		return nil, &ProviderError{Kind: KindInternal, Provider: id, Message: "factory returned no provider"}
	}
	if cfg.MaxRetries > 0 {
		retry := DefaultRetryConfig()
		retry.MaxRetries = cfg.MaxRetries
		p = NewRetryableProvider(p, retry)
	}

	r.instances[id] = p
	return p, nil
}

// ProviderLanguages returns the language set a provider declares. Providers
// that cannot be instantiated fall back to nil (unrestricted).
func (r *Registry) ProviderLanguages(token string) ([]LanguageCode, error) {
	p, err := r.CreateInstance(token)
	if err != nil {
		var unknown *UnknownProviderError
		if errors.As(err, &unknown) {
			return nil, err
		}
		return nil, nil
	}
	return p.SupportedLanguages(), nil
}

// Configure applies settings keyed by provider id, alias or credential key:
//
//	"openai":             API key
//	"openai_api_key":     API key
//	"openai_base_url":    base URL
//	"openai_model":       default model
//	"openai_timeout":     Go duration ("30s") or seconds ("30")
//	"openai_max_retries": retry attempts
//	"openai_<other>":     provider option
//	"default_provider":   provider used when a call names none
//
// Settings merge into the existing configuration. Either every key applies or
// none does. Configure must not run concurrently with translations.
func (r *Registry) Configure(settings map[string]string) error {
	next := make(map[string]ProviderConfig, len(r.configs))
	for id, cfg := range r.configs {
		next[id] = cfg.clone()
	}
	defaultProvider := r.defaultProvider

	keys := make([]string, 0, len(settings))
	for k := range settings {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, rawKey := range keys {
		value := strings.TrimSpace(settings[rawKey])
		key := strings.ToLower(strings.TrimSpace(rawKey))

		if key == "default_provider" {
			id, ok := r.canonical(value)
			if !ok {
				return &ConfigError{Key: rawKey, Message: "unknown provider", Cause: r.unknown(value)}
			}
			defaultProvider = id
			continue
		}

		id, setting, ok := r.splitConfigKey(key)
		if !ok {
			return &ConfigError{Key: rawKey, Message: "no registered provider matches this key"}
		}
		cfg := next[id]
		if err := applySetting(&cfg, setting, value); err != nil {
			return &ConfigError{Key: rawKey, Message: "invalid value", Cause: err}
		}
		next[id] = cfg
	}

	r.configs = next
	r.defaultProvider = defaultProvider

	r.mu.Lock()
	r.instances = make(map[string]Provider)
	r.mu.Unlock()
	return nil
}

// splitConfigKey finds the provider a key belongs to. The longest matching
// id or alias wins so "openrouter_api_key" never lands on a shorter id.
func (r *Registry) splitConfigKey(key string) (id string, setting string, ok bool) {
	if canonical, found := r.canonical(key); found {
		return canonical, "api_key", true
	}

	best := ""
	for _, name := range append(r.ProviderNames(), r.aliasNames()...) {
		if strings.HasPrefix(key, name+"_") && len(name) > len(best) {
			best = name
		}
	}
	if best == "" {
		return "", "", false
	}
	canonical, _ := r.canonical(best)
	return canonical, strings.TrimPrefix(key, best+"_"), true
}

func applySetting(cfg *ProviderConfig, setting, value string) error {
	switch setting {
	case "api_key", "key", "token":
		cfg.APIKey = value
	case "base_url", "url", "endpoint":
		cfg.BaseURL = value
	case "model":
		cfg.Model = value
	case "timeout":
		d, err := parseTimeout(value)
		if err != nil {
			return err
		}
		cfg.Timeout = d
	case "max_retries", "retries":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("parse retries: %w", err)
		}
		if n < 0 {
			return fmt.Errorf("retries must be >= 0")
		}
		cfg.MaxRetries = n
	default:
		if cfg.Options == nil {
			cfg.Options = make(map[string]string)
		}
		cfg.Options[setting] = value
	}
	return nil
}

func parseTimeout(value string) (time.Duration, error) {
	if d, err := time.ParseDuration(value); err == nil {
		if d < 0 {
			return 0, fmt.Errorf("timeout must be >= 0")
		}
		return d, nil
	}
	secs, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("parse timeout %q: expected duration or seconds", value)
	}
	if secs < 0 {
		return 0, fmt.Errorf("timeout must be >= 0")
	}
	return time.Duration(secs * float64(time.Second)), nil
}

func normalizeProviderName(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}
