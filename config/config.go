// Package config loads deka settings from the environment, .env files and
// a YAML provider file, and turns them into the flat settings map accepted
// by deka.Configure.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Environment string `envconfig:"DEKA_ENVIRONMENT" default:"local"`
	LogLevel    string `envconfig:"DEKA_LOG_LEVEL" default:"warn"`

	DefaultProvider string        `envconfig:"DEKA_DEFAULT_PROVIDER" default:""`
	Timeout         time.Duration `envconfig:"DEKA_TIMEOUT" default:"0"`
	MaxRetries      int           `envconfig:"DEKA_MAX_RETRIES" default:"0"`
	MaxConcurrency  int           `envconfig:"DEKA_MAX_CONCURRENCY" default:"0"`

	RedisURL    string `envconfig:"DEKA_REDIS_URL" default:""`
	CacheTTL    int    `envconfig:"DEKA_CACHE_TTL" default:"86400"`
	CachePrefix string `envconfig:"DEKA_CACHE_PREFIX" default:""`

	OpenAIAPIKey     string `envconfig:"OPENAI_API_KEY"`
	AnthropicAPIKey  string `envconfig:"ANTHROPIC_API_KEY"`
	GeminiAPIKey     string `envconfig:"GEMINI_API_KEY"`
	OpenRouterAPIKey string `envconfig:"OPENROUTER_API_KEY"`
	GoogleAPIKey     string `envconfig:"GOOGLE_API_KEY"`
	DeepLAPIKey      string `envconfig:"DEEPL_API_KEY"`
	GhanaNLPAPIKey   string `envconfig:"GHANANLP_API_KEY"`

	// Providers holds per-provider settings from a YAML file, keyed by
	// provider id then setting name.
	Providers map[string]map[string]string `ignored:"true"`
}

// File is the YAML configuration layout:
//
//	default_provider: deepl
//	providers:
//	  openai:
//	    api_key: sk-...
//	    model: gpt-4o
//	  deepl:
//	    api_key: abc:fx
//	    timeout: 10s
type File struct {
	DefaultProvider string                       `yaml:"default_provider"`
	Providers       map[string]map[string]string `yaml:"providers"`
}

// numericEnv lists variables envconfig cannot parse when set but empty.
var numericEnv = []string{"DEKA_TIMEOUT", "DEKA_MAX_RETRIES", "DEKA_MAX_CONCURRENCY", "DEKA_CACHE_TTL"}

// Load reads the configuration from the environment. Numeric variables set
// to an empty value (DEKA_TIMEOUT= in a .env file) count as unset.
func Load() (*Config, error) {
	for _, key := range numericEnv {
		if v, ok := os.LookupEnv(key); ok && strings.TrimSpace(v) == "" {
			if err := os.Unsetenv(key); err != nil {
				return nil, fmt.Errorf("unset %s: %w", key, err)
			}
		}
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.Timeout < 0 {
		return fmt.Errorf("DEKA_TIMEOUT must be >= 0")
	}
	if c.MaxRetries < 0 {
		return fmt.Errorf("DEKA_MAX_RETRIES must be >= 0")
	}
	if c.MaxConcurrency < 0 {
		return fmt.Errorf("DEKA_MAX_CONCURRENCY must be >= 0")
	}
	if c.CacheTTL < 0 {
		return fmt.Errorf("DEKA_CACHE_TTL must be >= 0")
	}
	return nil
}

// LoadEnvFile loads path into the process environment, overriding variables
// already set. DEKA_ENV_FILE takes precedence over path. It returns the file
// actually loaded.
func LoadEnvFile(path string) (string, error) {
	if custom := strings.TrimSpace(os.Getenv("DEKA_ENV_FILE")); custom != "" {
		if err := godotenv.Overload(custom); err == nil {
			return custom, nil
		}
	}

	requested := strings.TrimSpace(path)
	if requested == "" {
		requested = ".env"
	}
	if err := godotenv.Overload(requested); err == nil {
		return requested, nil
	}

	base := filepath.Base(requested)
	if base != "" && base != requested {
		if err := godotenv.Overload(base); err == nil {
			return base, nil
		}
	}

	return "", fmt.Errorf("failed to load env file from %s", requested)
}

// LoadFile reads a YAML configuration file.
func LoadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse config file %s: %w", path, err)
	}
	return &f, nil
}

// Merge applies a file on top of c. File settings win over environment
// settings for the same provider and key.
func (c *Config) Merge(f *File) {
	if f == nil {
		return
	}
	if strings.TrimSpace(f.DefaultProvider) != "" {
		c.DefaultProvider = strings.TrimSpace(f.DefaultProvider)
	}
	if len(f.Providers) == 0 {
		return
	}
	if c.Providers == nil {
		c.Providers = make(map[string]map[string]string, len(f.Providers))
	}
	for id, settings := range f.Providers {
		id = strings.ToLower(strings.TrimSpace(id))
		if c.Providers[id] == nil {
			c.Providers[id] = make(map[string]string, len(settings))
		}
		for k, v := range settings {
			c.Providers[id][strings.ToLower(strings.TrimSpace(k))] = v
		}
	}
}

// vendorKeys pairs each built-in provider id with its API key field.
func (c *Config) vendorKeys() map[string]string {
	return map[string]string{
		"openai":     c.OpenAIAPIKey,
		"anthropic":  c.AnthropicAPIKey,
		"gemini":     c.GeminiAPIKey,
		"openrouter": c.OpenRouterAPIKey,
		"google":     c.GoogleAPIKey,
		"deepl":      c.DeepLAPIKey,
		"ghananlp":   c.GhanaNLPAPIKey,
	}
}

// ProviderSettings returns the flat settings map for deka.Configure. The
// global timeout and retry count apply to every provider that has settings
// and does not override them.
func (c *Config) ProviderSettings() map[string]string {
	settings := make(map[string]string)

	perProvider := make(map[string]map[string]string)
	for id, key := range c.vendorKeys() {
		if strings.TrimSpace(key) != "" {
			perProvider[id] = map[string]string{"api_key": strings.TrimSpace(key)}
		}
	}
	for id, values := range c.Providers {
		if perProvider[id] == nil {
			perProvider[id] = make(map[string]string, len(values))
		}
		for k, v := range values {
			perProvider[id][k] = v
		}
	}

	ids := make([]string, 0, len(perProvider))
	for id := range perProvider {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	for _, id := range ids {
		values := perProvider[id]
		if c.Timeout > 0 && !hasAny(values, "timeout") {
			values["timeout"] = c.Timeout.String()
		}
		if c.MaxRetries > 0 && !hasAny(values, "max_retries", "retries") {
			values["max_retries"] = strconv.Itoa(c.MaxRetries)
		}
		for k, v := range values {
			settings[id+"_"+k] = v
		}
	}

	if c.DefaultProvider != "" {
		settings["default_provider"] = c.DefaultProvider
	}
	return settings
}

func hasAny(values map[string]string, keys ...string) bool {
	for _, k := range keys {
		if _, ok := values[k]; ok {
			return true
		}
	}
	return false
}
