package provider

import (
	"context"
	"net/http"
	"slices"

	"github.com/ZaguanLabs/deka"
)

// GhanaNLPBaseURL is the Khaya translation endpoint.
const GhanaNLPBaseURL = "https://translation-api.ghananlp.org/v1"

var ghanaNLPDescriptor = deka.ProviderDescriptor{
	ID:            "ghananlp",
	DisplayName:   "GhanaNLP Khaya",
	Description:   "Translation for Ghanaian and other African languages",
	Category:      deka.CategoryClassical,
	Aliases:       []string{"khaya", "ghana-nlp"},
	CredentialKey: "ghananlp_api_key",
}

// Khaya translates between English and these languages.
var ghanaNLPLanguages = []deka.LanguageCode{
	"en", "tw", "gaa", "ee", "fat", "dag", "gur", "yo", "ki", "luo", "mer",
}

// GhanaNLPProvider implements deka.Provider over the Khaya API. Every pair
// has English on one side and the source language must be known.
type GhanaNLPProvider struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

// GhanaNLPConfig holds configuration for the GhanaNLP provider.
type GhanaNLPConfig struct {
	APIKey  string
	BaseURL string // default: GhanaNLPBaseURL
	Client  *http.Client
}

// NewGhanaNLPProvider creates a GhanaNLP provider.
func NewGhanaNLPProvider(cfg GhanaNLPConfig) *GhanaNLPProvider {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = GhanaNLPBaseURL
	}
	client := cfg.Client
	if client == nil {
		client = newHTTPClient(0)
	}
	return &GhanaNLPProvider{apiKey: cfg.APIKey, baseURL: baseURL, client: client}
}

func newGhanaNLP(cfg deka.ProviderConfig) (deka.Provider, error) {
	if cfg.APIKey == "" {
		return nil, deka.NotConfigured(ghanaNLPDescriptor.ID, ghanaNLPDescriptor.CredentialKey)
	}
	return NewGhanaNLPProvider(GhanaNLPConfig{
		APIKey:  cfg.APIKey,
		BaseURL: baseURLOr(cfg, GhanaNLPBaseURL),
		Client:  newHTTPClient(cfg.Timeout),
	}), nil
}

func (p *GhanaNLPProvider) Descriptor() deka.ProviderDescriptor     { return ghanaNLPDescriptor }
func (p *GhanaNLPProvider) SupportedLanguages() []deka.LanguageCode { return ghanaNLPLanguages }
func (p *GhanaNLPProvider) DefaultModel() string                    { return "" }
func (p *GhanaNLPProvider) KnownModels() []string                   { return nil }

type ghanaNLPRequest struct {
	In   string `json:"in"`
	Lang string `json:"lang"`
}

// Translate implements deka.Provider.
func (p *GhanaNLPProvider) Translate(ctx context.Context, req deka.TranslateRequest) (*deka.TranslationResult, error) {
	source := req.Source
	if source == "" || source == deka.AutoDetect {
		// Khaya has no detection; the usual direction is out of English.
		source = "en"
	}
	if source == req.Target {
		return nil, p.invalid("source and target are both " + string(source))
	}
	if source != "en" && req.Target != "en" {
		return nil, p.invalid("one side of the language pair must be English")
	}
	for _, code := range []deka.LanguageCode{source, req.Target} {
		if !slices.Contains(ghanaNLPLanguages, code) {
			return nil, p.invalid(deka.LanguageName(code) + " is not supported")
		}
	}

	pair := string(source) + "-" + string(req.Target)
	headers := map[string]string{
		"Ocp-Apim-Subscription-Key": p.apiKey,
		"Cache-Control":             "no-cache",
	}

	var text string
	if err := postJSON(ctx, p.client, ghanaNLPDescriptor.ID, p.baseURL+"/translate", headers, ghanaNLPRequest{In: req.Text, Lang: pair}, &text); err != nil {
		return nil, err
	}

	return &deka.TranslationResult{
		Text:           text,
		Provider:       ghanaNLPDescriptor.ID,
		SourceLanguage: source,
		TargetLanguage: req.Target,
		Metadata:       map[string]any{"language_pair": pair},
	}, nil
}

func (p *GhanaNLPProvider) invalid(msg string) *deka.ProviderError {
	return &deka.ProviderError{
		Kind:     deka.KindInvalidRequest,
		Provider: ghanaNLPDescriptor.ID,
		Message:  msg,
	}
}
