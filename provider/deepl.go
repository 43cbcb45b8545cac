package provider

import (
	"context"
	"net/http"
	"strings"

	"github.com/ZaguanLabs/deka"
)

const (
	// DeepLBaseURL is the DeepL Pro endpoint.
	DeepLBaseURL = "https://api.deepl.com"
	// DeepLFreeBaseURL serves keys ending in ":fx".
	DeepLFreeBaseURL = "https://api-free.deepl.com"
)

var deeplDescriptor = deka.ProviderDescriptor{
	ID:            "deepl",
	DisplayName:   "DeepL",
	Description:   "DeepL neural machine translation",
	Category:      deka.CategoryClassical,
	CredentialKey: "deepl_api_key",
}

// DeepL requires a regional variant for some targets.
var deeplTargets = map[deka.LanguageCode]string{
	"en":    "EN-US",
	"pt":    "PT-PT",
	"pt-BR": "PT-BR",
	"zh":    "ZH-HANS",
	"zh-TW": "ZH-HANT",
	"no":    "NB",
}

var deeplLanguages = []deka.LanguageCode{
	"ar", "bg", "cs", "da", "de", "el", "en", "es", "et", "fi", "fr", "he", "hu", "id",
	"it", "ja", "ko", "lt", "lv", "no", "nl", "pl", "pt", "pt-BR", "ro", "ru", "sk", "sl",
	"sv", "th", "tr", "uk", "vi", "zh", "zh-TW",
}

// DeepL model_type values.
var deeplModels = []string{"quality_optimized", "latency_optimized", "prefer_quality_optimized"}

// DeepLProvider implements deka.Provider over the DeepL v2 API.
type DeepLProvider struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

// DeepLConfig holds configuration for the DeepL provider.
type DeepLConfig struct {
	APIKey  string
	BaseURL string // default: picked from the key type
	Client  *http.Client
}

// NewDeepLProvider creates a DeepL provider.
func NewDeepLProvider(cfg DeepLConfig) *DeepLProvider {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = DeepLBaseURL
		if strings.HasSuffix(cfg.APIKey, ":fx") {
			baseURL = DeepLFreeBaseURL
		}
	}
	client := cfg.Client
	if client == nil {
		client = newHTTPClient(0)
	}
	return &DeepLProvider{apiKey: cfg.APIKey, baseURL: baseURL, client: client}
}

func newDeepL(cfg deka.ProviderConfig) (deka.Provider, error) {
	if cfg.APIKey == "" {
		return nil, deka.NotConfigured(deeplDescriptor.ID, deeplDescriptor.CredentialKey)
	}
	return NewDeepLProvider(DeepLConfig{
		APIKey:  cfg.APIKey,
		BaseURL: cfg.BaseURL,
		Client:  newHTTPClient(cfg.Timeout),
	}), nil
}

func (p *DeepLProvider) Descriptor() deka.ProviderDescriptor     { return deeplDescriptor }
func (p *DeepLProvider) SupportedLanguages() []deka.LanguageCode { return deeplLanguages }
func (p *DeepLProvider) DefaultModel() string                    { return "" }
func (p *DeepLProvider) KnownModels() []string                   { return deeplModels }

type deeplRequest struct {
	Text       []string `json:"text"`
	TargetLang string   `json:"target_lang"`
	SourceLang string   `json:"source_lang,omitempty"`
	ModelType  string   `json:"model_type,omitempty"`
}

type deeplResponse struct {
	Translations []struct {
		DetectedSourceLanguage string `json:"detected_source_language"`
		Text                   string `json:"text"`
		BilledCharacters       int    `json:"billed_characters"`
		ModelTypeUsed          string `json:"model_type_used"`
	} `json:"translations"`
}

// Translate implements deka.Provider.
func (p *DeepLProvider) Translate(ctx context.Context, req deka.TranslateRequest) (*deka.TranslationResult, error) {
	body := deeplRequest{
		Text:       []string{req.Text},
		TargetLang: deeplTarget(req.Target),
		ModelType:  req.Model,
	}
	if req.Source != "" && req.Source != deka.AutoDetect {
		body.SourceLang = deeplSource(req.Source)
	}

	headers := map[string]string{"Authorization": "DeepL-Auth-Key " + p.apiKey}

	var resp deeplResponse
	if err := postJSON(ctx, p.client, deeplDescriptor.ID, p.baseURL+"/v2/translate", headers, body, &resp); err != nil {
		return nil, err
	}

	if len(resp.Translations) == 0 {
		return nil, &deka.ProviderError{
			Kind:     deka.KindMalformedResponse,
			Provider: deeplDescriptor.ID,
			Message:  "no translation returned",
		}
	}
	tr := resp.Translations[0]

	source := req.Source
	if tr.DetectedSourceLanguage != "" {
		if code, ok := detectedLanguage(tr.DetectedSourceLanguage); ok {
			source = code
		}
	}

	metadata := map[string]any{"target_lang": body.TargetLang}
	if tr.DetectedSourceLanguage != "" {
		metadata["detected_source_language"] = tr.DetectedSourceLanguage
	}
	if tr.BilledCharacters > 0 {
		metadata["billed_characters"] = tr.BilledCharacters
	}

	return &deka.TranslationResult{
		Text:           tr.Text,
		Provider:       deeplDescriptor.ID,
		Model:          tr.ModelTypeUsed,
		SourceLanguage: source,
		TargetLanguage: req.Target,
		Metadata:       metadata,
	}, nil
}

func deeplTarget(code deka.LanguageCode) string {
	if c, ok := deeplTargets[code]; ok {
		return c
	}
	return strings.ToUpper(string(code))
}

// deeplSource drops regional variants; DeepL source languages are bare.
func deeplSource(code deka.LanguageCode) string {
	if code == "no" {
		return "NB"
	}
	base, _, _ := strings.Cut(string(code), "-")
	return strings.ToUpper(base)
}
