package provider

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/ZaguanLabs/deka"
)

// GoogleBaseURL is the Cloud Translation v2 endpoint.
const GoogleBaseURL = "https://translation.googleapis.com/language/translate/v2"

var googleDescriptor = deka.ProviderDescriptor{
	ID:            "google",
	DisplayName:   "Google Translate",
	Description:   "Google Cloud Translation (v2 REST API)",
	Category:      deka.CategoryClassical,
	Aliases:       []string{"google-translate"},
	CredentialKey: "google_api_key",
}

// Google expects a few codes that differ from the canonical ones.
var googleCodes = map[deka.LanguageCode]string{
	"zh":    "zh-CN",
	"zh-TW": "zh-TW",
	"pt":    "pt-PT",
	"pt-BR": "pt",
	"tw":    "ak", // Google serves Twi under Akan
}

var googleLanguages = []deka.LanguageCode{
	"af", "sq", "am", "ar", "hy", "az", "eu", "bn", "bg", "ca", "zh", "zh-TW", "hr", "cs",
	"da", "nl", "en", "et", "tl", "fi", "fr", "gl", "ka", "de", "el", "gu", "ha", "he",
	"hi", "hu", "is", "ig", "id", "ga", "it", "ja", "kn", "kk", "km", "ko", "lo", "lv",
	"lt", "mk", "mg", "ms", "ml", "mt", "mr", "mn", "my", "ne", "no", "ps", "fa", "pl",
	"pt", "pt-BR", "pa", "ro", "ru", "sr", "st", "sn", "sd", "si", "sk", "sl", "so", "es",
	"sw", "sv", "ta", "te", "th", "tr", "uk", "ur", "ug", "uz", "vi", "cy", "xh", "yo",
	"zu", "ny", "rw", "om", "ti", "ak", "tw", "ee", "lg", "ln", "bm", "kri", "ki",
}

// GoogleProvider implements deka.Provider over the Cloud Translation v2 API.
type GoogleProvider struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

// GoogleConfig holds configuration for the Google provider.
type GoogleConfig struct {
	APIKey  string
	BaseURL string // default: GoogleBaseURL
	Client  *http.Client
}

// NewGoogleProvider creates a Google Translate provider.
func NewGoogleProvider(cfg GoogleConfig) *GoogleProvider {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = GoogleBaseURL
	}
	client := cfg.Client
	if client == nil {
		client = newHTTPClient(0)
	}
	return &GoogleProvider{apiKey: cfg.APIKey, baseURL: baseURL, client: client}
}

func newGoogle(cfg deka.ProviderConfig) (deka.Provider, error) {
	if cfg.APIKey == "" {
		return nil, deka.NotConfigured(googleDescriptor.ID, googleDescriptor.CredentialKey)
	}
	return NewGoogleProvider(GoogleConfig{
		APIKey:  cfg.APIKey,
		BaseURL: baseURLOr(cfg, GoogleBaseURL),
		Client:  newHTTPClient(cfg.Timeout),
	}), nil
}

func (p *GoogleProvider) Descriptor() deka.ProviderDescriptor     { return googleDescriptor }
func (p *GoogleProvider) SupportedLanguages() []deka.LanguageCode { return googleLanguages }
func (p *GoogleProvider) DefaultModel() string                    { return "" }

// KnownModels lists the v2 model parameter values. Without one Google picks
// the neural model.
func (p *GoogleProvider) KnownModels() []string { return []string{"nmt", "base"} }

type googleRequest struct {
	Q      []string `json:"q"`
	Target string   `json:"target"`
	Source string   `json:"source,omitempty"`
	Format string   `json:"format"`
	Model  string   `json:"model,omitempty"`
}

type googleResponse struct {
	Data struct {
		Translations []struct {
			TranslatedText         string `json:"translatedText"`
			DetectedSourceLanguage string `json:"detectedSourceLanguage"`
			Model                  string `json:"model"`
		} `json:"translations"`
	} `json:"data"`
}

// Translate implements deka.Provider.
func (p *GoogleProvider) Translate(ctx context.Context, req deka.TranslateRequest) (*deka.TranslationResult, error) {
	body := googleRequest{
		Q:      []string{req.Text},
		Target: googleCode(req.Target),
		Format: "text",
		Model:  req.Model,
	}
	if req.Source != "" && req.Source != deka.AutoDetect {
		body.Source = googleCode(req.Source)
	}

	endpoint := p.baseURL + "?key=" + url.QueryEscape(p.apiKey)

	var resp googleResponse
	if err := postJSON(ctx, p.client, googleDescriptor.ID, endpoint, nil, body, &resp); err != nil {
		return nil, err
	}

	if len(resp.Data.Translations) == 0 {
		return nil, &deka.ProviderError{
			Kind:     deka.KindMalformedResponse,
			Provider: googleDescriptor.ID,
			Message:  "no translation returned",
		}
	}
	tr := resp.Data.Translations[0]

	source := req.Source
	if tr.DetectedSourceLanguage != "" {
		if code, ok := detectedLanguage(tr.DetectedSourceLanguage); ok {
			source = code
		}
	}

	metadata := map[string]any{"characters": len([]rune(req.Text))}
	if tr.DetectedSourceLanguage != "" {
		metadata["detected_source_language"] = tr.DetectedSourceLanguage
	}

	return &deka.TranslationResult{
		Text:           tr.TranslatedText,
		Provider:       googleDescriptor.ID,
		Model:          strings.TrimSpace(tr.Model),
		SourceLanguage: source,
		TargetLanguage: req.Target,
		Metadata:       metadata,
	}, nil
}

func googleCode(code deka.LanguageCode) string {
	if c, ok := googleCodes[code]; ok {
		return c
	}
	return string(code)
}
