package provider

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ZaguanLabs/deka"
)

func TestDeepLProvider_Translate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v2/translate", r.URL.Path)
		assert.Equal(t, "DeepL-Auth-Key d-key", r.Header.Get("Authorization"))

		var body deeplRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, []string{"Hello"}, body.Text)
		assert.Equal(t, "PT-BR", body.TargetLang)
		assert.Equal(t, "EN", body.SourceLang)
		assert.Equal(t, "quality_optimized", body.ModelType)

		_, _ = w.Write([]byte(`{"translations": [{"detected_source_language": "EN", "text": "Olá", "billed_characters": 5, "model_type_used": "quality_optimized"}]}`))
	}))
	defer srv.Close()

	p := NewDeepLProvider(DeepLConfig{APIKey: "d-key", BaseURL: srv.URL})

	result, err := p.Translate(context.Background(), deka.TranslateRequest{
		Text:   "Hello",
		Target: "pt-BR",
		Source: "en-GB",
		Model:  "quality_optimized",
	})
	require.NoError(t, err)

	assert.Equal(t, "Olá", result.Text)
	assert.Equal(t, "deepl", result.Provider)
	assert.Equal(t, "quality_optimized", result.Model)
	assert.Equal(t, deka.LanguageCode("en"), result.SourceLanguage)
	assert.Equal(t, "PT-BR", result.Metadata["target_lang"])
	assert.Equal(t, 5, result.Metadata["billed_characters"])
}

func TestDeepLProvider_QuotaExceeded(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(456)
		_, _ = w.Write([]byte(`{"message": "Quota exceeded"}`))
	}))
	defer srv.Close()

	p := NewDeepLProvider(DeepLConfig{APIKey: "k", BaseURL: srv.URL})
	_, err := p.Translate(context.Background(), deka.TranslateRequest{Text: "Hello", Target: "de"})

	var provErr *deka.ProviderError
	require.ErrorAs(t, err, &provErr)
	assert.Equal(t, deka.KindQuota, provErr.Kind)
	assert.Equal(t, 456, provErr.StatusCode)
	assert.False(t, provErr.Retryable)
}

func TestDeepLBaseURLSelection(t *testing.T) {
	assert.Equal(t, DeepLBaseURL, NewDeepLProvider(DeepLConfig{APIKey: "abc"}).baseURL)
	assert.Equal(t, DeepLFreeBaseURL, NewDeepLProvider(DeepLConfig{APIKey: "abc:fx"}).baseURL)
	assert.Equal(t, "http://proxy", NewDeepLProvider(DeepLConfig{APIKey: "abc:fx", BaseURL: "http://proxy/"}).baseURL)
}

func TestDeepLCodes(t *testing.T) {
	tests := []struct {
		code   deka.LanguageCode
		target string
		source string
	}{
		{"en", "EN-US", "EN"},
		{"pt", "PT-PT", "PT"},
		{"zh", "ZH-HANS", "ZH"},
		{"zh-TW", "ZH-HANT", "ZH"},
		{"no", "NB", "NB"},
		{"de", "DE", "DE"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.target, deeplTarget(tt.code), "target %s", tt.code)
		assert.Equal(t, tt.source, deeplSource(tt.code), "source %s", tt.code)
	}
}

func TestDeepLFactory(t *testing.T) {
	_, err := newDeepL(deka.ProviderConfig{})
	var provErr *deka.ProviderError
	require.ErrorAs(t, err, &provErr)
	assert.Equal(t, deka.KindNotConfigured, provErr.Kind)
	assert.Contains(t, provErr.Message, "deepl_api_key")
}
