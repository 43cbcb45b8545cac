package provider

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ZaguanLabs/deka"
)

func TestClassifyStatus(t *testing.T) {
	tests := []struct {
		status    int
		kind      deka.ErrorKind
		retryable bool
	}{
		{401, deka.KindAuthentication, false},
		{403, deka.KindAuthentication, false},
		{429, deka.KindQuota, true},
		{402, deka.KindQuota, false},
		{456, deka.KindQuota, false},
		{408, deka.KindTransport, true},
		{500, deka.KindTransport, true},
		{503, deka.KindTransport, true},
		{400, deka.KindInvalidRequest, false},
		{404, deka.KindInvalidRequest, false},
	}

	for _, tt := range tests {
		kind, retryable := classifyStatus(tt.status)
		assert.Equal(t, tt.kind, kind, "status %d", tt.status)
		assert.Equal(t, tt.retryable, retryable, "status %d", tt.status)
	}
}

func TestPostJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, deka.UserAgent(), r.Header.Get("User-Agent"))
		assert.Equal(t, "yes", r.Header.Get("X-Extra"))
		_, _ = w.Write([]byte(`{"ok": true}`))
	}))
	defer srv.Close()

	var out struct {
		OK bool `json:"ok"`
	}
	err := postJSON(context.Background(), srv.Client(), "test", srv.URL, map[string]string{"X-Extra": "yes"}, map[string]string{"a": "b"}, &out)
	require.NoError(t, err)
	assert.True(t, out.OK)
}

func TestPostJSON_Errors(t *testing.T) {
	t.Run("status error keeps a snippet", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
			_, _ = w.Write([]byte(strings.Repeat("x", 1000)))
		}))
		defer srv.Close()

		var out map[string]any
		err := postJSON(context.Background(), srv.Client(), "test", srv.URL, nil, struct{}{}, &out)

		var provErr *deka.ProviderError
		require.ErrorAs(t, err, &provErr)
		assert.Equal(t, deka.KindTransport, provErr.Kind)
		assert.Equal(t, 502, provErr.StatusCode)
		assert.True(t, provErr.Retryable)
		assert.Less(t, len(provErr.Message), 400)
		assert.True(t, strings.HasSuffix(provErr.Message, "..."))
	})

	t.Run("malformed body", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`<html>`))
		}))
		defer srv.Close()

		var out map[string]any
		err := postJSON(context.Background(), srv.Client(), "test", srv.URL, nil, struct{}{}, &out)

		var provErr *deka.ProviderError
		require.ErrorAs(t, err, &provErr)
		assert.Equal(t, deka.KindMalformedResponse, provErr.Kind)
	})

	t.Run("connection refused is transport", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		url := srv.URL
		srv.Close()

		var out map[string]any
		err := postJSON(context.Background(), newHTTPClient(time.Second), "test", url, nil, struct{}{}, &out)

		var provErr *deka.ProviderError
		require.ErrorAs(t, err, &provErr)
		assert.Equal(t, deka.KindTransport, provErr.Kind)
		assert.True(t, provErr.Retryable)
	})

	t.Run("cancelled context is returned raw", func(t *testing.T) {
		release := make(chan struct{})
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-release:
			case <-r.Context().Done():
			}
		}))
		defer srv.Close()
		defer close(release)

		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()

		var out map[string]any
		err := postJSON(ctx, srv.Client(), "test", srv.URL, nil, struct{}{}, &out)
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})
}

func TestBaseURLOr(t *testing.T) {
	assert.Equal(t, "https://fallback", baseURLOr(deka.ProviderConfig{}, "https://fallback"))
	assert.Equal(t, "http://local:8080/v1", baseURLOr(deka.ProviderConfig{BaseURL: "http://local:8080/v1/"}, "https://fallback"))
}

func TestDetectedLanguage(t *testing.T) {
	tests := []struct {
		raw  string
		want deka.LanguageCode
		ok   bool
	}{
		{"ga", "ga", true}, // vendors report ISO codes, so this is Irish
		{"EN", "en", true},
		{"pt-BR", "pt-BR", true},
		{"French", "fr", true},
		{"", "", false},
		{"Ga", "ga", true},
		{"und", "", false},
	}
	for _, tt := range tests {
		got, ok := detectedLanguage(tt.raw)
		assert.Equal(t, tt.ok, ok, tt.raw)
		assert.Equal(t, tt.want, got, tt.raw)
	}
}
