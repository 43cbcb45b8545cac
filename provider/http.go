package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/ZaguanLabs/deka"
)

const (
	defaultTimeout = 30 * time.Second

	// Vendor error bodies are only kept for the message.
	maxResponseBytes = 4 << 20
	maxErrorSnippet  = 300
)

func newHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &http.Client{Timeout: timeout}
}

func baseURLOr(cfg deka.ProviderConfig, fallback string) string {
	if cfg.BaseURL != "" {
		return strings.TrimRight(cfg.BaseURL, "/")
	}
	return fallback
}

// postJSON sends body as JSON and decodes a 2xx response into out. Context
// errors are returned unwrapped so the caller can report cancellation.
func postJSON(ctx context.Context, client *http.Client, provider, url string, headers map[string]string, body, out any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return &deka.ProviderError{Kind: deka.KindInternal, Provider: provider, Message: "encode request", Cause: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return &deka.ProviderError{Kind: deka.KindInvalidRequest, Provider: provider, Message: "build request", Cause: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", deka.UserAgent())
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return &deka.ProviderError{Kind: deka.KindTransport, Provider: provider, Message: "request failed", Cause: err, Retryable: true}
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return &deka.ProviderError{Kind: deka.KindTransport, Provider: provider, Message: "read response", Cause: err, Retryable: true}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return statusError(provider, resp.StatusCode, raw)
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return &deka.ProviderError{
			Kind:       deka.KindMalformedResponse,
			Provider:   provider,
			Message:    "decode response",
			StatusCode: resp.StatusCode,
			Cause:      err,
		}
	}
	return nil
}

func statusError(provider string, status int, body []byte) *deka.ProviderError {
	kind, retryable := classifyStatus(status)

	snippet := strings.TrimSpace(string(body))
	if len(snippet) > maxErrorSnippet {
		snippet = snippet[:maxErrorSnippet] + "..."
	}
	msg := fmt.Sprintf("HTTP %d", status)
	if snippet != "" {
		msg += ": " + snippet
	}

	return &deka.ProviderError{
		Kind:       kind,
		Provider:   provider,
		Message:    msg,
		StatusCode: status,
		Retryable:  retryable,
	}
}

// classifyStatus maps a vendor HTTP status to an error kind and whether a
// retry could help.
func classifyStatus(status int) (deka.ErrorKind, bool) {
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return deka.KindAuthentication, false
	case status == http.StatusTooManyRequests:
		return deka.KindQuota, true
	case status == http.StatusPaymentRequired || status == 456: // 456: DeepL quota exceeded
		return deka.KindQuota, false
	case status == http.StatusRequestTimeout || status >= 500:
		return deka.KindTransport, true
	default:
		return deka.KindInvalidRequest, false
	}
}

// detectedLanguage maps a vendor-reported source language to a catalog code.
// Vendors report ISO codes, so an exact code match wins over name lookup
// ("ga" from a vendor is Irish).
func detectedLanguage(raw string) (deka.LanguageCode, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", false
	}
	if lang, ok := deka.LookupLanguage(deka.LanguageCode(strings.ToLower(raw))); ok {
		return lang.Code, true
	}
	code, err := deka.NormalizeLanguage(raw)
	if err != nil {
		return "", false
	}
	return code, true
}
