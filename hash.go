package deka

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// HashText computes the SHA-256 hash of the trimmed text.
func HashText(text string) string {
	trimmed := strings.TrimSpace(text)
	hash := sha256.Sum256([]byte(trimmed))
	return hex.EncodeToString(hash[:])
}

// CacheKey generates a cache key from a text hash and everything that changes
// the translation: provider, model and both languages.
func CacheKey(hash, provider, model string, source, target LanguageCode) string {
	return strings.Join([]string{hash, provider, model, string(source), string(target)}, ":")
}
