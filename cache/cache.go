// Package cache provides deka.TranslationCache implementations: an in-process
// map with TTL and a Redis-backed cache shared across processes.
package cache

import "github.com/ZaguanLabs/deka"

var (
	_ deka.TranslationCache = (*InMemoryCache)(nil)
	_ deka.TranslationCache = (*RedisCache)(nil)
)
