package search

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"sync"

	"github.com/textguard/textguard/pkg/models"
)

// Cache stores phrase search results so repeated analyses of similar
// documents do not re-query the provider.
type Cache interface {
	Get(ctx context.Context, key string) ([]models.SourceMatch, bool, error)
	Set(ctx context.Context, key string, matches []models.SourceMatch) error
}

// CacheKey derives a stable cache key for a provider/phrase pair.
func CacheKey(provider, phrase string) string {
	h := sha256.New()
	h.Write([]byte(provider + ":" + phrase))
	return hex.EncodeToString(h.Sum(nil))[:16]
}

// CachedSearcher wraps a Searcher with a result cache. Cache failures are
// ignored; the underlying searcher is the source of truth.
type CachedSearcher struct {
	searcher Searcher
	cache    Cache
	provider string
}

// NewCachedSearcher creates a caching wrapper around searcher.
func NewCachedSearcher(searcher Searcher, cache Cache, provider string) *CachedSearcher {
	return &CachedSearcher{
		searcher: searcher,
		cache:    cache,
		provider: provider,
	}
}

// Search implements Searcher.
func (c *CachedSearcher) Search(ctx context.Context, phrase string) ([]models.SourceMatch, error) {
	key := CacheKey(c.provider, phrase)

	if matches, ok, err := c.cache.Get(ctx, key); err == nil && ok {
		return matches, nil
	}

	matches, err := c.searcher.Search(ctx, phrase)
	if err != nil {
		return nil, err
	}

	_ = c.cache.Set(ctx, key, matches)
	return matches, nil
}

// MemoryCache is a process-local Cache.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string][]models.SourceMatch
}

// NewMemoryCache creates an empty in-memory cache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{
		entries: make(map[string][]models.SourceMatch),
	}
}

// Get implements Cache.
func (m *MemoryCache) Get(ctx context.Context, key string) ([]models.SourceMatch, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	matches, ok := m.entries[key]
	return matches, ok, nil
}

// Set implements Cache.
func (m *MemoryCache) Set(ctx context.Context, key string, matches []models.SourceMatch) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = matches
	return nil
}
