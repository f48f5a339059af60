package indexer

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/maypok86/otter"

	"github.com/mvp-joe/autodoc/internal/indexer/parsers"
)

// DefaultCacheSize is the number of parsed files a ParseCache keeps.
const DefaultCacheSize = 4096

// ParseCache keeps raw parser results keyed by file path and content hash,
// so repeated runs in a watch session skip re-extracting unchanged files.
// A cache belongs to one parser configuration.
type ParseCache struct {
	cache otter.Cache[string, *parsers.Result]
}

// NewParseCache creates a cache holding up to capacity results.
func NewParseCache(capacity int) (*ParseCache, error) {
	if capacity <= 0 {
		capacity = DefaultCacheSize
	}
	c, err := otter.MustBuilder[string, *parsers.Result](capacity).Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build parse cache: %w", err)
	}
	return &ParseCache{cache: c}, nil
}

// Key derives the cache key for a file's path and content.
func (c *ParseCache) Key(path string, content []byte) string {
	h := sha256.New()
	h.Write([]byte(path))
	h.Write([]byte{0})
	h.Write(content)
	return hex.EncodeToString(h.Sum(nil))
}

// Get returns a cached result.
func (c *ParseCache) Get(key string) (*parsers.Result, bool) {
	return c.cache.Get(key)
}

// Set stores a result.
func (c *ParseCache) Set(key string, result *parsers.Result) {
	c.cache.Set(key, result)
}

// Len returns the number of cached results.
func (c *ParseCache) Len() int {
	return c.cache.Size()
}

// Close releases the cache's background resources.
func (c *ParseCache) Close() {
	c.cache.Close()
}
