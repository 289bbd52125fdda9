package llm

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/patrickmn/go-cache"
)

// DefaultEmbeddingCacheTTL bounds how long a vector is reused within a process.
const DefaultEmbeddingCacheTTL = 30 * time.Minute

// CachedEmbedder memoizes vectors by text so an item appearing in several
// categories, or a target reused across reranks, is embedded once.
type CachedEmbedder struct {
	next  Embedder
	cache *cache.Cache
}

// NewCachedEmbedder wraps next with an in-memory cache. A zero ttl uses
// DefaultEmbeddingCacheTTL.
func NewCachedEmbedder(next Embedder, ttl time.Duration) *CachedEmbedder {
	if ttl <= 0 {
		ttl = DefaultEmbeddingCacheTTL
	}
	return &CachedEmbedder{
		next:  next,
		cache: cache.New(ttl, 2*ttl),
	}
}

// Embed returns cached vectors where available and embeds the remaining
// distinct texts in one call to the wrapped embedder.
func (c *CachedEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	vectors := make([][]float32, len(texts))
	var misses []string
	pending := make(map[string][]int)
	for i, text := range texts {
		if v, ok := c.cache.Get(text); ok {
			vectors[i] = v.([]float32)
			continue
		}
		if _, seen := pending[text]; !seen {
			misses = append(misses, text)
		}
		pending[text] = append(pending[text], i)
	}

	if len(misses) == 0 {
		return vectors, nil
	}

	fresh, err := c.next.Embed(ctx, misses)
	if err != nil {
		return nil, err
	}
	if len(fresh) != len(misses) {
		return nil, fmt.Errorf("expected %d embeddings, got %d", len(misses), len(fresh))
	}

	for i, text := range misses {
		c.cache.Set(text, fresh[i], cache.DefaultExpiration)
		for _, idx := range pending[text] {
			vectors[idx] = fresh[i]
		}
	}
	return vectors, nil
}

// Len returns the number of cached vectors.
func (c *CachedEmbedder) Len() int {
	return c.cache.ItemCount()
}

// Close closes the wrapped embedder when it holds resources.
func (c *CachedEmbedder) Close() error {
	if closer, ok := c.next.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}
