package embedding

import (
	"context"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/palitext/suttasearch/internal/domain"
	"github.com/palitext/suttasearch/internal/metrics"
)

// LRUVectorizer keeps a bounded in-process map from exact query text to its
// vector. Only successful results are cached; degraded calls stay uncached
// so the next query retries the provider. Safe for concurrent use.
type LRUVectorizer struct {
	inner Vectorizer
	cache *lru.Cache[string, []float32]
}

// NewLRU wraps inner with an LRU cache of the given capacity.
func NewLRU(inner Vectorizer, capacity int) (*LRUVectorizer, error) {
	cache, err := lru.New[string, []float32](capacity)
	if err != nil {
		return nil, fmt.Errorf("create vector cache: %w", err)
	}
	return &LRUVectorizer{inner: inner, cache: cache}, nil
}

// Vectorize implements Vectorizer.
func (v *LRUVectorizer) Vectorize(ctx context.Context, text string) domain.VectorResult {
	if vec, ok := v.cache.Get(text); ok {
		metrics.EmbeddingCacheTotal.WithLabelValues("lru", "hit").Inc()
		return domain.VectorResult{Vector: vec}
	}
	metrics.EmbeddingCacheTotal.WithLabelValues("lru", "miss").Inc()

	res := v.inner.Vectorize(ctx, text)
	if res.OK() {
		v.cache.Add(text, res.Vector)
	}
	return res
}
