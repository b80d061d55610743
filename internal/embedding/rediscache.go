package embedding

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/palitext/suttasearch/internal/db"
	"github.com/palitext/suttasearch/internal/domain"
	"github.com/palitext/suttasearch/internal/metrics"
)

const cacheKeyPrefix = "suttasearch:emb_cache:"

// store is the consumer interface for the shared embedding cache.
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// CachedVectorizer is a read-through cache over a shared key-value store.
// Store failures are logged and treated as misses; the cache never turns a
// working provider into a failing one.
type CachedVectorizer struct {
	inner  Vectorizer
	store  store
	ttl    time.Duration
	logger *zap.Logger
}

// NewCached creates a caching decorator with the given entry TTL.
func NewCached(inner Vectorizer, s store, ttl time.Duration, logger *zap.Logger) *CachedVectorizer {
	return &CachedVectorizer{inner: inner, store: s, ttl: ttl, logger: logger}
}

// Vectorize implements Vectorizer.
func (c *CachedVectorizer) Vectorize(ctx context.Context, text string) domain.VectorResult {
	key := cacheKey(text)

	if vec, ok := c.getFromCache(ctx, key); ok {
		metrics.EmbeddingCacheTotal.WithLabelValues("redis", "hit").Inc()
		return domain.VectorResult{Vector: vec}
	}
	metrics.EmbeddingCacheTotal.WithLabelValues("redis", "miss").Inc()

	res := c.inner.Vectorize(ctx, text)
	if res.OK() {
		c.putToCache(ctx, key, res.Vector)
	}
	return res
}

func cacheKey(text string) string {
	h := sha256.Sum256([]byte(text))
	return cacheKeyPrefix + hex.EncodeToString(h[:])
}

func (c *CachedVectorizer) getFromCache(ctx context.Context, key string) ([]float32, bool) {
	data, err := c.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, db.ErrKeyNotFound) {
			c.logger.Warn("Failed to get cached embedding", zap.String("key", key), zap.Error(err))
		}
		return nil, false
	}
	if len(data) == 0 {
		return nil, false
	}

	vec, err := bytesToVector(data)
	if err != nil {
		c.logger.Warn("Failed to parse cached embedding", zap.String("key", key), zap.Error(err))
		return nil, false
	}
	return vec, true
}

func (c *CachedVectorizer) putToCache(ctx context.Context, key string, vec []float32) {
	if err := c.store.SetWithTTL(ctx, key, vectorToCacheBytes(vec), c.ttl); err != nil {
		c.logger.Warn("Failed to cache embedding", zap.String("key", key), zap.Error(err))
	}
}

func vectorToCacheBytes(v []float32) []byte {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

func bytesToVector(data []byte) ([]float32, error) {
	if len(data)%4 != 0 {
		return nil, fmt.Errorf("invalid embedding cache data: len=%d (not multiple of 4)", len(data))
	}
	vec := make([]float32, len(data)/4)
	for i := range vec {
		vec[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return vec, nil
}
