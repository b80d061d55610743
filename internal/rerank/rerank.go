// Package rerank reorders retrieval candidates by direct query-passage
// relevance. The active variant scores pairs via an external cross-encoder
// service; the passthrough variant preserves the index's own ordering.
package rerank

import (
	"context"

	"github.com/palitext/suttasearch/internal/domain"
	"github.com/palitext/suttasearch/internal/metrics"
)

// Reranker reorders candidates and truncates to topK. Callers must not
// assume which variant is configured; they read whatever score the variant
// left on the hits.
type Reranker interface {
	Rerank(ctx context.Context, query string, candidates []domain.SearchHit, topK int) []domain.SearchHit
}

// Passthrough returns the first topK candidates unchanged. Used when no
// cross-encoder is configured.
type Passthrough struct{}

// Rerank implements Reranker.
func (Passthrough) Rerank(
	_ context.Context, _ string, candidates []domain.SearchHit, topK int,
) []domain.SearchHit {
	metrics.RerankRequestsTotal.WithLabelValues("skipped").Inc()
	if len(candidates) > topK {
		return candidates[:topK]
	}
	return candidates
}
