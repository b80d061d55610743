package search

import (
	"context"

	"github.com/palitext/suttasearch/internal/domain"
)

// Index is the document-index contract: one blended lexical+vector query.
// A nil vector must be sent with alpha 0.
type Index interface {
	Hybrid(ctx context.Context, query string, vector []float32, alpha float64, limit int) ([]domain.SearchHit, error)
}

// Vectorizer obtains the query vector, degrading instead of failing.
type Vectorizer interface {
	Vectorize(ctx context.Context, text string) domain.VectorResult
}

// Reranker reorders the candidate pool and truncates to top_k.
type Reranker interface {
	Rerank(ctx context.Context, query string, candidates []domain.SearchHit, topK int) []domain.SearchHit
}
