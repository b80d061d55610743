package answer

import (
	"context"

	"github.com/palitext/suttasearch/internal/domain"
)

// Searcher runs the retrieval pipeline for a request.
type Searcher interface {
	Search(ctx context.Context, req domain.SearchRequest) (domain.SearchResponse, error)
}

// Strategy produces the answer text from ranked contexts.
type Strategy interface {
	Synthesize(ctx context.Context, query string, contexts []domain.SearchHit, target domain.Lang) (string, error)
}
