package chi

import (
	"context"

	"github.com/palitext/suttasearch/internal/domain"
	healthuc "github.com/palitext/suttasearch/internal/usecase/health"
)

// Searcher runs the retrieval pipeline.
type Searcher interface {
	Search(ctx context.Context, req domain.SearchRequest) (domain.SearchResponse, error)
}

// Answerer runs retrieval plus answer synthesis.
type Answerer interface {
	Answer(ctx context.Context, req domain.SearchRequest) (domain.AnswerResponse, error)
}

// HealthChecker aggregates component health.
type HealthChecker interface {
	Check(ctx context.Context) healthuc.Report
}
