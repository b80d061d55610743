// Package search orchestrates the retrieval pipeline: language detection,
// query vectorization, hybrid retrieval with the fallback cascade, and
// reranking.
package search

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/palitext/suttasearch/internal/domain"
	"github.com/palitext/suttasearch/internal/language"
	"github.com/palitext/suttasearch/internal/logger"
	"github.com/palitext/suttasearch/internal/metrics"
)

// defaultCandidatePool is the minimum fan-out requested from the index so
// the reranker has enough candidates to reorder meaningfully.
const defaultCandidatePool = 100

// Service runs one query through the full retrieval pipeline.
type Service struct {
	index    Index
	vec      Vectorizer
	reranker Reranker

	candidatePool    int
	fallbackMinScore float64
}

// New creates a search service.
func New(index Index, vec Vectorizer, reranker Reranker) *Service {
	return &Service{
		index:         index,
		vec:           vec,
		reranker:      reranker,
		candidatePool: defaultCandidatePool,
	}
}

// WithCandidatePool overrides the minimum candidate fan-out.
func (s *Service) WithCandidatePool(n int) *Service {
	if n > 0 {
		s.candidatePool = n
	}
	return s
}

// WithFallbackMinScore also triggers the vector-only fallback when the best
// primary score falls below the threshold. Zero keeps the zero-hit trigger
// only.
func (s *Service) WithFallbackMinScore(threshold float64) *Service {
	s.fallbackMinScore = threshold
	return s
}

// Search executes the pipeline. The steps are sequential and dependent; the
// fallback call is only ever issued after the primary call completes.
func (s *Service) Search(ctx context.Context, req domain.SearchRequest) (domain.SearchResponse, error) {
	if req.Query == "" {
		return domain.SearchResponse{}, domain.ErrEmptyQuery
	}
	req.Normalize()

	log := logger.FromContext(ctx)

	lang := language.Detect(req.Query)
	metrics.SearchQueriesTotal.WithLabelValues(string(lang)).Inc()

	// Pali diacritics are indexed inconsistently, so the lexical term is the
	// stripped form while the original text is what gets vectorized.
	lexical := req.Query
	if lang == domain.LangPali {
		lexical = language.StripDiacritics(req.Query)
	}

	vec := s.vec.Vectorize(ctx, req.Query)

	// Never send a vector-weighted request without a vector.
	alpha := req.Alpha
	if !vec.OK() {
		alpha = 0
		log.Debug("Retrieving lexical-only",
			zap.String("degrade_reason", string(vec.Reason)),
		)
	}

	limit := s.candidatePool
	if req.TopK > limit {
		limit = req.TopK
	}

	hits, err := s.index.Hybrid(ctx, lexical, vec.Vector, alpha, limit)
	if err != nil {
		return domain.SearchResponse{}, fmt.Errorf("primary retrieval: %w", err)
	}
	usedAlpha := alpha

	if trigger := s.fallbackTrigger(hits, vec, alpha); trigger != "" {
		metrics.SearchFallbackTotal.WithLabelValues(trigger).Inc()
		log.Debug("Issuing vector-only fallback", zap.String("trigger", trigger))

		fallback, err := s.index.Hybrid(ctx, "", vec.Vector, 1.0, limit)
		if err != nil {
			return domain.SearchResponse{}, fmt.Errorf("fallback retrieval: %w", err)
		}
		// On the low-score trigger an empty fallback keeps the primary hits.
		if len(fallback) > 0 || len(hits) == 0 {
			hits = fallback
			usedAlpha = 1.0
		}
	}

	results := s.reranker.Rerank(ctx, req.Query, hits, req.TopK)

	return domain.SearchResponse{
		QueryLang: lang,
		Alpha:     usedAlpha,
		Results:   results,
	}, nil
}

// fallbackTrigger decides whether the vector-only fallback fires, and why.
// It requires a vector and a primary blend that was not already vector-only.
func (s *Service) fallbackTrigger(hits []domain.SearchHit, vec domain.VectorResult, alpha float64) string {
	if !vec.OK() || alpha == 1.0 {
		return ""
	}
	if len(hits) == 0 {
		return "zero_hits"
	}
	if s.fallbackMinScore > 0 && bestScore(hits) < s.fallbackMinScore {
		return "low_score"
	}
	return ""
}

func bestScore(hits []domain.SearchHit) float64 {
	best := hits[0].Score
	for _, h := range hits[1:] {
		if h.Score > best {
			best = h.Score
		}
	}
	return best
}
