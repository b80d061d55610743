package search

import (
	"context"

	"github.com/palitext/suttasearch/internal/domain"
)

// indexCall records one Hybrid invocation.
type indexCall struct {
	query  string
	vector []float32
	alpha  float64
	limit  int
}

// mockIndex implements Index; returns canned hit sets per call in order.
type mockIndex struct {
	calls   []indexCall
	results [][]domain.SearchHit
	err     error
}

func (m *mockIndex) Hybrid(
	_ context.Context, query string, vector []float32, alpha float64, limit int,
) ([]domain.SearchHit, error) {
	m.calls = append(m.calls, indexCall{query: query, vector: vector, alpha: alpha, limit: limit})
	if m.err != nil {
		return nil, m.err
	}
	if len(m.results) == 0 {
		return nil, nil
	}
	res := m.results[0]
	if len(m.results) > 1 {
		m.results = m.results[1:]
	}
	return res, nil
}

// mockVectorizer implements Vectorizer.
type mockVectorizer struct {
	result domain.VectorResult
	texts  []string
}

func (m *mockVectorizer) Vectorize(_ context.Context, text string) domain.VectorResult {
	m.texts = append(m.texts, text)
	return m.result
}

// passthroughReranker implements Reranker with the passthrough contract.
type passthroughReranker struct {
	called bool
}

func (p *passthroughReranker) Rerank(
	_ context.Context, _ string, candidates []domain.SearchHit, topK int,
) []domain.SearchHit {
	p.called = true
	if len(candidates) > topK {
		return candidates[:topK]
	}
	return candidates
}

func hitsNamed(ids ...string) []domain.SearchHit {
	hits := make([]domain.SearchHit, 0, len(ids))
	for _, id := range ids {
		hits = append(hits, domain.SearchHit{
			DocID:                id,
			BookID:               "dhp",
			ParaID:               id,
			TranslationParagraph: "text for " + id,
			Snippet:              "text for " + id,
			Score:                0.5,
		})
	}
	return hits
}

func okVector() domain.VectorResult {
	return domain.VectorResult{Vector: []float32{0.1, 0.2, 0.3}}
}

func degraded(reason domain.DegradeReason) domain.VectorResult {
	return domain.VectorResult{Reason: reason}
}
