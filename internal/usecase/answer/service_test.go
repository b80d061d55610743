package answer

import (
	"context"
	"errors"
	"strconv"
	"testing"

	"github.com/palitext/suttasearch/internal/domain"
)

// --- Mocks ---

type mockSearcher struct {
	resp domain.SearchResponse
	err  error
}

func (m *mockSearcher) Search(_ context.Context, _ domain.SearchRequest) (domain.SearchResponse, error) {
	return m.resp, m.err
}

type mockStrategy struct {
	text     string
	err      error
	query    string
	contexts []domain.SearchHit
	target   domain.Lang
}

func (m *mockStrategy) Synthesize(
	_ context.Context, query string, contexts []domain.SearchHit, target domain.Lang,
) (string, error) {
	m.query = query
	m.contexts = contexts
	m.target = target
	return m.text, m.err
}

func manyHits(n int) []domain.SearchHit {
	hits := make([]domain.SearchHit, n)
	for i := range hits {
		hits[i] = domain.SearchHit{DocID: "doc_" + strconv.Itoa(i), TranslationParagraph: "t"}
	}
	return hits
}

// --- Tests ---

func TestAnswerCapsCitationsAtTen(t *testing.T) {
	searcher := &mockSearcher{resp: domain.SearchResponse{
		QueryLang: domain.LangEN,
		Results:   manyHits(25),
	}}
	strategy := &mockStrategy{text: "answer"}
	svc := New(searcher, strategy, 0)

	resp, err := svc.Answer(context.Background(), domain.SearchRequest{Query: "q"})
	if err != nil {
		t.Fatalf("Answer: %v", err)
	}
	if len(resp.Citations) != 10 {
		t.Errorf("citations = %d, want 10", len(resp.Citations))
	}
	// The strategy still sees the full ranked context list.
	if len(strategy.contexts) != 25 {
		t.Errorf("strategy got %d contexts, want 25", len(strategy.contexts))
	}
}

func TestAnswerUsesDetectedLanguage(t *testing.T) {
	searcher := &mockSearcher{resp: domain.SearchResponse{
		QueryLang: domain.LangPali,
		Results:   manyHits(1),
	}}
	strategy := &mockStrategy{text: "answer"}
	svc := New(searcher, strategy, 0)

	resp, err := svc.Answer(context.Background(), domain.SearchRequest{Query: "dānaṃ"})
	if err != nil {
		t.Fatalf("Answer: %v", err)
	}
	if resp.Lang != domain.LangPali {
		t.Errorf("lang = %q, want pali", resp.Lang)
	}
	if strategy.target != domain.LangPali {
		t.Errorf("strategy target = %q, want pali", strategy.target)
	}
	if strategy.query != "dānaṃ" {
		t.Errorf("strategy query = %q", strategy.query)
	}
}

func TestAnswerSearchErrorPropagates(t *testing.T) {
	searcher := &mockSearcher{err: errors.New("index down")}
	svc := New(searcher, &mockStrategy{}, 0)

	if _, err := svc.Answer(context.Background(), domain.SearchRequest{Query: "q"}); err == nil {
		t.Fatal("expected search error to propagate")
	}
}

func TestAnswerStrategyErrorPropagates(t *testing.T) {
	searcher := &mockSearcher{resp: domain.SearchResponse{Results: manyHits(1)}}
	strategy := &mockStrategy{err: errors.New("provider unavailable")}
	svc := New(searcher, strategy, 0)

	if _, err := svc.Answer(context.Background(), domain.SearchRequest{Query: "q"}); err == nil {
		t.Fatal("expected strategy error to propagate")
	}
}

func TestAnswerEmptyResults(t *testing.T) {
	searcher := &mockSearcher{resp: domain.SearchResponse{QueryLang: domain.LangEN}}
	strategy := &mockStrategy{text: "No matching passages found for: q"}
	svc := New(searcher, strategy, 0)

	resp, err := svc.Answer(context.Background(), domain.SearchRequest{Query: "q"})
	if err != nil {
		t.Fatalf("Answer: %v", err)
	}
	if len(resp.Citations) != 0 {
		t.Errorf("citations = %d, want 0", len(resp.Citations))
	}
}
