// Package answer orchestrates retrieval plus answer synthesis.
package answer

import (
	"context"
	"fmt"

	"github.com/palitext/suttasearch/internal/domain"
)

// Service answers a query from retrieved passages.
type Service struct {
	search       Searcher
	strategy     Strategy
	maxCitations int
}

// New creates an answer service. maxCitations caps the citation list;
// non-positive values take domain.MaxCitations.
func New(search Searcher, strategy Strategy, maxCitations int) *Service {
	if maxCitations <= 0 || maxCitations > domain.MaxCitations {
		maxCitations = domain.MaxCitations
	}
	return &Service{search: search, strategy: strategy, maxCitations: maxCitations}
}

// Answer runs the search pipeline and synthesizes a cited answer in the
// detected query language.
func (s *Service) Answer(ctx context.Context, req domain.SearchRequest) (domain.AnswerResponse, error) {
	searchResp, err := s.search.Search(ctx, req)
	if err != nil {
		return domain.AnswerResponse{}, fmt.Errorf("search: %w", err)
	}

	text, err := s.strategy.Synthesize(ctx, req.Query, searchResp.Results, searchResp.QueryLang)
	if err != nil {
		return domain.AnswerResponse{}, fmt.Errorf("synthesize: %w", err)
	}

	citations := searchResp.Results
	if len(citations) > s.maxCitations {
		citations = citations[:s.maxCitations]
	}

	return domain.AnswerResponse{
		Lang:      searchResp.QueryLang,
		Answer:    text,
		Citations: citations,
	}, nil
}
