// Package chi wires the search and answer pipelines to an HTTP API.
package chi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/palitext/suttasearch/internal/domain"
	healthuc "github.com/palitext/suttasearch/internal/usecase/health"
	"github.com/palitext/suttasearch/internal/version"
)

// Server exposes the retrieval pipeline over HTTP.
type Server struct {
	search      Searcher
	answer      Answerer
	health      HealthChecker
	logger      *zap.Logger
	defaultTopK int
	maxTopK     int
}

// NewServer creates an HTTP API server. defaultTopK fills an omitted top_k;
// maxTopK bounds the requested result count, non-positive disables the cap.
func NewServer(
	search Searcher, answer Answerer, health HealthChecker,
	defaultTopK, maxTopK int, logger *zap.Logger,
) *Server {
	if defaultTopK <= 0 {
		defaultTopK = domain.DefaultTopK
	}
	return &Server{
		search:      search,
		answer:      answer,
		health:      health,
		logger:      logger,
		defaultTopK: defaultTopK,
		maxTopK:     maxTopK,
	}
}

// Routes mounts all handlers on the given router.
func (s *Server) Routes(r chi.Router) {
	r.Get("/", s.handleRoot)
	r.Get("/healthz", s.handleHealthz)
	r.Get("/metrics", promhttp.Handler().ServeHTTP)
	r.Post("/search", s.handleSearch)
	r.Post("/answer", s.handleAnswer)
}

// searchRequestDTO is the body shared by /search and /answer. A nil alpha
// means "unspecified" and takes the default blend.
type searchRequestDTO struct {
	Query string   `json:"query"`
	TopK  int      `json:"top_k"`
	Alpha *float64 `json:"alpha"`
}

type searchResponseDTO struct {
	QueryLang string             `json:"query_lang"`
	Alpha     float64            `json:"alpha"`
	Results   []domain.SearchHit `json:"results"`
}

type answerResponseDTO struct {
	Lang      string             `json:"lang"`
	Answer    string             `json:"answer"`
	Citations []domain.SearchHit `json:"citations"`
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeRequest(w, r)
	if !ok {
		return
	}

	resp, err := s.search.Search(r.Context(), req)
	if err != nil {
		s.handlePipelineError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, searchResponseDTO{
		QueryLang: string(resp.QueryLang),
		Alpha:     resp.Alpha,
		Results:   emptyIfNil(resp.Results),
	})
}

func (s *Server) handleAnswer(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeRequest(w, r)
	if !ok {
		return
	}

	resp, err := s.answer.Answer(r.Context(), req)
	if err != nil {
		s.handlePipelineError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, answerResponseDTO{
		Lang:      string(resp.Lang),
		Answer:    resp.Answer,
		Citations: emptyIfNil(resp.Citations),
	})
}

func (s *Server) handleRoot(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"service": "suttasearch",
		"version": version.Version,
		"status":  "ok",
	})
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	status := http.StatusOK
	if report.Status != healthuc.Healthy {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, report)
}

// decodeRequest parses and validates the shared request body. Validation
// failures are client errors; everything past this point uses the uniform
// pipeline envelope.
func (s *Server) decodeRequest(w http.ResponseWriter, r *http.Request) (domain.SearchRequest, bool) {
	var dto searchRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return domain.SearchRequest{}, false
	}

	if dto.Query == "" {
		writeError(w, http.StatusBadRequest, "query is required")
		return domain.SearchRequest{}, false
	}
	if dto.TopK < 0 || (s.maxTopK > 0 && dto.TopK > s.maxTopK) {
		writeError(w, http.StatusBadRequest,
			fmt.Sprintf("top_k must be between 1 and %d", s.maxTopK))
		return domain.SearchRequest{}, false
	}

	alpha := domain.DefaultAlpha
	if dto.Alpha != nil {
		alpha = *dto.Alpha
	}
	topK := dto.TopK
	if topK == 0 {
		topK = s.defaultTopK
	}

	return domain.SearchRequest{
		Query: dto.Query,
		TopK:  topK,
		Alpha: alpha,
	}, true
}

// handlePipelineError reports pipeline failures inside a 200 response so
// clients always get the same envelope once a request passes validation.
func (s *Server) handlePipelineError(w http.ResponseWriter, err error) {
	if errors.Is(err, domain.ErrEmptyQuery) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	s.logger.Warn("pipeline error", zap.Error(err))
	writeJSON(w, http.StatusOK, map[string]string{"error": err.Error()})
}

func emptyIfNil(hits []domain.SearchHit) []domain.SearchHit {
	if hits == nil {
		return []domain.SearchHit{}
	}
	return hits
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
