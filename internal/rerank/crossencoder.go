package rerank

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/palitext/suttasearch/internal/domain"
	"github.com/palitext/suttasearch/internal/metrics"
)

// Config holds cross-encoder scorer settings.
type Config struct {
	BaseURL string
	Model   string
	Timeout time.Duration
	Logger  *zap.Logger
}

// CrossEncoder scores (query, snippet) pairs via an external cross-encoder
// service and reorders candidates by that score, descending. Scores are
// normalized to [0,1]. On scorer failure the candidates fall back to the
// index's ordering, like the passthrough variant.
type CrossEncoder struct {
	baseURL string
	model   string
	httpc   *http.Client
	logger  *zap.Logger
}

// NewCrossEncoder creates a cross-encoder reranker client.
func NewCrossEncoder(cfg Config) *CrossEncoder {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CrossEncoder{
		baseURL: cfg.BaseURL,
		model:   cfg.Model,
		httpc:   &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

type rerankRequest struct {
	Model     string   `json:"model,omitempty"`
	Query     string   `json:"query"`
	Passages  []string `json:"passages"`
	Normalize bool     `json:"normalize"`
}

type rerankResponse struct {
	Scores []float64 `json:"scores"`
}

// Rerank implements Reranker.
func (c *CrossEncoder) Rerank(
	ctx context.Context, query string, candidates []domain.SearchHit, topK int,
) []domain.SearchHit {
	if len(candidates) == 0 {
		return candidates
	}

	scores, err := c.score(ctx, query, candidates)
	if err != nil {
		metrics.RerankRequestsTotal.WithLabelValues("error").Inc()
		c.logger.Warn("Rerank failed, keeping index order", zap.Error(err))
		if len(candidates) > topK {
			return candidates[:topK]
		}
		return candidates
	}
	metrics.RerankRequestsTotal.WithLabelValues("success").Inc()

	ranked := make([]domain.SearchHit, len(candidates))
	copy(ranked, candidates)
	for i := range ranked {
		ranked[i].Score = clamp01(scores[i])
	}

	// Stable: equal scores keep their arrival order.
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})

	if len(ranked) > topK {
		ranked = ranked[:topK]
	}
	return ranked
}

func (c *CrossEncoder) score(
	ctx context.Context, query string, candidates []domain.SearchHit,
) ([]float64, error) {
	passages := make([]string, len(candidates))
	for i, cand := range candidates {
		passages[i] = cand.Snippet
	}

	payload, err := json.Marshal(rerankRequest{
		Model:     c.model,
		Query:     query,
		Passages:  passages,
		Normalize: true,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal rerank request: %w", err)
	}

	req, err := http.NewRequestWithContext(
		ctx, http.MethodPost, c.baseURL+"/rerank", bytes.NewReader(payload),
	)
	if err != nil {
		return nil, fmt.Errorf("build rerank request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("rerank request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("rerank: unexpected status %d", resp.StatusCode)
	}

	var out rerankResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode rerank response: %w", err)
	}
	if len(out.Scores) != len(candidates) {
		return nil, fmt.Errorf("got %d scores for %d candidates", len(out.Scores), len(candidates))
	}
	return out.Scores, nil
}

func clamp01(f float64) float64 {
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}
