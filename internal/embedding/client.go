package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/palitext/suttasearch/internal/domain"
	"github.com/palitext/suttasearch/internal/metrics"
)

// errMalformed marks an unparsable embedding response.
var errMalformed = errors.New("malformed embedding response")

// StatusError is a non-success HTTP status from the embedding service.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("embedding service returned status %d", e.Code)
}

// Config holds embedding client settings.
type Config struct {
	BaseURL string
	Timeout time.Duration
	Logger  *zap.Logger
}

// Client calls the embedding service. The service accepts
// {texts, normalize} and returns one unit-normalized vector per text.
type Client struct {
	baseURL string
	timeout time.Duration
	httpc   *http.Client
	logger  *zap.Logger
}

// NewClient creates an embedding service client.
func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL: cfg.BaseURL,
		timeout: timeout,
		httpc:   &http.Client{},
		logger:  logger,
	}
}

type embedRequest struct {
	Texts     []string `json:"texts"`
	Normalize bool     `json:"normalize"`
}

type embedResponse struct {
	Vectors [][]float32 `json:"vectors"`
}

// Embed returns one vector per input text, in input order. Empty input
// returns an empty list without a network call.
func (c *Client) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	payload, err := json.Marshal(embedRequest{Texts: texts, Normalize: true})
	if err != nil {
		return nil, fmt.Errorf("marshal embed request: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(
		ctx, http.MethodPost, c.baseURL+"/embed", bytes.NewReader(payload),
	)
	if err != nil {
		return nil, fmt.Errorf("build embed request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("embed request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, &StatusError{Code: resp.StatusCode}
	}

	var out embedResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode embed response: %w", errMalformed)
	}
	if len(out.Vectors) != len(texts) {
		return nil, fmt.Errorf("got %d vectors for %d texts: %w",
			len(out.Vectors), len(texts), errMalformed)
	}
	return out.Vectors, nil
}

// Vectorize implements Vectorizer. Any failure degrades to a no-vector
// result carrying the reason; the error never propagates. Exactly one
// network call per invocation, no retries.
func (c *Client) Vectorize(ctx context.Context, text string) domain.VectorResult {
	start := time.Now()
	vectors, err := c.Embed(ctx, []string{text})
	metrics.EmbeddingRequestDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		reason := degradeReason(err)
		metrics.EmbeddingRequestsTotal.WithLabelValues("error").Inc()
		metrics.EmbeddingDegradedTotal.WithLabelValues(string(reason)).Inc()
		c.logger.Warn("Query vectorization degraded",
			zap.String("reason", string(reason)),
			zap.Error(err),
		)
		return domain.VectorResult{Reason: reason}
	}

	if len(vectors) == 0 || len(vectors[0]) == 0 {
		metrics.EmbeddingRequestsTotal.WithLabelValues("error").Inc()
		metrics.EmbeddingDegradedTotal.WithLabelValues(string(domain.DegradeEmpty)).Inc()
		return domain.VectorResult{Reason: domain.DegradeEmpty}
	}

	metrics.EmbeddingRequestsTotal.WithLabelValues("success").Inc()
	return domain.VectorResult{Vector: vectors[0]}
}

// HealthCheck verifies the embedding service responds on its root endpoint.
func (c *Client) HealthCheck(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/", nil)
	if err != nil {
		return fmt.Errorf("build health request: %w", err)
	}
	resp, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("embedding health: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()
	_, _ = io.Copy(io.Discard, resp.Body)
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("embedding health: %w", &StatusError{Code: resp.StatusCode})
	}
	return nil
}

// degradeReason maps a failed embed call to its degradation reason.
func degradeReason(err error) domain.DegradeReason {
	var statusErr *StatusError
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return domain.DegradeTimeout
	case errors.As(err, &statusErr):
		return domain.DegradeStatus
	case errors.Is(err, errMalformed):
		return domain.DegradeDecode
	default:
		return domain.DegradeTransport
	}
}
