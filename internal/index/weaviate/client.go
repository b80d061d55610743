// Package weaviate is an HTTP client for the Weaviate document index:
// hybrid lexical+vector queries, idempotent schema creation, batch upserts.
package weaviate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/palitext/suttasearch/internal/domain"
	"github.com/palitext/suttasearch/internal/language"
)

// hitFields are the document properties requested per hit.
const hitFields = "doc_id book_id para_id pali_paragraph translation_paragraph _additional { score }"

// docIDNamespace derives stable object UUIDs from doc_id for re-upserts.
var docIDNamespace = uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8")

// Config holds index client settings.
type Config struct {
	BaseURL string
	Class   string
	Timeout time.Duration
	Logger  *zap.Logger
}

// Client talks to a Weaviate instance over its REST/GraphQL API.
type Client struct {
	baseURL string
	class   string
	httpc   *http.Client
	logger  *zap.Logger
}

// NewClient creates an index client.
func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		class:   cfg.Class,
		httpc:   &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

// Hybrid runs one blended lexical+vector query. Alpha 0 scores lexical-only,
// 1 vector-only. A nil vector must be paired with alpha 0; the caller
// enforces that invariant. Hits arrive in the index's score order.
func (c *Client) Hybrid(
	ctx context.Context, query string, vector []float32, alpha float64, limit int,
) ([]domain.SearchHit, error) {
	gql, err := buildHybridQuery(c.class, query, vector, alpha, limit)
	if err != nil {
		return nil, err
	}

	payload, err := json.Marshal(graphqlRequest{Query: gql})
	if err != nil {
		return nil, fmt.Errorf("marshal graphql request: %w", err)
	}

	body, err := c.post(ctx, "/v1/graphql", payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrIndexUnavailable, err)
	}

	var resp graphqlResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decode graphql response: %w", err)
	}
	if len(resp.Errors) > 0 {
		return nil, fmt.Errorf("graphql error: %s", resp.Errors[0].Message)
	}

	raw, ok := resp.Data.Get[c.class]
	if !ok || len(raw) == 0 {
		return nil, nil
	}
	var dtos []hitDTO
	if err := json.Unmarshal(raw, &dtos); err != nil {
		return nil, fmt.Errorf("decode hits: %w", err)
	}

	hits := make([]domain.SearchHit, 0, len(dtos))
	for _, d := range dtos {
		hits = append(hits, d.toHit())
	}
	return hits, nil
}

// buildHybridQuery renders the GraphQL Get query. The lexical term is
// JSON-escaped; the vector argument is omitted entirely when absent.
func buildHybridQuery(class, query string, vector []float32, alpha float64, limit int) (string, error) {
	quoted, err := json.Marshal(query)
	if err != nil {
		return "", fmt.Errorf("escape query: %w", err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "{ Get { %s(limit: %d, hybrid: {query: %s, alpha: %g",
		class, limit, quoted, alpha)
	if len(vector) > 0 {
		vec, err := json.Marshal(vector)
		if err != nil {
			return "", fmt.Errorf("marshal vector: %w", err)
		}
		fmt.Fprintf(&b, ", vector: %s", vec)
	}
	fmt.Fprintf(&b, "}) { %s } } }", hitFields)
	return b.String(), nil
}

// EnsureSchema creates the paragraph class if it does not exist yet.
// Idempotent: an existing class is left untouched. The class uses external
// vectors only (vectorizer "none"), cosine HNSW, and inverted-index text
// properties including the ascii shadow fields.
func (c *Client) EnsureSchema(ctx context.Context) error {
	req, err := http.NewRequestWithContext(
		ctx, http.MethodGet, c.baseURL+"/v1/schema/"+c.class, nil,
	)
	if err != nil {
		return fmt.Errorf("build schema request: %w", err)
	}
	resp, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("get schema: %w", err)
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		return nil // class exists
	case http.StatusNotFound:
		// create below
	default:
		return fmt.Errorf("get schema: unexpected status %d", resp.StatusCode)
	}

	schema := classSchema{
		Class:           c.class,
		Description:     "Pali and translation paragraphs",
		Vectorizer:      "none", // external embeddings only
		VectorIndexType: "hnsw",
		VectorIndexConfig: map[string]any{
			"distance":       "cosine",
			"efConstruction": 128,
			"maxConnections": 64,
		},
		Properties: []schemaProperty{
			{Name: "doc_id", DataType: []string{"text"}, IndexInverted: true},
			{Name: "book_id", DataType: []string{"text"}, IndexInverted: true},
			{Name: "para_id", DataType: []string{"text"}, IndexInverted: true},
			{Name: "pali_paragraph", DataType: []string{"text"}, IndexInverted: true},
			{Name: "pali_paragraph_ascii", DataType: []string{"text"}, IndexInverted: true},
			{Name: "translation_paragraph", DataType: []string{"text"}, IndexInverted: true},
			{Name: "translation_paragraph_ascii", DataType: []string{"text"}, IndexInverted: true},
			{Name: "multilingual_concat", DataType: []string{"text"}, IndexInverted: true},
		},
	}

	payload, err := json.Marshal(schema)
	if err != nil {
		return fmt.Errorf("marshal schema: %w", err)
	}
	if _, err := c.post(ctx, "/v1/schema", payload); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	c.logger.Info("Created index class", zap.String("class", c.class))
	return nil
}

// BatchUpsert writes documents with their externally computed vectors.
// Object IDs derive deterministically from doc_id, so re-ingestion replaces
// rather than duplicates.
func (c *Client) BatchUpsert(ctx context.Context, docs []domain.Document) error {
	if len(docs) == 0 {
		return nil
	}

	objects := make([]batchObject, 0, len(docs))
	for _, d := range docs {
		objects = append(objects, batchObject{
			Class: c.class,
			ID:    uuid.NewSHA1(docIDNamespace, []byte(d.DocID)).String(),
			Properties: map[string]string{
				"doc_id":                      d.DocID,
				"book_id":                     d.BookID,
				"para_id":                     d.ParaID,
				"pali_paragraph":              d.PaliParagraph,
				"pali_paragraph_ascii":        language.StripDiacritics(d.PaliParagraph),
				"translation_paragraph":       d.TranslationParagraph,
				"translation_paragraph_ascii": language.StripDiacritics(d.TranslationParagraph),
				"multilingual_concat":         d.MultilingualConcat,
			},
			Vector: d.Vector,
		})
	}

	payload, err := json.Marshal(batchRequest{Objects: objects})
	if err != nil {
		return fmt.Errorf("marshal batch: %w", err)
	}
	if _, err := c.post(ctx, "/v1/batch/objects", payload); err != nil {
		return fmt.Errorf("batch upsert: %w", err)
	}
	return nil
}

// Ping checks the index readiness endpoint.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(
		ctx, http.MethodGet, c.baseURL+"/v1/.well-known/ready", nil,
	)
	if err != nil {
		return fmt.Errorf("build ready request: %w", err)
	}
	resp, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("index ready: %w", err)
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("index ready: unexpected status %d", resp.StatusCode)
	}
	return nil
}

func (c *Client) post(ctx context.Context, path string, payload []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(
		ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload),
	)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("post %s: %w", path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("post %s: status %d: %s", path, resp.StatusCode, truncate(body, 200))
	}
	return body, nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
