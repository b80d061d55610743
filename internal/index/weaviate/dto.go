package weaviate

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/palitext/suttasearch/internal/domain"
)

// graphqlRequest is the body of POST /v1/graphql.
type graphqlRequest struct {
	Query string `json:"query"`
}

// graphqlResponse is the envelope of a GraphQL reply. Weaviate reports
// partial failures through the errors array alongside data.
type graphqlResponse struct {
	Data struct {
		Get map[string]json.RawMessage `json:"Get"`
	} `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

// hitDTO is one field-tagged object returned by a Get query.
type hitDTO struct {
	DocID                string `json:"doc_id"`
	BookID               string `json:"book_id"`
	ParaID               string `json:"para_id"`
	PaliParagraph        string `json:"pali_paragraph"`
	TranslationParagraph string `json:"translation_paragraph"`
	Additional           struct {
		Score scoreValue `json:"score"`
	} `json:"_additional"`
}

// scoreValue tolerates Weaviate serializing _additional.score as either a
// JSON string or a number, depending on version.
type scoreValue float64

func (s *scoreValue) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*s = 0
		return nil
	}
	if data[0] == '"' {
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return fmt.Errorf("unmarshal score string: %w", err)
		}
		if str == "" {
			*s = 0
			return nil
		}
		f, err := strconv.ParseFloat(str, 64)
		if err != nil {
			return fmt.Errorf("parse score %q: %w", str, err)
		}
		*s = scoreValue(f)
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("unmarshal score: %w", err)
	}
	*s = scoreValue(f)
	return nil
}

func (d hitDTO) toHit() domain.SearchHit {
	return domain.SearchHit{
		DocID:                d.DocID,
		BookID:               d.BookID,
		ParaID:               d.ParaID,
		PaliParagraph:        d.PaliParagraph,
		TranslationParagraph: d.TranslationParagraph,
		Snippet:              domain.BuildSnippet(d.PaliParagraph, d.TranslationParagraph),
		Score:                float64(d.Additional.Score),
	}
}

// batchRequest is the body of POST /v1/batch/objects.
type batchRequest struct {
	Objects []batchObject `json:"objects"`
}

type batchObject struct {
	Class      string            `json:"class"`
	ID         string            `json:"id"`
	Properties map[string]string `json:"properties"`
	Vector     []float32         `json:"vector,omitempty"`
}

// classSchema is the body of POST /v1/schema.
type classSchema struct {
	Class             string           `json:"class"`
	Description       string           `json:"description"`
	Vectorizer        string           `json:"vectorizer"`
	VectorIndexType   string           `json:"vectorIndexType"`
	VectorIndexConfig map[string]any   `json:"vectorIndexConfig"`
	Properties        []schemaProperty `json:"properties"`
}

type schemaProperty struct {
	Name          string   `json:"name"`
	DataType      []string `json:"dataType"`
	IndexInverted bool     `json:"indexInverted"`
}
