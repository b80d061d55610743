// Package embedding obtains query vectors from the embedding service,
// degrading to lexical-only retrieval when the service cannot deliver.
package embedding

import (
	"context"

	"github.com/palitext/suttasearch/internal/domain"
)

// Vectorizer turns query text into a vector, or reports why it could not.
// Implementations never fail the pipeline: a missing vector is a valid result.
type Vectorizer interface {
	Vectorize(ctx context.Context, text string) domain.VectorResult
}
