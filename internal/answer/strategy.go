// Package answer synthesizes cited answers from retrieved passages, either
// through a language-model provider or by extractive stitching.
package answer

import (
	"context"

	"github.com/palitext/suttasearch/internal/domain"
)

// Strategy produces answer text from ranked context passages. The variant is
// selected once at startup: ModelBacked when a provider is configured,
// Extractive otherwise.
type Strategy interface {
	Synthesize(ctx context.Context, query string, contexts []domain.SearchHit, target domain.Lang) (string, error)
}
