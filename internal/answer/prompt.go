package answer

import (
	"fmt"
	"strings"

	"github.com/palitext/suttasearch/internal/domain"
)

// BuildPrompt renders the single prompt for model-backed synthesis: answer
// only from the supplied context, in the target language, citing each
// passage by its [book_id:para_id] tag.
func BuildPrompt(query string, contexts []domain.SearchHit, target domain.Lang) string {
	blocks := make([]string, 0, len(contexts))
	for _, c := range contexts {
		parts := make([]string, 0, 2)
		if c.PaliParagraph != "" {
			parts = append(parts, c.PaliParagraph)
		}
		if c.TranslationParagraph != "" {
			parts = append(parts, c.TranslationParagraph)
		}
		blocks = append(blocks, CitationTag(c)+" "+strings.Join(parts, " / "))
	}

	return fmt.Sprintf(
		"Answer in %s. Use only the context and cite [book_id:para_id].\n\nQuestion: %s\n\nContext:\n%s\n",
		target, query, strings.Join(blocks, "\n\n"),
	)
}
