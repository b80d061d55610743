package answer

import (
	"context"
	"fmt"
	"strings"

	"github.com/palitext/suttasearch/internal/domain"
)

// Defaults for extractive synthesis.
const (
	DefaultSummaryChars   = 600
	DefaultCitationBlocks = 6
)

const extractiveHeader = "Extractive bilingual answer (context-stitched)"

// Extractive builds a readable bilingual answer with citations when no
// language model is available: a stitched summary from the top passages
// followed by [book_id:para_id] citation blocks. Never fails.
type Extractive struct {
	SummaryChars   int
	CitationBlocks int
}

// NewExtractive creates an extractive strategy; non-positive limits take the
// defaults.
func NewExtractive(summaryChars, citationBlocks int) *Extractive {
	if summaryChars <= 0 {
		summaryChars = DefaultSummaryChars
	}
	if citationBlocks <= 0 {
		citationBlocks = DefaultCitationBlocks
	}
	return &Extractive{SummaryChars: summaryChars, CitationBlocks: citationBlocks}
}

// Synthesize implements Strategy.
func (e *Extractive) Synthesize(
	_ context.Context, query string, contexts []domain.SearchHit, target domain.Lang,
) (string, error) {
	if len(contexts) == 0 {
		return fmt.Sprintf("No matching passages found for: %s", query), nil
	}

	blocks := contexts
	if len(blocks) > e.CitationBlocks {
		blocks = blocks[:e.CitationBlocks]
	}

	summary := e.buildSummary(blocks)
	citations := buildCitations(blocks, target)

	return fmt.Sprintf("%s\n\nSummary:\n%s\n\nCitations:\n%s",
		extractiveHeader, summary, citations), nil
}

// buildSummary stitches each context's primary text (translation preferred,
// Pali as fallback) in ranked order until the character budget is reached,
// then truncates at the last whole word and marks the cut with an ellipsis.
func (e *Extractive) buildSummary(contexts []domain.SearchHit) string {
	var parts []string
	var total int
	for _, c := range contexts {
		primary := strings.TrimSpace(c.TranslationParagraph)
		if primary == "" {
			primary = strings.TrimSpace(c.PaliParagraph)
		}
		if primary != "" {
			parts = append(parts, primary)
			total += len([]rune(primary))
		}
		if total >= e.SummaryChars {
			break
		}
	}

	summary := strings.Join(parts, " ")
	runes := []rune(summary)
	if len(runes) <= e.SummaryChars {
		return summary
	}

	cut := string(runes[:e.SummaryChars])
	if i := strings.LastIndex(cut, " "); i > 0 {
		cut = cut[:i]
	}
	return cut + "…"
}

// buildCitations emits up to len(contexts) bilingual blocks: the citation
// tag, then the primary and secondary lines. Pali-first for Pali targets,
// translation-first otherwise. Contexts with no text at all are skipped.
func buildCitations(contexts []domain.SearchHit, target domain.Lang) string {
	var blocks []string
	for _, c := range contexts {
		first := strings.TrimSpace(c.TranslationParagraph)
		second := strings.TrimSpace(c.PaliParagraph)
		if target == domain.LangPali {
			first, second = second, first
		}
		if first == "" && second == "" {
			continue
		}
		blocks = append(blocks,
			fmt.Sprintf("%s\n%s\n%s\n", CitationTag(c), first, second))
	}
	return strings.Join(blocks, "\n")
}

// CitationTag renders the [book_id:para_id] anchor for a hit.
func CitationTag(h domain.SearchHit) string {
	book := h.BookID
	if book == "" {
		book = "?"
	}
	para := h.ParaID
	if para == "" {
		para = "?"
	}
	return fmt.Sprintf("[%s:%s]", book, para)
}
