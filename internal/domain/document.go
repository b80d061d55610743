// Package domain holds the core value types of the search pipeline.
package domain

import "strings"

// Document is one corpus paragraph as stored in the document index.
// Documents are produced by ingestion and immutable except for full re-upsert.
type Document struct {
	DocID                string
	BookID               string
	ParaID               string
	PaliParagraph        string
	TranslationParagraph string
	MultilingualConcat   string
	Vector               []float32
}

// snippetSeparator joins the language fields of a snippet.
const snippetSeparator = " \n "

// SearchHit is a document projection returned to callers, with a derived
// snippet and a score. The score is the index's raw hybrid score when
// unreranked, or a cross-encoder score in [0,1] when reranked.
type SearchHit struct {
	DocID                string  `json:"doc_id"`
	BookID               string  `json:"book_id"`
	ParaID               string  `json:"para_id"`
	PaliParagraph        string  `json:"pali_paragraph"`
	TranslationParagraph string  `json:"translation_paragraph"`
	Snippet              string  `json:"snippet"`
	Score                float64 `json:"score"`
}

// BuildSnippet joins the Pali and translation paragraphs, omitting absent
// fields. Empty when both are absent.
func BuildSnippet(pali, translation string) string {
	parts := make([]string, 0, 2)
	if pali != "" {
		parts = append(parts, pali)
	}
	if translation != "" {
		parts = append(parts, translation)
	}
	return strings.Join(parts, snippetSeparator)
}
