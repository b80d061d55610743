package domain

// DefaultTopK is used when a request does not specify top_k.
const DefaultTopK = 10

// DefaultAlpha balances lexical and vector scoring when unspecified.
const DefaultAlpha = 0.5

// SearchRequest is one caller query. Alpha blends lexical (0) and
// vector (1) relevance.
type SearchRequest struct {
	Query string
	TopK  int
	Alpha float64
}

// Normalize clamps alpha to [0,1] and defaults top_k.
func (r *SearchRequest) Normalize() {
	if r.TopK <= 0 {
		r.TopK = DefaultTopK
	}
	if r.Alpha < 0 {
		r.Alpha = 0
	}
	if r.Alpha > 1 {
		r.Alpha = 1
	}
}

// SearchResponse carries the detected query language, the alpha actually
// used for the call that produced the hits, and the ranked hits.
type SearchResponse struct {
	QueryLang Lang
	Alpha     float64
	Results   []SearchHit
}

// AnswerResponse is a synthesized answer with its supporting citations.
// Citations are capped at MaxCitations entries.
type AnswerResponse struct {
	Lang      Lang
	Answer    string
	Citations []SearchHit
}

// MaxCitations bounds the citations list of an answer response.
const MaxCitations = 10
