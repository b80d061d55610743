package domain

// DegradeReason explains why a query vector could not be obtained.
// Degradation is not an error: retrieval continues lexical-only.
type DegradeReason string

// Degradation reasons, recorded for observability.
const (
	DegradeNone      DegradeReason = ""
	DegradeTimeout   DegradeReason = "timeout"
	DegradeTransport DegradeReason = "transport"
	DegradeStatus    DegradeReason = "status"
	DegradeDecode    DegradeReason = "decode"
	DegradeEmpty     DegradeReason = "empty"
)

// VectorResult is the outcome of vectorizing a query: either a unit-normalized
// vector, or no vector plus the reason the provider could not supply one.
type VectorResult struct {
	Vector []float32
	Reason DegradeReason
}

// OK reports whether a vector was obtained.
func (r VectorResult) OK() bool {
	return len(r.Vector) > 0
}
