package health

import "context"

// IndexPinger checks document-index availability.
type IndexPinger interface {
	Ping(ctx context.Context) error
}

// EmbeddingChecker checks embedding service availability.
type EmbeddingChecker interface {
	HealthCheck(ctx context.Context) error
}

// CachePinger checks the shared embedding-cache store.
type CachePinger interface {
	Ping(ctx context.Context) error
}
