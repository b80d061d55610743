package domain

import "errors"

// Sentinel errors for request validation and collaborator failures.
var (
	ErrEmptyQuery       = errors.New("query is required")
	ErrIndexUnavailable = errors.New("document index unavailable")
)
