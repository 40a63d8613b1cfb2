// Package vector abstracts semantic search behind a small provider
// interface with a remote HTTP backend and an embedded chromem backend.
package vector

import "context"

// Match is one ranked search result.
type Match struct {
	Content  string         `json:"content"`
	Score    float32        `json:"score"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// Provider executes semantic searches against one vector store.
// Implementations must be safe for concurrent use.
type Provider interface {
	// Query returns up to topK ranked matches for the raw query text.
	Query(ctx context.Context, text string, topK int, searchType string) ([]Match, error)

	// Close releases provider resources.
	Close() error
}
