// Package source defines the uniform fetch contract shared by every external
// data source: the relational store, the vector-search service, and the
// web-search provider. Adapters wrap one source each and convert every
// failure into a failed Result at the boundary, so callers never see an
// adapter error escape.
package source

import (
	"context"
	"errors"
	"time"
)

// Kind identifies one external data source.
type Kind string

const (
	KindDatabase  Kind = "database"
	KindVector    Kind = "vector"
	KindWebSearch Kind = "websearch"
)

// Kinds returns all source kinds in priority order.
func Kinds() []Kind {
	return []Kind{KindDatabase, KindVector, KindWebSearch}
}

// Priority returns the fixed ordering rank for bundle assembly.
// Lower rank sorts first: database results before vector results before
// web-search results, so prompts stay stable for a given classification.
func (k Kind) Priority() int {
	switch k {
	case KindDatabase:
		return 0
	case KindVector:
		return 1
	case KindWebSearch:
		return 2
	default:
		return 3
	}
}

// Valid reports whether k is a known source kind.
func (k Kind) Valid() bool {
	return k.Priority() < 3
}

// Message is an incoming user message plus optional conversation state.
// Messages are immutable once received; nothing in the pipeline mutates them.
type Message struct {
	Text    string            `json:"text"`
	Context map[string]string `json:"context,omitempty"`
}

// Query carries the parameters one adapter needs for a single fetch.
// It is constructed by the classification step, consumed once, then discarded.
type Query struct {
	Kind Kind `json:"kind"`

	// Text is the raw search text (vector and web search).
	Text string `json:"text,omitempty"`

	// TopK limits the number of ranked matches (vector search).
	TopK int `json:"top_k,omitempty"`

	// SearchType selects the vector service query mode.
	SearchType string `json:"search_type,omitempty"`

	// Name selects a named parameterized statement (database).
	Name string `json:"name,omitempty"`

	// Args are bound to the named statement's placeholders (database).
	Args []any `json:"args,omitempty"`
}

// Result is the outcome of one adapter fetch. A Result exists only for kinds
// that were actually queried. Content is always a real adapter payload; the
// absence of data is represented by a failed Result, never by a placeholder.
type Result struct {
	Kind      Kind          `json:"kind"`
	Success   bool          `json:"success"`
	Content   string        `json:"content,omitempty"`
	ErrorKind ErrorKind     `json:"error_kind,omitempty"`
	Error     string        `json:"error,omitempty"`
	Latency   time.Duration `json:"latency"`
}

// Adapter wraps one external system behind the uniform fetch contract.
// Execute never panics and never surfaces an error: every failure is
// converted into a failed Result. Implementations must be safe for
// concurrent use; any shared state is read-only configuration or a pooled
// connection resource.
type Adapter interface {
	Kind() Kind
	Execute(ctx context.Context, q Query) Result
}

// Succeed builds a successful Result.
func Succeed(kind Kind, content string, latency time.Duration) Result {
	return Result{
		Kind:    kind,
		Success: true,
		Content: content,
		Latency: latency,
	}
}

// Fail builds a failed Result, deriving the error kind from err.
// Context cancellation and deadline expiry map to ErrorTimeout.
func Fail(kind Kind, err error, latency time.Duration) Result {
	return Result{
		Kind:      kind,
		ErrorKind: errorKindOf(err),
		Error:     err.Error(),
		Latency:   latency,
	}
}

func errorKindOf(err error) ErrorKind {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return ErrorTimeout
	}
	var adapterErr *AdapterError
	if errors.As(err, &adapterErr) {
		return adapterErr.Kind
	}
	return ErrorServiceUnavailable
}
