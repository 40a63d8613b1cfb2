package source

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/groundwire/groundwire/pkg/vector"
)

// VectorAdapter sends raw query text to a vector search provider and
// compacts the ranked matches into a single payload summary.
type VectorAdapter struct {
	provider   vector.Provider
	topK       int
	searchType string
}

func NewVectorAdapter(provider vector.Provider, topK int, searchType string) (*VectorAdapter, error) {
	if provider == nil {
		return nil, fmt.Errorf("vector provider is required")
	}
	if topK <= 0 {
		topK = 3
	}
	if searchType == "" {
		searchType = "semantic"
	}

	return &VectorAdapter{
		provider:   provider,
		topK:       topK,
		searchType: searchType,
	}, nil
}

func (a *VectorAdapter) Kind() Kind {
	return KindVector
}

func (a *VectorAdapter) Execute(ctx context.Context, q Query) Result {
	start := time.Now()

	summary, err := a.run(ctx, q)
	if err != nil {
		return Fail(KindVector, err, time.Since(start))
	}
	return Succeed(KindVector, summary, time.Since(start))
}

func (a *VectorAdapter) run(ctx context.Context, q Query) (string, error) {
	topK := q.TopK
	if topK <= 0 {
		topK = a.topK
	}
	searchType := q.SearchType
	if searchType == "" {
		searchType = a.searchType
	}

	matches, err := a.provider.Query(ctx, q.Text, topK, searchType)
	switch {
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return "", err
	case err != nil:
		return "", NewAdapterError("VectorAdapter", "run", ErrorServiceUnavailable,
			"vector search failed", err)
	}

	if len(matches) == 0 {
		return "", NewAdapterError("VectorAdapter", "run", ErrorDataUnavailable,
			"vector search returned no matches", nil)
	}

	return summarizeMatches(matches), nil
}

func summarizeMatches(matches []vector.Match) string {
	lines := make([]string, 0, len(matches))
	for _, m := range matches {
		lines = append(lines, fmt.Sprintf("%s (score %.2f)", m.Content, m.Score))
	}
	return strings.Join(lines, "\n")
}
