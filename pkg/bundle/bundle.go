// Package bundle assembles successful fetch results into the bounded,
// deterministically ordered context handed back to the calling agent.
package bundle

import (
	"sort"
	"strings"

	"github.com/groundwire/groundwire/pkg/source"
)

// Bundle is an ordered sequence of successful results. Order is fixed by
// kind priority (database, vector, websearch) so prompts stay stable for a
// given classification. An empty bundle means no external data was
// available; the caller degrades to model-only reasoning.
type Bundle struct {
	Results []source.Result `json:"results"`
}

// Empty reports whether no source contributed.
func (b Bundle) Empty() bool {
	return len(b.Results) == 0
}

// Chars returns the total content length.
func (b Bundle) Chars() int {
	total := 0
	for _, r := range b.Results {
		total += len(r.Content)
	}
	return total
}

// Contents returns the payloads in bundle order.
func (b Bundle) Contents() []string {
	out := make([]string, 0, len(b.Results))
	for _, r := range b.Results {
		out = append(out, r.Content)
	}
	return out
}

// Join concatenates the payloads with sep, preserving bundle order.
func (b Bundle) Join(sep string) string {
	return strings.Join(b.Contents(), sep)
}

// Aggregate filters results to successes, orders them by kind priority, and
// trims from the low-priority end until the total content length fits
// maxChars. Results are dropped whole, never cut mid-payload. A maxChars of
// zero or less disables the bound.
func Aggregate(results []source.Result, maxChars int) Bundle {
	kept := make([]source.Result, 0, len(results))
	for _, r := range results {
		if r.Success {
			kept = append(kept, r)
		}
	}

	sort.SliceStable(kept, func(i, j int) bool {
		return kept[i].Kind.Priority() < kept[j].Kind.Priority()
	})

	if maxChars > 0 {
		total := 0
		for _, r := range kept {
			total += len(r.Content)
		}
		for len(kept) > 0 && total > maxChars {
			last := kept[len(kept)-1]
			total -= len(last.Content)
			kept = kept[:len(kept)-1]
		}
	}

	return Bundle{Results: kept}
}
