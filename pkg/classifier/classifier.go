// Package classifier maps an incoming message to the set of source kinds
// worth querying. Classification is keyword based, deterministic, and side
// effect free: the same message always yields the same kinds in the same
// order.
package classifier

import (
	"sort"
	"strings"

	"github.com/groundwire/groundwire/pkg/config"
	"github.com/groundwire/groundwire/pkg/source"
)

// Rule maps lower-cased keyword substrings to one source kind. Database
// rules may additionally bind the named statement to run when they match.
type Rule struct {
	Kind      source.Kind
	Keywords  []string
	QueryName string
}

// Classifier holds the active rule set plus the fallback kinds used when
// nothing matches.
type Classifier struct {
	rules    []Rule
	defaults []source.Kind
}

// DefaultRules is the built-in rule set used when no rules are configured.
func DefaultRules() []Rule {
	return []Rule{
		{
			Kind:     source.KindDatabase,
			Keywords: []string{"how many", "count", "number of", "headcount", "total", "work here", "records"},
		},
		{
			Kind:     source.KindVector,
			Keywords: []string{"policy", "document", "handbook", "guideline", "procedure", "internal"},
		},
		{
			Kind:     source.KindWebSearch,
			Keywords: []string{"latest", "news", "today", "current", "recent", "weather"},
		},
	}
}

// New builds a classifier from configuration. Empty configuration yields the
// built-in rules with vector search as the sole fallback kind.
func New(cfg *config.ClassifierConfig) *Classifier {
	rules := DefaultRules()
	if cfg != nil && len(cfg.Rules) > 0 {
		rules = make([]Rule, 0, len(cfg.Rules))
		for _, r := range cfg.Rules {
			rules = append(rules, Rule{
				Kind:      source.Kind(r.Kind),
				Keywords:  r.Keywords,
				QueryName: r.Query,
			})
		}
	}

	defaults := []source.Kind{source.KindVector}
	if cfg != nil {
		switch {
		case cfg.NoDefault:
			defaults = nil
		case len(cfg.DefaultKinds) > 0:
			defaults = make([]source.Kind, 0, len(cfg.DefaultKinds))
			for _, k := range cfg.DefaultKinds {
				defaults = append(defaults, source.Kind(k))
			}
		}
	}

	return &Classifier{rules: rules, defaults: defaults}
}

// Classify returns the source kinds relevant to msg, sorted by kind
// priority with no duplicates. When no keyword matches it returns the
// configured fallback kinds, which may be empty.
func (c *Classifier) Classify(msg source.Message) []source.Kind {
	kinds := make([]source.Kind, 0, 3)
	for _, m := range c.match(msg) {
		kinds = append(kinds, m.Kind)
	}
	return kinds
}

// Queries builds one source.Query per classified kind. A matching database
// rule carries its bound statement name into the query; vector and web
// search queries carry the raw message text.
func (c *Classifier) Queries(msg source.Message) []source.Query {
	matches := c.match(msg)
	queries := make([]source.Query, 0, len(matches))
	for _, m := range matches {
		queries = append(queries, source.Query{
			Kind: m.Kind,
			Text: msg.Text,
			Name: m.QueryName,
		})
	}
	return queries
}

// match is the shared classification core. It keeps the first matching rule
// per kind so a database rule's statement binding is stable, then orders the
// selection by kind priority.
func (c *Classifier) match(msg source.Message) []Rule {
	text := strings.ToLower(msg.Text)

	seen := make(map[source.Kind]Rule, 3)
	for _, rule := range c.rules {
		if _, ok := seen[rule.Kind]; ok {
			continue
		}
		for _, kw := range rule.Keywords {
			if strings.Contains(text, strings.ToLower(kw)) {
				seen[rule.Kind] = rule
				break
			}
		}
	}

	if len(seen) == 0 {
		for _, k := range c.defaults {
			seen[k] = Rule{Kind: k}
		}
	}

	matches := make([]Rule, 0, len(seen))
	for _, rule := range seen {
		matches = append(matches, rule)
	}
	sort.Slice(matches, func(i, j int) bool {
		return matches[i].Kind.Priority() < matches[j].Kind.Priority()
	})
	return matches
}
