// Package augment wires the full pipeline: topic classification, concurrent
// source fetches, and bundle assembly. This is the surface the calling agent
// talks to.
package augment

import (
	"context"
	"log/slog"

	"github.com/groundwire/groundwire/pkg/bundle"
	"github.com/groundwire/groundwire/pkg/classifier"
	"github.com/groundwire/groundwire/pkg/fetch"
	"github.com/groundwire/groundwire/pkg/observability"
	"github.com/groundwire/groundwire/pkg/source"
)

// Service runs one message through the pipeline. It is stateless across
// calls and safe for concurrent use.
type Service struct {
	classifier   *classifier.Classifier
	orchestrator *fetch.Orchestrator
	maxChars     int
	logger       *slog.Logger
}

func NewService(c *classifier.Classifier, o *fetch.Orchestrator, maxChars int) *Service {
	return &Service{
		classifier:   c,
		orchestrator: o,
		maxChars:     maxChars,
		logger:       slog.Default().With("component", "augment"),
	}
}

// Augment classifies msg, fetches from the relevant sources, and returns the
// assembled bundle. It never fails: when every source errors out the bundle
// comes back empty and the caller proceeds with model-only reasoning.
func (s *Service) Augment(ctx context.Context, msg source.Message) bundle.Bundle {
	queries := s.classifier.Queries(msg)
	if len(queries) == 0 {
		s.logger.Debug("no source kinds selected", "text_len", len(msg.Text))
		return bundle.Bundle{}
	}

	results := s.orchestrator.Fetch(ctx, queries)
	b := bundle.Aggregate(results, s.maxChars)

	observability.GetGlobalMetrics().RecordBundleSize(ctx, b.Chars())
	if b.Empty() {
		s.logger.Info("no external data available, returning empty bundle",
			"queries", len(queries))
	}
	return b
}

// Kinds returns the source kinds with a registered adapter.
func (s *Service) Kinds() []source.Kind {
	return s.orchestrator.Kinds()
}
