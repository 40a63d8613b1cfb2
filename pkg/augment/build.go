package augment

import (
	"fmt"
	"time"

	"github.com/groundwire/groundwire/pkg/classifier"
	"github.com/groundwire/groundwire/pkg/config"
	"github.com/groundwire/groundwire/pkg/fetch"
	"github.com/groundwire/groundwire/pkg/source"
	"github.com/groundwire/groundwire/pkg/tools"
	"github.com/groundwire/groundwire/pkg/vector"
)

// Runtime bundles the built pipeline with the resources behind it.
type Runtime struct {
	Service  *Service
	Tools    *tools.Registry
	pool     *config.DBPool
	provider vector.Provider
}

// Close releases pooled database connections and the vector provider.
func (r *Runtime) Close() error {
	var firstErr error
	if r.provider != nil {
		if err := r.provider.Close(); err != nil {
			firstErr = err
		}
	}
	if r.pool != nil {
		if err := r.pool.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Build constructs the full pipeline from configuration: one adapter per
// enabled source, the fetch orchestrator, the classifier, and the tool
// registry with every adapter registered as an invocable tool. The caller
// owns the returned Runtime and must Close it.
func Build(cfg *config.Config) (*Runtime, error) {
	rt := &Runtime{Tools: tools.NewRegistry()}

	adapters, err := buildAdapters(cfg, rt)
	if err != nil {
		rt.Close()
		return nil, err
	}

	orchestrator := fetch.NewOrchestrator(cfg.Fetch.BudgetDuration())
	for _, a := range adapters {
		orchestrator.Register(a, adapterTimeout(cfg, a.Kind()))
	}

	if err := RegisterAdapterTools(rt.Tools, adapters); err != nil {
		rt.Close()
		return nil, err
	}

	rt.Service = NewService(classifier.New(&cfg.Classifier), orchestrator, cfg.Bundle.MaxChars)
	return rt, nil
}

func buildAdapters(cfg *config.Config, rt *Runtime) ([]source.Adapter, error) {
	var adapters []source.Adapter

	if cfg.Database.Enabled {
		rt.pool = config.NewDBPool()
		db, err := rt.pool.Get(&cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("failed to open database pool: %w", err)
		}
		a, err := source.NewDatabaseAdapter(db, &cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("failed to build database adapter: %w", err)
		}
		adapters = append(adapters, a)
	}

	if cfg.Vector.Enabled {
		provider, err := vector.NewProvider(vector.ProviderConfig{
			Type: vector.ProviderType(cfg.Vector.Provider),
			HTTP: &vector.HTTPConfig{
				BaseURL:    cfg.Vector.BaseURL,
				SearchPath: cfg.Vector.SearchPath,
				APIKey:     cfg.Vector.APIKey,
				Timeout:    cfg.Vector.TimeoutDuration(),
			},
			Chromem: &vector.ChromemConfig{
				Collection:  cfg.Vector.Collection,
				PersistPath: cfg.Vector.PersistPath,
				Compress:    cfg.Vector.Compress,
			},
		})
		if err != nil {
			return nil, fmt.Errorf("failed to build vector provider: %w", err)
		}
		rt.provider = provider

		a, err := source.NewVectorAdapter(provider, cfg.Vector.TopK, cfg.Vector.SearchType)
		if err != nil {
			return nil, fmt.Errorf("failed to build vector adapter: %w", err)
		}
		adapters = append(adapters, a)
	}

	if cfg.WebSearch.Enabled {
		a, err := source.NewWebSearchAdapter(&cfg.WebSearch)
		if err != nil {
			return nil, fmt.Errorf("failed to build websearch adapter: %w", err)
		}
		adapters = append(adapters, a)
	}

	return adapters, nil
}

func adapterTimeout(cfg *config.Config, kind source.Kind) time.Duration {
	switch kind {
	case source.KindDatabase:
		return cfg.Database.TimeoutDuration()
	case source.KindVector:
		return cfg.Vector.TimeoutDuration()
	case source.KindWebSearch:
		return cfg.WebSearch.TimeoutDuration()
	}
	return config.DefaultAdapterTimeout
}
