package vector

import (
	"fmt"

	"github.com/philippgille/chromem-go"
)

// ProviderType identifies a vector provider implementation.
type ProviderType string

const (
	// ProviderHTTP queries a remote vector-search service over HTTP.
	ProviderHTTP ProviderType = "http"

	// ProviderChromem uses chromem-go for embedded vector storage.
	// Zero-config, no external dependencies.
	ProviderChromem ProviderType = "chromem"
)

// ProviderConfig selects and configures a vector provider.
type ProviderConfig struct {
	Type ProviderType

	HTTP    *HTTPConfig
	Chromem *ChromemConfig

	// EmbeddingFunc overrides the chromem embedding function. Defaults
	// to chromem.NewEmbeddingFuncDefault().
	EmbeddingFunc chromem.EmbeddingFunc
}

// NewProvider creates the configured provider.
func NewProvider(cfg ProviderConfig) (Provider, error) {
	switch cfg.Type {
	case ProviderHTTP:
		if cfg.HTTP == nil {
			return nil, fmt.Errorf("http provider configuration is required")
		}
		return NewHTTPProvider(*cfg.HTTP)

	case ProviderChromem:
		chromemCfg := ChromemConfig{}
		if cfg.Chromem != nil {
			chromemCfg = *cfg.Chromem
		}
		embed := cfg.EmbeddingFunc
		if embed == nil {
			embed = chromem.NewEmbeddingFuncDefault()
		}
		return NewChromemProvider(chromemCfg, embed)

	default:
		return nil, fmt.Errorf("unsupported vector provider type: %s", cfg.Type)
	}
}
