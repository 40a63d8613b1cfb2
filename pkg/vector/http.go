package vector

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// HTTPConfig configures the remote vector-search service provider.
type HTTPConfig struct {
	// BaseURL of the service, e.g. "http://localhost:9000".
	BaseURL string

	// SearchPath is appended to BaseURL. Defaults to "/search".
	SearchPath string

	// APIKey is sent as X-Api-Key when non-empty.
	APIKey string

	// Timeout for the underlying HTTP client. The request context may
	// impose a tighter bound.
	Timeout time.Duration
}

type httpProvider struct {
	baseURL    string
	searchPath string
	apiKey     string
	client     *http.Client
}

// searchRequest is the service wire format.
type searchRequest struct {
	Query      string `json:"query"`
	TopK       int    `json:"top_k"`
	SearchType string `json:"search_type"`
}

type searchResponse struct {
	Results []struct {
		Content  string         `json:"content"`
		Score    float32        `json:"score"`
		Metadata map[string]any `json:"metadata"`
	} `json:"results"`
}

// NewHTTPProvider creates a provider backed by the remote vector-search
// service.
func NewHTTPProvider(cfg HTTPConfig) (Provider, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("base URL is required for the http vector provider")
	}

	searchPath := cfg.SearchPath
	if searchPath == "" {
		searchPath = "/search"
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}

	return &httpProvider{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		searchPath: searchPath,
		apiKey:     cfg.APIKey,
		client:     &http.Client{Timeout: timeout},
	}, nil
}

func (p *httpProvider) Query(ctx context.Context, text string, topK int, searchType string) ([]Match, error) {
	payload := searchRequest{
		Query:      text,
		TopK:       topK,
		SearchType: searchType,
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal search request: %w", err)
	}

	url := p.baseURL + p.searchPath
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create search request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if p.apiKey != "" {
		req.Header.Set("X-Api-Key", p.apiKey)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("vector search request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("vector search returned status %d: %s", resp.StatusCode, string(body))
	}

	var parsed searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("failed to decode vector search response: %w", err)
	}

	matches := make([]Match, 0, len(parsed.Results))
	for _, r := range parsed.Results {
		matches = append(matches, Match{
			Content:  r.Content,
			Score:    r.Score,
			Metadata: r.Metadata,
		})
	}

	return matches, nil
}

func (p *httpProvider) Close() error {
	p.client.CloseIdleConnections()
	return nil
}
