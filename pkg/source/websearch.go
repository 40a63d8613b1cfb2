package source

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/groundwire/groundwire/pkg/config"
	"github.com/groundwire/groundwire/pkg/httpclient"
)

// WebSearchAdapter queries a sonar-style web-search provider. The bearer
// credential is checked before any network call; its absence fails the fetch
// with ErrorMissingCredential rather than failing process startup.
type WebSearchAdapter struct {
	apiKey  string
	baseURL string
	model   string
	client  *httpclient.Client
}

// chatRequest is the provider wire format.
type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

func NewWebSearchAdapter(cfg *config.WebSearchConfig) (*WebSearchAdapter, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("websearch base URL is required")
	}

	model := cfg.Model
	if model == "" {
		model = "sonar"
	}

	client := httpclient.New(
		httpclient.WithHTTPClient(&http.Client{Timeout: cfg.TimeoutDuration()}),
		httpclient.WithMaxRetries(cfg.MaxRetries),
		httpclient.WithBaseDelay(200*time.Millisecond),
	)

	return &WebSearchAdapter{
		apiKey:  cfg.APIKey,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		model:   model,
		client:  client,
	}, nil
}

func (a *WebSearchAdapter) Kind() Kind {
	return KindWebSearch
}

func (a *WebSearchAdapter) Execute(ctx context.Context, q Query) Result {
	start := time.Now()

	answer, err := a.run(ctx, q)
	if err != nil {
		return Fail(KindWebSearch, err, time.Since(start))
	}
	return Succeed(KindWebSearch, answer, time.Since(start))
}

func (a *WebSearchAdapter) run(ctx context.Context, q Query) (string, error) {
	if a.apiKey == "" {
		return "", NewAdapterError("WebSearchAdapter", "run", ErrorMissingCredential,
			"web search credential is not configured", nil)
	}

	payload := chatRequest{
		Model: a.model,
		Messages: []chatMessage{
			{Role: "user", Content: q.Text},
		},
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return "", NewAdapterError("WebSearchAdapter", "run", ErrorServiceUnavailable,
			"failed to marshal search request", err)
	}

	url := a.baseURL + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonData))
	if err != nil {
		return "", NewAdapterError("WebSearchAdapter", "run", ErrorServiceUnavailable,
			"failed to create search request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+a.apiKey)
	req.GetBody = func() (io.ReadCloser, error) {
		return io.NopCloser(bytes.NewReader(jsonData)), nil
	}

	resp, err := a.client.Do(req)
	switch {
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return "", err
	case err != nil:
		if resp != nil {
			resp.Body.Close()
		}
		return "", NewAdapterError("WebSearchAdapter", "run", ErrorServiceUnavailable,
			"web search request failed", err)
	}
	defer resp.Body.Close()

	var parsed chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", NewAdapterError("WebSearchAdapter", "run", ErrorServiceUnavailable,
			"failed to decode web search response", err)
	}

	if len(parsed.Choices) == 0 || parsed.Choices[0].Message.Content == "" {
		return "", NewAdapterError("WebSearchAdapter", "run", ErrorServiceUnavailable,
			"web search response contained no answer", nil)
	}

	return parsed.Choices[0].Message.Content, nil
}
