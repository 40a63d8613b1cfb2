package source

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/groundwire/groundwire/pkg/config"
)

func websearchConfig(baseURL, apiKey string) *config.WebSearchConfig {
	cfg := &config.WebSearchConfig{
		BaseURL: baseURL,
		APIKey:  apiKey,
		Model:   "sonar",
		Timeout: "2s",
	}
	return cfg
}

func TestWebSearchAdapter_MissingCredential(t *testing.T) {
	// No server at all: the credential check must fire before any network
	// activity happens.
	adapter, err := NewWebSearchAdapter(websearchConfig("http://127.0.0.1:1", ""))
	require.NoError(t, err)

	res := adapter.Execute(context.Background(), Query{Kind: KindWebSearch, Text: "news today"})

	require.False(t, res.Success)
	assert.Equal(t, KindWebSearch, res.Kind)
	assert.Equal(t, ErrorMissingCredential, res.ErrorKind)
}

func TestWebSearchAdapter_Success(t *testing.T) {
	var gotAuth string
	var gotReq chatRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/chat/completions", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"Markets closed higher today."}}]}`))
	}))
	defer srv.Close()

	adapter, err := NewWebSearchAdapter(websearchConfig(srv.URL, "test-key"))
	require.NoError(t, err)

	res := adapter.Execute(context.Background(), Query{Kind: KindWebSearch, Text: "market summary"})

	require.True(t, res.Success)
	assert.Equal(t, "Markets closed higher today.", res.Content)
	assert.Equal(t, "Bearer test-key", gotAuth)
	assert.Equal(t, "sonar", gotReq.Model)
	require.Len(t, gotReq.Messages, 1)
	assert.Equal(t, "user", gotReq.Messages[0].Role)
	assert.Equal(t, "market summary", gotReq.Messages[0].Content)
}

func TestWebSearchAdapter_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "internal error", http.StatusInternalServerError)
	}))
	defer srv.Close()

	cfg := websearchConfig(srv.URL, "test-key")
	cfg.MaxRetries = 0
	adapter, err := NewWebSearchAdapter(cfg)
	require.NoError(t, err)

	res := adapter.Execute(context.Background(), Query{Kind: KindWebSearch, Text: "q"})

	require.False(t, res.Success)
	assert.Equal(t, ErrorServiceUnavailable, res.ErrorKind)
}

func TestWebSearchAdapter_EmptyAnswer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[]}`))
	}))
	defer srv.Close()

	adapter, err := NewWebSearchAdapter(websearchConfig(srv.URL, "test-key"))
	require.NoError(t, err)

	res := adapter.Execute(context.Background(), Query{Kind: KindWebSearch, Text: "q"})

	require.False(t, res.Success)
	assert.Equal(t, ErrorServiceUnavailable, res.ErrorKind)
}

func TestWebSearchAdapter_MalformedResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`not json`))
	}))
	defer srv.Close()

	adapter, err := NewWebSearchAdapter(websearchConfig(srv.URL, "test-key"))
	require.NoError(t, err)

	res := adapter.Execute(context.Background(), Query{Kind: KindWebSearch, Text: "q"})

	require.False(t, res.Success)
	assert.Equal(t, ErrorServiceUnavailable, res.ErrorKind)
}

func TestNewWebSearchAdapter_RequiresBaseURL(t *testing.T) {
	_, err := NewWebSearchAdapter(&config.WebSearchConfig{})
	assert.Error(t, err)
}
