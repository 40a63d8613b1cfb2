package vector

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPProvider_Query(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/search", r.URL.Path)

		var req searchRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "quarterly revenue", req.Query)
		assert.Equal(t, 2, req.TopK)
		assert.Equal(t, "semantic", req.SearchType)

		_ = json.NewEncoder(w).Encode(map[string]any{
			"results": []map[string]any{
				{"content": "Q3 revenue was 1.2M", "score": 0.91, "metadata": map[string]any{"doc": "q3.pdf"}},
				{"content": "Q2 revenue was 1.1M", "score": 0.84},
			},
		})
	}))
	defer srv.Close()

	provider, err := NewHTTPProvider(HTTPConfig{BaseURL: srv.URL})
	require.NoError(t, err)
	defer provider.Close()

	matches, err := provider.Query(context.Background(), "quarterly revenue", 2, "semantic")
	require.NoError(t, err)
	require.Len(t, matches, 2)
	assert.Equal(t, "Q3 revenue was 1.2M", matches[0].Content)
	assert.InDelta(t, 0.91, matches[0].Score, 0.001)
	assert.Equal(t, "q3.pdf", matches[0].Metadata["doc"])
}

func TestHTTPProvider_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "index unavailable", http.StatusInternalServerError)
	}))
	defer srv.Close()

	provider, err := NewHTTPProvider(HTTPConfig{BaseURL: srv.URL})
	require.NoError(t, err)
	defer provider.Close()

	_, err = provider.Query(context.Background(), "anything", 3, "semantic")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 500")
}

func TestHTTPProvider_MalformedResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("not json"))
	}))
	defer srv.Close()

	provider, err := NewHTTPProvider(HTTPConfig{BaseURL: srv.URL})
	require.NoError(t, err)
	defer provider.Close()

	_, err = provider.Query(context.Background(), "anything", 3, "semantic")
	assert.Error(t, err)
}

func TestHTTPProvider_RequiresBaseURL(t *testing.T) {
	_, err := NewHTTPProvider(HTTPConfig{})
	assert.Error(t, err)
}

func TestHTTPProvider_APIKeyHeader(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "sk-test", r.Header.Get("X-Api-Key"))
		_ = json.NewEncoder(w).Encode(map[string]any{"results": []map[string]any{}})
	}))
	defer srv.Close()

	provider, err := NewHTTPProvider(HTTPConfig{BaseURL: srv.URL, APIKey: "sk-test"})
	require.NoError(t, err)
	defer provider.Close()

	matches, err := provider.Query(context.Background(), "anything", 3, "semantic")
	require.NoError(t, err)
	assert.Empty(t, matches)
}
