package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/groundwire/groundwire/pkg/augment"
	"github.com/groundwire/groundwire/pkg/classifier"
	"github.com/groundwire/groundwire/pkg/config"
	"github.com/groundwire/groundwire/pkg/fetch"
	"github.com/groundwire/groundwire/pkg/source"
	"github.com/groundwire/groundwire/pkg/tools"
)

type staticAdapter struct {
	kind    source.Kind
	content string
}

func (a *staticAdapter) Kind() source.Kind { return a.kind }

func (a *staticAdapter) Execute(_ context.Context, _ source.Query) source.Result {
	return source.Result{Kind: a.kind, Success: true, Content: a.content}
}

type staticCapability struct{}

func (staticCapability) Invoke(context.Context, map[string]any) (string, error) {
	return "ok", nil
}

func newTestServer(t *testing.T) *Server {
	t.Helper()

	o := fetch.NewOrchestrator(time.Second)
	o.Register(&staticAdapter{kind: source.KindDatabase, content: "14 active records"}, time.Second)

	svc := augment.NewService(classifier.New(nil), o, 4000)

	reg := tools.NewRegistry()
	require.NoError(t, reg.Register(tools.Descriptor{
		Name:        "db_query",
		Description: "Runs a named aggregate query",
		Capability:  staticCapability{},
	}))

	cfg := &config.ServerConfig{}
	cfg.SetDefaults()
	return NewServer(cfg, svc, reg, Options{})
}

func TestHandleAugment(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/v1/augment",
		strings.NewReader(`{"text":"how many people work here"}`))
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Bundle struct {
			Results []source.Result `json:"results"`
		} `json:"bundle"`
		Chars int  `json:"chars"`
		Empty bool `json:"empty"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Bundle.Results, 1)
	assert.Equal(t, "14 active records", resp.Bundle.Results[0].Content)
	assert.Equal(t, len("14 active records"), resp.Chars)
	assert.False(t, resp.Empty)
}

func TestHandleAugment_BadRequest(t *testing.T) {
	srv := newTestServer(t)

	for name, body := range map[string]string{
		"malformed": `{not json`,
		"empty":     `{"text":""}`,
	} {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/v1/augment", strings.NewReader(body))
			rec := httptest.NewRecorder()
			srv.Handler().ServeHTTP(rec, req)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestHandleTools(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/v1/tools", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Tools []struct {
			Name        string `json:"name"`
			Description string `json:"description"`
		} `json:"tools"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Tools, 1)
	assert.Equal(t, "db_query", resp.Tools[0].Name)
}

func TestHandleHealth(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "ok")
}

func TestMetricsEndpointGatedByOptions(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
