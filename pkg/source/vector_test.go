package source

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/groundwire/groundwire/pkg/vector"
)

type fakeProvider struct {
	matches    []vector.Match
	err        error
	gotText    string
	gotTopK    int
	gotSearch  string
	queryCount int
}

func (p *fakeProvider) Query(_ context.Context, text string, topK int, searchType string) ([]vector.Match, error) {
	p.queryCount++
	p.gotText = text
	p.gotTopK = topK
	p.gotSearch = searchType
	return p.matches, p.err
}

func (p *fakeProvider) Close() error { return nil }

func TestVectorAdapter_SummarizesMatches(t *testing.T) {
	provider := &fakeProvider{
		matches: []vector.Match{
			{Content: "Remote work policy allows 3 days per week", Score: 0.91},
			{Content: "Office attendance is tracked quarterly", Score: 0.42},
		},
	}
	adapter, err := NewVectorAdapter(provider, 3, "semantic")
	require.NoError(t, err)

	res := adapter.Execute(context.Background(), Query{Kind: KindVector, Text: "remote work policy"})

	require.True(t, res.Success)
	assert.Equal(t, KindVector, res.Kind)
	assert.Equal(t,
		"Remote work policy allows 3 days per week (score 0.91)\nOffice attendance is tracked quarterly (score 0.42)",
		res.Content)
	assert.Equal(t, "remote work policy", provider.gotText)
	assert.Equal(t, 3, provider.gotTopK)
	assert.Equal(t, "semantic", provider.gotSearch)
}

func TestVectorAdapter_QueryOverridesDefaults(t *testing.T) {
	provider := &fakeProvider{matches: []vector.Match{{Content: "doc", Score: 1}}}
	adapter, err := NewVectorAdapter(provider, 3, "semantic")
	require.NoError(t, err)

	adapter.Execute(context.Background(), Query{
		Kind:       KindVector,
		Text:       "q",
		TopK:       7,
		SearchType: "keyword",
	})

	assert.Equal(t, 7, provider.gotTopK)
	assert.Equal(t, "keyword", provider.gotSearch)
}

func TestVectorAdapter_NoMatches(t *testing.T) {
	adapter, err := NewVectorAdapter(&fakeProvider{}, 3, "semantic")
	require.NoError(t, err)

	res := adapter.Execute(context.Background(), Query{Kind: KindVector, Text: "nothing"})

	require.False(t, res.Success)
	assert.Equal(t, ErrorDataUnavailable, res.ErrorKind)
}

func TestVectorAdapter_ProviderError(t *testing.T) {
	adapter, err := NewVectorAdapter(&fakeProvider{err: errors.New("connection refused")}, 3, "semantic")
	require.NoError(t, err)

	res := adapter.Execute(context.Background(), Query{Kind: KindVector, Text: "q"})

	require.False(t, res.Success)
	assert.Equal(t, ErrorServiceUnavailable, res.ErrorKind)
	assert.Contains(t, res.Error, "connection refused")
}

func TestVectorAdapter_Timeout(t *testing.T) {
	adapter, err := NewVectorAdapter(&fakeProvider{err: context.DeadlineExceeded}, 3, "semantic")
	require.NoError(t, err)

	res := adapter.Execute(context.Background(), Query{Kind: KindVector, Text: "q"})

	require.False(t, res.Success)
	assert.Equal(t, ErrorTimeout, res.ErrorKind)
}

func TestNewVectorAdapter_RequiresProvider(t *testing.T) {
	_, err := NewVectorAdapter(nil, 3, "semantic")
	assert.Error(t, err)
}
