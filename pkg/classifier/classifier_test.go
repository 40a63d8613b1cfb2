package classifier

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/groundwire/groundwire/pkg/config"
	"github.com/groundwire/groundwire/pkg/source"
)

func TestClassify_DatabaseKeywords(t *testing.T) {
	c := New(nil)

	kinds := c.Classify(source.Message{Text: "How many people work here?"})

	assert.Equal(t, []source.Kind{source.KindDatabase}, kinds)
}

func TestClassify_MultipleKinds(t *testing.T) {
	c := New(nil)

	kinds := c.Classify(source.Message{Text: "what is the latest news on our remote work policy count"})

	// Always ordered database, vector, websearch regardless of keyword order.
	assert.Equal(t, []source.Kind{source.KindDatabase, source.KindVector, source.KindWebSearch}, kinds)
}

func TestClassify_DefaultFallback(t *testing.T) {
	c := New(nil)

	kinds := c.Classify(source.Message{Text: "tell me a story"})

	assert.Equal(t, []source.Kind{source.KindVector}, kinds)
}

func TestClassify_NoDefault(t *testing.T) {
	c := New(&config.ClassifierConfig{NoDefault: true})

	kinds := c.Classify(source.Message{Text: "tell me a story"})

	assert.Empty(t, kinds)
}

func TestClassify_ConfiguredDefaults(t *testing.T) {
	c := New(&config.ClassifierConfig{DefaultKinds: []string{"websearch", "vector"}})

	kinds := c.Classify(source.Message{Text: "xyz"})

	assert.Equal(t, []source.Kind{source.KindVector, source.KindWebSearch}, kinds)
}

func TestClassify_Deterministic(t *testing.T) {
	c := New(nil)
	msg := source.Message{Text: "latest headcount policy update"}

	first := c.Classify(msg)
	for i := 0; i < 50; i++ {
		assert.Equal(t, first, c.Classify(msg))
	}
}

func TestQueries_DatabaseRuleBindsStatement(t *testing.T) {
	c := New(&config.ClassifierConfig{
		Rules: []config.RuleConfig{
			{Kind: "database", Keywords: []string{"how many"}, Query: "employee_count"},
			{Kind: "vector", Keywords: []string{"policy"}},
		},
	})

	queries := c.Queries(source.Message{Text: "how many people work here"})

	require.Len(t, queries, 1)
	assert.Equal(t, source.KindDatabase, queries[0].Kind)
	assert.Equal(t, "employee_count", queries[0].Name)
	assert.Equal(t, "how many people work here", queries[0].Text)
}

func TestQueries_FirstMatchingRulePerKindWins(t *testing.T) {
	c := New(&config.ClassifierConfig{
		Rules: []config.RuleConfig{
			{Kind: "database", Keywords: []string{"staff"}, Query: "staff_count"},
			{Kind: "database", Keywords: []string{"staff", "office"}, Query: "office_count"},
		},
	})

	queries := c.Queries(source.Message{Text: "staff in the office"})

	require.Len(t, queries, 1)
	assert.Equal(t, "staff_count", queries[0].Name)
}

func TestClassify_CaseInsensitive(t *testing.T) {
	c := New(nil)

	kinds := c.Classify(source.Message{Text: "LATEST NEWS"})

	assert.Equal(t, []source.Kind{source.KindWebSearch}, kinds)
}
