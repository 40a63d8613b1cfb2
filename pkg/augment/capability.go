package augment

import (
	"context"
	"fmt"

	"github.com/groundwire/groundwire/pkg/source"
	"github.com/groundwire/groundwire/pkg/tools"
)

// adapterCapability exposes a source adapter as an invocable tool so an
// agent can call a single source directly, outside a full pipeline run.
type adapterCapability struct {
	adapter source.Adapter
}

func (c adapterCapability) Invoke(ctx context.Context, args map[string]any) (string, error) {
	q := source.Query{Kind: c.adapter.Kind()}
	if v, ok := args["text"].(string); ok {
		q.Text = v
	}
	if v, ok := args["query"].(string); ok {
		q.Name = v
	}
	if v, ok := args["top_k"]; ok {
		// JSON-decoded arguments arrive as float64.
		switch n := v.(type) {
		case int:
			q.TopK = n
		case float64:
			q.TopK = int(n)
		}
	}
	if v, ok := args["search_type"].(string); ok {
		q.SearchType = v
	}

	res := c.adapter.Execute(ctx, q)
	if !res.Success {
		return "", fmt.Errorf("%s fetch failed (%s): %s", res.Kind, res.ErrorKind, res.Error)
	}
	return res.Content, nil
}

var toolDescriptions = map[source.Kind]struct {
	name, description string
}{
	source.KindDatabase:  {"db_query", "Runs a named aggregate query against the relational store"},
	source.KindVector:    {"vector_search", "Searches the document vector store for relevant passages"},
	source.KindWebSearch: {"web_search", "Asks the web-search provider for a live answer"},
}

// RegisterAdapterTools registers every adapter known to the orchestrator as
// an invocable tool. Re-registration after a rebuild overwrites cleanly.
func RegisterAdapterTools(reg *tools.Registry, adapters []source.Adapter) error {
	for _, a := range adapters {
		meta, ok := toolDescriptions[a.Kind()]
		if !ok {
			return fmt.Errorf("no tool metadata for source kind %s", a.Kind())
		}
		err := reg.Register(tools.Descriptor{
			Name:        meta.name,
			Description: meta.description,
			Capability:  adapterCapability{adapter: a},
		})
		if err != nil {
			return err
		}
	}
	return nil
}
