// Package tools holds the capability registry agents draw on. Registration
// is idempotent by name and readers always work on snapshots, so a consumer
// holding a tool list is never affected by later registration churn.
package tools

import (
	"context"
	"fmt"
	"sort"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/groundwire/groundwire/pkg/observability"
	"github.com/groundwire/groundwire/pkg/registry"
)

// Capability is the invocable behavior behind a registered tool.
type Capability interface {
	Invoke(ctx context.Context, args map[string]any) (string, error)
}

// Descriptor names one tool and carries its capability.
type Descriptor struct {
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	Capability  Capability `json:"-"`
}

// Consumer receives a tool snapshot. Components that want tools declare this
// interface explicitly instead of being probed for ad hoc method sets.
type Consumer interface {
	AcceptTools(descriptors []Descriptor)
}

// Registry is a concurrency-safe tool table. Re-registering a name
// overwrites the previous descriptor and the name set stays duplicate free.
type Registry struct {
	store  *registry.Store[Descriptor]
	tracer trace.Tracer
}

func NewRegistry() *Registry {
	return &Registry{
		store:  registry.NewStore[Descriptor](),
		tracer: observability.GetTracer("tools"),
	}
}

// Register installs d under its name, replacing any previous registration.
func (r *Registry) Register(d Descriptor) error {
	if d.Name == "" {
		return fmt.Errorf("tool descriptor requires a name")
	}
	if d.Capability == nil {
		return fmt.Errorf("tool %q has no capability", d.Name)
	}
	return r.store.Put(d.Name, d)
}

// Unregister removes the named tool. Unknown names are a no-op.
func (r *Registry) Unregister(name string) {
	r.store.Remove(name)
}

// Get returns the named descriptor.
func (r *Registry) Get(name string) (Descriptor, bool) {
	return r.store.Get(name)
}

// List returns a name-sorted snapshot. The returned slice is a copy; later
// registry mutation never changes it.
func (r *Registry) List() []Descriptor {
	descriptors := r.store.List()
	sort.Slice(descriptors, func(i, j int) bool {
		return descriptors[i].Name < descriptors[j].Name
	})
	return descriptors
}

// Count returns the number of registered tools.
func (r *Registry) Count() int {
	return r.store.Count()
}

// Provide hands the current snapshot to a consumer.
func (r *Registry) Provide(c Consumer) {
	c.AcceptTools(r.List())
}

// Invoke runs the named tool.
func (r *Registry) Invoke(ctx context.Context, name string, args map[string]any) (string, error) {
	d, ok := r.store.Get(name)
	if !ok {
		return "", fmt.Errorf("tool not found: %s", name)
	}

	ctx, span := r.tracer.Start(ctx, observability.SpanToolInvoke,
		trace.WithAttributes(attribute.String(observability.AttrToolName, name)))
	defer span.End()

	return d.Capability.Invoke(ctx, args)
}
