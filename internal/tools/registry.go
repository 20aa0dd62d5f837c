package tools

import (
	"context"
	"fmt"
)

// location is where a looked-up tool lives: which vector, and its index.
type location struct {
	kind  Kind
	index int
}

// Registry is a flat name -> (kind, index) lookup over two parallel
// vectors of tools, giving O(1) dispatch by name regardless of how many
// tools of each kind are registered.
type Registry struct {
	canTools []Tool
	logTools []Tool
	index    map[string]location
}

// New creates an empty Registry.
func New() *Registry {
	return &Registry{index: map[string]location{}}
}

// RegisterCanTool adds a CAN-bus tool to the registry.
func (r *Registry) RegisterCanTool(t Tool) {
	r.canTools = append(r.canTools, t)
	r.index[t.Name()] = location{kind: KindCanBus, index: len(r.canTools) - 1}
}

// RegisterLogTool adds a log tool to the registry.
func (r *Registry) RegisterLogTool(t Tool) {
	r.logTools = append(r.logTools, t)
	r.index[t.Name()] = location{kind: KindLog, index: len(r.logTools) - 1}
}

// Lookup resolves a tool name to its (kind, index) location.
func (r *Registry) Lookup(name string) (Kind, int, bool) {
	loc, ok := r.index[name]
	return loc.kind, loc.index, ok
}

// Execute dispatches to the named tool by kind, or returns a failure
// Result (never an error) if the name isn't registered — lookup failure
// is itself a tool-level outcome the command executor reports back to the
// caller, not a transport-level error.
func (r *Registry) Execute(ctx context.Context, name string, args map[string]any) Result {
	loc, ok := r.index[name]
	if !ok {
		return FailureResult(fmt.Errorf("tools: unknown tool %q", name))
	}
	switch loc.kind {
	case KindCanBus:
		return r.canTools[loc.index].Execute(ctx, args)
	case KindLog:
		return r.logTools[loc.index].Execute(ctx, args)
	default:
		return FailureResult(fmt.Errorf("tools: unknown tool kind for %q", name))
	}
}

// List returns the catalog of every registered tool, CAN-bus tools first.
func (r *Registry) List() []Info {
	infos := make([]Info, 0, len(r.canTools)+len(r.logTools))
	for _, t := range r.canTools {
		infos = append(infos, Info{Name: t.Name(), Description: t.Description(), Kind: KindCanBus, Schema: t.ParametersSchema()})
	}
	for _, t := range r.logTools {
		infos = append(infos, Info{Name: t.Name(), Description: t.Description(), Kind: KindLog, Schema: t.ParametersSchema()})
	}
	return infos
}

// Len returns the total number of registered tools.
func (r *Registry) Len() int {
	return len(r.canTools) + len(r.logTools)
}
