package tools

import (
	"context"
	"sort"
	"sync"
)

// Registry maps tool names to implementations. It is populated during the
// boot load phase and then read concurrently by dispatch calls; the lock
// covers map access only, never tool execution, so one slow outbound call
// cannot stall unrelated dispatches.
type Registry struct {
	mu    sync.RWMutex
	tools map[string]Tool
}

func NewRegistry() *Registry {
	return &Registry{tools: make(map[string]Tool)}
}

// Register adds a tool under its declared name. A second registration under
// the same name replaces the first.
func (r *Registry) Register(tool Tool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tools[tool.Name()] = tool
}

// Get looks a tool up by name.
func (r *Registry) Get(name string) (Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	tool, ok := r.tools[name]
	return tool, ok
}

// Dispatch looks the tool up and runs it. The second return is false when no
// tool is registered under the name — distinct from a tool that ran and
// failed, which comes back as a non-nil error. The registry itself performs
// no argument validation.
func (r *Registry) Dispatch(ctx context.Context, name string, args map[string]interface{}) (*Result, bool, error) {
	tool, ok := r.Get(name)
	if !ok {
		return nil, false, nil
	}
	result, err := tool.Call(ctx, args)
	return result, true, err
}

// List returns a sorted snapshot of registered tool names.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.tools))
	for name := range r.tools {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
