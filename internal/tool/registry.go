package tool

import (
	"encoding/json"
	"fmt"
	"sort"
	"sync"
)

// Registry maps tool names to tools.
type Registry struct {
	mu    sync.RWMutex
	tools map[string]Tool
}

// NewRegistry creates a registry holding tools.
func NewRegistry(tools ...Tool) *Registry {
	r := &Registry{
		tools: make(map[string]Tool),
	}
	for _, t := range tools {
		r.Register(t)
	}
	return r
}

// Register adds t, replacing any tool with the same name.
func (r *Registry) Register(t Tool) {
	if t == nil {
		panic("tool is required")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tools[t.Name()] = t
}

// Lookup returns the tool registered under name.
func (r *Registry) Lookup(name string) (Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tools[name]
	return t, ok
}

// Names returns the registered tool names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.tools))
	for name := range r.tools {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Declarations returns every tool's declaration, sorted by name.
func (r *Registry) Declarations() []Declaration {
	r.mu.RLock()
	decls := make([]Declaration, 0, len(r.tools))
	for _, t := range r.tools {
		decls = append(decls, t.Declaration())
	}
	r.mu.RUnlock()

	sort.Slice(decls, func(i, j int) bool {
		return decls[i].Name < decls[j].Name
	})
	return decls
}

// UnknownToolMessage is the content returned to the model when it calls a
// tool that does not exist.
func (r *Registry) UnknownToolMessage(name string) string {
	declsJSON, _ := json.MarshalIndent(r.Declarations(), "", "  ")
	return fmt.Sprintf("Error: tool %q does not exist.\n\nAvailable tools:\n%s", name, declsJSON)
}
