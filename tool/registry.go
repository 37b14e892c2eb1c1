package tool

import "sort"

// Registry is an explicit name-to-tool table. The executor resolves every
// model-requested tool name against it; resolution failures are fatal for
// the run, so register all tools before execution starts.
//
// Registration is not safe for concurrent use; complete it during setup.
// Lookup is read-only afterwards and safe to share across runs.
type Registry struct {
	tools map[string]Tool
}

// NewRegistry creates a registry pre-populated with the given tools.
func NewRegistry(tools ...Tool) *Registry {
	r := &Registry{tools: make(map[string]Tool, len(tools))}
	for _, t := range tools {
		r.Register(t)
	}
	return r
}

// Register adds a tool, replacing any existing tool with the same name.
func (r *Registry) Register(t Tool) {
	r.tools[t.Name()] = t
}

// Resolve returns the tool registered under name.
func (r *Registry) Resolve(name string) (Tool, bool) {
	t, ok := r.tools[name]
	return t, ok
}

// Names returns all registered tool names in lexical order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.tools))
	for name := range r.tools {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Descriptors returns provider-facing descriptors for all registered tools,
// ordered by name.
func (r *Registry) Descriptors() []Descriptor {
	descs := make([]Descriptor, 0, len(r.tools))
	for _, name := range r.Names() {
		descs = append(descs, Describe(r.tools[name]))
	}
	return descs
}

// Subset returns a registry containing only the named tools. Unknown names
// are ignored; callers that need a missing name to be an error check with
// Resolve before subsetting.
func (r *Registry) Subset(names ...string) *Registry {
	sub := &Registry{tools: make(map[string]Tool, len(names))}
	for _, name := range names {
		if t, ok := r.tools[name]; ok {
			sub.tools[t.Name()] = t
		}
	}
	return sub
}
