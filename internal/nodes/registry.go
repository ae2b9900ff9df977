package nodes

import (
	"sort"
	"sync"
)

// Info is advisory metadata about a permission node discovered from an
// installed component. It helps operators find valid node names; the
// resolver never consults it when answering permission checks.
type Info struct {
	Node        string
	Description string
	Owner       string
	Category    string
	Wildcard    bool
}

// Registry collects discovered node metadata.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]Info
}

func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]Info)}
}

// Register records info, replacing any previous entry for the same node.
func (r *Registry) Register(info Info) error {
	if info.Node == "" {
		return ErrEmptyNode
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[info.Node] = info
	return nil
}

// All returns every registered entry sorted by node name.
func (r *Registry) All() []Info {
	r.mu.RLock()
	defer r.mu.RUnlock()

	infos := make([]Info, 0, len(r.entries))
	for _, info := range r.entries {
		infos = append(infos, info)
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Node < infos[j].Node })
	return infos
}

// Nodes returns the registered concrete (non-wildcard) node names sorted
// ascending. Used for display-time wildcard expansion.
func (r *Registry) Nodes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.entries))
	for name, info := range r.entries {
		if !info.Wildcard {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}
