// Package layer tracks which overlays and external renderers occupy a named
// layer on one map instance.
package layer

import (
	"slices"
	"sort"
	"sync"

	"github.com/joeblew999/plat-overlay/internal/widget"
)

// Entry is what currently occupies a layer name.
type Entry struct {
	Name     string
	Renderer widget.Renderer // set only for external-renderer layers
	Overlays []widget.Overlay
}

// Registry maps layer names to entries for a single map instance.
// References are non-owning: the map widget owns the overlays.
type Registry struct {
	layers map[string]Entry
	mu     sync.RWMutex
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{layers: make(map[string]Entry)}
}

// Get returns the entry for name.
func (r *Registry) Get(name string) (Entry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.layers[name]
	if !ok {
		return Entry{}, false
	}
	return e.clone(), true
}

// Set stores entry under name, replacing any previous entry.
func (r *Registry) Set(name string, entry Entry) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry.Name = name
	r.layers[name] = entry.clone()
}

// Append adds overlays to the entry for name, creating it if needed.
func (r *Registry) Append(name string, overlays ...widget.Overlay) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e := r.layers[name]
	e.Name = name
	e.Overlays = append(slices.Clip(e.Overlays), overlays...)
	r.layers[name] = e
}

// Forget drops o from every entry that references it. Entries left without
// overlays or renderer are removed.
func (r *Registry) Forget(o widget.Overlay) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for name, e := range r.layers {
		idx := slices.IndexFunc(e.Overlays, func(x widget.Overlay) bool { return x.ID() == o.ID() })
		if idx < 0 {
			continue
		}
		e.Overlays = slices.Delete(slices.Clone(e.Overlays), idx, idx+1)
		if len(e.Overlays) == 0 && e.Renderer == nil {
			delete(r.layers, name)
			continue
		}
		r.layers[name] = e
	}
}

// Delete removes the entry for name and returns it.
func (r *Registry) Delete(name string) (Entry, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.layers[name]
	if ok {
		delete(r.layers, name)
	}
	return e, ok
}

// List returns all entries sorted by name.
func (r *Registry) List() []Entry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]Entry, 0, len(r.layers))
	for _, e := range r.layers {
		result = append(result, e.clone())
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result
}

// Len returns the number of live entries.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.layers)
}

func (e Entry) clone() Entry {
	e.Overlays = slices.Clone(e.Overlays)
	return e
}
