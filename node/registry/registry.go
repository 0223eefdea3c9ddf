package registry

import (
	"fmt"
	"sort"
	"sync"

	"covlaunch/core/launch"
)

// Registry maps launch type identifiers to launch types.
type Registry struct {
	mu    sync.RWMutex
	types map[string]*LaunchType
}

func New() *Registry {
	return &Registry{types: map[string]*LaunchType{}}
}

// Register adds or replaces a launch type and returns it.
func (r *Registry) Register(id, name string) *LaunchType {
	t := &LaunchType{id: id, name: name}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.types[id] = t
	return t
}

// Get returns a launch type by id or an error if missing.
func (r *Registry) Get(id string) (*LaunchType, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if t, ok := r.types[id]; ok {
		return t, nil
	}
	return nil, fmt.Errorf("launch type %q not registered", id)
}

// LaunchType implements launch.TypeLookup.
func (r *Registry) LaunchType(id string) (launch.Type, bool) {
	t, err := r.Get(id)
	if err != nil {
		return nil, false
	}
	return t, true
}

// IDs returns the registered launch type identifiers in sorted order.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.types))
	for id := range r.types {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

type registration struct {
	ref   launch.DelegateRef
	modes map[launch.Mode]bool
}

// LaunchType holds the delegates registered for a type, per mode.
type LaunchType struct {
	id   string
	name string

	mu            sync.RWMutex
	registrations []registration
}

func (t *LaunchType) ID() string   { return t.id }
func (t *LaunchType) Name() string { return t.name }

// AddDelegate registers ref for the given modes. Registration order decides
// which delegate DelegatesFor lists first.
func (t *LaunchType) AddDelegate(ref launch.DelegateRef, modes ...launch.Mode) *LaunchType {
	set := make(map[launch.Mode]bool, len(modes))
	for _, m := range modes {
		set[m] = true
	}
	t.mu.Lock()
	t.registrations = append(t.registrations, registration{ref: ref, modes: set})
	t.mu.Unlock()
	return t
}

// DelegatesFor returns the delegates registered for mode.
func (t *LaunchType) DelegatesFor(mode launch.Mode) []launch.DelegateRef {
	t.mu.RLock()
	defer t.mu.RUnlock()
	var out []launch.DelegateRef
	for _, reg := range t.registrations {
		if reg.modes[mode] {
			out = append(out, reg.ref)
		}
	}
	return out
}

// Modes returns every mode some delegate is registered for, sorted.
func (t *LaunchType) Modes() []launch.Mode {
	t.mu.RLock()
	defer t.mu.RUnlock()
	seen := map[launch.Mode]bool{}
	var out []launch.Mode
	for _, reg := range t.registrations {
		for m := range reg.modes {
			if !seen[m] {
				seen[m] = true
				out = append(out, m)
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

var _ launch.TypeLookup = (*Registry)(nil)
var _ launch.Type = (*LaunchType)(nil)
