package agent

import (
	"fmt"
	"sort"

	"switchboard/internal/llm"
	"switchboard/internal/memory"
	"switchboard/internal/tool"
)

// Factory builds profile-scoped runners sharing one provider, one tool
// registry and one memory store.
type Factory struct {
	provider llm.Provider
	registry *tool.Registry
	store    memory.Store
	profiles map[string]*Profile
}

func NewFactory(provider llm.Provider, registry *tool.Registry, store memory.Store, profiles map[string]*Profile) *Factory {
	return &Factory{
		provider: provider,
		registry: registry,
		store:    store,
		profiles: profiles,
	}
}

// Build creates a runner scoped to the named profile.
func (f *Factory) Build(name string) (Runner, error) {
	profile, ok := f.profiles[name]
	if !ok {
		return nil, fmt.Errorf("unknown agent profile: %s", name)
	}
	return NewReactRunner(profile, f.provider, f.registry, f.store), nil
}

// Profile looks up a registered profile by name.
func (f *Factory) Profile(name string) (*Profile, bool) {
	p, ok := f.profiles[name]
	return p, ok
}

// Profiles returns the registered profile names, sorted.
func (f *Factory) Profiles() []string {
	names := make([]string, 0, len(f.profiles))
	for name := range f.profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
