// Package source keeps the post sources available to the Fetch stage.
package source

import (
	"sort"

	"github.com/rotisserie/eris"

	"TweetSentiment/internal/ports"
)

// Registry keeps a mapping from source names to their implementations.
type Registry struct {
	sources map[string]ports.PostSource
}

// NewRegistry builds an empty registry.
func NewRegistry() *Registry {
	return &Registry{sources: map[string]ports.PostSource{}}
}

// Register adds or replaces a source implementation.
func (r *Registry) Register(src ports.PostSource) {
	if r.sources == nil {
		r.sources = map[string]ports.PostSource{}
	}
	r.sources[src.Name()] = src
}

// Resolve returns a source by name or an error if it is absent.
func (r *Registry) Resolve(name string) (ports.PostSource, error) {
	if src, ok := r.sources[name]; ok {
		return src, nil
	}
	return nil, eris.Errorf("source %s is not registered", name)
}

// Names lists registered sources alphabetically.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.sources))
	for name := range r.sources {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
