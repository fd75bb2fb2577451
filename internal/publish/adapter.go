// Package publish fans a scheduled post out to its target platforms
// and aggregates the per-platform outcomes.
package publish

import (
	"context"
	"fmt"
	"sort"

	"postflow/internal/store"
)

// Adapter publishes content to one external platform. Implementations
// are plain HTTP clients with their own request shapes; each returns
// the platform-assigned post id on success or a typed failure with a
// human-readable reason.
type Adapter interface {
	// Platform returns the platform id this adapter serves.
	Platform() string

	// Publish sends the content with the post's platform-specific
	// config and returns the platform-assigned post id.
	Publish(ctx context.Context, content *store.Content, config map[string]string) (string, error)
}

// Registry resolves platform id -> adapter. It is populated once at
// startup; adding a platform is a registration, not a core change.
type Registry struct {
	adapters map[string]Adapter
}

// NewRegistry creates a registry holding the given adapters.
func NewRegistry(adapters ...Adapter) *Registry {
	r := &Registry{adapters: make(map[string]Adapter, len(adapters))}
	for _, a := range adapters {
		r.adapters[a.Platform()] = a
	}
	return r
}

// Register adds or replaces the adapter for its platform.
func (r *Registry) Register(a Adapter) {
	r.adapters[a.Platform()] = a
}

// Resolve returns the adapter for a platform id.
func (r *Registry) Resolve(platform string) (Adapter, error) {
	a, ok := r.adapters[platform]
	if !ok {
		return nil, fmt.Errorf("no adapter registered for platform %q", platform)
	}
	return a, nil
}

// Platforms returns the registered platform ids, sorted.
func (r *Registry) Platforms() []string {
	out := make([]string, 0, len(r.adapters))
	for p := range r.adapters {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}
