package repositories

import (
	"slices"
	"strings"

	domainRepos "github.com/rios0rios0/subtreesync/internal/domain/repositories"
)

// ReleaseFactory is a constructor function that creates a ReleaseRepository for a host and auth token.
type ReleaseFactory func(host, token string) domainRepos.ReleaseRepository

// ReleaseRegistry manages all registered release lookups, keyed by the hosting service name
// that must appear in a repository host (e.g. "github" serves github.com and github.example.org).
type ReleaseRegistry struct {
	factories map[string]ReleaseFactory
}

// NewReleaseRegistry creates an empty release registry.
func NewReleaseRegistry() *ReleaseRegistry {
	return &ReleaseRegistry{
		factories: make(map[string]ReleaseFactory),
	}
}

// Register adds a release factory under the given name (e.g. "github").
func (r *ReleaseRegistry) Register(name string, factory ReleaseFactory) {
	r.factories[name] = factory
}

// ForHost returns a configured release repository for the host, or false when no
// registered service matches it.
func (r *ReleaseRegistry) ForHost(host, token string) (domainRepos.ReleaseRepository, bool) {
	host = strings.ToLower(host)
	for _, name := range r.Names() {
		if strings.Contains(host, name) {
			return r.factories[name](host, token), true
		}
	}
	return nil, false
}

// Names returns the registered service names in sorted order.
func (r *ReleaseRegistry) Names() []string {
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
