package repositories

import (
	"context"

	"github.com/rios0rios0/subtreesync/internal/domain/entities"
)

// ReleaseRepository looks up published releases on a hosting service.
type ReleaseRepository interface {
	// Name returns the hosting service name (e.g. "github").
	Name() string
	// LatestReleaseTag returns the tag of the newest release, or "" when the project has none.
	LatestReleaseTag(ctx context.Context, ref entities.RepositoryRef) (string, error)
}

// ReleaseLookup picks the release repository serving a host, configured with the run's tokens.
type ReleaseLookup interface {
	ForHost(host, token string) (ReleaseRepository, bool)
}
