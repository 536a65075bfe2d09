package repositories

import (
	"context"

	"github.com/rios0rios0/subtreesync/internal/domain/entities"
)

// RemoteRepository answers read-only questions about an upstream repository without cloning it.
type RemoteRepository interface {
	// ListTags returns the short tag names advertised by the remote, sorted ascending.
	ListTags(ctx context.Context, url string) ([]string, error)
	// SymbolicHead returns the branch the remote HEAD points at, or "" when it is not advertised.
	SymbolicHead(ctx context.Context, url string) (string, error)
	// BranchExists reports whether refs/heads/<branch> is advertised.
	BranchExists(ctx context.Context, url, branch string) (bool, error)
}

// RemoteRepositoryFactory builds a RemoteRepository authenticated with the run's tokens.
type RemoteRepositoryFactory func(tokens entities.TokenSettings) RemoteRepository
