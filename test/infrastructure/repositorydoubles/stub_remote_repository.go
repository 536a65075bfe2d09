//go:build integration || unit || test

package repositorydoubles //nolint:revive,staticcheck // Test package naming follows established project structure

import (
	"context"
	"slices"

	"github.com/rios0rios0/subtreesync/internal/domain/entities"
	"github.com/rios0rios0/subtreesync/internal/domain/repositories"
)

// StubRemoteRepository implements repositories.RemoteRepository with canned answers per URL.
type StubRemoteRepository struct {
	// --- ListTags ---
	Tags        map[string][]string
	ListTagsErr error

	// --- SymbolicHead ---
	Heads   map[string]string
	HeadErr error

	// --- BranchExists ---
	Branches  map[string][]string
	BranchErr error

	// spy
	ListedURLs     []string
	ProbedURLs     []string
	ProbedBranches []string
}

var _ repositories.RemoteRepository = (*StubRemoteRepository)(nil)

func (s *StubRemoteRepository) ListTags(_ context.Context, url string) ([]string, error) {
	s.ListedURLs = append(s.ListedURLs, url)
	if s.ListTagsErr != nil {
		return nil, s.ListTagsErr
	}
	return s.Tags[url], nil
}

func (s *StubRemoteRepository) SymbolicHead(_ context.Context, url string) (string, error) {
	s.ProbedURLs = append(s.ProbedURLs, url)
	if s.HeadErr != nil {
		return "", s.HeadErr
	}
	return s.Heads[url], nil
}

func (s *StubRemoteRepository) BranchExists(_ context.Context, url, branch string) (bool, error) {
	s.ProbedBranches = append(s.ProbedBranches, branch)
	if s.BranchErr != nil {
		return false, s.BranchErr
	}
	return slices.Contains(s.Branches[url], branch), nil
}

// Factory returns a RemoteRepositoryFactory that always yields this stub and records the tokens.
func (s *StubRemoteRepository) Factory(tokens *[]entities.TokenSettings) repositories.RemoteRepositoryFactory {
	return func(t entities.TokenSettings) repositories.RemoteRepository {
		if tokens != nil {
			*tokens = append(*tokens, t)
		}
		return s
	}
}
