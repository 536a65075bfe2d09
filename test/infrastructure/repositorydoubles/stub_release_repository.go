//go:build integration || unit || test

package repositorydoubles //nolint:revive,staticcheck // Test package naming follows established project structure

import (
	"context"

	"github.com/rios0rios0/subtreesync/internal/domain/entities"
	"github.com/rios0rios0/subtreesync/internal/domain/repositories"
)

// StubReleaseRepository implements repositories.ReleaseRepository with tags keyed by project path.
type StubReleaseRepository struct {
	ProviderName string
	Tags         map[string]string
	Err          error

	// spy
	Requested []entities.RepositoryRef
}

var _ repositories.ReleaseRepository = (*StubReleaseRepository)(nil)

func (s *StubReleaseRepository) Name() string { return s.ProviderName }

func (s *StubReleaseRepository) LatestReleaseTag(_ context.Context, ref entities.RepositoryRef) (string, error) {
	s.Requested = append(s.Requested, ref)
	if s.Err != nil {
		return "", s.Err
	}
	return s.Tags[ref.Path], nil
}

// StubReleaseLookup implements repositories.ReleaseLookup over a fixed host map.
type StubReleaseLookup struct {
	Repositories map[string]repositories.ReleaseRepository

	// spy
	Tokens map[string]string
}

var _ repositories.ReleaseLookup = (*StubReleaseLookup)(nil)

func (s *StubReleaseLookup) ForHost(host, token string) (repositories.ReleaseRepository, bool) {
	if s.Tokens == nil {
		s.Tokens = make(map[string]string)
	}
	s.Tokens[host] = token
	repo, ok := s.Repositories[host]
	return repo, ok
}
