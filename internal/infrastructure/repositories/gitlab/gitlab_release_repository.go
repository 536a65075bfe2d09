package gitlab

import (
	"context"
	"errors"
	"fmt"

	gl "gitlab.com/gitlab-org/api/client-go"

	"github.com/rios0rios0/subtreesync/internal/domain/entities"
	"github.com/rios0rios0/subtreesync/internal/domain/repositories"
)

const (
	providerName = "gitlab"
	publicHost   = "gitlab.com"
)

var errClientNotInitialized = errors.New("gitlab client not initialized")

// GitLabReleaseRepository implements repositories.ReleaseRepository for GitLab.
type GitLabReleaseRepository struct {
	client *gl.Client
}

// NewGitLabReleaseRepository creates a release repository for gitlab.com or a self-hosted
// instance at host.
func NewGitLabReleaseRepository(host, token string) repositories.ReleaseRepository {
	var options []gl.ClientOptionFunc
	if host != "" && host != publicHost {
		options = append(options, gl.WithBaseURL("https://"+host+"/api/v4"))
	}
	return NewGitLabReleaseRepositoryWithOptions(token, options...)
}

// NewGitLabReleaseRepositoryWithOptions creates a release repository with explicit client options.
func NewGitLabReleaseRepositoryWithOptions(token string, options ...gl.ClientOptionFunc) *GitLabReleaseRepository {
	client, err := gl.NewClient(token, options...)
	if err != nil {
		// Return a repository that will fail on use rather than panicking at construction
		return &GitLabReleaseRepository{client: nil}
	}
	return &GitLabReleaseRepository{client: client}
}

func (r *GitLabReleaseRepository) Name() string { return providerName }

// LatestReleaseTag returns the tag of the most recent release, or "" when there is none.
func (r *GitLabReleaseRepository) LatestReleaseTag(ctx context.Context, ref entities.RepositoryRef) (string, error) {
	if r.client == nil {
		return "", errClientNotInitialized
	}

	releases, _, err := r.client.Releases.ListReleases(
		ref.Path,
		&gl.ListReleasesOptions{ListOptions: gl.ListOptions{PerPage: 1}},
		gl.WithContext(ctx),
	)
	if err != nil {
		return "", fmt.Errorf("failed to list releases of %s: %w", ref.Path, err)
	}
	if len(releases) == 0 {
		return "", nil
	}
	return releases[0].TagName, nil
}
