package github

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	gh "github.com/google/go-github/v66/github"

	"github.com/rios0rios0/subtreesync/internal/domain/entities"
	"github.com/rios0rios0/subtreesync/internal/domain/repositories"
)

const (
	providerName = "github"
	publicHost   = "github.com"
)

// GitHubReleaseRepository implements repositories.ReleaseRepository for GitHub.
type GitHubReleaseRepository struct {
	client *gh.Client
}

// NewGitHubReleaseRepository creates a release repository for the given host. Hosts other
// than github.com are treated as GitHub Enterprise servers. An empty token queries anonymously.
func NewGitHubReleaseRepository(host, token string) repositories.ReleaseRepository {
	client := gh.NewClient(nil)
	if token != "" {
		client = client.WithAuthToken(token)
	}
	if host != "" && host != publicHost {
		baseURL := "https://" + host + "/api/v3/"
		if enterprise, err := client.WithEnterpriseURLs(baseURL, baseURL); err == nil {
			client = enterprise
		}
	}
	return NewGitHubReleaseRepositoryWithClient(client)
}

// NewGitHubReleaseRepositoryWithClient wraps an already configured client.
func NewGitHubReleaseRepositoryWithClient(client *gh.Client) *GitHubReleaseRepository {
	return &GitHubReleaseRepository{client: client}
}

func (r *GitHubReleaseRepository) Name() string { return providerName }

// LatestReleaseTag returns the tag of the latest published release. A repository without
// releases answers 404, which is reported as "".
func (r *GitHubReleaseRepository) LatestReleaseTag(ctx context.Context, ref entities.RepositoryRef) (string, error) {
	release, resp, err := r.client.Repositories.GetLatestRelease(ctx, ref.Owner, ref.Name)
	if err != nil {
		var ghErr *gh.ErrorResponse
		if errors.As(err, &ghErr) && ghErr.Response != nil && ghErr.Response.StatusCode == http.StatusNotFound {
			return "", nil
		}
		if resp != nil && resp.StatusCode == http.StatusNotFound {
			return "", nil
		}
		return "", fmt.Errorf("failed to get latest release of %s/%s: %w", ref.Owner, ref.Name, err)
	}
	return release.GetTagName(), nil
}
