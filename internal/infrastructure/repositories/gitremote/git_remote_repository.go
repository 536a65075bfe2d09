package gitremote

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/transport"
	"github.com/go-git/go-git/v5/plumbing/transport/http"
	"github.com/go-git/go-git/v5/storage/memory"

	"github.com/rios0rios0/subtreesync/internal/domain/entities"
	"github.com/rios0rios0/subtreesync/internal/domain/repositories"
)

const (
	remoteName     = "origin"
	githubUsername = "x-access-token"
	gitlabUsername = "oauth2"
)

// GitRemoteRepository implements repositories.RemoteRepository by listing the advertised
// references of a remote into memory. Listings are cached per URL for the lifetime of the value.
type GitRemoteRepository struct {
	tokens entities.TokenSettings

	mu       sync.Mutex
	listings map[string][]*plumbing.Reference
}

// NewGitRemoteRepository creates a remote repository authenticated with the given tokens.
// It matches repositories.RemoteRepositoryFactory.
func NewGitRemoteRepository(tokens entities.TokenSettings) repositories.RemoteRepository {
	return &GitRemoteRepository{
		tokens:   tokens,
		listings: make(map[string][]*plumbing.Reference),
	}
}

// ListTags returns the short names of all advertised tags, sorted ascending.
func (r *GitRemoteRepository) ListTags(ctx context.Context, url string) ([]string, error) {
	refs, err := r.list(ctx, url)
	if err != nil {
		return nil, err
	}

	var tags []string
	for _, ref := range refs {
		if ref.Name().IsTag() {
			tags = append(tags, ref.Name().Short())
		}
	}
	slices.Sort(tags)
	return slices.Compact(tags), nil
}

// SymbolicHead returns the branch HEAD points at, or "" when the remote does not advertise it.
func (r *GitRemoteRepository) SymbolicHead(ctx context.Context, url string) (string, error) {
	refs, err := r.list(ctx, url)
	if err != nil {
		return "", err
	}

	for _, ref := range refs {
		if ref.Name() == plumbing.HEAD && ref.Type() == plumbing.SymbolicReference && ref.Target().IsBranch() {
			return ref.Target().Short(), nil
		}
	}
	return "", nil
}

// BranchExists reports whether the remote advertises refs/heads/<branch>.
func (r *GitRemoteRepository) BranchExists(ctx context.Context, url, branch string) (bool, error) {
	refs, err := r.list(ctx, url)
	if err != nil {
		return false, err
	}

	name := plumbing.NewBranchReferenceName(branch)
	return slices.ContainsFunc(refs, func(ref *plumbing.Reference) bool {
		return ref.Name() == name
	}), nil
}

func (r *GitRemoteRepository) list(ctx context.Context, url string) ([]*plumbing.Reference, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if refs, ok := r.listings[url]; ok {
		return refs, nil
	}

	remote := git.NewRemote(memory.NewStorage(), &config.RemoteConfig{
		Name: remoteName,
		URLs: []string{url},
	})
	refs, err := remote.ListContext(ctx, &git.ListOptions{Auth: r.authFor(url)})
	if err != nil {
		return nil, fmt.Errorf("failed to list remote refs of %s: %w", url, err)
	}

	r.listings[url] = refs
	return refs, nil
}

// authFor returns token authentication for HTTPS URLs on hosts with a configured token.
func (r *GitRemoteRepository) authFor(url string) transport.AuthMethod {
	if !strings.HasPrefix(url, "https://") && !strings.HasPrefix(url, "http://") {
		return nil
	}
	ref, ok := entities.ParseRepositoryURL(url)
	if !ok {
		return nil
	}
	token := r.tokens.For(ref.Host)
	if token == "" {
		return nil
	}

	username := githubUsername
	if strings.Contains(ref.Host, "gitlab") {
		username = gitlabUsername
	}
	return &http.BasicAuth{Username: username, Password: token}
}
