package commands

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/rios0rios0/subtreesync/internal/domain/entities"
	"github.com/rios0rios0/subtreesync/internal/domain/repositories"
)

// fallbackBranches are probed in order when the remote does not advertise its HEAD.
//
//nolint:gochecknoglobals // fixed probe order
var fallbackBranches = []string{"main", "master"}

const defaultBranchName = "main"

// ReferenceResolver chooses the upstream reference to vendor. Every lookup degrades to the
// next step with a logged warning; resolution itself never fails the run.
type ReferenceResolver struct {
	remote   repositories.RemoteRepository
	releases repositories.ReleaseLookup
	tokens   entities.TokenSettings
	log      logrus.FieldLogger
}

// NewReferenceResolver creates a resolver using the given remote and release lookups.
func NewReferenceResolver(
	remote repositories.RemoteRepository,
	releases repositories.ReleaseLookup,
	settings *entities.Settings,
	log logrus.FieldLogger,
) *ReferenceResolver {
	resolver := &ReferenceResolver{remote: remote, releases: releases, log: log}
	if settings != nil && settings.Tokens != nil {
		resolver.tokens = *settings.Tokens
	}
	return resolver
}

// Resolve walks release, semver tag, explicit ref and default branch, first success wins.
func (it *ReferenceResolver) Resolve(ctx context.Context, dep entities.DependencyDeclaration) entities.Resolution {
	if dep.UseLatestRelease {
		if tag := it.LatestReleaseTag(ctx, dep.URL); tag != "" {
			return entities.Resolution{Ref: tag, Strategy: entities.StrategyRelease}
		}
	}

	if dep.UseLatestTag {
		if tag := it.LatestSemverTag(ctx, dep.URL); tag != "" {
			return entities.Resolution{Ref: tag, Strategy: entities.StrategySemverTag}
		}
	}

	if dep.Ref != "" {
		return entities.Resolution{Ref: dep.Ref, Strategy: entities.StrategyExplicit}
	}

	return entities.Resolution{Ref: it.DefaultBranch(ctx, dep.URL), Strategy: entities.StrategyDefaultBranch}
}

// LatestReleaseTag returns the newest published release tag of the repository, or "".
func (it *ReferenceResolver) LatestReleaseTag(ctx context.Context, url string) string {
	ref, ok := entities.ParseRepositoryURL(url)
	if !ok {
		it.log.Warnf("Cannot determine owner and repository from %q, skipping release lookup", url)
		return ""
	}

	release, ok := it.releases.ForHost(ref.Host, it.tokens.For(ref.Host))
	if !ok {
		it.log.Warnf("Release lookup is not supported for host %q (%s)", ref.Host, url)
		return ""
	}

	it.log.Infof("Checking latest %s release for %s", release.Name(), ref.Path)
	tag, err := release.LatestReleaseTag(ctx, ref)
	if err != nil {
		it.log.Warnf("Failed to fetch releases for %s: %v", ref.Path, err)
		return ""
	}
	if tag == "" {
		it.log.Warnf("No releases found for %s", ref.Path)
		return ""
	}

	it.log.Infof("Latest release tag: %s", tag)
	return tag
}

// LatestSemverTag returns the remote tag with the highest version, or "".
func (it *ReferenceResolver) LatestSemverTag(ctx context.Context, url string) string {
	tags, err := it.remote.ListTags(ctx, url)
	if err != nil {
		it.log.Warnf("Failed to list tags of %s: %v", url, err)
		return ""
	}

	tag, ok := entities.LatestSemverTag(tags)
	if !ok {
		it.log.Warnf("No version tags found on %s (%d tags listed)", url, len(tags))
		return ""
	}

	it.log.Infof("Highest version tag on %s: %s", url, tag)
	return tag
}

// DefaultBranch returns the remote's symbolic HEAD branch, else the first of main and
// master that exists, else "main".
func (it *ReferenceResolver) DefaultBranch(ctx context.Context, url string) string {
	head, err := it.remote.SymbolicHead(ctx, url)
	if err != nil {
		it.log.Warnf("Failed to query HEAD of %s: %v", url, err)
	}
	if head != "" {
		return head
	}

	for _, branch := range fallbackBranches {
		exists, probeErr := it.remote.BranchExists(ctx, url, branch)
		if probeErr != nil {
			it.log.Warnf("Failed to probe branch %q on %s: %v", branch, url, probeErr)
			continue
		}
		if exists {
			return branch
		}
	}

	it.log.Warnf("Could not determine the default branch of %s, assuming %q", url, defaultBranchName)
	return defaultBranchName
}
