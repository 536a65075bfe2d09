package commands

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/rios0rios0/subtreesync/internal/domain/entities"
	"github.com/rios0rios0/subtreesync/internal/domain/repositories"
)

// Resolve is the interface for the resolve command.
type Resolve interface {
	Execute(
		ctx context.Context,
		log logrus.FieldLogger,
		settings *entities.Settings,
		only []string,
	) ([]ResolvedDependency, error)
}

// ResolvedDependency pairs a declaration with the reference a sync would vendor.
type ResolvedDependency struct {
	Dependency entities.DependencyDeclaration
	Resolution entities.Resolution
	LatestTag  string // Highest version tag on the remote, "" when there is none
}

// ResolveCommand reports what each dependency resolves to without touching the repository.
type ResolveCommand struct {
	remotes  repositories.RemoteRepositoryFactory
	releases repositories.ReleaseLookup
}

// NewResolveCommand creates a new ResolveCommand.
func NewResolveCommand(
	remotes repositories.RemoteRepositoryFactory,
	releases repositories.ReleaseLookup,
) *ResolveCommand {
	return &ResolveCommand{remotes: remotes, releases: releases}
}

// Execute resolves the selected dependencies in declaration order.
func (it *ResolveCommand) Execute(
	ctx context.Context,
	log logrus.FieldLogger,
	settings *entities.Settings,
	only []string,
) ([]ResolvedDependency, error) {
	selected, err := selectDependencies(settings.Dependencies, only)
	if err != nil {
		return nil, err
	}

	resolver := NewReferenceResolver(it.remotes(runTokens(settings)), it.releases, settings, log)

	var resolved []ResolvedDependency
	for _, dep := range settings.Dependencies {
		if _, ok := selected[dep.Name]; !ok {
			continue
		}
		resolution := resolver.Resolve(ctx, dep)
		latest := resolution.Ref
		if resolution.Strategy != entities.StrategySemverTag {
			latest = resolver.LatestSemverTag(ctx, dep.URL)
		}
		resolved = append(resolved, ResolvedDependency{
			Dependency: dep,
			Resolution: resolution,
			LatestTag:  latest,
		})
	}
	return resolved, nil
}
