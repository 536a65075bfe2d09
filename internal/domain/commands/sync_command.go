package commands

import (
	"context"
	"fmt"
	"path"

	"github.com/rios0rios0/subtreesync/internal/domain/entities"
	"github.com/rios0rios0/subtreesync/internal/domain/repositories"
)

// Sync is the interface for the sync command.
type Sync interface {
	Execute(ctx context.Context, ws Workspace, settings *entities.Settings, opts SyncOptions) error
}

// SyncOptions holds runtime options for a single sync run.
type SyncOptions struct {
	NoSquash     bool     // Keep full upstream history regardless of the settings
	AutoStash    bool     // Stash local changes before the run and restore them afterwards
	AutoCommit   bool     // Checkpoint-commit a dirty tree instead of refusing to run
	SkipMetadata bool     // Do not regenerate the metadata artifact
	Only         []string // If set, only vendor these dependencies
}

// SyncCommand vendors every declared dependency with its nested submodules, then
// regenerates the metadata artifact. Dependencies are processed one at a time in
// declaration order and the first failure stops the run.
type SyncCommand struct {
	remotes  repositories.RemoteRepositoryFactory
	releases repositories.ReleaseLookup
}

// NewSyncCommand creates a new SyncCommand.
func NewSyncCommand(
	remotes repositories.RemoteRepositoryFactory,
	releases repositories.ReleaseLookup,
) *SyncCommand {
	return &SyncCommand{remotes: remotes, releases: releases}
}

// Execute runs one sync over the workspace.
func (it *SyncCommand) Execute(
	ctx context.Context,
	ws Workspace,
	settings *entities.Settings,
	opts SyncOptions,
) error {
	selected, err := selectDependencies(settings.Dependencies, opts.Only)
	if err != nil {
		return err
	}

	guard := NewCleanlinessGuard(ws)
	if opts.AutoStash {
		stashed, stashErr := guard.AutoStash(ctx)
		if stashErr != nil {
			return stashErr
		}
		if stashed {
			defer guard.RestoreStash(ctx)
		}
	} else if !opts.AutoCommit {
		if err = guard.RequireCleanOrFail(ctx); err != nil {
			return err
		}
	}

	resolver := NewReferenceResolver(it.remotes(runTokens(settings)), it.releases, settings, ws.Log)
	engine := NewVendoringEngine(ws, guard, resolver, settings.SquashEnabled() && !opts.NoSquash)

	ws.Log.Infof("Starting subtree update under %q", settings.BaseDir)

	entries := make([]entities.MetadataEntry, 0, len(settings.Dependencies)+1)
	for _, dep := range settings.Dependencies {
		entry := entities.MetadataEntry{Name: dep.Name, Constant: dep.Constant, Description: dep.Description}
		if _, ok := selected[dep.Name]; !ok {
			ws.Log.Debugf("Skipping %s (not selected)", dep.Name)
			entries = append(entries, entry)
			continue
		}

		resolution := resolver.Resolve(ctx, dep)
		target := entities.VendorTarget{
			Prefix: path.Join(settings.BaseDir, dep.Name),
			URL:    dep.URL,
			Ref:    resolution.Ref,
		}
		ws.Log.Infof("Repository: %s %s (Ref: %s, %s)", dep.Name, dep.URL, resolution.Ref, resolution.Strategy)

		if err = engine.Sync(ctx, target); err != nil {
			return err
		}
		if err = engine.VendorTree(ctx, target); err != nil {
			return err
		}

		entry.Value = resolution.MetadataValue(dep)
		entries = append(entries, entry)
	}

	if settings.Metadata != nil && !opts.SkipMetadata {
		if self := settings.Metadata.Self; self != nil {
			entries = append(entries, entities.MetadataEntry{
				Name:        self.Name,
				Constant:    self.Constant,
				Description: self.Description,
				Value:       resolver.LatestReleaseTag(ctx, self.URL),
			})
		}
		writer := NewMetadataWriter(ws, guard, *settings.Metadata)
		if _, err = writer.Write(ctx, entries); err != nil {
			return err
		}
	}

	ws.Log.Info("Done")
	return nil
}

// selectDependencies returns the names to process; an empty filter selects everything.
func selectDependencies(deps []entities.DependencyDeclaration, only []string) (map[string]struct{}, error) {
	declared := make(map[string]struct{}, len(deps))
	for _, dep := range deps {
		declared[dep.Name] = struct{}{}
	}
	if len(only) == 0 {
		return declared, nil
	}

	selected := make(map[string]struct{}, len(only))
	for _, name := range only {
		if _, ok := declared[name]; !ok {
			return nil, fmt.Errorf("unknown dependency %q", name)
		}
		selected[name] = struct{}{}
	}
	return selected, nil
}

func runTokens(settings *entities.Settings) entities.TokenSettings {
	if settings.Tokens == nil {
		return entities.TokenSettings{}
	}
	return *settings.Tokens
}
