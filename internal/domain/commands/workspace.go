package commands

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"

	"github.com/rios0rios0/subtreesync/internal/domain/entities"
	"github.com/rios0rios0/subtreesync/internal/domain/repositories"
)

// Workspace is the host repository one run operates on, together with the run's own
// command runner and log sink. Nothing in it is shared between runs.
type Workspace struct {
	Root   string   // Absolute repository root
	FS     afero.Fs // Rooted at Root; paths are slash separated and relative
	Runner repositories.CommandRunner
	Log    logrus.FieldLogger
	DryRun bool
}

// git runs a mutating git command and turns a non-zero exit into a CommandFailure.
func (it Workspace) git(ctx context.Context, args ...string) (entities.CommandResult, error) {
	return it.mustRun(ctx, entities.Git(it.Root, args...))
}

// query runs a read-only git command and returns the result whatever the exit code.
func (it Workspace) query(ctx context.Context, args ...string) (entities.CommandResult, error) {
	result, err := it.Runner.Run(ctx, entities.GitQuery(it.Root, args...))
	if err != nil {
		return result, &entities.EnvironmentError{Reason: "git is not available", Err: err}
	}
	return result, nil
}

func (it Workspace) mustRun(ctx context.Context, command entities.Command) (entities.CommandResult, error) {
	result, err := it.Runner.Run(ctx, command)
	if err != nil {
		return result, &entities.EnvironmentError{
			Reason: fmt.Sprintf("failed to start %q", command.String()),
			Err:    err,
		}
	}
	if !result.Succeeded() {
		return result, entities.NewCommandFailure(result)
	}
	return result, nil
}

// OpenWorkspace locates the repository containing dir and roots the workspace there.
func OpenWorkspace(
	ctx context.Context,
	runner repositories.CommandRunner,
	dir string,
	log logrus.FieldLogger,
	dryRun bool,
) (Workspace, error) {
	result, err := runner.Run(ctx, entities.GitQuery(dir, "rev-parse", "--show-toplevel"))
	if err != nil {
		return Workspace{}, &entities.EnvironmentError{Reason: "git is not available", Err: err}
	}
	root := result.Output()
	if !result.Succeeded() || root == "" {
		return Workspace{}, &entities.EnvironmentError{
			Reason: fmt.Sprintf("%q is not inside a git repository", dir),
			Err:    entities.NewCommandFailure(result),
		}
	}

	root = filepath.Clean(root)
	log.Debugf("Repository root: %s", root)

	return Workspace{
		Root:   root,
		FS:     afero.NewBasePathFs(afero.NewOsFs(), root),
		Runner: runner,
		Log:    log,
		DryRun: dryRun,
	}, nil
}
