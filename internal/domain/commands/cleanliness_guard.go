package commands

import (
	"context"
	"fmt"

	"github.com/rios0rios0/subtreesync/internal/domain/entities"
)

const (
	autoStashName = "auto-stash-before-subtrees"
	exitDifferent = 1 // git diff --quiet exit status when differences exist
)

// CleanlinessGuard is the only component that decides whether the working tree may be
// touched. No subtree operation starts while it reports pending changes.
type CleanlinessGuard struct {
	ws Workspace
}

// NewCleanlinessGuard creates a guard over the given workspace.
func NewCleanlinessGuard(ws Workspace) *CleanlinessGuard {
	return &CleanlinessGuard{ws: ws}
}

// IsClean reports whether there are no staged changes, no unstaged changes to tracked files
// and no untracked files, after refreshing the index stat cache.
func (it *CleanlinessGuard) IsClean(ctx context.Context) (bool, error) {
	if _, err := it.ws.query(ctx, "update-index", "-q", "--refresh"); err != nil {
		return false, err
	}

	for _, args := range [][]string{
		{"diff", "--no-ext-diff", "--quiet", "--exit-code"},
		{"diff", "--cached", "--no-ext-diff", "--quiet", "--exit-code"},
	} {
		differs, err := it.differs(ctx, args...)
		if err != nil || differs {
			return false, err
		}
	}

	untracked, err := it.ws.query(ctx, "ls-files", "--others", "--exclude-standard")
	if err != nil {
		return false, err
	}
	if !untracked.Succeeded() {
		return false, entities.NewCommandFailure(untracked)
	}
	return untracked.Output() == "", nil
}

// differs runs a quiet diff and maps exit 1 to true. Any other failure is fatal.
func (it *CleanlinessGuard) differs(ctx context.Context, args ...string) (bool, error) {
	result, err := it.ws.query(ctx, args...)
	if err != nil {
		return false, err
	}
	switch {
	case result.Succeeded():
		return false, nil
	case result.ExitCode == exitDifferent:
		return true, nil
	default:
		return false, entities.NewCommandFailure(result)
	}
}

// EnsureCleanOrCommit stages everything and creates one checkpoint commit when the tree is
// dirty. It reports whether a commit was created.
func (it *CleanlinessGuard) EnsureCleanOrCommit(ctx context.Context, description string) (bool, error) {
	return it.commitAllIfDirty(ctx, "chore(subtree): prepare "+description)
}

func (it *CleanlinessGuard) commitAllIfDirty(ctx context.Context, message string) (bool, error) {
	clean, err := it.IsClean(ctx)
	if err != nil {
		return false, err
	}
	if clean {
		it.ws.Log.Debug("Working tree is clean, no commit needed")
		return false, nil
	}

	it.ws.Log.Warnf("Working tree is dirty, committing all pending changes: %s", message)
	if _, err = it.ws.git(ctx, "add", "-A"); err != nil {
		return false, err
	}
	if _, err = it.ws.git(ctx, "commit", "-m", message); err != nil {
		return false, err
	}
	return true, nil
}

// RequireCleanOrFail returns ErrDirtyTree when the tree has pending changes.
func (it *CleanlinessGuard) RequireCleanOrFail(ctx context.Context) error {
	clean, err := it.IsClean(ctx)
	if err != nil {
		return err
	}
	if !clean {
		return entities.ErrDirtyTree
	}
	return nil
}

// AutoStash pushes a named stash entry covering tracked and untracked changes.
// It reports whether a stash was created; a clean tree is left alone.
func (it *CleanlinessGuard) AutoStash(ctx context.Context) (bool, error) {
	clean, err := it.IsClean(ctx)
	if err != nil {
		return false, err
	}
	if clean {
		return false, nil
	}

	it.ws.Log.Warnf("Auto-stash enabled, stashing local changes (%s)", autoStashName)
	if _, err = it.ws.git(ctx, "stash", "push", "-u", "-m", autoStashName); err != nil {
		return false, fmt.Errorf("failed to stash local changes: %w", err)
	}
	return true, nil
}

// RestoreStash pops the entry created by AutoStash. Failures are reported as warnings
// because the run outcome is already decided at this point.
func (it *CleanlinessGuard) RestoreStash(ctx context.Context) {
	it.ws.Log.Infof("Restoring stashed changes (%s)", autoStashName)
	if _, err := it.ws.git(ctx, "stash", "pop"); err != nil {
		it.ws.Log.Warnf(
			"Failed to restore stashed changes, they are still in the stash as %q (see 'git stash list'): %v",
			autoStashName, err,
		)
	}
}

// CommitPrefixIfNeeded stages everything under prefix and commits it when the staged
// diff for that prefix is non-empty. It reports whether a commit was created.
func (it *CleanlinessGuard) CommitPrefixIfNeeded(ctx context.Context, prefix, message string) (bool, error) {
	if _, err := it.ws.git(ctx, "add", "-A", "--", prefix); err != nil {
		return false, err
	}

	differs, err := it.differs(ctx, "diff", "--cached", "--quiet", "--", prefix)
	if err != nil {
		return false, err
	}
	if !differs {
		it.ws.Log.Debugf("Nothing to commit under %s", prefix)
		return false, nil
	}

	it.ws.Log.Infof("Committing changes under %s", prefix)
	if _, err = it.ws.git(ctx, "commit", "-m", message); err != nil {
		return false, err
	}
	return true, nil
}

// FinalizeIfDirty commits any leftover changes repository-wide after a step whose prefix
// commit found nothing to record.
func (it *CleanlinessGuard) FinalizeIfDirty(ctx context.Context, message string) (bool, error) {
	return it.commitAllIfDirty(ctx, message)
}
