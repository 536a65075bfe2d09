package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"

	"github.com/rios0rios0/subtreesync/internal/domain/entities"
)

const (
	subtreeAdd  = "add"
	subtreePull = "pull"
)

// VendoringEngine adds or refreshes subtrees and walks the submodule manifests they carry.
type VendoringEngine struct {
	ws       Workspace
	guard    *CleanlinessGuard
	resolver *ReferenceResolver
	squash   bool
}

// NewVendoringEngine creates an engine for one run.
func NewVendoringEngine(
	ws Workspace,
	guard *CleanlinessGuard,
	resolver *ReferenceResolver,
	squash bool,
) *VendoringEngine {
	return &VendoringEngine{ws: ws, guard: guard, resolver: resolver, squash: squash}
}

// Sync adds the target when its prefix is absent or empty and pulls it otherwise, then
// commits whatever the operation left behind.
func (it *VendoringEngine) Sync(ctx context.Context, target entities.VendorTarget) error {
	present, err := it.prepareTarget(ctx, target.Prefix)
	if err != nil {
		return err
	}

	action := subtreeAdd
	if present {
		action = subtreePull
	}

	if _, err = it.guard.EnsureCleanOrCommit(ctx, action+" "+target.Prefix); err != nil {
		return err
	}

	args := []string{"subtree", action, "--prefix=" + target.Prefix, target.URL, target.Ref}
	if it.squash {
		args = append(args, "--squash")
	}
	it.ws.Log.Infof("==> %s subtree: %s (%s@%s)", strings.ToUpper(action), target.Prefix, target.URL, target.Ref)
	if _, err = it.ws.git(ctx, args...); err != nil {
		return fmt.Errorf("failed to %s subtree %s: %w", action, target.Prefix, err)
	}

	changed, err := it.guard.CommitPrefixIfNeeded(ctx, target.Prefix,
		fmt.Sprintf("chore(subtree): %s %s (%s) -> %s", action, target.URL, target.Ref, target.Prefix))
	if err != nil {
		return err
	}
	if !changed {
		if _, err = it.guard.FinalizeIfDirty(ctx,
			fmt.Sprintf("chore(subtree): finalize %s %s (%s)", action, target.URL, target.Ref)); err != nil {
			return err
		}
	}
	return nil
}

// prepareTarget reports whether the prefix holds vendored content. An empty leftover
// directory is removed and the tree re-checkpointed, so the subtree is added afresh.
func (it *VendoringEngine) prepareTarget(ctx context.Context, prefix string) (bool, error) {
	info, err := it.ws.FS.Stat(prefix)
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to inspect %s: %w", prefix, err)
	}
	if !info.IsDir() {
		return false, fmt.Errorf("subtree prefix %s exists and is not a directory", prefix)
	}

	empty, err := afero.IsEmpty(it.ws.FS, prefix)
	if err != nil {
		return false, fmt.Errorf("failed to inspect %s: %w", prefix, err)
	}
	if !empty {
		return true, nil
	}

	it.ws.Log.Warnf("Empty directory at %s, removing it before the subtree add", prefix)
	if !it.ws.DryRun {
		if err = it.ws.FS.Remove(prefix); err != nil {
			return false, fmt.Errorf("failed to remove empty directory %s: %w", prefix, err)
		}
	}
	if _, err = it.guard.EnsureCleanOrCommit(ctx, prefix); err != nil {
		return false, err
	}
	return false, nil
}

// walkFrame is one manifest being processed; next indexes the entry to handle.
type walkFrame struct {
	parent    entities.VendorTarget
	entries   []entities.SubmoduleEntry
	next      int
	ancestors map[string]struct{} // canonical URLs from the walk root down to parent
}

// VendorTree vendors every submodule declared below root, depth first and in manifest
// order. The walk owns its visited set: an entry is skipped when its (path, url) pair was
// already handled or when its repository is one of its own ancestors.
func (it *VendoringEngine) VendorTree(ctx context.Context, root entities.VendorTarget) error {
	visited := entities.NewVisitedSet()
	visited.Mark(it.visitKey(root))

	rootFrame, err := it.frameFor(root, map[string]struct{}{})
	if err != nil {
		return err
	}

	var stack []*walkFrame
	if rootFrame != nil {
		stack = append(stack, rootFrame)
	}

	for len(stack) > 0 {
		frame := stack[len(stack)-1]
		if frame.next >= len(frame.entries) {
			stack = stack[:len(stack)-1]
			continue
		}
		entry := frame.entries[frame.next]
		frame.next++

		target, ok := it.nestedTarget(ctx, frame, entry, visited)
		if !ok {
			continue
		}
		if err = it.Sync(ctx, target); err != nil {
			return err
		}

		child, frameErr := it.frameFor(target, frame.ancestors)
		if frameErr != nil {
			return frameErr
		}
		if child != nil {
			stack = append(stack, child)
		}
	}

	it.ws.Log.Debugf("Walk of %s handled %d targets", root.Prefix, visited.Len())
	return nil
}

// nestedTarget resolves one manifest entry into a target, or reports false when it must be skipped.
func (it *VendoringEngine) nestedTarget(
	ctx context.Context,
	frame *walkFrame,
	entry entities.SubmoduleEntry,
	visited *entities.VisitedSet,
) (entities.VendorTarget, bool) {
	target := entities.VendorTarget{
		Prefix: frame.parent.NestedPrefix(entry),
		URL:    entities.ResolveSubmoduleURL(frame.parent.URL, entry.URL),
	}

	if _, cyclic := frame.ancestors[entities.CanonicalRepositoryURL(target.URL)]; cyclic {
		it.ws.Log.Warnf("Skipping %s: %s is already vendored above it", target.Prefix, target.URL)
		return target, false
	}
	if !visited.Mark(it.visitKey(target)) {
		it.ws.Log.Debugf("Skipping %s (%s), already handled in this walk", target.Prefix, target.URL)
		return target, false
	}

	target.Ref = entry.Branch
	if target.Ref == "" {
		target.Ref = it.resolver.DefaultBranch(ctx, target.URL)
	}
	return target, true
}

// frameFor reads the manifest under target; a nil frame means there is nothing to descend into.
func (it *VendoringEngine) frameFor(
	target entities.VendorTarget,
	ancestors map[string]struct{},
) (*walkFrame, error) {
	entries, err := it.readManifest(target.Prefix)
	if err != nil || len(entries) == 0 {
		return nil, err
	}

	chain := make(map[string]struct{}, len(ancestors)+1)
	for url := range ancestors {
		chain[url] = struct{}{}
	}
	chain[entities.CanonicalRepositoryURL(target.URL)] = struct{}{}

	return &walkFrame{parent: target, entries: entries, ancestors: chain}, nil
}

func (it *VendoringEngine) readManifest(prefix string) ([]entities.SubmoduleEntry, error) {
	manifest := path.Join(prefix, entities.SubmoduleManifestFile)
	data, err := afero.ReadFile(it.ws.FS, manifest)
	if errors.Is(err, os.ErrNotExist) {
		it.ws.Log.Debugf("No %s in %s", entities.SubmoduleManifestFile, prefix)
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", manifest, err)
	}

	entries, err := entities.ParseSubmoduleManifest(data)
	if err != nil {
		it.ws.Log.Warnf("Ignoring unreadable %s: %v", manifest, err)
		return nil, nil
	}

	if len(entries) > 0 {
		it.ws.Log.Infof("Submodules found in %s:", prefix)
		for _, entry := range entries {
			if entry.Branch != "" {
				it.ws.Log.Infof("  - %s (%s) [branch=%s]", entry.Path, entry.URL, entry.Branch)
			} else {
				it.ws.Log.Infof("  - %s (%s)", entry.Path, entry.URL)
			}
		}
	}
	return entries, nil
}

func (it *VendoringEngine) visitKey(target entities.VendorTarget) entities.VisitKey {
	return entities.VisitKey{
		Path: filepath.Clean(filepath.Join(it.ws.Root, filepath.FromSlash(target.Prefix))),
		URL:  target.URL,
	}
}
