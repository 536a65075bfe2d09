package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"

	"github.com/spf13/afero"

	"github.com/rios0rios0/subtreesync/internal/domain/entities"
)

const (
	metadataCommitMessage = "chore: update dependency release tags"
	metadataFileMode      = 0o644
	metadataDirMode       = 0o755
)

// MetadataWriter regenerates the artifact recording the resolved reference of every tracked
// dependency, and commits it when its content changed.
type MetadataWriter struct {
	ws       Workspace
	guard    *CleanlinessGuard
	settings entities.MetadataSettings
}

// NewMetadataWriter creates a writer for the configured artifact.
func NewMetadataWriter(ws Workspace, guard *CleanlinessGuard, settings entities.MetadataSettings) *MetadataWriter {
	settings.ApplyDefaults()
	return &MetadataWriter{ws: ws, guard: guard, settings: settings}
}

// Write renders the artifact from entries. An entry without a value keeps the value of the
// previous generation, and the project's own version constant is always carried over.
// The file is written only when its bytes change; the result reports whether it changed.
func (it *MetadataWriter) Write(ctx context.Context, entries []entities.MetadataEntry) (bool, error) {
	target := it.settings.Path

	existing, err := it.readExisting(target)
	if err != nil {
		return false, err
	}

	data := entities.GeneratedMetadata{OwnVersion: it.settings.DefaultVersion}
	if version, ok := entities.ParseMetadataValue(existing, it.settings.VersionConstant); ok && version != "" {
		data.OwnVersion = version
	}

	for _, entry := range entries {
		previous, _ := entities.ParseMetadataValue(existing, entry.Constant)
		if entry.Value == "" {
			entry.Value = previous
		}
		if change := entities.ClassifyRefChange(previous, entry.Value); change != entities.RefUnchanged {
			it.ws.Log.Infof("%s: %s (%q -> %q)", entry.Constant, change, previous, entry.Value)
		}
		data.Entries = append(data.Entries, entry)
	}

	rendered, err := entities.RenderMetadata(it.settings, data)
	if err != nil {
		return false, err
	}
	if rendered == existing {
		it.ws.Log.Infof("Metadata %s is up to date", target)
		return false, nil
	}

	if it.ws.DryRun {
		it.ws.Log.Infof("[DRY-RUN] Would update %s", target)
		return true, nil
	}

	if err = it.ws.FS.MkdirAll(path.Dir(target), metadataDirMode); err != nil {
		return false, fmt.Errorf("failed to create directory for %s: %w", target, err)
	}
	if err = afero.WriteFile(it.ws.FS, target, []byte(rendered), metadataFileMode); err != nil {
		return false, fmt.Errorf("failed to write %s: %w", target, err)
	}
	it.ws.Log.Infof("Updated %s", target)

	if _, err = it.guard.CommitPrefixIfNeeded(ctx, commitScope(target), metadataCommitMessage); err != nil {
		return true, err
	}
	return true, nil
}

func (it *MetadataWriter) readExisting(target string) (string, error) {
	data, err := afero.ReadFile(it.ws.FS, target)
	if errors.Is(err, os.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", target, err)
	}
	return string(data), nil
}

// commitScope is the containing directory of the artifact, or the artifact itself at the root.
func commitScope(target string) string {
	if dir := path.Dir(target); dir != "." {
		return dir
	}
	return target
}
