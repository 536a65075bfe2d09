//go:build unit

package commands_test

import (
	"context"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rios0rios0/subtreesync/internal/domain/commands"
	"github.com/rios0rios0/subtreesync/internal/domain/entities"
)

const metadataPath = "src/metadata/metadata.go"

func metadataEntries(widgets, gadgets string) []entities.MetadataEntry {
	return []entities.MetadataEntry{
		{Name: "widgets", Constant: "LatestWidgetsReleaseTag", Description: "Widgets", Value: widgets},
		{Name: "gadgets", Constant: "LatestGadgetsRef", Description: "Gadgets", Value: gadgets},
	}
}

func TestMetadataWriterWrite(t *testing.T) {
	t.Parallel()

	t.Run("should write and commit on the first call only", func(t *testing.T) {
		t.Parallel()

		// given
		ws, fake, _ := newWorkspace(t)
		writer := commands.NewMetadataWriter(ws, commands.NewCleanlinessGuard(ws), entities.MetadataSettings{Path: metadataPath})
		entries := metadataEntries("v1.2.0", "main")

		// when
		first, firstErr := writer.Write(context.Background(), entries)
		second, secondErr := writer.Write(context.Background(), entries)

		// then
		require.NoError(t, firstErr)
		require.NoError(t, secondErr)
		assert.True(t, first)
		assert.False(t, second)
		assert.Equal(t, []string{"chore: update dependency release tags"}, fake.Commits)
		committed, ok := fake.Committed(metadataPath)
		require.True(t, ok)
		assert.Contains(t, committed, `LatestWidgetsReleaseTag = "v1.2.0"`)
		assert.Contains(t, committed, `Version = "0.1.0.0"`)
	})

	t.Run("should keep the previous value when a lookup produced none", func(t *testing.T) {
		t.Parallel()

		// given
		ws, _, _ := newWorkspace(t)
		writer := commands.NewMetadataWriter(ws, commands.NewCleanlinessGuard(ws), entities.MetadataSettings{Path: metadataPath})
		_, err := writer.Write(context.Background(), metadataEntries("v1.2.0", "main"))
		require.NoError(t, err)

		// when
		changed, err := writer.Write(context.Background(), metadataEntries("", "develop"))

		// then
		require.NoError(t, err)
		assert.True(t, changed)
		content, _ := afero.ReadFile(ws.FS, metadataPath)
		assert.Contains(t, string(content), `LatestWidgetsReleaseTag = "v1.2.0"`)
		assert.Contains(t, string(content), `LatestGadgetsRef = "develop"`)
	})

	t.Run("should preserve the project version of an existing artifact", func(t *testing.T) {
		t.Parallel()

		// given
		ws, fake, _ := newWorkspace(t)
		fake.Seed(metadataPath, "package metadata\n\nconst (\n\tVersion = \"2.4.0.1\"\n)\n")
		writer := commands.NewMetadataWriter(ws, commands.NewCleanlinessGuard(ws), entities.MetadataSettings{Path: metadataPath})

		// when
		_, err := writer.Write(context.Background(), metadataEntries("v1.2.0", "main"))

		// then
		require.NoError(t, err)
		content, _ := afero.ReadFile(ws.FS, metadataPath)
		assert.Contains(t, string(content), `Version = "2.4.0.1"`)
	})

	t.Run("should only report the change in dry-run mode", func(t *testing.T) {
		t.Parallel()

		// given
		ws, fake, _ := newWorkspace(t)
		ws.DryRun = true
		fake.DryRun = true
		writer := commands.NewMetadataWriter(ws, commands.NewCleanlinessGuard(ws), entities.MetadataSettings{Path: metadataPath})

		// when
		changed, err := writer.Write(context.Background(), metadataEntries("v1.2.0", "main"))

		// then
		require.NoError(t, err)
		assert.True(t, changed)
		exists, _ := afero.Exists(ws.FS, metadataPath)
		assert.False(t, exists)
		assert.Empty(t, fake.Commits)
	})

	t.Run("should render a C# class when configured", func(t *testing.T) {
		t.Parallel()

		// given
		ws, _, _ := newWorkspace(t)
		writer := commands.NewMetadataWriter(ws, commands.NewCleanlinessGuard(ws), entities.MetadataSettings{
			Path:            "src/Mod/ModMetadata.cs",
			Format:          entities.MetadataFormatCSharp,
			Package:         "CSM.TmpeSync.Mod",
			TypeName:        "ModMetadata",
			VersionConstant: "NewVersion",
		})

		// when
		_, err := writer.Write(context.Background(), metadataEntries("v1.2.0", "main"))

		// then
		require.NoError(t, err)
		content, _ := afero.ReadFile(ws.FS, "src/Mod/ModMetadata.cs")
		assert.Contains(t, string(content), "internal static class ModMetadata")
		assert.Contains(t, string(content), `internal const string NewVersion = "0.1.0.0";`)
		assert.Contains(t, string(content), `internal const string LatestWidgetsReleaseTag = "v1.2.0";`)
	})
}
