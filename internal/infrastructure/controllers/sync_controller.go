package controllers

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rios0rios0/subtreesync/internal/domain/commands"
	"github.com/rios0rios0/subtreesync/internal/domain/entities"
	"github.com/rios0rios0/subtreesync/internal/domain/repositories"
)

// SyncController handles the "sync" subcommand, also run by the bare root command.
type SyncController struct {
	command commands.Sync
	runners repositories.CommandRunnerFactory
}

// NewSyncController creates a new SyncController.
func NewSyncController(command commands.Sync, runners repositories.CommandRunnerFactory) *SyncController {
	return &SyncController{command: command, runners: runners}
}

// GetBind returns the Cobra command metadata for the sync controller.
func (it *SyncController) GetBind() entities.ControllerBind {
	return entities.ControllerBind{
		Use:   "sync [path]",
		Short: "Vendor every declared dependency as a git subtree",
		Long: `Add or pull every dependency declared in the config file as a git subtree,
then walk the .gitmodules manifests the vendored trees carry and vendor their
submodules below them, depth first.

Finally regenerate the metadata file recording the resolved reference of every
dependency and commit it when it changed.`,
	}
}

// AddFlags adds the sync-specific flags to the given Cobra command.
func (it *SyncController) AddFlags(cmd *cobra.Command) {
	cmd.Flags().Bool("no-squash", false, "Keep the full upstream history")
	cmd.Flags().Bool("auto-stash", false, "Stash local changes before syncing and restore them afterwards")
	cmd.Flags().Bool("auto-commit", false, "Commit local changes as a checkpoint instead of refusing to run")
	cmd.Flags().StringSlice("only", nil, "Only sync these dependencies (repeatable)")
	cmd.Flags().Bool("skip-metadata", false, "Do not regenerate the metadata file")
}

// Execute runs one sync over the repository containing the optional path argument.
func (it *SyncController) Execute(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	run, err := openRun(ctx, cmd, args, it.runners)
	if err != nil {
		return err
	}

	noSquash, _ := cmd.Flags().GetBool("no-squash")
	autoStash, _ := cmd.Flags().GetBool("auto-stash")
	autoCommit, _ := cmd.Flags().GetBool("auto-commit")
	only, _ := cmd.Flags().GetStringSlice("only")
	skipMetadata, _ := cmd.Flags().GetBool("skip-metadata")

	if err = it.command.Execute(ctx, run.ws, run.settings, commands.SyncOptions{
		NoSquash:     noSquash,
		AutoStash:    autoStash,
		AutoCommit:   autoCommit,
		SkipMetadata: skipMetadata,
		Only:         only,
	}); err != nil {
		return fmt.Errorf("sync failed: %w", err)
	}
	return nil
}
