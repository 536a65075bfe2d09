package controllers

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/rios0rios0/subtreesync/internal/domain/commands"
	"github.com/rios0rios0/subtreesync/internal/domain/entities"
	"github.com/rios0rios0/subtreesync/internal/domain/repositories"
	"github.com/rios0rios0/subtreesync/internal/infrastructure/logging"
)

// AddGlobalFlags adds the flags shared by every subcommand.
func AddGlobalFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().StringP("config", "c", "",
		"Path to config file (default: auto-detect in the repository root)")
	cmd.PersistentFlags().Bool("dry-run", false,
		"Show what would be done without making changes")
	cmd.PersistentFlags().BoolP("verbose", "v", false,
		"Enable verbose output")
	cmd.PersistentFlags().Bool("no-color", false,
		"Disable colored output")
}

// runContext is everything one invocation owns: its logger, workspace and settings.
type runContext struct {
	log      *logrus.Logger
	ws       commands.Workspace
	settings *entities.Settings
}

// openRun builds the per-run logger and runner, locates the repository containing the
// optional path argument and loads the configuration found there.
func openRun(
	ctx context.Context,
	cmd *cobra.Command,
	args []string,
	runners repositories.CommandRunnerFactory,
) (*runContext, error) {
	configPath, _ := cmd.Flags().GetString("config")
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	verbose, _ := cmd.Flags().GetBool("verbose")
	noColor, _ := cmd.Flags().GetBool("no-color")

	log := logging.NewLogger(cmd.ErrOrStderr(), logging.Options{Verbose: verbose, NoColor: noColor})

	dir := "."
	if len(args) > 0 {
		dir = args[0]
	}

	ws, err := commands.OpenWorkspace(ctx, runners(log, dryRun), dir, log, dryRun)
	if err != nil {
		return nil, err
	}

	if configPath == "" {
		configPath, err = entities.FindConfigFile(ws.Root)
		if err != nil {
			return nil, fmt.Errorf("no config file found: %w (specify one with --config or create .subtrees.yaml)", err)
		}
	}
	log.Infof("Using config file: %s", configPath)

	settings, err := entities.NewSettings(configPath, log)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	return &runContext{log: log, ws: ws, settings: settings}, nil
}
