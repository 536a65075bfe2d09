package controllers

import (
	"context"
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/rios0rios0/subtreesync/internal/domain/commands"
	"github.com/rios0rios0/subtreesync/internal/domain/entities"
	"github.com/rios0rios0/subtreesync/internal/domain/repositories"
)

// ResolveController handles the "resolve" subcommand.
type ResolveController struct {
	command commands.Resolve
	runners repositories.CommandRunnerFactory
}

// NewResolveController creates a new ResolveController.
func NewResolveController(command commands.Resolve, runners repositories.CommandRunnerFactory) *ResolveController {
	return &ResolveController{command: command, runners: runners}
}

// GetBind returns the Cobra command metadata for the resolve controller.
func (it *ResolveController) GetBind() entities.ControllerBind {
	return entities.ControllerBind{
		Use:   "resolve [path]",
		Short: "Show the reference each dependency resolves to",
		Long: `Resolve every declared dependency the way sync would and print the result,
the strategy that produced it and the highest version tag on the remote.
Nothing in the repository is modified.`,
	}
}

// AddFlags adds the resolve-specific flags to the given Cobra command.
func (it *ResolveController) AddFlags(cmd *cobra.Command) {
	cmd.Flags().StringSlice("only", nil, "Only resolve these dependencies (repeatable)")
}

// Execute resolves the dependencies and prints them as a table on stdout.
func (it *ResolveController) Execute(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	run, err := openRun(ctx, cmd, args, it.runners)
	if err != nil {
		return err
	}

	only, _ := cmd.Flags().GetStringSlice("only")
	resolved, err := it.command.Execute(ctx, run.log, run.settings, only)
	if err != nil {
		return fmt.Errorf("resolve failed: %w", err)
	}

	noColor, _ := cmd.Flags().GetBool("no-color")
	_, err = fmt.Fprintln(cmd.OutOrStdout(), renderResolved(resolved, noColor))
	return err
}

func renderResolved(resolved []commands.ResolvedDependency, plain bool) string {
	rows := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("DEPENDENCY", "REF", "STRATEGY", "LATEST TAG", "URL")
	if !plain {
		header := lipgloss.NewStyle().Bold(true)
		rows = rows.StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return header
			}
			return lipgloss.NewStyle()
		})
	}

	for _, dep := range resolved {
		latest := dep.LatestTag
		if latest == "" {
			latest = "-"
		}
		rows = rows.Row(
			dep.Dependency.Name,
			dep.Resolution.Ref,
			string(dep.Resolution.Strategy),
			latest,
			dep.Dependency.URL,
		)
	}
	return rows.String()
}
