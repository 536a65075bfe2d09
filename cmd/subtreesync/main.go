package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/rios0rios0/subtreesync/internal"
	"github.com/rios0rios0/subtreesync/internal/domain/entities"
	"github.com/rios0rios0/subtreesync/internal/infrastructure/controllers"
)

func buildRootCommand(appContext *internal.AppInternal) *cobra.Command {
	root := appContext.GetRootController()
	//nolint:exhaustruct // Minimal Command initialization with required fields only
	cmd := &cobra.Command{
		Use:   "subtreesync [path]",
		Short: "Vendor git dependencies as subtrees, recursively",
		Long: `Vendor the repositories declared in .subtrees.yaml into the current git
repository as git subtrees, following the .gitmodules manifests they carry so
nested submodules are vendored too.

Usage modes:
  subtreesync               Sync the repository containing the current directory
  subtreesync sync [path]   Same, for the repository containing path
  subtreesync resolve       Show what every dependency resolves to`,
		Args:          cobra.MaximumNArgs(1),
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE:          root.Execute,
	}

	controllers.AddGlobalFlags(cmd)
	root.AddFlags(cmd)
	return cmd
}

func addSubcommands(rootCmd *cobra.Command, appContext *internal.AppInternal) {
	for _, controller := range appContext.GetControllers() {
		bind := controller.GetBind()
		//nolint:exhaustruct // Minimal Command initialization with required fields only
		subCmd := &cobra.Command{
			Use:   bind.Use,
			Short: bind.Short,
			Long:  bind.Long,
			Args:  cobra.MaximumNArgs(1),
			RunE:  controller.Execute,
		}
		controller.AddFlags(subCmd)
		rootCmd.AddCommand(subCmd)
	}
}

// reportFailure writes the single error line of a failed run and returns its exit status.
func reportFailure(w io.Writer, err error) int {
	_, _ = fmt.Fprintf(w, "Error executing 'subtreesync': %s\n", err)
	return exitStatus(err)
}

// exitStatus maps a failed command to its own exit code and everything else to 1.
func exitStatus(err error) int {
	var failure *entities.CommandFailure
	if errors.As(err, &failure) {
		return failure.ExitStatus()
	}
	return 1
}

func main() {
	appContext := injectAppContext()
	cobraRoot := buildRootCommand(appContext)
	addSubcommands(cobraRoot, appContext)

	if err := cobraRoot.Execute(); err != nil {
		os.Exit(reportFailure(os.Stderr, err))
	}
}
