package entities

import "github.com/spf13/cobra"

// ControllerBind is the Cobra metadata a controller is mounted with.
type ControllerBind struct {
	Use   string
	Short string
	Long  string
}

// Controller is one CLI subcommand.
type Controller interface {
	GetBind() ControllerBind
	AddFlags(cmd *cobra.Command)
	Execute(cmd *cobra.Command, args []string) error
}
