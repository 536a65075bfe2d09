package internal

import (
	"github.com/rios0rios0/subtreesync/internal/domain/entities"
	"github.com/rios0rios0/subtreesync/internal/infrastructure/controllers"
)

// AppInternal holds the controllers mounted as subcommands, plus the one the bare root
// command runs.
type AppInternal struct {
	controllers []entities.Controller
	root        *controllers.SyncController
}

// NewAppInternal creates the application from the registered controllers.
func NewAppInternal(list *[]entities.Controller, root *controllers.SyncController) *AppInternal {
	return &AppInternal{controllers: *list, root: root}
}

// GetControllers returns every subcommand controller.
func (it *AppInternal) GetControllers() []entities.Controller {
	return it.controllers
}

// GetRootController returns the controller run when no subcommand is given.
func (it *AppInternal) GetRootController() entities.Controller {
	return it.root
}
