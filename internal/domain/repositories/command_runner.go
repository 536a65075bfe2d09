package repositories

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/rios0rios0/subtreesync/internal/domain/entities"
)

// CommandRunner executes external commands against the host repository.
// A non-zero exit is reported through the result, never as an error; the error is reserved
// for commands that could not be started at all. In dry-run mode mutating commands are logged
// and reported as skipped without running.
type CommandRunner interface {
	Run(ctx context.Context, command entities.Command) (entities.CommandResult, error)
}

// CommandRunnerFactory builds the runner of one run, bound to its log sink and dry-run mode.
type CommandRunnerFactory func(log logrus.FieldLogger, dryRun bool) CommandRunner
