package command

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/rios0rios0/subtreesync/internal/domain/entities"
	"github.com/rios0rios0/subtreesync/internal/domain/repositories"
)

// ExecCommandRunner implements repositories.CommandRunner with os/exec.
type ExecCommandRunner struct {
	log    logrus.FieldLogger
	dryRun bool
}

// NewExecCommandRunner creates a runner bound to one run's log sink.
func NewExecCommandRunner(log logrus.FieldLogger, dryRun bool) repositories.CommandRunner {
	return &ExecCommandRunner{log: log, dryRun: dryRun}
}

// Run executes the command and captures its output. Mutating commands are only logged in
// dry-run mode.
func (r *ExecCommandRunner) Run(ctx context.Context, command entities.Command) (entities.CommandResult, error) {
	result := entities.CommandResult{Command: command}
	if len(command.Args) == 0 {
		return result, errors.New("empty command")
	}

	if r.dryRun && !command.ReadOnly {
		r.log.Infof("[DRY-RUN] %s", command.String())
		result.Status = entities.CommandSkipped
		return result, nil
	}

	if command.ReadOnly {
		r.log.Debugf("$ %s", command.String())
	} else {
		r.log.Infof("$ %s", command.String())
	}

	//nolint:gosec // argv is built by the tool, never by a shell
	cmd := exec.CommandContext(ctx, command.Args[0], command.Args[1:]...)
	cmd.Dir = command.Dir
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	result.Stdout = stdout.String()
	result.Stderr = stderr.String()

	var exitErr *exec.ExitError
	switch {
	case err == nil:
		result.Status = entities.CommandSucceeded
	case errors.As(err, &exitErr):
		result.Status = entities.CommandFailed
		result.ExitCode = exitErr.ExitCode()
	default:
		result.Status = entities.CommandFailed
		result.ExitCode = -1
		return result, fmt.Errorf("failed to run %q: %w", command.String(), err)
	}

	if !command.ReadOnly {
		if out := strings.TrimSpace(result.Stdout); out != "" {
			r.log.Debug(out)
		}
	}
	return result, nil
}
