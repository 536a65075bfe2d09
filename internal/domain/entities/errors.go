package entities

import (
	"errors"
	"fmt"
	"strings"
)

// ErrDirtyTree is returned when the working tree must be clean and auto-correction is disabled.
var ErrDirtyTree = errors.New(
	"working tree is not clean; commit or stash your changes, or use --auto-stash / --auto-commit",
)

// EnvironmentError reports that the tool cannot operate in the current environment
// (not inside a repository, git missing, root undeterminable).
type EnvironmentError struct {
	Reason string
	Err    error
}

func (e *EnvironmentError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Reason, e.Err)
	}
	return e.Reason
}

func (e *EnvironmentError) Unwrap() error { return e.Err }

// CommandFailure reports a required command that exited non-zero.
type CommandFailure struct {
	Command  Command
	ExitCode int
	Stderr   string
}

// NewCommandFailure builds a CommandFailure from a failed result.
func NewCommandFailure(result CommandResult) *CommandFailure {
	return &CommandFailure{
		Command:  result.Command,
		ExitCode: result.ExitCode,
		Stderr:   strings.TrimSpace(result.Stderr),
	}
}

func (e *CommandFailure) Error() string {
	msg := fmt.Sprintf("command failed (%d): %s", e.ExitCode, e.Command.String())
	if e.Stderr != "" {
		msg += "\n" + e.Stderr
	}
	return msg
}

// ExitStatus returns the process exit status to report for this failure.
func (e *CommandFailure) ExitStatus() int {
	if e.ExitCode <= 0 {
		return 1
	}
	return e.ExitCode
}
