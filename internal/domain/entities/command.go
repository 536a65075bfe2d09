package entities

import "strings"

// Command is a single external process invocation.
type Command struct {
	Args     []string // argv, program first
	Dir      string   // Working directory; empty means the current one
	ReadOnly bool     // Executed even in dry-run mode
}

// Git builds a mutating git command rooted at dir.
func Git(dir string, args ...string) Command {
	return Command{Args: append([]string{"git"}, args...), Dir: dir}
}

// GitQuery builds a read-only git command rooted at dir.
func GitQuery(dir string, args ...string) Command {
	return Command{Args: append([]string{"git"}, args...), Dir: dir, ReadOnly: true}
}

// String renders the argv the way it would be typed in a shell.
func (c Command) String() string {
	return strings.Join(c.Args, " ")
}

// CommandStatus discriminates between finished, failed and skipped invocations.
type CommandStatus int

const (
	CommandSucceeded CommandStatus = iota
	CommandFailed
	CommandSkipped // dry-run synthetic success
)

// CommandResult is the captured outcome of a Command.
type CommandResult struct {
	Command  Command
	Status   CommandStatus
	ExitCode int
	Stdout   string
	Stderr   string
}

// Succeeded reports whether the command exited with status zero or was skipped by dry-run.
func (r CommandResult) Succeeded() bool {
	return r.Status != CommandFailed
}

// Output returns trimmed stdout.
func (r CommandResult) Output() string {
	return strings.TrimSpace(r.Stdout)
}
