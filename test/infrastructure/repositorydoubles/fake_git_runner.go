//go:build integration || unit || test

// Package repositorydoubles provides test doubles (fakes, stubs, spies) for
// repository interfaces. These are hand-crafted implementations, no mock frameworks.
package repositorydoubles //nolint:revive,staticcheck // Test package naming follows established project structure

import (
	"context"
	"fmt"
	"io/fs"
	"maps"
	"path"
	"slices"
	"strings"

	"github.com/spf13/afero"

	"github.com/rios0rios0/subtreesync/internal/domain/entities"
	"github.com/rios0rios0/subtreesync/internal/domain/repositories"
)

// FakeRepositoryRoot is the absolute root the fake workspace file system is based at.
const FakeRepositoryRoot = "/repo"

// NewFakeWorkspaceFs returns an in-memory file system rooted like a real workspace.
func NewFakeWorkspaceFs() afero.Fs {
	mem := afero.NewMemMapFs()
	_ = mem.MkdirAll(FakeRepositoryRoot, 0o755)
	return afero.NewBasePathFs(mem, FakeRepositoryRoot)
}

// FakeUpstream is a remote repository the fake can vendor from.
type FakeUpstream struct {
	Files    map[string]string // Relative path -> content
	Revision string            // Change it to simulate an upstream commit
}

// FakeFailure makes every command whose rendered argv starts with the key fail.
type FakeFailure struct {
	ExitCode int
	Stderr   string
}

type fakeStash struct {
	changed map[string]string
	deleted []string
}

// FakeGitRunner implements repositories.CommandRunner by simulating the git commands the
// tool issues against an afero file system: a HEAD snapshot, an index and the worktree.
// Subtree add and pull refuse to run on a dirty tree, like the real command.
type FakeGitRunner struct {
	FS            afero.Fs
	Toplevel      string
	DryRun        bool
	Upstreams     map[string]*FakeUpstream // url -> upstream
	Failures      map[string]FakeFailure
	StartErr      error
	StashPopFails bool

	// spy
	Calls    []entities.Command
	Commits  []string // Messages of created commits, oldest first
	Subtrees []string // "add|pull <prefix> <url> <ref>" per executed subtree operation

	head     map[string]string
	index    map[string]string
	vendored map[string]string // prefix -> upstream revision
	stashes  []fakeStash
}

var _ repositories.CommandRunner = (*FakeGitRunner)(nil)

// NewFakeGitRunner creates a fake with an empty, clean repository on fs.
func NewFakeGitRunner(fsys afero.Fs) *FakeGitRunner {
	return &FakeGitRunner{
		FS:        fsys,
		Toplevel:  FakeRepositoryRoot,
		Upstreams: make(map[string]*FakeUpstream),
		Failures:  make(map[string]FakeFailure),
		head:      make(map[string]string),
		index:     make(map[string]string),
		vendored:  make(map[string]string),
	}
}

// Seed writes a committed file.
func (f *FakeGitRunner) Seed(name, content string) {
	f.writeFile(name, content)
	f.index[name] = content
	f.head[name] = content
}

// Touch writes a file to the worktree only.
func (f *FakeGitRunner) Touch(name, content string) {
	f.writeFile(name, content)
}

// Committed returns the content of a file at HEAD.
func (f *FakeGitRunner) Committed(name string) (string, bool) {
	content, ok := f.head[name]
	return content, ok
}

// SubtreeCalls returns the executed subtree operations for a prefix.
func (f *FakeGitRunner) SubtreeCalls(prefix string) []string {
	var calls []string
	for _, call := range f.Subtrees {
		if strings.Fields(call)[1] == prefix {
			calls = append(calls, call)
		}
	}
	return calls
}

// Run dispatches the command to the simulated git.
func (f *FakeGitRunner) Run(_ context.Context, command entities.Command) (entities.CommandResult, error) {
	f.Calls = append(f.Calls, command)
	if f.StartErr != nil {
		return entities.CommandResult{Command: command, Status: entities.CommandFailed, ExitCode: -1}, f.StartErr
	}
	if f.DryRun && !command.ReadOnly {
		return entities.CommandResult{Command: command, Status: entities.CommandSkipped}, nil
	}
	for prefix, failure := range f.Failures {
		if strings.HasPrefix(command.String(), prefix) {
			return failed(command, failure.ExitCode, failure.Stderr), nil
		}
	}
	if len(command.Args) < 2 || command.Args[0] != "git" { //nolint:mnd // program + subcommand
		return succeeded(command, ""), nil
	}

	args := command.Args[1:]
	switch args[0] {
	case "rev-parse":
		return succeeded(command, f.Toplevel+"\n"), nil
	case "diff":
		return f.diff(command, args[1:]), nil
	case "ls-files":
		return succeeded(command, strings.Join(f.untracked(), "\n")), nil
	case "add":
		f.stage(scopeOf(args))
		return succeeded(command, ""), nil
	case "commit":
		return f.commit(command, args[len(args)-1]), nil
	case "stash":
		return f.stash(command, args[1]), nil
	case "subtree":
		return f.subtree(command, args[1:]), nil
	}
	return succeeded(command, ""), nil
}

func succeeded(command entities.Command, stdout string) entities.CommandResult {
	return entities.CommandResult{Command: command, Status: entities.CommandSucceeded, Stdout: stdout}
}

func failed(command entities.Command, code int, stderr string) entities.CommandResult {
	return entities.CommandResult{Command: command, Status: entities.CommandFailed, ExitCode: code, Stderr: stderr}
}

func scopeOf(args []string) string {
	if i := slices.Index(args, "--"); i >= 0 && i+1 < len(args) {
		return args[i+1]
	}
	return ""
}

func inScope(name, scope string) bool {
	return scope == "" || name == scope || strings.HasPrefix(name, strings.TrimSuffix(scope, "/")+"/")
}

func (f *FakeGitRunner) diff(command entities.Command, args []string) entities.CommandResult {
	scope := scopeOf(args)
	var differs bool
	if slices.Contains(args, "--cached") {
		differs = !equalInScope(f.index, f.head, scope)
	} else {
		worktree := f.worktree()
		for name, content := range f.index {
			if current, ok := worktree[name]; inScope(name, scope) && (!ok || current != content) {
				differs = true
			}
		}
	}
	if differs {
		return failed(command, 1, "")
	}
	return succeeded(command, "")
}

func equalInScope(a, b map[string]string, scope string) bool {
	for name, content := range a {
		if other, ok := b[name]; inScope(name, scope) && (!ok || other != content) {
			return false
		}
	}
	for name := range b {
		if _, ok := a[name]; inScope(name, scope) && !ok {
			return false
		}
	}
	return true
}

func (f *FakeGitRunner) untracked() []string {
	var names []string
	for name := range f.worktree() {
		if _, ok := f.index[name]; !ok {
			names = append(names, name)
		}
	}
	slices.Sort(names)
	return names
}

func (f *FakeGitRunner) stage(scope string) {
	worktree := f.worktree()
	for name, content := range worktree {
		if inScope(name, scope) {
			f.index[name] = content
		}
	}
	for name := range f.index {
		if _, ok := worktree[name]; !ok && inScope(name, scope) {
			delete(f.index, name)
		}
	}
}

func (f *FakeGitRunner) commit(command entities.Command, message string) entities.CommandResult {
	if equalInScope(f.index, f.head, "") {
		return failed(command, 1, "nothing to commit, working tree clean")
	}
	f.head = maps.Clone(f.index)
	f.Commits = append(f.Commits, message)
	return succeeded(command, "")
}

func (f *FakeGitRunner) dirty() bool {
	return !equalInScope(f.index, f.head, "") || !equalInScope(f.worktree(), f.index, "")
}

func (f *FakeGitRunner) stash(command entities.Command, action string) entities.CommandResult {
	switch action {
	case "push":
		entry := fakeStash{changed: make(map[string]string)}
		worktree := f.worktree()
		for name, content := range worktree {
			if committed, ok := f.head[name]; !ok || committed != content {
				entry.changed[name] = content
			}
		}
		for name := range f.head {
			if _, ok := worktree[name]; !ok {
				entry.deleted = append(entry.deleted, name)
			}
		}
		f.stashes = append(f.stashes, entry)
		f.checkout(f.head)
		f.index = maps.Clone(f.head)
		return succeeded(command, "")
	case "pop":
		if len(f.stashes) == 0 || f.StashPopFails {
			return failed(command, 1, "error: could not restore stashed changes")
		}
		entry := f.stashes[len(f.stashes)-1]
		f.stashes = f.stashes[:len(f.stashes)-1]
		for name, content := range entry.changed {
			f.writeFile(name, content)
		}
		for _, name := range entry.deleted {
			_ = f.FS.Remove(name)
		}
		return succeeded(command, "")
	}
	return succeeded(command, "")
}

func (f *FakeGitRunner) subtree(command entities.Command, args []string) entities.CommandResult {
	action := args[0]
	var prefix string
	var positional []string
	for _, arg := range args[1:] {
		switch {
		case strings.HasPrefix(arg, "--prefix="):
			prefix = strings.TrimPrefix(arg, "--prefix=")
		case strings.HasPrefix(arg, "--"):
		default:
			positional = append(positional, arg)
		}
	}
	if len(positional) != 2 { //nolint:mnd // url + ref
		return failed(command, 129, "usage: git subtree")
	}
	url, ref := positional[0], positional[1]

	if f.dirty() {
		return failed(command, 1, "Working tree has modifications.  Cannot "+action+".")
	}
	upstream, ok := f.Upstreams[url]
	if !ok {
		return failed(command, 128, fmt.Sprintf("fatal: couldn't find remote ref %s", ref))
	}
	f.Subtrees = append(f.Subtrees, strings.Join([]string{action, prefix, url, ref}, " "))

	if action == "add" {
		if exists, _ := afero.Exists(f.FS, prefix); exists {
			return failed(command, 1, fmt.Sprintf("prefix '%s' already exists.", prefix))
		}
	} else if f.vendored[prefix] == upstream.Revision {
		return succeeded(command, "Already up to date.")
	}

	for name, content := range upstream.Files {
		target := path.Join(prefix, name)
		f.writeFile(target, content)
		f.index[target] = content
	}
	f.vendored[prefix] = upstream.Revision
	f.head = maps.Clone(f.index)
	f.Commits = append(f.Commits, fmt.Sprintf("Merge commit '%s' into '%s'", ref, prefix))
	return succeeded(command, "")
}

func (f *FakeGitRunner) worktree() map[string]string {
	files := make(map[string]string)
	_ = afero.Walk(f.FS, "/", func(name string, info fs.FileInfo, err error) error {
		if err != nil || info.IsDir() {
			return nil //nolint:nilerr // unreadable entries are not part of the worktree
		}
		data, readErr := afero.ReadFile(f.FS, name)
		if readErr == nil {
			files[strings.TrimPrefix(name, "/")] = string(data)
		}
		return nil
	})
	return files
}

// checkout makes the worktree hold exactly the given files.
func (f *FakeGitRunner) checkout(files map[string]string) {
	for name := range f.worktree() {
		if _, keep := files[name]; !keep {
			_ = f.FS.Remove(name)
		}
	}
	for name, content := range files {
		f.writeFile(name, content)
	}
}

func (f *FakeGitRunner) writeFile(name, content string) {
	_ = f.FS.MkdirAll(path.Dir(name), 0o755)
	_ = afero.WriteFile(f.FS, name, []byte(content), 0o644)
}
