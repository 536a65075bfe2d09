//go:build unit

package commands_test

import (
	"context"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rios0rios0/subtreesync/internal/domain/commands"
	"github.com/rios0rios0/subtreesync/internal/domain/entities"
	doubles "github.com/rios0rios0/subtreesync/test/infrastructure/repositorydoubles"
)

const (
	repoA = "https://github.com/acme/a"
	repoB = "https://github.com/acme/b"
	repoC = "https://github.com/acme/c"
	repoD = "https://github.com/acme/d"
)

func submoduleSection(name, path, url string) string {
	return "[submodule \"" + name + "\"]\n\tpath = " + path + "\n\turl = " + url + "\n"
}

func newEngine(t *testing.T, remote *doubles.StubRemoteRepository) (
	*commands.VendoringEngine,
	commands.Workspace,
	*doubles.FakeGitRunner,
) {
	t.Helper()

	ws, fake, _ := newWorkspace(t)
	if remote == nil {
		remote = &doubles.StubRemoteRepository{}
	}
	resolver := commands.NewReferenceResolver(remote, &doubles.StubReleaseLookup{}, nil, ws.Log)
	engine := commands.NewVendoringEngine(ws, commands.NewCleanlinessGuard(ws), resolver, true)
	return engine, ws, fake
}

func TestVendoringEngineSync(t *testing.T) {
	t.Parallel()

	target := entities.VendorTarget{Prefix: "subtrees/a", URL: repoA, Ref: "main"}

	t.Run("should add an absent prefix with a squashed subtree", func(t *testing.T) {
		t.Parallel()

		// given
		engine, ws, fake := newEngine(t, nil)
		fake.Upstreams[repoA] = &doubles.FakeUpstream{Files: map[string]string{"README.md": "a"}, Revision: "1"}

		// when
		err := engine.Sync(context.Background(), target)

		// then
		require.NoError(t, err)
		assert.Contains(t, callStrings(fake), "git subtree add --prefix=subtrees/a "+repoA+" main --squash")
		content, readErr := afero.ReadFile(ws.FS, "subtrees/a/README.md")
		require.NoError(t, readErr)
		assert.Equal(t, "a", string(content))
	})

	t.Run("should produce no commits when pulling an unchanged upstream", func(t *testing.T) {
		t.Parallel()

		// given
		engine, _, fake := newEngine(t, nil)
		fake.Upstreams[repoA] = &doubles.FakeUpstream{Files: map[string]string{"README.md": "a"}, Revision: "1"}
		require.NoError(t, engine.Sync(context.Background(), target))
		commitsAfterFirstRun := len(fake.Commits)

		// when
		err := engine.Sync(context.Background(), target)

		// then
		require.NoError(t, err)
		assert.Len(t, fake.Commits, commitsAfterFirstRun)
		assert.Equal(t, []string{
			"add subtrees/a " + repoA + " main",
			"pull subtrees/a " + repoA + " main",
		}, fake.SubtreeCalls("subtrees/a"))
	})

	t.Run("should pull upstream changes into an existing prefix", func(t *testing.T) {
		t.Parallel()

		// given
		engine, ws, fake := newEngine(t, nil)
		upstream := &doubles.FakeUpstream{Files: map[string]string{"README.md": "a"}, Revision: "1"}
		fake.Upstreams[repoA] = upstream
		require.NoError(t, engine.Sync(context.Background(), target))
		upstream.Files["README.md"] = "a2"
		upstream.Revision = "2"

		// when
		err := engine.Sync(context.Background(), target)

		// then
		require.NoError(t, err)
		content, _ := afero.ReadFile(ws.FS, "subtrees/a/README.md")
		assert.Equal(t, "a2", string(content))
		assert.Len(t, fake.Commits, 2)
	})

	t.Run("should delete an empty directory and add instead of pull", func(t *testing.T) {
		t.Parallel()

		// given
		engine, ws, fake := newEngine(t, nil)
		fake.Upstreams[repoA] = &doubles.FakeUpstream{Files: map[string]string{"README.md": "a"}, Revision: "1"}
		require.NoError(t, ws.FS.MkdirAll("subtrees/a", 0o755))

		// when
		err := engine.Sync(context.Background(), target)

		// then
		require.NoError(t, err)
		assert.Equal(t, []string{"add subtrees/a " + repoA + " main"}, fake.SubtreeCalls("subtrees/a"))
	})

	t.Run("should checkpoint a dirty tree once before the subtree commit", func(t *testing.T) {
		t.Parallel()

		// given
		engine, _, fake := newEngine(t, nil)
		fake.Upstreams[repoA] = &doubles.FakeUpstream{Files: map[string]string{"README.md": "a"}, Revision: "1"}
		fake.Seed("README.md", "host")
		fake.Touch("README.md", "host, edited")

		// when
		err := engine.Sync(context.Background(), target)

		// then
		require.NoError(t, err)
		assert.Equal(t, []string{
			"chore(subtree): prepare add subtrees/a",
			"Merge commit 'main' into 'subtrees/a'",
		}, fake.Commits)
	})

	t.Run("should stop with the failing command when the subtree operation fails", func(t *testing.T) {
		t.Parallel()

		// given
		engine, _, fake := newEngine(t, nil)

		// when
		err := engine.Sync(context.Background(), target)

		// then
		var failure *entities.CommandFailure
		require.ErrorAs(t, err, &failure)
		assert.Equal(t, 128, failure.ExitStatus())
		assert.Contains(t, err.Error(), "git subtree add --prefix=subtrees/a")
		assert.Empty(t, fake.Commits)
	})

	t.Run("should not create commits in dry-run mode", func(t *testing.T) {
		t.Parallel()

		// given
		engine, _, fake := newEngine(t, nil)
		fake.DryRun = true
		fake.Upstreams[repoA] = &doubles.FakeUpstream{Files: map[string]string{"README.md": "a"}, Revision: "1"}

		// when
		err := engine.Sync(context.Background(), target)

		// then
		require.NoError(t, err)
		assert.Empty(t, fake.Commits)
		assert.Empty(t, fake.Subtrees)
	})
}

func TestVendoringEngineVendorTree(t *testing.T) {
	t.Parallel()

	t.Run("should vendor each repository of a cyclic graph exactly once", func(t *testing.T) {
		t.Parallel()

		// given
		engine, _, fake := newEngine(t, &doubles.StubRemoteRepository{
			Heads: map[string]string{repoA: "main", repoB: "main"},
		})
		fake.Upstreams[repoA] = &doubles.FakeUpstream{Revision: "1", Files: map[string]string{
			".gitmodules": submoduleSection("b", "libs/b", "../b"),
		}}
		fake.Upstreams[repoB] = &doubles.FakeUpstream{Revision: "1", Files: map[string]string{
			".gitmodules": submoduleSection("a", "libs/a", repoA),
		}}
		root := entities.VendorTarget{Prefix: "subtrees/a", URL: repoA, Ref: "main"}
		require.NoError(t, engine.Sync(context.Background(), root))

		// when
		err := engine.VendorTree(context.Background(), root)

		// then
		require.NoError(t, err)
		assert.Equal(t, []string{
			"add subtrees/a " + repoA + " main",
			"add subtrees/a/libs/b " + repoB + " main",
		}, fake.Subtrees)
	})

	t.Run("should walk depth first in manifest order", func(t *testing.T) {
		t.Parallel()

		// given
		engine, _, fake := newEngine(t, &doubles.StubRemoteRepository{
			Branches: map[string][]string{repoB: {"main"}, repoC: {"master"}, repoD: {"main"}},
		})
		fake.Upstreams[repoA] = &doubles.FakeUpstream{Revision: "1", Files: map[string]string{
			".gitmodules": submoduleSection("b", "b", "b") + submoduleSection("c", "c", "acme/c"),
		}}
		fake.Upstreams[repoB] = &doubles.FakeUpstream{Revision: "1", Files: map[string]string{
			".gitmodules": submoduleSection("d", "deps/d", "git@github.com:acme/d.git"),
		}}
		fake.Upstreams[repoC] = &doubles.FakeUpstream{Revision: "1", Files: map[string]string{"c.txt": "c"}}
		fake.Upstreams["git@github.com:acme/d.git"] = &doubles.FakeUpstream{Revision: "1", Files: map[string]string{"d.txt": "d"}}
		root := entities.VendorTarget{Prefix: "subtrees/a", URL: repoA, Ref: "main"}
		require.NoError(t, engine.Sync(context.Background(), root))

		// when
		err := engine.VendorTree(context.Background(), root)

		// then
		require.NoError(t, err)
		assert.Equal(t, []string{
			"add subtrees/a " + repoA + " main",
			"add subtrees/a/b " + repoB + " main",
			"add subtrees/a/b/deps/d git@github.com:acme/d.git main",
			"add subtrees/a/c " + repoC + " master",
		}, fake.Subtrees)
	})

	t.Run("should use the branch pinned in the manifest", func(t *testing.T) {
		t.Parallel()

		// given
		remote := &doubles.StubRemoteRepository{}
		engine, _, fake := newEngine(t, remote)
		fake.Upstreams[repoA] = &doubles.FakeUpstream{Revision: "1", Files: map[string]string{
			".gitmodules": submoduleSection("b", "libs/b", repoB) + "\tbranch = stable\n",
		}}
		fake.Upstreams[repoB] = &doubles.FakeUpstream{Revision: "1", Files: map[string]string{"b.txt": "b"}}
		root := entities.VendorTarget{Prefix: "subtrees/a", URL: repoA, Ref: "main"}
		require.NoError(t, engine.Sync(context.Background(), root))

		// when
		err := engine.VendorTree(context.Background(), root)

		// then
		require.NoError(t, err)
		assert.Contains(t, fake.Subtrees, "add subtrees/a/libs/b "+repoB+" stable")
		assert.Empty(t, remote.ProbedURLs)
	})

	t.Run("should skip a repeated path and url pair", func(t *testing.T) {
		t.Parallel()

		// given
		engine, _, fake := newEngine(t, &doubles.StubRemoteRepository{Heads: map[string]string{repoB: "main"}})
		fake.Upstreams[repoA] = &doubles.FakeUpstream{Revision: "1", Files: map[string]string{
			".gitmodules": submoduleSection("b", "libs/b", repoB) + submoduleSection("b-again", "libs/b/", repoB),
		}}
		fake.Upstreams[repoB] = &doubles.FakeUpstream{Revision: "1", Files: map[string]string{"b.txt": "b"}}
		root := entities.VendorTarget{Prefix: "subtrees/a", URL: repoA, Ref: "main"}
		require.NoError(t, engine.Sync(context.Background(), root))

		// when
		err := engine.VendorTree(context.Background(), root)

		// then
		require.NoError(t, err)
		assert.Len(t, fake.SubtreeCalls("subtrees/a/libs/b"), 1)
	})

	t.Run("should stop when there is no manifest", func(t *testing.T) {
		t.Parallel()

		// given
		engine, _, fake := newEngine(t, nil)
		fake.Upstreams[repoA] = &doubles.FakeUpstream{Revision: "1", Files: map[string]string{"README.md": "a"}}
		root := entities.VendorTarget{Prefix: "subtrees/a", URL: repoA, Ref: "main"}
		require.NoError(t, engine.Sync(context.Background(), root))

		// when
		err := engine.VendorTree(context.Background(), root)

		// then
		require.NoError(t, err)
		assert.Len(t, fake.Subtrees, 1)
	})

	t.Run("should halt the walk on the first failure", func(t *testing.T) {
		t.Parallel()

		// given
		engine, _, fake := newEngine(t, &doubles.StubRemoteRepository{Heads: map[string]string{repoB: "main", repoC: "main"}})
		fake.Upstreams[repoA] = &doubles.FakeUpstream{Revision: "1", Files: map[string]string{
			".gitmodules": submoduleSection("b", "b", repoB) + submoduleSection("c", "c", repoC),
		}}
		fake.Upstreams[repoC] = &doubles.FakeUpstream{Revision: "1", Files: map[string]string{"c.txt": "c"}}
		root := entities.VendorTarget{Prefix: "subtrees/a", URL: repoA, Ref: "main"}
		require.NoError(t, engine.Sync(context.Background(), root))

		// when
		err := engine.VendorTree(context.Background(), root)

		// then
		require.Error(t, err)
		assert.Empty(t, fake.SubtreeCalls("subtrees/a/c"))
	})
}
