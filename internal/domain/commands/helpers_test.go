//go:build unit

package commands_test

import (
	"testing"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"

	"github.com/rios0rios0/subtreesync/internal/domain/commands"
	doubles "github.com/rios0rios0/subtreesync/test/infrastructure/repositorydoubles"
)

func newWorkspace(t *testing.T) (commands.Workspace, *doubles.FakeGitRunner, *logtest.Hook) {
	t.Helper()

	fsys := doubles.NewFakeWorkspaceFs()
	fake := doubles.NewFakeGitRunner(fsys)
	log, hook := logtest.NewNullLogger()
	log.SetLevel(logrus.DebugLevel)

	return commands.Workspace{
		Root:   doubles.FakeRepositoryRoot,
		FS:     fsys,
		Runner: fake,
		Log:    log,
	}, fake, hook
}

func warnings(hook *logtest.Hook) []string {
	var messages []string
	for _, entry := range hook.AllEntries() {
		if entry.Level == logrus.WarnLevel {
			messages = append(messages, entry.Message)
		}
	}
	return messages
}
