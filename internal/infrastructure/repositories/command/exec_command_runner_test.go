//go:build unit

package command_test

import (
	"context"
	"os/exec"
	"testing"

	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rios0rios0/subtreesync/internal/domain/entities"
	"github.com/rios0rios0/subtreesync/internal/infrastructure/repositories/command"
)

func TestExecCommandRunnerRun(t *testing.T) {
	t.Parallel()

	t.Run("should skip mutating commands in dry-run mode", func(t *testing.T) {
		t.Parallel()

		// given
		log, hook := logtest.NewNullLogger()
		runner := command.NewExecCommandRunner(log, true)

		// when
		result, err := runner.Run(context.Background(), entities.Git("", "commit", "-m", "message"))

		// then
		require.NoError(t, err)
		assert.Equal(t, entities.CommandSkipped, result.Status)
		assert.True(t, result.Succeeded())
		assert.Equal(t, "[DRY-RUN] git commit -m message", hook.LastEntry().Message)
	})

	t.Run("should run read-only commands in dry-run mode", func(t *testing.T) {
		t.Parallel()

		// given
		if _, err := exec.LookPath("git"); err != nil {
			t.Skip("git is not installed")
		}
		log, _ := logtest.NewNullLogger()
		runner := command.NewExecCommandRunner(log, true)

		// when
		result, err := runner.Run(context.Background(), entities.GitQuery("", "--version"))

		// then
		require.NoError(t, err)
		assert.Equal(t, entities.CommandSucceeded, result.Status)
		assert.Contains(t, result.Output(), "git version")
	})

	t.Run("should report a non-zero exit through the result", func(t *testing.T) {
		t.Parallel()

		// given
		if _, err := exec.LookPath("git"); err != nil {
			t.Skip("git is not installed")
		}
		log, _ := logtest.NewNullLogger()
		runner := command.NewExecCommandRunner(log, false)

		// when
		result, err := runner.Run(context.Background(), entities.GitQuery(t.TempDir(), "rev-parse", "--show-toplevel"))

		// then
		require.NoError(t, err)
		assert.Equal(t, entities.CommandFailed, result.Status)
		assert.NotZero(t, result.ExitCode)
		assert.NotEmpty(t, result.Stderr)
	})

	t.Run("should return an error when the program cannot start", func(t *testing.T) {
		t.Parallel()

		// given
		log, _ := logtest.NewNullLogger()
		runner := command.NewExecCommandRunner(log, false)

		// when
		result, err := runner.Run(context.Background(), entities.Command{Args: []string{"definitely-not-a-program-xyz"}})

		// then
		require.Error(t, err)
		assert.Equal(t, entities.CommandFailed, result.Status)
	})
}
