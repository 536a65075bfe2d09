//go:build integration || unit || test

package commanddoubles //nolint:revive,staticcheck // Test package naming follows established project structure

import (
	"context"

	"github.com/rios0rios0/subtreesync/internal/domain/commands"
	"github.com/rios0rios0/subtreesync/internal/domain/entities"
)

// StubSyncCommand is a stub implementation of commands.Sync.
type StubSyncCommand struct {
	ExecuteCallCount int
	ExecuteErr       error
	LastWorkspace    commands.Workspace
	LastSettings     *entities.Settings
	LastOpts         commands.SyncOptions
}

var _ commands.Sync = (*StubSyncCommand)(nil)

func (s *StubSyncCommand) Execute(
	_ context.Context,
	ws commands.Workspace,
	settings *entities.Settings,
	opts commands.SyncOptions,
) error {
	s.ExecuteCallCount++
	s.LastWorkspace = ws
	s.LastSettings = settings
	s.LastOpts = opts
	return s.ExecuteErr
}
