//go:build integration || unit || test

package commanddoubles //nolint:revive,staticcheck // Test package naming follows established project structure

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/rios0rios0/subtreesync/internal/domain/commands"
	"github.com/rios0rios0/subtreesync/internal/domain/entities"
)

// StubResolveCommand is a stub implementation of commands.Resolve.
type StubResolveCommand struct {
	ExecuteCallCount int
	Resolved         []commands.ResolvedDependency
	ExecuteErr       error
	LastSettings     *entities.Settings
	LastOnly         []string
}

var _ commands.Resolve = (*StubResolveCommand)(nil)

func (s *StubResolveCommand) Execute(
	_ context.Context,
	_ logrus.FieldLogger,
	settings *entities.Settings,
	only []string,
) ([]commands.ResolvedDependency, error) {
	s.ExecuteCallCount++
	s.LastSettings = settings
	s.LastOnly = only
	return s.Resolved, s.ExecuteErr
}
