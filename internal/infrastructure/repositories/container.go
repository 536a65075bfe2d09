package repositories

import (
	"go.uber.org/dig"

	domainRepos "github.com/rios0rios0/subtreesync/internal/domain/repositories"
	cmdRepo "github.com/rios0rios0/subtreesync/internal/infrastructure/repositories/command"
	remoteRepo "github.com/rios0rios0/subtreesync/internal/infrastructure/repositories/gitremote"
	ghRepo "github.com/rios0rios0/subtreesync/internal/infrastructure/repositories/github"
	glRepo "github.com/rios0rios0/subtreesync/internal/infrastructure/repositories/gitlab"
)

// RegisterProviders registers all repository providers with the DIG container.
func RegisterProviders(container *dig.Container) error {
	// Register release registry with all hosting services
	if err := container.Provide(func() *ReleaseRegistry {
		reg := NewReleaseRegistry()
		reg.Register("github", ghRepo.NewGitHubReleaseRepository)
		reg.Register("gitlab", glRepo.NewGitLabReleaseRepository)
		return reg
	}); err != nil {
		return err
	}
	if err := container.Provide(func(reg *ReleaseRegistry) domainRepos.ReleaseLookup {
		return reg
	}); err != nil {
		return err
	}

	// Register per-run factories
	if err := container.Provide(func() domainRepos.RemoteRepositoryFactory {
		return remoteRepo.NewGitRemoteRepository
	}); err != nil {
		return err
	}
	if err := container.Provide(func() domainRepos.CommandRunnerFactory {
		return cmdRepo.NewExecCommandRunner
	}); err != nil {
		return err
	}

	return nil
}
