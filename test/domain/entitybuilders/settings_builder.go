//go:build integration || unit || test

package entitybuilders //nolint:revive,staticcheck // Test package naming follows established project structure

import (
	"github.com/rios0rios0/subtreesync/internal/domain/entities"
)

// SettingsBuilder helps create test settings with a fluent interface.
type SettingsBuilder struct {
	baseDir      string
	squash       *bool
	dependencies []entities.DependencyDeclaration
	metadata     *entities.MetadataSettings
	tokens       entities.TokenSettings
}

// NewSettingsBuilder creates a settings builder vendoring under "subtrees".
func NewSettingsBuilder() *SettingsBuilder {
	return &SettingsBuilder{baseDir: entities.DefaultBaseDir}
}

// WithBaseDir sets the base directory.
func (b *SettingsBuilder) WithBaseDir(dir string) *SettingsBuilder {
	b.baseDir = dir
	return b
}

// WithSquash sets the squash flag.
func (b *SettingsBuilder) WithSquash(squash bool) *SettingsBuilder {
	b.squash = &squash
	return b
}

// WithDependency appends a dependency.
func (b *SettingsBuilder) WithDependency(dep entities.DependencyDeclaration) *SettingsBuilder {
	b.dependencies = append(b.dependencies, dep)
	return b
}

// WithMetadata sets the metadata artifact settings.
func (b *SettingsBuilder) WithMetadata(metadata entities.MetadataSettings) *SettingsBuilder {
	metadata.ApplyDefaults()
	b.metadata = &metadata
	return b
}

// WithTokens sets the hosting tokens.
func (b *SettingsBuilder) WithTokens(tokens entities.TokenSettings) *SettingsBuilder {
	b.tokens = tokens
	return b
}

// Build creates the settings.
func (b *SettingsBuilder) Build() *entities.Settings {
	tokens := b.tokens
	return &entities.Settings{
		BaseDir:      b.baseDir,
		Squash:       b.squash,
		Dependencies: append([]entities.DependencyDeclaration(nil), b.dependencies...),
		Metadata:     b.metadata,
		Tokens:       &tokens,
	}
}
