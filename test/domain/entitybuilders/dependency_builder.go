//go:build integration || unit || test

package entitybuilders //nolint:revive,staticcheck // Test package naming follows established project structure

import (
	"github.com/rios0rios0/subtreesync/internal/domain/entities"
	testkit "github.com/rios0rios0/testkit/pkg/test"
)

// DependencyBuilder helps create test dependency declarations with a fluent interface.
type DependencyBuilder struct {
	*testkit.BaseBuilder
	name             string
	url              string
	ref              string
	useLatestRelease bool
	useLatestTag     bool
	constant         string
	description      string
}

// NewDependencyBuilder creates a new dependency builder with sensible defaults.
func NewDependencyBuilder() *DependencyBuilder {
	return &DependencyBuilder{
		BaseBuilder: testkit.NewBaseBuilder(),
		name:        "widgets",
		url:         "https://github.com/acme/widgets",
		constant:    "LatestWidgetsRef",
		description: "Widgets",
	}
}

// WithName sets the dependency name.
func (b *DependencyBuilder) WithName(name string) *DependencyBuilder {
	b.name = name
	return b
}

// WithURL sets the upstream URL.
func (b *DependencyBuilder) WithURL(url string) *DependencyBuilder {
	b.url = url
	return b
}

// WithRef sets the explicit reference.
func (b *DependencyBuilder) WithRef(ref string) *DependencyBuilder {
	b.ref = ref
	return b
}

// WithLatestRelease enables release tracking.
func (b *DependencyBuilder) WithLatestRelease() *DependencyBuilder {
	b.useLatestRelease = true
	return b
}

// WithLatestTag enables version tag tracking.
func (b *DependencyBuilder) WithLatestTag() *DependencyBuilder {
	b.useLatestTag = true
	return b
}

// WithConstant sets the metadata constant name.
func (b *DependencyBuilder) WithConstant(constant string) *DependencyBuilder {
	b.constant = constant
	return b
}

// WithDescription sets the metadata description.
func (b *DependencyBuilder) WithDescription(description string) *DependencyBuilder {
	b.description = description
	return b
}

// Build creates the dependency (satisfies testkit.Builder interface).
func (b *DependencyBuilder) Build() interface{} {
	return b.BuildDependency()
}

// BuildDependency creates the dependency with a concrete return type.
func (b *DependencyBuilder) BuildDependency() entities.DependencyDeclaration {
	return entities.DependencyDeclaration{
		Name:             b.name,
		URL:              b.url,
		Ref:              b.ref,
		UseLatestRelease: b.useLatestRelease,
		UseLatestTag:     b.useLatestTag,
		Constant:         b.constant,
		Description:      b.description,
	}
}

// Reset clears the builder state, allowing it to be reused.
func (b *DependencyBuilder) Reset() testkit.Builder {
	b.BaseBuilder.Reset()
	fresh := NewDependencyBuilder()
	fresh.BaseBuilder = b.BaseBuilder
	*b = *fresh
	return b
}

// Clone creates a deep copy of the DependencyBuilder.
func (b *DependencyBuilder) Clone() testkit.Builder {
	clone := *b
	clone.BaseBuilder = b.BaseBuilder.Clone().(*testkit.BaseBuilder)
	return &clone
}
