package entities

import (
	"path"
	"strings"
)

// DependencyDeclaration is a top-level repository to vendor, as declared in the settings file.
type DependencyDeclaration struct {
	Name             string `yaml:"name"               hcl:"name,label"`                  // Subdirectory name under the base directory
	URL              string `yaml:"url"                hcl:"url"`                         // Upstream repository URL
	Ref              string `yaml:"ref"                hcl:"ref,optional"`                // Explicit branch or tag
	UseLatestRelease bool   `yaml:"use_latest_release" hcl:"use_latest_release,optional"` // Prefer the newest published release tag
	UseLatestTag     bool   `yaml:"use_latest_tag"     hcl:"use_latest_tag,optional"`     // Prefer the highest semantic-version tag
	Constant         string `yaml:"constant"           hcl:"constant,optional"`           // Metadata constant name
	Description      string `yaml:"description"        hcl:"description,optional"`        // Label used in the metadata artifact
}

// SubmoduleEntry is one section of a nested dependency's submodule manifest.
type SubmoduleEntry struct {
	Name   string
	Path   string
	URL    string
	Branch string // Pinned branch (optional)
}

// RelativePath returns the entry path with forward slashes and no leading or trailing separators.
func (e SubmoduleEntry) RelativePath() string {
	return strings.Trim(strings.ReplaceAll(e.Path, "\\", "/"), "/")
}

// VendorTarget is the unit of work for one add-or-pull operation.
type VendorTarget struct {
	Prefix string // Repository-root relative, slash separated
	URL    string // Resolved upstream URL
	Ref    string // Resolved reference
}

// NestedPrefix joins a submodule path onto the target prefix.
func (t VendorTarget) NestedPrefix(entry SubmoduleEntry) string {
	return path.Join(t.Prefix, entry.RelativePath())
}

// ResolutionStrategy names which lookup produced a resolved reference.
type ResolutionStrategy string

const (
	StrategyRelease       ResolutionStrategy = "release"
	StrategySemverTag     ResolutionStrategy = "semver-tag"
	StrategyExplicit      ResolutionStrategy = "explicit"
	StrategyDefaultBranch ResolutionStrategy = "default-branch"
)

// Resolution is the outcome of resolving one dependency's upstream reference.
type Resolution struct {
	Ref      string
	Strategy ResolutionStrategy
}

// MetadataValue returns the value recorded in the metadata artifact for this resolution.
// Dependencies tracking releases or tags only record what those lookups produced, so a
// degraded lookup records nothing and the previously generated value survives.
func (r Resolution) MetadataValue(dep DependencyDeclaration) string {
	if dep.UseLatestRelease || dep.UseLatestTag {
		if r.Strategy == StrategyRelease || r.Strategy == StrategySemverTag {
			return r.Ref
		}
		return ""
	}
	return r.Ref
}
