package entities

import (
	"bytes"
	"fmt"
	"path"
	"path/filepath"
	"regexp"
	"strings"
	"text/template"
	"unicode"

	"golang.org/x/mod/semver"
)

const (
	MetadataFormatGo     = "go"
	MetadataFormatCSharp = "csharp"

	defaultOwnVersion      = "0.1.0.0"
	defaultVersionConstant = "Version"
	defaultTypeName        = "Metadata"
	defaultPackage         = "metadata"
)

// MetadataSettings describes the generated artifact.
type MetadataSettings struct {
	Path            string           `yaml:"path"             hcl:"path"`
	Format          string           `yaml:"format"           hcl:"format,optional"`    // "go" (default) or "csharp"
	Package         string           `yaml:"package"          hcl:"package,optional"`   // Go package or C# namespace
	TypeName        string           `yaml:"type_name"        hcl:"type_name,optional"` // C# class name
	VersionConstant string           `yaml:"version_constant" hcl:"version_constant,optional"`
	DefaultVersion  string           `yaml:"default_version"  hcl:"default_version,optional"`
	Self            *SelfDeclaration `yaml:"self"             hcl:"self,block"`
}

// SelfDeclaration makes the host project's own latest release tag part of the artifact.
type SelfDeclaration struct {
	Name        string `yaml:"name"        hcl:"name,optional"`
	URL         string `yaml:"url"         hcl:"url"`
	Constant    string `yaml:"constant"    hcl:"constant,optional"`
	Description string `yaml:"description" hcl:"description,optional"`
}

// ApplyDefaults fills unset fields.
func (m *MetadataSettings) ApplyDefaults() {
	if m.Path != "" {
		m.Path = strings.TrimPrefix(path.Clean(filepath.ToSlash(m.Path)), "/")
	}
	if m.Format == "" {
		m.Format = MetadataFormatGo
	}
	if m.Package == "" {
		m.Package = defaultPackage
	}
	if m.TypeName == "" {
		m.TypeName = defaultTypeName
	}
	if m.VersionConstant == "" {
		m.VersionConstant = defaultVersionConstant
	}
	if m.DefaultVersion == "" {
		m.DefaultVersion = defaultOwnVersion
	}
}

// MetadataEntry is one tracked constant of the artifact.
type MetadataEntry struct {
	Name        string // Dependency name the value is looked up by
	Constant    string
	Description string
	Value       string
}

// GeneratedMetadata is the content of the artifact: the preserved own version plus one
// resolved reference per tracked dependency, in rendering order.
type GeneratedMetadata struct {
	OwnVersion string
	Entries    []MetadataEntry
}

// ConstantName derives a constant identifier for a dependency, e.g. "CSM.TmpeSync" with release
// tracking becomes "LatestCSMTmpeSyncReleaseTag".
func ConstantName(name string, releaseTracked bool) string {
	var sb strings.Builder
	sb.WriteString("Latest")

	upperNext := true
	for _, r := range name {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			upperNext = true
			continue
		}
		if upperNext {
			r = unicode.ToUpper(r)
			upperNext = false
		}
		sb.WriteRune(r)
	}

	if releaseTracked {
		sb.WriteString("ReleaseTag")
	} else {
		sb.WriteString("Ref")
	}
	return sb.String()
}

func escapeLiteral(value string) string {
	return strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(value)
}

func unescapeLiteral(value string) string {
	return strings.NewReplacer(`\\`, `\`, `\"`, `"`).Replace(value)
}

//nolint:gochecknoglobals // parsed once
var metadataTemplates = map[string]*template.Template{
	MetadataFormatGo: template.Must(template.New(MetadataFormatGo).
		Funcs(template.FuncMap{"lit": escapeLiteral}).
		Parse(`// Code generated by subtreesync. DO NOT EDIT.

package {{.Settings.Package}}

const (
	// {{.Settings.VersionConstant}} is the current version of this project. Update it when publishing new builds.
	{{.Settings.VersionConstant}} = "{{lit .Data.OwnVersion}}"
{{- range .Data.Entries}}

	// {{.Constant}} is the latest resolved reference for {{.Description}}.
	{{.Constant}} = "{{lit .Value}}"
{{- end}}
)
`)),
	MetadataFormatCSharp: template.Must(template.New(MetadataFormatCSharp).
		Funcs(template.FuncMap{"lit": escapeLiteral}).
		Parse(`// <auto-generated>
// This file is generated by subtreesync. Do not edit manually.
// </auto-generated>

namespace {{.Settings.Package}}
{
    internal static class {{.Settings.TypeName}}
    {
        /// <summary>
        /// Current version of this project. Update this value when publishing new builds.
        /// </summary>
        internal const string {{.Settings.VersionConstant}} = "{{lit .Data.OwnVersion}}";
{{range .Data.Entries}}
        /// <summary>
        /// Latest release tag for {{.Description}}.
        /// </summary>
        internal const string {{.Constant}} = "{{lit .Value}}";
{{end}}    }
}
`)),
}

// RenderMetadata renders the full artifact for the configured format.
func RenderMetadata(settings MetadataSettings, data GeneratedMetadata) (string, error) {
	tmpl, ok := metadataTemplates[settings.Format]
	if !ok {
		return "", fmt.Errorf("unsupported metadata format %q", settings.Format)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, struct {
		Settings MetadataSettings
		Data     GeneratedMetadata
	}{settings, data}); err != nil {
		return "", fmt.Errorf("failed to render metadata: %w", err)
	}
	return buf.String(), nil
}

// ParseMetadataValue extracts the string literal assigned to a constant in an existing
// artifact. The boolean is false when the constant is absent.
func ParseMetadataValue(content, constant string) (string, bool) {
	if content == "" || constant == "" {
		return "", false
	}
	pattern := regexp.MustCompile(`\b` + regexp.QuoteMeta(constant) + `\s*=\s*"((?:[^"\\]|\\.)*)"`)
	m := pattern.FindStringSubmatch(content)
	if m == nil {
		return "", false
	}
	return unescapeLiteral(m[1]), true
}

// RefChange classifies how a tracked value moved between two generations.
type RefChange string

const (
	RefUnchanged  RefChange = "unchanged"
	RefAdded      RefChange = "added"
	RefUpgraded   RefChange = "upgraded"
	RefDowngraded RefChange = "downgraded"
	RefChanged    RefChange = "changed"
)

// ClassifyRefChange compares two reference values, using semantic version ordering when both
// are valid versions.
func ClassifyRefChange(previous, current string) RefChange {
	switch {
	case previous == current:
		return RefUnchanged
	case previous == "":
		return RefAdded
	}

	p, c := canonicalVersion(previous), canonicalVersion(current)
	if semver.IsValid(p) && semver.IsValid(c) {
		switch semver.Compare(c, p) {
		case 1:
			return RefUpgraded
		case -1:
			return RefDowngraded
		}
	}
	return RefChanged
}

// canonicalVersion ensures the version has a "v" prefix for semver compatibility.
func canonicalVersion(version string) string {
	version = strings.TrimSpace(version)
	if strings.HasPrefix(version, "v") {
		return version
	}
	return "v" + version
}
