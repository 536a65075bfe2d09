package entities

import (
	"bytes"
	"fmt"
	"path"
	"strings"

	"github.com/go-git/go-git/v5/config"
	format "github.com/go-git/go-git/v5/plumbing/format/config"
)

// SubmoduleManifestFile is the manifest name looked up inside every vendored prefix.
const SubmoduleManifestFile = ".gitmodules"

const submoduleSection = "submodule"

// ParseSubmoduleManifest decodes a submodule manifest and returns its entries in declaration
// order. Sections missing a path or url, or whose path escapes or names the parent itself,
// are skipped.
func ParseSubmoduleManifest(data []byte) ([]SubmoduleEntry, error) {
	raw := format.New()
	if err := format.NewDecoder(bytes.NewReader(data)).Decode(raw); err != nil {
		return nil, fmt.Errorf("failed to decode submodule manifest: %w", err)
	}

	var entries []SubmoduleEntry
	for _, section := range raw.Sections {
		if !section.IsName(submoduleSection) {
			continue
		}
		entries = append(entries, sectionEntries(section)...)
	}
	return entries, nil
}

func sectionEntries(section *format.Section) []SubmoduleEntry {
	var entries []SubmoduleEntry
	for _, sub := range section.Subsections {
		module := &config.Submodule{
			Name:   sub.Name,
			Path:   strings.TrimSpace(sub.Option("path")),
			URL:    strings.TrimSpace(sub.Option("url")),
			Branch: strings.TrimSpace(sub.Option("branch")),
		}
		if module.Validate() != nil {
			continue
		}
		entry := SubmoduleEntry{
			Name:   module.Name,
			Path:   module.Path,
			URL:    module.URL,
			Branch: module.Branch,
		}
		if path.Clean(entry.RelativePath()) == "." {
			continue
		}
		entries = append(entries, entry)
	}
	return entries
}
