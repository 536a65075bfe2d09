package entities

import (
	"fmt"
	"strconv"
	"strings"
)

const versionComponents = 4

// ResolvedVersion is a version tag parsed into major.minor.patch.build, padded with zeros.
// It is only used for ordering tags.
type ResolvedVersion [versionComponents]uint64

// NormalizeVersionTag strips a single leading "v" or "V" and validates that what remains is
// one to four dot-separated non-negative integers.
func NormalizeVersionTag(tag string) (string, bool) {
	trimmed := strings.TrimSpace(tag)
	if strings.HasPrefix(trimmed, "v") || strings.HasPrefix(trimmed, "V") {
		trimmed = trimmed[1:]
	}

	parts := strings.Split(trimmed, ".")
	if len(parts) > versionComponents {
		return "", false
	}
	for _, part := range parts {
		if part == "" {
			return "", false
		}
		for _, r := range part {
			if r < '0' || r > '9' {
				return "", false
			}
		}
	}
	return trimmed, true
}

// ParseResolvedVersion parses a tag string into its padded tuple.
func ParseResolvedVersion(tag string) (ResolvedVersion, bool) {
	var version ResolvedVersion

	normalized, ok := NormalizeVersionTag(tag)
	if !ok {
		return version, false
	}

	for i, part := range strings.Split(normalized, ".") {
		value, err := strconv.ParseUint(part, 10, 64)
		if err != nil {
			return version, false
		}
		version[i] = value
	}
	return version, true
}

// Compare returns -1, 0 or 1 comparing component-wise from major to build.
func (v ResolvedVersion) Compare(other ResolvedVersion) int {
	for i := range v {
		switch {
		case v[i] < other[i]:
			return -1
		case v[i] > other[i]:
			return 1
		}
	}
	return 0
}

// String reconstructs the four-component dotted form.
func (v ResolvedVersion) String() string {
	return fmt.Sprintf("%d.%d.%d.%d", v[0], v[1], v[2], v[3])
}

// LatestSemverTag returns the tag with the highest parsed version. Tags that do not parse are
// skipped. When two tags parse to the same tuple the first one in the given order wins.
func LatestSemverTag(tags []string) (string, bool) {
	var (
		best    string
		bestVer ResolvedVersion
		found   bool
	)

	for _, tag := range tags {
		version, ok := ParseResolvedVersion(tag)
		if !ok {
			continue
		}
		if !found || version.Compare(bestVer) > 0 {
			best, bestVer, found = tag, version, true
		}
	}
	return best, found
}
