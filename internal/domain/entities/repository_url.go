package entities

import (
	"net/url"
	"regexp"
	"strings"
)

// scpLikeURL matches the SSH shorthand "user@host:path".
var scpLikeURL = regexp.MustCompile(`^[A-Za-z0-9._-]+@([A-Za-z0-9.-]+):(.*)$`)

// RepositoryRef holds the hosting coordinates extracted from a repository URL.
type RepositoryRef struct {
	Host  string
	Owner string // First path segment (user, organization or top-level group)
	Name  string // Last path segment
	Path  string // Full project path, e.g. "group/subgroup/project" on GitLab
}

// ParseRepositoryURL extracts host, owner and repository name from an HTTPS, ssh:// or
// scp-like URL. A trailing ".git" is removed from the repository name.
func ParseRepositoryURL(rawURL string) (RepositoryRef, bool) {
	trimmed := strings.TrimSpace(rawURL)

	var host, pathPart string
	if m := scpLikeURL.FindStringSubmatch(trimmed); m != nil && !strings.Contains(trimmed, "://") {
		host, pathPart = m[1], m[2]
	} else {
		parsed, err := url.Parse(trimmed)
		if err != nil || parsed.Host == "" {
			return RepositoryRef{}, false
		}
		host, pathPart = parsed.Hostname(), parsed.Path
	}

	pathPart = strings.TrimSuffix(strings.Trim(pathPart, "/"), ".git")
	segments := strings.Split(pathPart, "/")
	if host == "" || len(segments) < 2 || segments[0] == "" || segments[1] == "" { //nolint:mnd // owner + repo
		return RepositoryRef{}, false
	}

	return RepositoryRef{
		Host:  strings.ToLower(host),
		Owner: segments[0],
		Name:  segments[len(segments)-1],
		Path:  pathPart,
	}, true
}

// IsAbsoluteRepositoryURL reports whether the URL carries a scheme or is in SSH form.
func IsAbsoluteRepositoryURL(rawURL string) bool {
	trimmed := strings.TrimSpace(rawURL)
	return strings.Contains(trimmed, "://") || scpLikeURL.MatchString(trimmed)
}

// ResolveSubmoduleURL rewrites a relative submodule URL against its parent repository URL:
//   - "name" inherits the parent's owner,
//   - "owner/name" is taken as absolute under that owner,
//   - "../name" (or any "..": prefixed path) inherits the parent's owner with the last segment as name,
//   - absolute URLs are returned unchanged.
//
// When the parent URL cannot be parsed the submodule URL is returned as declared.
func ResolveSubmoduleURL(parentURL, submoduleURL string) string {
	declared := strings.TrimSpace(submoduleURL)
	if IsAbsoluteRepositoryURL(declared) {
		return declared
	}

	parent, ok := ParseRepositoryURL(parentURL)
	if !ok {
		return declared
	}

	var parts []string
	for _, p := range strings.Split(declared, "/") {
		if p != "" && p != "." {
			parts = append(parts, p)
		}
	}

	base := "https://" + parent.Host + "/"
	switch {
	case len(parts) == 0:
		return declared
	case len(parts) == 1:
		return base + parent.Owner + "/" + parts[0]
	case len(parts) == 2 && parts[0] != "..": //nolint:mnd // owner/name
		return base + parts[0] + "/" + parts[1]
	default:
		return base + parent.Owner + "/" + parts[len(parts)-1]
	}
}

// CanonicalRepositoryURL returns a comparison key for a repository URL, so that
// "https://github.com/Acme/x.git" and "git@github.com:acme/x" identify the same repository.
func CanonicalRepositoryURL(rawURL string) string {
	if ref, ok := ParseRepositoryURL(rawURL); ok {
		return strings.ToLower(ref.Host + "/" + ref.Path)
	}
	return strings.TrimSuffix(strings.TrimRight(strings.TrimSpace(rawURL), "/"), ".git")
}
