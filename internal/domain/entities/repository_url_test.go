//go:build unit

package entities_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rios0rios0/subtreesync/internal/domain/entities"
)

func TestParseRepositoryURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		url      string
		expected entities.RepositoryRef
		ok       bool
	}{
		{
			name:     "should parse an HTTPS URL and drop the .git suffix",
			url:      "https://github.com/acme/widgets.git",
			expected: entities.RepositoryRef{Host: "github.com", Owner: "acme", Name: "widgets", Path: "acme/widgets"},
			ok:       true,
		},
		{
			name:     "should parse an scp-like SSH URL",
			url:      "git@github.com:Acme/Widgets.git",
			expected: entities.RepositoryRef{Host: "github.com", Owner: "Acme", Name: "Widgets", Path: "Acme/Widgets"},
			ok:       true,
		},
		{
			name:     "should parse an ssh:// URL with a port",
			url:      "ssh://git@gitlab.example.org:2222/group/project.git",
			expected: entities.RepositoryRef{Host: "gitlab.example.org", Owner: "group", Name: "project", Path: "group/project"},
			ok:       true,
		},
		{
			name:     "should keep nested GitLab groups in the path",
			url:      "https://gitlab.com/group/sub/project",
			expected: entities.RepositoryRef{Host: "gitlab.com", Owner: "group", Name: "project", Path: "group/sub/project"},
			ok:       true,
		},
		{name: "should reject a URL without repository", url: "https://github.com/acme"},
		{name: "should reject a relative path", url: "../widgets"},
		{name: "should reject an empty string", url: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			// when
			ref, ok := entities.ParseRepositoryURL(tt.url)

			// then
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.expected, ref)
		})
	}
}

func TestResolveSubmoduleURL(t *testing.T) {
	t.Parallel()

	const parent = "https://github.com/acme/parent.git"

	tests := []struct {
		name      string
		parent    string
		submodule string
		expected  string
	}{
		{
			name:      "should inherit the parent owner for a bare name",
			parent:    parent,
			submodule: "child",
			expected:  "https://github.com/acme/child",
		},
		{
			name:      "should treat owner/name as a repository on the same host",
			parent:    parent,
			submodule: "other/child",
			expected:  "https://github.com/other/child",
		},
		{
			name:      "should inherit the parent owner for a parent-relative path",
			parent:    parent,
			submodule: "../child.git",
			expected:  "https://github.com/acme/child.git",
		},
		{
			name:      "should resolve a sibling repository",
			parent:    "https://github.com/acme/widgets",
			submodule: "../lib-core",
			expected:  "https://github.com/acme/lib-core",
		},
		{
			name:      "should inherit the parent owner for deeper relative paths",
			parent:    "git@github.com:acme/parent.git",
			submodule: "../../libs/child",
			expected:  "https://github.com/acme/child",
		},
		{
			name:      "should ignore a current-directory prefix",
			parent:    parent,
			submodule: "./child",
			expected:  "https://github.com/acme/child",
		},
		{
			name:      "should keep absolute HTTPS URLs",
			parent:    parent,
			submodule: "https://gitlab.com/group/child.git",
			expected:  "https://gitlab.com/group/child.git",
		},
		{
			name:      "should keep absolute SSH URLs",
			parent:    parent,
			submodule: "git@gitlab.com:group/child.git",
			expected:  "git@gitlab.com:group/child.git",
		},
		{
			name:      "should return the declared URL when the parent cannot be parsed",
			parent:    "/srv/git/parent",
			submodule: "../child",
			expected:  "../child",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			// when
			resolved := entities.ResolveSubmoduleURL(tt.parent, tt.submodule)

			// then
			assert.Equal(t, tt.expected, resolved)
		})
	}
}

func TestCanonicalRepositoryURL(t *testing.T) {
	t.Parallel()

	t.Run("should identify the same repository across URL forms", func(t *testing.T) {
		t.Parallel()

		// when
		https := entities.CanonicalRepositoryURL("https://github.com/Acme/X.git")
		ssh := entities.CanonicalRepositoryURL("git@github.com:acme/x")

		// then
		assert.Equal(t, "github.com/acme/x", https)
		assert.Equal(t, https, ssh)
	})

	t.Run("should trim unparsable URLs", func(t *testing.T) {
		t.Parallel()

		// when
		canonical := entities.CanonicalRepositoryURL(" /srv/git/x.git/ ")

		// then
		assert.Equal(t, "/srv/git/x", canonical)
	})
}
