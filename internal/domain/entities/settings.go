package entities

import (
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/sirupsen/logrus"
	"github.com/zclconf/go-cty/cty"
	"gopkg.in/yaml.v3"
)

const (
	DefaultBaseDir = "subtrees"

	githubTokenEnv      = "GITHUB_TOKEN"
	githubTokenEnvShort = "GH_TOKEN"
	gitlabTokenEnv      = "GITLAB_TOKEN"
	gitlabTokenEnvShort = "GL_TOKEN"
)

// Settings is the top-level configuration for subtreesync.
type Settings struct {
	BaseDir      string                  `yaml:"base_dir"     hcl:"base_dir,optional"`
	Squash       *bool                   `yaml:"squash"       hcl:"squash,optional"`
	Dependencies []DependencyDeclaration `yaml:"dependencies" hcl:"dependency,block"`
	Metadata     *MetadataSettings       `yaml:"metadata"     hcl:"metadata,block"`
	Tokens       *TokenSettings          `yaml:"tokens"       hcl:"tokens,block"`
}

// TokenSettings holds the credentials used for release lookups and remote listings.
type TokenSettings struct {
	GitHub string `yaml:"github" hcl:"github,optional"` // Inline, ${ENV_VAR}, or file path
	GitLab string `yaml:"gitlab" hcl:"gitlab,optional"` // Inline, ${ENV_VAR}, or file path
}

// SquashEnabled reports whether subtree operations squash upstream history (default true).
func (s *Settings) SquashEnabled() bool {
	return s.Squash == nil || *s.Squash
}

// For returns the token configured for a hosting domain, or "".
func (t TokenSettings) For(host string) string {
	switch {
	case strings.Contains(host, "github"):
		return t.GitHub
	case strings.Contains(host, "gitlab"):
		return t.GitLab
	}
	return ""
}

// envVarPattern matches ${VAR_NAME} placeholders.
var envVarPattern = regexp.MustCompile(`\$\{([^}]+)}`)

// NewSettings reads and parses a configuration file, expanding environment variables
// and resolving token file paths. Files ending in ".hcl" are decoded as HCL, anything else as YAML.
func NewSettings(configPath string, log logrus.FieldLogger) (*Settings, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %q: %w", configPath, err)
	}
	return ParseSettings(configPath, data, log)
}

// ParseSettings decodes configuration content; the file name only selects the format.
func ParseSettings(filename string, data []byte, log logrus.FieldLogger) (*Settings, error) {
	var settings Settings
	if strings.EqualFold(filepath.Ext(filename), ".hcl") {
		if err := decodeHCL(filename, data, &settings); err != nil {
			return nil, err
		}
	} else if err := yaml.Unmarshal(data, &settings); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	settings.applyDefaults()
	settings.resolveTokens(log)

	if err := validate(&settings); err != nil {
		return nil, err
	}
	return &settings, nil
}

// decodeHCL evaluates the file with an "env" object exposing the process environment,
// so tokens can be written as `github = env.GITHUB_TOKEN`.
func decodeHCL(filename string, data []byte, settings *Settings) error {
	file, diags := hclparse.NewParser().ParseHCL(data, filename)
	if diags.HasErrors() {
		return fmt.Errorf("failed to parse config file: %w", diags)
	}

	evalCtx := &hcl.EvalContext{
		Variables: map[string]cty.Value{"env": environmentObject()},
	}
	if decodeDiags := gohcl.DecodeBody(file.Body, evalCtx, settings); decodeDiags.HasErrors() {
		return fmt.Errorf("failed to decode config file: %w", decodeDiags)
	}
	return nil
}

func environmentObject() cty.Value {
	vars := make(map[string]cty.Value)
	for _, kv := range os.Environ() {
		name, value, ok := strings.Cut(kv, "=")
		if !ok || name == "" {
			continue
		}
		vars[name] = cty.StringVal(value)
	}
	if len(vars) == 0 {
		return cty.EmptyObjectVal
	}
	return cty.ObjectVal(vars)
}

func (s *Settings) applyDefaults() {
	if strings.TrimSpace(s.BaseDir) == "" {
		s.BaseDir = DefaultBaseDir
	}
	s.BaseDir = strings.Trim(filepath.ToSlash(path.Clean(s.BaseDir)), "/")

	if s.Metadata != nil {
		s.Metadata.ApplyDefaults()
	}
	if s.Tokens == nil {
		s.Tokens = &TokenSettings{}
	}
	for i := range s.Dependencies {
		dep := &s.Dependencies[i]
		if dep.Description == "" {
			dep.Description = dep.Name
		}
		if dep.Constant == "" {
			dep.Constant = ConstantName(dep.Name, dep.UseLatestRelease || dep.UseLatestTag)
		}
	}
	if self := s.metadataSelf(); self != nil {
		if self.Name == "" {
			if ref, ok := ParseRepositoryURL(self.URL); ok {
				self.Name = ref.Name
			}
		}
		if self.Description == "" {
			self.Description = self.Name
		}
		if self.Constant == "" {
			self.Constant = ConstantName(self.Name, true)
		}
	}
}

func (s *Settings) metadataSelf() *SelfDeclaration {
	if s.Metadata == nil {
		return nil
	}
	return s.Metadata.Self
}

func (s *Settings) resolveTokens(log logrus.FieldLogger) {
	s.Tokens.GitHub = ResolveToken(s.Tokens.GitHub, log)
	s.Tokens.GitLab = ResolveToken(s.Tokens.GitLab, log)

	if s.Tokens.GitHub == "" {
		s.Tokens.GitHub = firstEnv(githubTokenEnv, githubTokenEnvShort)
	}
	if s.Tokens.GitLab == "" {
		s.Tokens.GitLab = firstEnv(gitlabTokenEnv, gitlabTokenEnvShort)
	}
}

func firstEnv(names ...string) string {
	for _, name := range names {
		if val := os.Getenv(name); val != "" {
			return val
		}
	}
	return ""
}

// FindConfigFile searches for a configuration file in standard locations below dir.
// Returns the path to the first file found or an error if none is found.
func FindConfigFile(dir string) (string, error) {
	locations := []string{
		dir,
		filepath.Join(dir, ".config"),
		filepath.Join(dir, "configs"),
	}

	patterns := []string{
		".subtrees.yaml",
		".subtrees.yml",
		"subtrees.yaml",
		"subtrees.yml",
		".subtrees.hcl",
		"subtrees.hcl",
	}

	for _, loc := range locations {
		for _, pat := range patterns {
			p := filepath.Join(loc, pat)
			if _, statErr := os.Stat(p); statErr == nil {
				return p, nil
			}
		}
	}

	return "", errors.New("config file not found in default locations")
}

// ResolveToken expands environment variable references (${VAR}) and, if the
// resulting string is a path to an existing file, reads the token from the file.
func ResolveToken(raw string, log logrus.FieldLogger) string {
	if raw == "" {
		return raw
	}

	resolved := envVarPattern.ReplaceAllStringFunc(raw, func(match string) string {
		varName := envVarPattern.FindStringSubmatch(match)[1]
		if val := os.Getenv(varName); val != "" {
			return val
		}
		log.Warnf("Environment variable %q is not set", varName)
		return ""
	})

	if info, statErr := os.Stat(resolved); statErr == nil && !info.IsDir() {
		data, readErr := os.ReadFile(resolved)
		if readErr != nil {
			log.Warnf("Failed to read token file %q: %v", resolved, readErr)
			return resolved
		}
		log.Debugf("Read token from file %q", resolved)
		return strings.TrimSpace(string(data))
	}

	return resolved
}

// validate checks for required configuration values.
func validate(settings *Settings) error {
	if len(settings.Dependencies) == 0 {
		return errors.New("at least one dependency must be configured")
	}
	if settings.BaseDir == "." || strings.HasPrefix(settings.BaseDir, "..") {
		return fmt.Errorf("base_dir %q must be a subdirectory of the repository", settings.BaseDir)
	}

	seen := make(map[string]struct{}, len(settings.Dependencies))
	for i, dep := range settings.Dependencies {
		if dep.Name == "" {
			return fmt.Errorf("dependencies[%d].name is required", i)
		}
		if strings.ContainsAny(dep.Name, `/\`) || dep.Name == "." || dep.Name == ".." {
			return fmt.Errorf("dependencies[%d].name %q must be a single directory name", i, dep.Name)
		}
		if dep.URL == "" {
			return fmt.Errorf("dependencies[%d].url is required", i)
		}
		if _, dup := seen[dep.Name]; dup {
			return fmt.Errorf("dependencies[%d].name %q is declared twice", i, dep.Name)
		}
		seen[dep.Name] = struct{}{}
	}

	if settings.Metadata != nil {
		if settings.Metadata.Path == "" {
			return errors.New("metadata.path is required when metadata is configured")
		}
		if _, ok := metadataTemplates[settings.Metadata.Format]; !ok {
			return fmt.Errorf("metadata.format %q is not supported (go, csharp)", settings.Metadata.Format)
		}
		if self := settings.Metadata.Self; self != nil && self.URL == "" {
			return errors.New("metadata.self.url is required")
		}
	}

	return validateConstants(settings)
}

// validateConstants rejects metadata constants that share a name.
func validateConstants(settings *Settings) error {
	owners := make(map[string]string, len(settings.Dependencies)+2) //nolint:mnd // version + self
	claim := func(constant, owner string) error {
		if other, taken := owners[constant]; taken {
			return fmt.Errorf("constant %q of %s collides with %s; set an explicit constant", constant, owner, other)
		}
		owners[constant] = owner
		return nil
	}

	if settings.Metadata != nil {
		owners[settings.Metadata.VersionConstant] = "metadata.version_constant"
		if self := settings.Metadata.Self; self != nil {
			if err := claim(self.Constant, "metadata.self"); err != nil {
				return err
			}
		}
	}
	for _, dep := range settings.Dependencies {
		if err := claim(dep.Constant, fmt.Sprintf("dependency %q", dep.Name)); err != nil {
			return err
		}
	}
	return nil
}
