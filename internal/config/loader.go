package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/mvp-joe/autodoc/internal/docstring"
	"github.com/mvp-joe/autodoc/internal/indexer/parsers"
	"github.com/mvp-joe/autodoc/internal/policy"
)

// StateDir holds the project configuration file.
const StateDir = ".autodoc"

// Loader provides configuration loading capabilities.
type Loader interface {
	// Load loads configuration from file and environment variables.
	// Priority: defaults → config file → environment variables (env wins)
	Load() (*Config, error)
}

type loader struct {
	rootDir    string
	configFile string
}

// NewLoader creates a new configuration loader for the given project root.
// A non-empty configFile replaces the .autodoc/config.yml lookup and must exist.
func NewLoader(rootDir, configFile string) Loader {
	return &loader{
		rootDir:    rootDir,
		configFile: configFile,
	}
}

// Load loads configuration with the following priority (highest to lowest):
// 1. Environment variables (AUTODOC_*)
// 2. Config file (.autodoc/config.yml or an explicit path)
// 3. Default values
func (l *loader) Load() (*Config, error) {
	v := viper.New()

	if l.configFile != "" {
		v.SetConfigFile(l.configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(filepath.Join(l.rootDir, StateDir))
	}

	v.SetEnvPrefix("AUTODOC")
	v.AutomaticEnv()
	// AUTODOC_WATCH_DEBOUNCE_MS -> watch.debounce_ms
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	for _, key := range []string{
		"project_name",
		"output_path",
		"include_all",
		"enable_comment_markers",
		"private_prefix",
		"docstring_style",
		"watch.debounce_ms",
		"watch.cache_size",
		"output.format",
	} {
		_ = v.BindEnv(key)
	}

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		// Missing default config file is fine: defaults + env vars
		if l.configFile != "" || !errors.As(err, &notFound) {
			return nil, &ConfigurationError{Path: l.configPath(v), Err: fmt.Errorf("failed to read config file: %w", err)}
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, &ConfigurationError{Path: v.ConfigFileUsed(), Err: fmt.Errorf("failed to unmarshal config: %w", err)}
	}

	if cfg.ProjectName == "" {
		cfg.ProjectName = projectName(l.rootDir)
	}

	if err := Validate(cfg); err != nil {
		return nil, &ConfigurationError{Path: v.ConfigFileUsed(), Err: err}
	}

	return cfg, nil
}

func (l *loader) configPath(v *viper.Viper) string {
	if l.configFile != "" {
		return l.configFile
	}
	return v.ConfigFileUsed()
}

// setDefaults configures viper with default values.
func setDefaults(v *viper.Viper) {
	defaults := Default()

	v.SetDefault("project_name", defaults.ProjectName)
	v.SetDefault("output_path", defaults.OutputPath)
	v.SetDefault("include_all", defaults.IncludeAll)
	v.SetDefault("enable_comment_markers", defaults.EnableCommentMarkers)
	v.SetDefault("private_prefix", defaults.PrivatePrefix)
	v.SetDefault("docstring_style", defaults.DocstringStyle)

	v.SetDefault("paths.include", defaults.Paths.Include)
	v.SetDefault("paths.ignore", defaults.Paths.Ignore)

	v.SetDefault("watch.debounce_ms", defaults.Watch.DebounceMs)
	v.SetDefault("watch.cache_size", defaults.Watch.CacheSize)

	v.SetDefault("output.format", defaults.Output.Format)
}

func projectName(rootDir string) string {
	abs, err := filepath.Abs(rootDir)
	if err != nil {
		return filepath.Base(rootDir)
	}
	return filepath.Base(abs)
}

// LoadConfig is a convenience function that loads config for the current
// working directory.
func LoadConfig() (*Config, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get working directory: %w", err)
	}
	return NewLoader(wd, "").Load()
}

// LoadConfigFromDir loads configuration for a specific project root.
func LoadConfigFromDir(rootDir string) (*Config, error) {
	return NewLoader(rootDir, "").Load()
}

// PolicyOptions returns the inclusion switches for the policy layer.
func (c *Config) PolicyOptions() policy.Options {
	return policy.Options{
		IncludeAll:           c.IncludeAll,
		EnableCommentMarkers: c.EnableCommentMarkers,
		PrivatePrefix:        c.PrivatePrefix,
	}
}

// ParserOptions returns the extraction settings for the Python parser.
// Validate has already rejected unknown docstring styles.
func (c *Config) ParserOptions() parsers.Options {
	style, err := docstring.ParseStyle(c.DocstringStyle)
	if err != nil {
		style = docstring.StyleAuto
	}
	return parsers.Options{
		DocstringStyle: style,
		CommentMarkers: c.EnableCommentMarkers,
	}
}

// defaultTemplate is the commented config written by `autodoc init`.
const defaultTemplate = `# autodoc configuration
project_name: %q

# Directory that receives modules.json (or modules.yaml) and stats.json.
output_path: ./docs

# Document every entity, ignoring markers and the public-name fallback.
include_all: false

# Honor "# @doc_me" comments and docstring markers.
enable_comment_markers: true

# Names starting with this prefix are internal when nothing is marked.
private_prefix: "_"

# auto, google or numpy
docstring_style: auto

paths:
  include:
    - "**/*.py"
  ignore:
    - "**/__pycache__/**"
    - "**/*.pyc"
    - ".git/**"
    - "node_modules/**"
    - "venv/**"
    - ".venv/**"
    - ".env/**"
    - "build/**"
    - "dist/**"

watch:
  debounce_ms: 2000
  cache_size: 4096

output:
  format: json # json or yaml
`

// DefaultYAML renders the commented default config for a project. The result
// is parsed back and validated before it is returned.
func DefaultYAML(projectName string) ([]byte, error) {
	data := []byte(fmt.Sprintf(defaultTemplate, projectName))

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config template: %w", err)
	}
	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid config template: %w", err)
	}
	return data, nil
}

// WriteDefault writes a default config for rootDir to .autodoc/config.yml.
// An existing file is left untouched unless force is set.
func WriteDefault(rootDir string, force bool) (string, error) {
	path := filepath.Join(rootDir, StateDir, "config.yml")
	if _, err := os.Stat(path); err == nil && !force {
		return path, fmt.Errorf("config already exists: %s", path)
	}

	data, err := DefaultYAML(projectName(rootDir))
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", fmt.Errorf("failed to create %s: %w", StateDir, err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write config: %w", err)
	}
	return path, nil
}
