// Package config loads autodoc configuration from .autodoc/config.yml with
// AUTODOC_* environment variable overrides.
package config

import (
	"time"
)

// Config represents the complete autodoc configuration.
type Config struct {
	ProjectName          string       `yaml:"project_name" mapstructure:"project_name"`
	OutputPath           string       `yaml:"output_path" mapstructure:"output_path"`
	IncludeAll           bool         `yaml:"include_all" mapstructure:"include_all"`
	EnableCommentMarkers bool         `yaml:"enable_comment_markers" mapstructure:"enable_comment_markers"`
	PrivatePrefix        string       `yaml:"private_prefix" mapstructure:"private_prefix"`   // public-name fallback
	DocstringStyle       string       `yaml:"docstring_style" mapstructure:"docstring_style"` // "auto", "google" or "numpy"
	Paths                PathsConfig  `yaml:"paths" mapstructure:"paths"`
	Watch                WatchConfig  `yaml:"watch" mapstructure:"watch"`
	Output               OutputConfig `yaml:"output" mapstructure:"output"`
}

// PathsConfig defines which files to analyze and which to ignore.
type PathsConfig struct {
	Include []string `yaml:"include" mapstructure:"include"` // glob patterns for source files
	Ignore  []string `yaml:"ignore" mapstructure:"ignore"`   // glob patterns to ignore
}

// WatchConfig configures watch sessions.
type WatchConfig struct {
	DebounceMs int `yaml:"debounce_ms" mapstructure:"debounce_ms"` // quiet period before a re-run
	CacheSize  int `yaml:"cache_size" mapstructure:"cache_size"`   // parsed files kept between runs
}

// OutputConfig configures the hand-off files.
type OutputConfig struct {
	Format string `yaml:"format" mapstructure:"format"` // "json" or "yaml"
}

// Default returns a configuration with sensible defaults.
func Default() *Config {
	return &Config{
		ProjectName:          "",
		OutputPath:           "./docs",
		IncludeAll:           false,
		EnableCommentMarkers: true,
		PrivatePrefix:        "_",
		DocstringStyle:       "auto",
		Paths: PathsConfig{
			Include: []string{"**/*.py"},
			Ignore: []string{
				"**/__pycache__/**",
				"**/*.pyc",
				".git/**",
				"node_modules/**",
				"venv/**",
				".venv/**",
				".env/**",
				"build/**",
				"dist/**",
			},
		},
		Watch: WatchConfig{
			DebounceMs: 2000,
			CacheSize:  4096,
		},
		Output: OutputConfig{
			Format: "json",
		},
	}
}

// Debounce returns the watch debounce interval.
func (c *Config) Debounce() time.Duration {
	return time.Duration(c.Watch.DebounceMs) * time.Millisecond
}

// GetSourceExtensions extracts unique file extensions from include patterns.
// Returns extensions with leading dot (e.g., []string{".py"}).
func (c *Config) GetSourceExtensions() []string {
	seen := make(map[string]bool)
	extensions := []string{}
	for _, pattern := range c.Paths.Include {
		if ext := extractExtension(pattern); ext != "" && !seen[ext] {
			seen[ext] = true
			extensions = append(extensions, ext)
		}
	}
	return extensions
}

// extractExtension extracts the file extension from a glob pattern.
// Returns empty string if pattern doesn't match a simple extension pattern.
// Examples: "**/*.py" -> ".py", "*.pyi" -> ".pyi"
func extractExtension(pattern string) string {
	for i := len(pattern) - 1; i >= 1; i-- {
		if pattern[i] == '.' && pattern[i-1] == '*' {
			return pattern[i:]
		}
	}
	return ""
}
