package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gobwas/glob"

	"github.com/mvp-joe/autodoc/internal/docstring"
)

var (
	// ErrInvalidDocstringStyle indicates an unsupported docstring dialect
	ErrInvalidDocstringStyle = errors.New("invalid docstring style")

	// ErrInvalidOutputFormat indicates an unsupported output format
	ErrInvalidOutputFormat = errors.New("invalid output format")

	// ErrEmptyOutputPath indicates a missing output directory
	ErrEmptyOutputPath = errors.New("empty output path")

	// ErrEmptyInclude indicates no include patterns
	ErrEmptyInclude = errors.New("empty include patterns")

	// ErrInvalidPattern indicates a glob that does not compile
	ErrInvalidPattern = errors.New("invalid glob pattern")

	// ErrInvalidWatchSettings indicates invalid watch configuration
	ErrInvalidWatchSettings = errors.New("invalid watch settings")
)

// ConfigurationError is returned when configuration cannot be loaded or is
// invalid. It is fatal: no file is processed.
type ConfigurationError struct {
	Path string // config file, empty when only defaults and env were used
	Err  error
}

func (e *ConfigurationError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("configuration error in %s: %v", e.Path, e.Err)
	}
	return fmt.Sprintf("configuration error: %v", e.Err)
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

// Validate checks that the configuration is valid and complete.
func Validate(cfg *Config) error {
	var errs []error

	if _, err := docstring.ParseStyle(cfg.DocstringStyle); err != nil {
		errs = append(errs, fmt.Errorf("%w: %v", ErrInvalidDocstringStyle, err))
	}

	if strings.TrimSpace(cfg.OutputPath) == "" {
		errs = append(errs, fmt.Errorf("%w: output_path is required", ErrEmptyOutputPath))
	}

	if err := validatePaths(&cfg.Paths); err != nil {
		errs = append(errs, err)
	}

	if err := validateWatch(&cfg.Watch); err != nil {
		errs = append(errs, err)
	}

	switch strings.ToLower(cfg.Output.Format) {
	case "json", "yaml", "yml":
	default:
		errs = append(errs, fmt.Errorf("%w: must be 'json' or 'yaml', got '%s'", ErrInvalidOutputFormat, cfg.Output.Format))
	}

	if len(errs) > 0 {
		return joinErrors(errs)
	}

	return nil
}

func validatePaths(cfg *PathsConfig) error {
	var errs []error

	if len(cfg.Include) == 0 {
		errs = append(errs, fmt.Errorf("%w: at least one include pattern required", ErrEmptyInclude))
	}

	for _, pattern := range append(append([]string{}, cfg.Include...), cfg.Ignore...) {
		if _, err := glob.Compile(pattern, '/'); err != nil {
			errs = append(errs, fmt.Errorf("%w: %q: %v", ErrInvalidPattern, pattern, err))
		}
	}

	if len(errs) > 0 {
		return joinErrors(errs)
	}

	return nil
}

func validateWatch(cfg *WatchConfig) error {
	var errs []error

	if cfg.DebounceMs <= 0 {
		errs = append(errs, fmt.Errorf("%w: debounce_ms must be positive, got %d", ErrInvalidWatchSettings, cfg.DebounceMs))
	}

	if cfg.CacheSize < 0 {
		errs = append(errs, fmt.Errorf("%w: cache_size cannot be negative, got %d", ErrInvalidWatchSettings, cfg.CacheSize))
	}

	if len(errs) > 0 {
		return joinErrors(errs)
	}

	return nil
}

// validationErrors combines multiple errors into a single error with clear
// formatting. errors.Is matches any of them.
type validationErrors []error

func (v validationErrors) Error() string {
	msgs := make([]string, 0, len(v))
	for _, err := range v {
		msgs = append(msgs, err.Error())
	}
	return fmt.Sprintf("validation failed:\n  - %s", strings.Join(msgs, "\n  - "))
}

func (v validationErrors) Unwrap() []error {
	return v
}

// joinErrors combines multiple errors into a single error.
func joinErrors(errs []error) error {
	if len(errs) == 0 {
		return nil
	}

	if len(errs) == 1 {
		return errs[0]
	}

	return validationErrors(errs)
}
