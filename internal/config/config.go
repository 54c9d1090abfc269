// Package config loads and validates the YAML configuration of the CLI.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/alnah/go-cfextrato/internal/dateutil"
	"github.com/alnah/go-cfextrato/internal/fileutil"
	"github.com/alnah/go-cfextrato/internal/yamlutil"
)

// Sentinel errors for config operations.
var (
	ErrConfigNotFound  = errors.New("config file not found")
	ErrEmptyConfigName = errors.New("config name cannot be empty")
	ErrConfigParse     = errors.New("failed to parse config")
	ErrFieldTooLong    = errors.New("field exceeds maximum length")
	ErrInvalidValue    = errors.New("invalid config value")
)

// Field length limits.
const (
	MaxPathLength       = 4096
	MaxNoticeLength     = 500 // app-query notice printed under the QR code
	MaxDateFormatLength = dateutil.MaxDateFormatLength
	MaxWorkers          = 32
)

// Backends accepted in pdf.backend.
var validBackends = []string{"rod", "fpdf"}

// userConfigDirName is the directory searched under os.UserConfigDir().
const userConfigDirName = "go-cfextrato"

// Config holds the CLI configuration.
type Config struct {
	Output  OutputConfig  `yaml:"output"`
	Receipt ReceiptConfig `yaml:"receipt"`
	Assets  AssetsConfig  `yaml:"assets"`
	PDF     PDFConfig     `yaml:"pdf"`
	Workers int           `yaml:"workers"` // 0 = auto
}

// OutputConfig defines output destination options.
type OutputConfig struct {
	Dir      string `yaml:"dir"`      // empty = next to each input
	HTML     bool   `yaml:"html"`     // also write the rendered HTML
	HTMLOnly bool   `yaml:"htmlOnly"` // skip PDF generation
}

// ReceiptConfig holds the inputs printed on every receipt.
type ReceiptConfig struct {
	Logo       string `yaml:"logo"`       // image path, empty = no logo
	Notice     string `yaml:"notice"`     // app-query notice, inline Markdown
	DateFormat string `yaml:"dateFormat"` // preset or tokens, see dateutil
}

// AssetsConfig defines asset loading options.
type AssetsConfig struct {
	BasePath string `yaml:"basePath"` // empty = embedded assets
	Style    string `yaml:"style"`    // style name or CSS file path
}

// PDFConfig defines the PDF backend.
type PDFConfig struct {
	Backend string `yaml:"backend"` // "rod" (default) or "fpdf"
	Timeout string `yaml:"timeout"` // Go duration, e.g. "30s"
}

// Validate checks field lengths and enumerated values.
// Called automatically by LoadConfig, but available for callers that build
// a Config by hand.
func (c *Config) Validate() error {
	fields := []struct {
		name  string
		value string
		max   int
	}{
		{"output.dir", c.Output.Dir, MaxPathLength},
		{"receipt.logo", c.Receipt.Logo, MaxPathLength},
		{"receipt.notice", c.Receipt.Notice, MaxNoticeLength},
		{"receipt.dateFormat", c.Receipt.DateFormat, MaxDateFormatLength},
		{"assets.basePath", c.Assets.BasePath, MaxPathLength},
		{"assets.style", c.Assets.Style, MaxPathLength},
	}
	for _, f := range fields {
		if err := validateFieldLength(f.name, f.value, f.max); err != nil {
			return err
		}
	}

	if c.Receipt.DateFormat != "" {
		if _, err := dateutil.Compile(c.Receipt.DateFormat); err != nil {
			return fmt.Errorf("receipt.dateFormat: %w", err)
		}
	}

	if c.PDF.Backend != "" && !isValidBackend(c.PDF.Backend) {
		return fmt.Errorf("%w: pdf.backend %q (must be %s)", ErrInvalidValue, c.PDF.Backend, strings.Join(validBackends, " or "))
	}

	if _, err := c.PDF.TimeoutDuration(); err != nil {
		return err
	}

	if c.Workers < 0 || c.Workers > MaxWorkers {
		return fmt.Errorf("%w: workers must be between 0 and %d, got %d", ErrInvalidValue, MaxWorkers, c.Workers)
	}

	return nil
}

// TimeoutDuration parses pdf.timeout. Empty yields 0 (library default).
func (p PDFConfig) TimeoutDuration() (time.Duration, error) {
	if p.Timeout == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(p.Timeout)
	if err != nil {
		return 0, fmt.Errorf("%w: pdf.timeout %q: %v", ErrInvalidValue, p.Timeout, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%w: pdf.timeout must be positive, got %s", ErrInvalidValue, d)
	}
	return d, nil
}

func isValidBackend(name string) bool {
	for _, b := range validBackends {
		if strings.EqualFold(name, b) {
			return true
		}
	}
	return false
}

// validateFieldLength checks if a field exceeds its maximum allowed length.
func validateFieldLength(fieldName, value string, maxLength int) error {
	if len(value) > maxLength {
		return fmt.Errorf("%w: %s (%d chars, max %d)", ErrFieldTooLong, fieldName, len(value), maxLength)
	}
	return nil
}

// DefaultConfig returns the configuration used when no file is given:
// embedded assets, rod backend, automatic worker count.
func DefaultConfig() *Config {
	return &Config{
		Receipt: ReceiptConfig{DateFormat: dateutil.DefaultDateFormat},
		PDF:     PDFConfig{Backend: "rod"},
	}
}

// LoadConfig loads configuration from a file path or config name.
// If nameOrPath contains a path separator, it's treated as a file path.
// Otherwise, it's treated as a config name and searched in standard locations.
// Returns error if the file is not found (no silent fallback).
func LoadConfig(nameOrPath string) (*Config, error) {
	if nameOrPath == "" {
		return nil, ErrEmptyConfigName
	}

	configPath := nameOrPath
	if !fileutil.IsFilePath(nameOrPath) {
		var err error
		if configPath, err = resolveConfigPath(nameOrPath); err != nil {
			return nil, err
		}
	}

	var cfg Config
	if err := yamlutil.ReadFileStrict(configPath, &cfg); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, configPath)
		}
		return nil, fmt.Errorf("%w: %v", ErrConfigParse, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// SearchPaths lists where a config name is looked up, in order:
// ./name.yaml, ./name.yml, then the same under the user config directory.
func SearchPaths(name string) []string {
	extensions := []string{".yaml", ".yml"}
	paths := make([]string, 0, len(extensions)*2)
	for _, ext := range extensions {
		paths = append(paths, name+ext)
	}
	if dir, err := os.UserConfigDir(); err == nil {
		for _, ext := range extensions {
			paths = append(paths, filepath.Join(dir, userConfigDirName, name+ext))
		}
	}
	return paths
}

// resolveConfigPath returns the first existing entry of SearchPaths.
func resolveConfigPath(name string) (string, error) {
	paths := SearchPaths(name)
	for _, p := range paths {
		if fileutil.FileExists(p) {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: tried %s", ErrConfigNotFound, strings.Join(paths, ", "))
}
