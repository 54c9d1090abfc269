package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/alnah/go-cfextrato/internal/config"
)

// dotEnvFile is loaded from the working directory before anything else.
const dotEnvFile = ".env"

// Environment variable names.
const (
	envPrefix    = "CFEXTRATO_"
	envConfig    = "CFEXTRATO_CONFIG"
	envLogo      = "CFEXTRATO_LOGO"
	envNotice    = "CFEXTRATO_NOTICE"
	envBackend   = "CFEXTRATO_BACKEND"
	envTimeout   = "CFEXTRATO_TIMEOUT"
	envWorkers   = "CFEXTRATO_WORKERS"
	envOutputDir = "CFEXTRATO_OUTPUT_DIR"
	envLogLevel  = "CFEXTRATO_LOG_LEVEL"
	envContainer = "CFEXTRATO_CONTAINER" // read by doctor only
)

// envSettings holds configuration from environment variables.
// Provides CI/CD-friendly overrides without requiring YAML files.
type envSettings struct {
	ConfigPath string
	Logo       string
	Notice     string
	Backend    string
	Timeout    string // validated with the rest of the config
	Workers    int
	OutputDir  string
	LogLevel   string
}

// knownEnvVars lists valid CFEXTRATO_* environment variables.
// Used to detect typos and warn users about unknown variables.
var knownEnvVars = map[string]bool{
	envConfig:    true,
	envLogo:      true,
	envNotice:    true,
	envBackend:   true,
	envTimeout:   true,
	envWorkers:   true,
	envOutputDir: true,
	envLogLevel:  true,
	envContainer: true,
}

// loadDotEnv loads KEY=VALUE pairs from path into the process environment.
// Variables already set are kept. A missing file is not an error.
func loadDotEnv(path string) error {
	err := godotenv.Load(path)
	if err == nil || errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return fmt.Errorf("loading %s: %w", path, err)
}

// loadEnvSettings reads CFEXTRATO_* variables.
// Returns config.ErrInvalidValue when CFEXTRATO_WORKERS is not an integer.
func loadEnvSettings() (*envSettings, error) {
	s := &envSettings{
		ConfigPath: os.Getenv(envConfig),
		Logo:       os.Getenv(envLogo),
		Notice:     os.Getenv(envNotice),
		Backend:    os.Getenv(envBackend),
		Timeout:    os.Getenv(envTimeout),
		OutputDir:  os.Getenv(envOutputDir),
		LogLevel:   os.Getenv(envLogLevel),
	}

	if v := os.Getenv(envWorkers); v != "" {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return nil, invalidEnvValue(envWorkers, v, err)
		}
		s.Workers = n
	}

	return s, nil
}

// invalidEnvValue reports a variable that cannot be used.
func invalidEnvValue(name, value string, err error) error {
	return fmt.Errorf("%w: %s=%q: %v", config.ErrInvalidValue, name, value, err)
}

// warnUnknownEnvVars logs warnings for unrecognized CFEXTRATO_* variables.
func warnUnknownEnvVars(log logrus.FieldLogger) {
	for _, kv := range os.Environ() {
		if !strings.HasPrefix(kv, envPrefix) {
			continue
		}
		name, _, _ := strings.Cut(kv, "=")
		if !knownEnvVars[name] {
			log.WithField("variable", name).Warn("unknown environment variable (typo?)")
		}
	}
}

// applyEnvSettings copies set environment values over cfg.
// Order of precedence: CLI flags > env vars > config file > defaults
// (CLI flags are applied later via mergeFlags).
func applyEnvSettings(s *envSettings, cfg *config.Config) {
	if s.Logo != "" {
		cfg.Receipt.Logo = s.Logo
	}
	if s.Notice != "" {
		cfg.Receipt.Notice = s.Notice
	}
	if s.Backend != "" {
		cfg.PDF.Backend = s.Backend
	}
	if s.Timeout != "" {
		cfg.PDF.Timeout = s.Timeout
	}
	if s.Workers != 0 {
		cfg.Workers = s.Workers
	}
	if s.OutputDir != "" {
		cfg.Output.Dir = s.OutputDir
	}
}
