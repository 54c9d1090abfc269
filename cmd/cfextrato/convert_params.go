package main

import (
	"errors"
	"fmt"

	cfextrato "github.com/alnah/go-cfextrato"
	"github.com/alnah/go-cfextrato/internal/config"
	"github.com/alnah/go-cfextrato/internal/dateutil"
	"github.com/alnah/go-cfextrato/internal/fileutil"
	"github.com/alnah/go-cfextrato/internal/hints"
)

// conversionParams groups parameters shared across batch/file conversion.
type conversionParams struct {
	logo      *cfextrato.Logo // loaded once per run
	notice    string
	outputDir string // empty = next to each input
	html      bool
	htmlOnly  bool
}

// resolveConfig builds the effective configuration.
// Order of precedence: CLI flags > env vars > config file > defaults.
func resolveConfig(flags *convertFlags, env *envSettings) (*config.Config, error) {
	if err := validateWorkers(flags.workers); err != nil {
		return nil, err
	}

	cfg := config.DefaultConfig()

	name := flags.common.config
	if name == "" {
		name = env.ConfigPath
	}
	if name != "" {
		loaded, err := config.LoadConfig(name)
		if err != nil {
			if errors.Is(err, config.ErrConfigNotFound) && !fileutil.IsFilePath(name) {
				return nil, fmt.Errorf("loading config: %w%s", err, hints.ForConfigNotFound(config.SearchPaths(name)))
			}
			return nil, fmt.Errorf("loading config: %w", err)
		}
		cfg = withDefaults(loaded)
	}

	applyEnvSettings(env, cfg)
	mergeFlags(flags, cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// withDefaults fills fields a config file left empty.
func withDefaults(cfg *config.Config) *config.Config {
	def := config.DefaultConfig()
	if cfg.Receipt.DateFormat == "" {
		cfg.Receipt.DateFormat = def.Receipt.DateFormat
	}
	if cfg.PDF.Backend == "" {
		cfg.PDF.Backend = def.PDF.Backend
	}
	return cfg
}

// mergeFlags merges CLI flags into config. CLI values override config values.
func mergeFlags(flags *convertFlags, cfg *config.Config) {
	if flags.output != "" {
		cfg.Output.Dir = flags.output
	}
	if flags.outputMode.html {
		cfg.Output.HTML = true
	}
	if flags.outputMode.htmlOnly {
		cfg.Output.HTMLOnly = true
	}
	if flags.workers > 0 {
		cfg.Workers = flags.workers
	}

	if flags.receipt.logo != "" {
		cfg.Receipt.Logo = flags.receipt.logo
	}
	if flags.receipt.notice != "" {
		cfg.Receipt.Notice = flags.receipt.notice
	}
	if flags.receipt.dateFormat != "" {
		cfg.Receipt.DateFormat = flags.receipt.dateFormat
	}

	if flags.assets.style != "" {
		cfg.Assets.Style = flags.assets.style
	}
	if flags.assets.assetPath != "" {
		cfg.Assets.BasePath = flags.assets.assetPath
	}

	if flags.pdf.backend != "" {
		cfg.PDF.Backend = flags.pdf.backend
	}
	if flags.pdf.timeout != "" {
		cfg.PDF.Timeout = flags.pdf.timeout
	}
}

// converterOptions translates a validated config into library options.
func converterOptions(cfg *config.Config) ([]cfextrato.Option, error) {
	dateFormat := cfg.Receipt.DateFormat
	if dateFormat == "" {
		dateFormat = dateutil.DefaultDateFormat
	}

	opts := []cfextrato.Option{
		cfextrato.WithPDFBackend(cfg.PDF.Backend),
		cfextrato.WithDateLayout(dateFormat),
		cfextrato.WithStyle(cfg.Assets.Style),
	}
	if cfg.Assets.BasePath != "" {
		opts = append(opts, cfextrato.WithAssetPath(cfg.Assets.BasePath))
	}

	timeout, err := cfg.PDF.TimeoutDuration()
	if err != nil {
		return nil, err
	}
	if timeout > 0 {
		opts = append(opts, cfextrato.WithTimeout(timeout))
	}

	return opts, nil
}

// buildParams loads the logo once and collects per-file parameters.
func buildParams(cfg *config.Config) (*conversionParams, error) {
	params := &conversionParams{
		notice:    cfg.Receipt.Notice,
		outputDir: cfg.Output.Dir,
		html:      cfg.Output.HTML,
		htmlOnly:  cfg.Output.HTMLOnly,
	}
	if cfg.Receipt.Logo != "" {
		logo, err := cfextrato.LoadLogo(cfg.Receipt.Logo)
		if err != nil {
			return nil, err
		}
		params.logo = logo
	}
	return params, nil
}
