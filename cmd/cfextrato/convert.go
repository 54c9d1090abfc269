package main

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	cfextrato "github.com/alnah/go-cfextrato"
	"github.com/alnah/go-cfextrato/internal/config"
)

// runConvertCmd parses flags and runs the convert command.
func runConvertCmd(ctx context.Context, args []string, env *Environment) error {
	flags, positional, err := parseConvertFlags(args, env.Stderr)
	if err != nil {
		return err
	}
	return runConvert(ctx, positional, flags, env)
}

// runConvert orchestrates the conversion process.
func runConvert(ctx context.Context, positionalArgs []string, flags *convertFlags, env *Environment) error {
	cfg, err := prepare(flags, env)
	if err != nil {
		return err
	}

	switch len(positionalArgs) {
	case 0:
		return fmt.Errorf("%w: usage: cfextrato convert <file|dir>", ErrNoInput)
	case 1:
	default:
		return fmt.Errorf("%w: convert takes one input, got %d", ErrUsage, len(positionalArgs))
	}
	inputPath := positionalArgs[0]

	files, err := discoverFiles(inputPath)
	if err != nil {
		return fmt.Errorf("discovering files: %w", err)
	}
	if len(files) == 0 {
		return fmt.Errorf("%w in %s", ErrNoDocuments, inputPath)
	}

	params, err := buildParams(cfg)
	if err != nil {
		return err
	}

	opts, err := converterOptions(cfg)
	if err != nil {
		return err
	}

	pool, err := newPool(ctx, poolConfig{workers: cfg.Workers, jobs: len(files), opts: opts})
	if err != nil {
		return err
	}
	defer closePool(pool, env.Logger)

	env.Logger.WithFields(logrus.Fields{
		"files":   len(files),
		"workers": pool.Size(),
		"backend": cfg.PDF.Backend,
	}).Debug("starting conversion")

	results := convertBatch(ctx, &poolAdapter{pool: pool}, files, params, env.Logger)

	reportResults(results, flags.common.quiet, flags.common.verbose, env)
	return newBatchError(results)
}

// prepare reads the environment, sets the log level, and resolves the config.
func prepare(flags *convertFlags, env *Environment) (*config.Config, error) {
	settings, err := loadEnvSettings()
	if err != nil {
		return nil, err
	}
	if err := applyLogLevel(env.Logger, flags.common, settings.LogLevel); err != nil {
		return nil, err
	}
	warnUnknownEnvVars(env.Logger)

	return resolveConfig(flags, settings)
}

// closePool releases every browser, logging failures.
func closePool(pool *cfextrato.ConverterPool, log logrus.FieldLogger) {
	if err := pool.Close(); err != nil {
		log.WithError(err).Warn("closing converter pool")
	}
}
