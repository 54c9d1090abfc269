package main

import (
	"io"
	"os"
	"time"

	"github.com/sirupsen/logrus"
)

// Environment holds injectable dependencies for testability.
type Environment struct {
	Now    func() time.Time
	Stdout io.Writer
	Stderr io.Writer
	Logger *logrus.Logger
}

// DefaultEnv returns the production environment: standard streams and a
// text logger on stderr at info level.
func DefaultEnv() *Environment {
	return &Environment{
		Now:    time.Now,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
		Logger: newLogger(os.Stderr, logrus.InfoLevel),
	}
}

// newLogger builds a text logger writing to w.
func newLogger(w io.Writer, level logrus.Level) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(w)
	log.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: time.RFC3339,
	})
	log.SetLevel(level)
	return log
}

// applyLogLevel sets the logger level. --verbose wins over --quiet, which
// wins over CFEXTRATO_LOG_LEVEL.
func applyLogLevel(log *logrus.Logger, common commonFlags, envLevel string) error {
	switch {
	case common.verbose:
		log.SetLevel(logrus.DebugLevel)
	case common.quiet:
		log.SetLevel(logrus.ErrorLevel)
	case envLevel != "":
		lvl, err := logrus.ParseLevel(envLevel)
		if err != nil {
			return invalidEnvValue(envLogLevel, envLevel, err)
		}
		log.SetLevel(lvl)
	}
	return nil
}
