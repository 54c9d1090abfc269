// Command cfextrato renders CFe-SAT receipts (XML) as printable PDF statements.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/sirupsen/logrus"
	flag "github.com/spf13/pflag"
	"go.uber.org/automaxprocs/maxprocs"
)

// Version is set at build time via ldflags.
var Version = "dev"

func main() {
	env := DefaultEnv()

	if err := loadDotEnv(dotEnvFile); err != nil {
		env.Logger.WithError(err).Warn("ignoring .env file")
	}
	if lvl, err := logrus.ParseLevel(os.Getenv(envLogLevel)); err == nil {
		env.Logger.SetLevel(lvl)
	}

	// Error ignored: maxprocs.Set only fails if GOMAXPROCS env is invalid,
	// in which case Go runtime defaults apply and the program continues safely.
	undo, _ := maxprocs.Set(maxprocs.Logger(env.Logger.Debugf))

	ctx, stop := signal.NotifyContext(context.Background(), shutdownSignals...)
	code := run(ctx, os.Args[1:], env)
	stop()
	undo()

	os.Exit(code)
}

// run dispatches a command and returns the process exit code.
func run(ctx context.Context, args []string, env *Environment) int {
	if len(args) == 0 {
		printUsage(env.Stderr)
		return ExitUsage
	}

	cmd, rest := args[0], args[1:]

	var err error
	switch cmd {
	case "convert":
		err = runConvertCmd(ctx, rest, env)
	case "watch":
		err = runWatchCmd(ctx, rest, env)
	case "doctor":
		return runDoctorCmd(rest, env)
	case "version", "--version":
		fmt.Fprintf(env.Stdout, "cfextrato %s\n", Version)
		return ExitSuccess
	case "help", "-h", "--help":
		return runHelp(rest, env)
	default:
		fmt.Fprintf(env.Stderr, "unknown command: %s\n\n", cmd)
		printUsage(env.Stderr)
		return ExitUsage
	}

	if err == nil || errors.Is(err, flag.ErrHelp) {
		return ExitSuccess
	}

	fmt.Fprintf(env.Stderr, "error: %v%s\n", err, hintFor(err))
	return exitCodeFor(err)
}
