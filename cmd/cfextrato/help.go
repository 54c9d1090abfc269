package main

import (
	"fmt"
	"io"
)

// printUsage prints the main usage message.
func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: cfextrato <command> [flags] [args]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  convert    Render CFe-SAT XML receipts as PDF")
	fmt.Fprintln(w, "  watch      Render receipts dropped into a directory")
	fmt.Fprintln(w, "  doctor     Check the browser and environment")
	fmt.Fprintln(w, "  version    Show version information")
	fmt.Fprintln(w, "  help       Show help for a command")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run 'cfextrato help <command>' for details on a specific command.")
}

// printConversionFlags prints the flags shared by convert and watch.
func printConversionFlags(w io.Writer) {
	fmt.Fprintln(w, "Input/Output:")
	fmt.Fprintln(w, "  -o, --output <dir>        Output directory (default: next to each input)")
	fmt.Fprintln(w, "  -c, --config <name>       Config file name or path")
	fmt.Fprintln(w, "  -w, --workers <n>         Parallel workers (0 = auto)")
	fmt.Fprintln(w, "      --html                Also write <Id>.html")
	fmt.Fprintln(w, "      --html-only           Write HTML only, skip PDF")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Receipt:")
	fmt.Fprintln(w, "      --logo <path>         Logo image printed at the top")
	fmt.Fprintln(w, "      --notice <s>          App-query notice under the QR code (inline Markdown)")
	fmt.Fprintln(w, "      --date-format <s>     Emission date layout")
	fmt.Fprintln(w, "                            Tokens: YYYY, YY, MMMM, MMM, MM, M, DD, D, HH, mm, ss")
	fmt.Fprintln(w, "                            Presets (case-insensitive): br, iso, date, european, us")
	fmt.Fprintln(w, "                            Use [text] to escape literals")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Rendering:")
	fmt.Fprintln(w, "      --style <s>           CSS style name, file path, or \"none\"")
	fmt.Fprintln(w, "      --assets <dir>        Custom template/style directory")
	fmt.Fprintln(w, "      --backend <s>         PDF backend: rod (Chrome), fpdf (no browser)")
	fmt.Fprintln(w, "  -t, --timeout <d>         PDF generation timeout (e.g., 30s, 2m)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Output Control:")
	fmt.Fprintln(w, "  -q, --quiet               Only show errors")
	fmt.Fprintln(w, "  -v, --verbose             Debug logging and timings")
}

// printConvertUsage prints usage for the convert command.
func printConvertUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: cfextrato convert <file|dir> [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Render CFe-SAT XML receipts as PDF. Each output is named after infCFe/@Id.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Arguments:")
	fmt.Fprintln(w, "  input    XML file, or directory searched recursively for *.xml")
	fmt.Fprintln(w)
	printConversionFlags(w)
	fmt.Fprintln(w)
	printEnvironmentHelp(w)
}

// printWatchUsage prints usage for the watch command.
func printWatchUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: cfextrato watch <dir> [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Render every .xml file created or written in a directory until interrupted.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Watch:")
	fmt.Fprintln(w, "      --existing            Also render files already in the directory")
	fmt.Fprintln(w)
	printConversionFlags(w)
	fmt.Fprintln(w)
	printEnvironmentHelp(w)
}

// printDoctorUsage prints usage for the doctor command.
func printDoctorUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: cfextrato doctor [--json]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Check Chrome discovery, sandbox settings, and the temp directory.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	fmt.Fprintln(w, "      --json                Machine-readable output")
}

// printEnvironmentHelp lists the environment variables.
func printEnvironmentHelp(w io.Writer) {
	fmt.Fprintln(w, "Environment (flags win; a .env file in the working directory is read first):")
	fmt.Fprintln(w, "  CFEXTRATO_CONFIG, CFEXTRATO_LOGO, CFEXTRATO_NOTICE, CFEXTRATO_BACKEND,")
	fmt.Fprintln(w, "  CFEXTRATO_TIMEOUT, CFEXTRATO_WORKERS, CFEXTRATO_OUTPUT_DIR, CFEXTRATO_LOG_LEVEL")
}

// runHelp prints help for a specific command.
func runHelp(args []string, env *Environment) int {
	if len(args) == 0 {
		printUsage(env.Stdout)
		return ExitSuccess
	}

	switch args[0] {
	case "convert":
		printConvertUsage(env.Stdout)
	case "watch":
		printWatchUsage(env.Stdout)
	case "doctor":
		printDoctorUsage(env.Stdout)
	case "version":
		fmt.Fprintln(env.Stdout, "Usage: cfextrato version")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show version information.")
	case "help":
		fmt.Fprintln(env.Stdout, "Usage: cfextrato help [command]")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show help for a command.")
	default:
		fmt.Fprintf(env.Stderr, "Unknown command: %s\n", args[0])
		printUsage(env.Stderr)
		return ExitUsage
	}
	return ExitSuccess
}
