package main

import (
	"errors"
	"fmt"
	"io"

	flag "github.com/spf13/pflag"
)

// ErrUsage marks invalid command lines (unknown flag, missing argument).
var ErrUsage = errors.New("invalid usage")

// commonFlags holds flags shared across commands.
type commonFlags struct {
	config  string
	quiet   bool
	verbose bool
}

// receiptFlags holds what is printed on every receipt.
type receiptFlags struct {
	logo       string
	notice     string
	dateFormat string
}

// assetFlags holds asset-related flags.
type assetFlags struct {
	style     string // style name, CSS file path, or "none"
	assetPath string // override asset directory
}

// pdfFlags holds PDF backend flags.
type pdfFlags struct {
	backend string
	timeout string
}

// outputFlags holds output mode flags.
type outputFlags struct {
	html     bool // write HTML alongside PDF
	htmlOnly bool // write HTML only, skip PDF
}

// convertFlags holds all flags for the convert and watch commands.
type convertFlags struct {
	common     commonFlags
	output     string
	workers    int
	receipt    receiptFlags
	assets     assetFlags
	pdf        pdfFlags
	outputMode outputFlags
	existing   bool // watch only: render files already in the directory
}

// addCommonFlags adds common flags to a FlagSet.
func addCommonFlags(fs *flag.FlagSet, f *commonFlags) {
	fs.StringVarP(&f.config, "config", "c", "", "config file name or path")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "only show errors")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "debug logging and timings")
}

// addReceiptFlags adds receipt content flags to a FlagSet.
func addReceiptFlags(fs *flag.FlagSet, f *receiptFlags) {
	fs.StringVar(&f.logo, "logo", "", "logo image printed at the top")
	fs.StringVar(&f.notice, "notice", "", "app-query notice under the QR code (inline Markdown)")
	fs.StringVar(&f.dateFormat, "date-format", "", "emission date layout: preset or tokens")
}

// addAssetFlags adds asset-related flags to a FlagSet.
func addAssetFlags(fs *flag.FlagSet, f *assetFlags) {
	fs.StringVar(&f.style, "style", "", "CSS style name, file path, or \"none\"")
	fs.StringVar(&f.assetPath, "assets", "", "custom asset directory")
}

// addPDFFlags adds PDF backend flags to a FlagSet.
func addPDFFlags(fs *flag.FlagSet, f *pdfFlags) {
	fs.StringVar(&f.backend, "backend", "", "PDF backend: rod, fpdf")
	fs.StringVarP(&f.timeout, "timeout", "t", "", "PDF generation timeout (e.g., 30s, 2m)")
}

// addOutputFlags adds output mode flags to a FlagSet.
func addOutputFlags(fs *flag.FlagSet, f *outputFlags) {
	fs.BoolVar(&f.html, "html", false, "write HTML alongside PDF")
	fs.BoolVar(&f.htmlOnly, "html-only", false, "write HTML only, skip PDF")
}

// newConvertFlagSet registers the flags shared by convert and watch.
func newConvertFlagSet(name string, f *convertFlags) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)

	fs.StringVarP(&f.output, "output", "o", "", "output directory (default: next to each input)")
	fs.IntVarP(&f.workers, "workers", "w", 0, "parallel workers (0 = auto)")

	addCommonFlags(fs, &f.common)
	addReceiptFlags(fs, &f.receipt)
	addAssetFlags(fs, &f.assets)
	addPDFFlags(fs, &f.pdf)
	addOutputFlags(fs, &f.outputMode)

	return fs
}

// parseConvertFlags parses convert command flags and returns positional args.
func parseConvertFlags(args []string, stderr io.Writer) (*convertFlags, []string, error) {
	f := &convertFlags{}
	fs := newConvertFlagSet("convert", f)
	fs.SetOutput(stderr)
	fs.Usage = func() { printConvertUsage(stderr) }

	if err := parseFlagSet(fs, args); err != nil {
		return nil, nil, err
	}
	return f, fs.Args(), nil
}

// parseWatchFlags parses watch command flags and returns positional args.
func parseWatchFlags(args []string, stderr io.Writer) (*convertFlags, []string, error) {
	f := &convertFlags{}
	fs := newConvertFlagSet("watch", f)
	fs.BoolVar(&f.existing, "existing", false, "also render XML files already in the directory")
	fs.SetOutput(stderr)
	fs.Usage = func() { printWatchUsage(stderr) }

	if err := parseFlagSet(fs, args); err != nil {
		return nil, nil, err
	}
	return f, fs.Args(), nil
}

// parseFlagSet wraps parse failures in ErrUsage. ErrHelp is passed through.
func parseFlagSet(fs *flag.FlagSet, args []string) error {
	err := fs.Parse(args)
	if err == nil || errors.Is(err, flag.ErrHelp) {
		return err
	}
	return fmt.Errorf("%w: %v", ErrUsage, err)
}
