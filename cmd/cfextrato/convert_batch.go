package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	cfextrato "github.com/alnah/go-cfextrato"
)

const (
	dirPermissions  = 0o750
	filePermissions = 0o644
)

// ErrWriteOutput indicates an output directory or HTML file could not be written.
var ErrWriteOutput = errors.New("failed to write output")

// ConversionResult is the outcome of one receipt.
type ConversionResult struct {
	InputPath  string
	OutputPath string
	Err        error
	Duration   time.Duration
}

// batch converts files with one worker per pooled converter.
type batch struct {
	pool    Pool
	files   []string
	params  *conversionParams
	log     logrus.FieldLogger
	results []ConversionResult
}

// convertBatch converts files concurrently. results[i] belongs to files[i].
func convertBatch(ctx context.Context, pool Pool, files []string, params *conversionParams, log logrus.FieldLogger) []ConversionResult {
	if len(files) == 0 {
		return nil
	}
	b := &batch{
		pool:    pool,
		files:   files,
		params:  params,
		log:     log,
		results: make([]ConversionResult, len(files)),
	}

	jobs := make(chan int, len(files))
	for i := range files {
		jobs <- i
	}
	close(jobs)

	var wg sync.WaitGroup
	for range min(pool.Size(), len(files)) {
		wg.Go(func() { b.work(ctx, jobs) })
	}
	wg.Wait()
	return b.results
}

// work drains jobs with a single converter. When none can be acquired, the
// jobs this worker takes fail with the acquire error.
func (b *batch) work(ctx context.Context, jobs <-chan int) {
	conv, err := b.pool.Acquire(ctx)
	if err != nil {
		for i := range jobs {
			b.results[i] = ConversionResult{InputPath: b.files[i], Err: err}
		}
		return
	}
	defer b.pool.Release(conv)

	for i := range jobs {
		if err := ctx.Err(); err != nil {
			b.results[i] = ConversionResult{InputPath: b.files[i], Err: err}
			continue
		}
		b.results[i] = convertFile(ctx, conv, b.files[i], b.params)
		logResult(b.log, b.results[i])
	}
}

// convertFile renders one receipt. The PDF is streamed to <dir>/<Id>.pdf by a
// FileDownload; the HTML, when requested, is written to <dir>/<Id>.html.
func convertFile(ctx context.Context, conv CLIConverter, path string, params *conversionParams) ConversionResult {
	start := time.Now()
	result := ConversionResult{InputPath: path}
	done := func(err error) ConversionResult {
		result.Err = err
		result.Duration = time.Since(start)
		return result
	}

	dir := outputDirFor(path, params.outputDir)
	if err := os.MkdirAll(dir, dirPermissions); err != nil {
		return done(fmt.Errorf("%w: creating %s: %v", ErrWriteOutput, dir, err))
	}

	download := cfextrato.FileDownload{Dir: dir}
	input := cfextrato.Input{
		Source:         path,
		Logo:           params.logo,
		AppQueryNotice: params.notice,
		HTMLOnly:       params.htmlOnly,
	}
	if !params.htmlOnly {
		input.Download = download
	}

	res, err := conv.Convert(ctx, input)
	if err != nil {
		return done(err)
	}

	if params.htmlOnly || params.html {
		htmlPath := filepath.Join(dir, res.View.DocumentID+".html")
		// #nosec G306 -- HTML files are meant to be readable
		if err := os.WriteFile(htmlPath, res.HTML, filePermissions); err != nil {
			return done(fmt.Errorf("%w: %v", ErrWriteOutput, err))
		}
		if params.htmlOnly {
			result.OutputPath = htmlPath
			return done(nil)
		}
	}

	result.OutputPath = download.Path(res.View.DocumentID)
	return done(nil)
}

// logResult records one conversion at debug level, or as an error.
func logResult(log logrus.FieldLogger, r ConversionResult) {
	entry := log.WithFields(logrus.Fields{
		"file":     r.InputPath,
		"duration": r.Duration.Round(time.Millisecond),
	})
	if r.Err != nil {
		entry.WithError(r.Err).Debug("conversion failed")
		return
	}
	entry.WithField("output", r.OutputPath).Debug("conversion done")
}

// tally counts succeeded and failed results.
func tally(results []ConversionResult) (succeeded, failed int) {
	for _, r := range results {
		if r.Err != nil {
			failed++
		} else {
			succeeded++
		}
	}
	return succeeded, failed
}

// reportResults prints one line per result and, for batches, a summary.
// Failures go to stderr even in quiet mode. It returns the failure count.
func reportResults(results []ConversionResult, quiet, verbose bool, env *Environment) int {
	for _, r := range results {
		switch {
		case r.Err != nil:
			fmt.Fprintf(env.Stderr, "FAILED %s: %v%s\n", r.InputPath, r.Err, hintFor(r.Err))
		case quiet:
		case verbose:
			fmt.Fprintf(env.Stdout, "%s -> %s (%v)\n", r.InputPath, r.OutputPath, r.Duration.Round(time.Millisecond))
		default:
			fmt.Fprintf(env.Stdout, "Created %s\n", r.OutputPath)
		}
	}

	succeeded, failed := tally(results)
	if !quiet && len(results) > 1 {
		fmt.Fprintf(env.Stdout, "\n%d succeeded, %d failed\n", succeeded, failed)
	}
	return failed
}

// batchError reports failed conversions. It unwraps to the first failure so
// the exit code reflects its kind.
type batchError struct {
	failed int
	total  int
	first  error
}

func (e *batchError) Error() string {
	return fmt.Sprintf("%d of %d conversion(s) failed", e.failed, e.total)
}

func (e *batchError) Unwrap() error {
	return e.first
}

// newBatchError returns nil when every result succeeded.
func newBatchError(results []ConversionResult) error {
	var first error
	failed := 0
	for _, r := range results {
		if r.Err == nil {
			continue
		}
		if first == nil {
			first = r.Err
		}
		failed++
	}
	if failed == 0 {
		return nil
	}
	return &batchError{failed: failed, total: len(results), first: first}
}
