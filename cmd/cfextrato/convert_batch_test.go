package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	cfextrato "github.com/alnah/go-cfextrato"
)

var discardLog = newLogger(io.Discard, logrus.DebugLevel)

// ---------------------------------------------------------------------------
// TestConvertFile - Single file conversion
// ---------------------------------------------------------------------------

func TestConvertFile_WritesPDFNamedAfterID(t *testing.T) {
	t.Parallel()

	in := t.TempDir()
	out := filepath.Join(t.TempDir(), "nested", "out")
	path := writeFile(t, in, "123.xml", "<CFe/>")

	conv := &mockConverter{}
	r := convertFile(context.Background(), conv, path, &conversionParams{outputDir: out, notice: "app"})
	if r.Err != nil {
		t.Fatalf("convertFile() error: %v", r.Err)
	}

	want := filepath.Join(out, "CFe123.pdf")
	if r.OutputPath != want {
		t.Errorf("OutputPath = %q, want %q", r.OutputPath, want)
	}
	if _, err := os.Stat(want); err != nil {
		t.Errorf("PDF not written: %v", err)
	}
	if _, err := os.Stat(filepath.Join(out, "CFe123.html")); !os.IsNotExist(err) {
		t.Error("HTML should not be written without --html")
	}

	calls := conv.Calls()
	if len(calls) != 1 {
		t.Fatalf("Convert called %d times, want 1", len(calls))
	}
	if calls[0].Source != path || calls[0].AppQueryNotice != "app" {
		t.Errorf("Input = %+v", calls[0])
	}
}

func TestConvertFile_DefaultsToInputDir(t *testing.T) {
	t.Parallel()

	in := t.TempDir()
	path := writeFile(t, in, "7.xml", "<CFe/>")

	r := convertFile(context.Background(), &mockConverter{}, path, &conversionParams{})
	if r.Err != nil {
		t.Fatalf("convertFile() error: %v", r.Err)
	}
	if r.OutputPath != filepath.Join(in, "CFe7.pdf") {
		t.Errorf("OutputPath = %q, want next to input", r.OutputPath)
	}
}

func TestConvertFile_HTMLModes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		params   conversionParams
		wantPDF  bool
		wantHTML bool
		wantExt  string
	}{
		{name: "pdf only", params: conversionParams{}, wantPDF: true, wantExt: ".pdf"},
		{name: "html alongside", params: conversionParams{html: true}, wantPDF: true, wantHTML: true, wantExt: ".pdf"},
		{name: "html only", params: conversionParams{htmlOnly: true}, wantHTML: true, wantExt: ".html"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			dir := t.TempDir()
			path := writeFile(t, dir, "9.xml", "<CFe/>")
			params := tt.params

			conv := &mockConverter{}
			r := convertFile(context.Background(), conv, path, &params)
			if r.Err != nil {
				t.Fatalf("convertFile() error: %v", r.Err)
			}
			if filepath.Ext(r.OutputPath) != tt.wantExt {
				t.Errorf("OutputPath = %q, want %s extension", r.OutputPath, tt.wantExt)
			}

			_, pdfErr := os.Stat(filepath.Join(dir, "CFe9.pdf"))
			if (pdfErr == nil) != tt.wantPDF {
				t.Errorf("PDF exists = %v, want %v", pdfErr == nil, tt.wantPDF)
			}
			html, htmlErr := os.ReadFile(filepath.Join(dir, "CFe9.html"))
			if (htmlErr == nil) != tt.wantHTML {
				t.Errorf("HTML exists = %v, want %v", htmlErr == nil, tt.wantHTML)
			}
			if tt.wantHTML && !strings.Contains(string(html), "CFe9") {
				t.Errorf("HTML content = %q", html)
			}

			if got := conv.Calls()[0]; got.HTMLOnly != tt.params.htmlOnly || (got.Download == nil) != tt.params.htmlOnly {
				t.Errorf("Input HTMLOnly = %v, Download set = %v", got.HTMLOnly, got.Download != nil)
			}
		})
	}
}

func TestConvertFile_Errors(t *testing.T) {
	t.Parallel()

	t.Run("converter error", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		path := writeFile(t, dir, "bad.xml", "<CFe/>")
		conv := &mockConverter{errFor: map[string]error{"bad.xml": cfextrato.ErrMalformedDocument}}

		r := convertFile(context.Background(), conv, path, &conversionParams{})
		if !errors.Is(r.Err, cfextrato.ErrMalformedDocument) {
			t.Errorf("Err = %v, want ErrMalformedDocument", r.Err)
		}
		if r.OutputPath != "" {
			t.Errorf("OutputPath = %q, want empty on failure", r.OutputPath)
		}
	})

	t.Run("output dir is a file", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		path := writeFile(t, dir, "1.xml", "<CFe/>")
		blocker := writeFile(t, dir, "blocker", "x")

		r := convertFile(context.Background(), &mockConverter{}, path, &conversionParams{outputDir: filepath.Join(blocker, "out")})
		if !errors.Is(r.Err, ErrWriteOutput) {
			t.Errorf("Err = %v, want ErrWriteOutput", r.Err)
		}
	})
}

// ---------------------------------------------------------------------------
// TestConvertBatch - Concurrent batch conversion
// ---------------------------------------------------------------------------

func TestConvertBatch(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	var files []string
	for i := 1; i <= 5; i++ {
		files = append(files, writeFile(t, dir, fmt.Sprintf("%d.xml", i), "<CFe/>"))
	}

	conv := &mockConverter{errFor: map[string]error{"3.xml": cfextrato.ErrUnsupportedDate}}
	pool := &mockPool{conv: conv, size: 3}

	results := convertBatch(context.Background(), pool, files, &conversionParams{}, discardLog)

	if len(results) != len(files) {
		t.Fatalf("got %d results, want %d", len(results), len(files))
	}
	for i, r := range results {
		if r.InputPath != files[i] {
			t.Errorf("results[%d].InputPath = %q, want %q (order kept)", i, r.InputPath, files[i])
		}
	}
	if !errors.Is(results[2].Err, cfextrato.ErrUnsupportedDate) {
		t.Errorf("results[2].Err = %v, want ErrUnsupportedDate", results[2].Err)
	}

	if ok, failed := tally(results); ok != 4 || failed != 1 {
		t.Errorf("tally = %d/%d, want 4 succeeded, 1 failed", ok, failed)
	}

	acquired, released := pool.counts()
	if acquired != 3 || released != 3 {
		t.Errorf("acquired/released = %d/%d, want 3/3 (one per worker)", acquired, released)
	}
}

func TestConvertBatch_Empty(t *testing.T) {
	t.Parallel()

	if got := convertBatch(context.Background(), &mockPool{size: 2}, nil, &conversionParams{}, discardLog); got != nil {
		t.Errorf("convertBatch(nil) = %v, want nil", got)
	}
}

func TestConvertBatch_AcquireError(t *testing.T) {
	t.Parallel()

	files := []string{"a.xml", "b.xml"}
	pool := &mockPool{size: 1, acquireErr: cfextrato.ErrPoolClosed}

	results := convertBatch(context.Background(), pool, files, &conversionParams{}, discardLog)
	for _, r := range results {
		if !errors.Is(r.Err, cfextrato.ErrPoolClosed) {
			t.Errorf("%s: Err = %v, want ErrPoolClosed", r.InputPath, r.Err)
		}
	}
}

func TestConvertBatch_CanceledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	conv := &mockConverter{}
	results := convertBatch(ctx, &mockPool{conv: conv, size: 2}, []string{"a.xml", "b.xml"}, &conversionParams{}, discardLog)

	for _, r := range results {
		if !errors.Is(r.Err, context.Canceled) {
			t.Errorf("%s: Err = %v, want context.Canceled", r.InputPath, r.Err)
		}
	}
	if n := len(conv.Calls()); n != 0 {
		t.Errorf("Convert called %d times after cancel, want 0", n)
	}
}

// ---------------------------------------------------------------------------
// TestReportResults - Result reporting
// ---------------------------------------------------------------------------

func TestReportResults(t *testing.T) {
	t.Parallel()

	results := []ConversionResult{
		{InputPath: "a.xml", OutputPath: "out/CFea.pdf", Duration: 1500 * time.Microsecond},
		{InputPath: "b.xml", Err: cfextrato.ErrMalformedDocument},
	}

	tests := []struct {
		name          string
		quiet         bool
		verbose       bool
		wantStdout    []string
		notWantStdout []string
	}{
		{
			name:       "default",
			wantStdout: []string{"Created out/CFea.pdf", "1 succeeded, 1 failed"},
		},
		{
			name:       "verbose",
			verbose:    true,
			wantStdout: []string{"a.xml -> out/CFea.pdf (2ms)"},
		},
		{
			name:          "quiet",
			quiet:         true,
			notWantStdout: []string{"Created", "succeeded"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			env, stdout, stderr := testEnv()
			failed := reportResults(results, tt.quiet, tt.verbose, env)
			if failed != 1 {
				t.Errorf("failed = %d, want 1", failed)
			}

			for _, s := range tt.wantStdout {
				if !strings.Contains(stdout.String(), s) {
					t.Errorf("stdout missing %q:\n%s", s, stdout.String())
				}
			}
			for _, s := range tt.notWantStdout {
				if strings.Contains(stdout.String(), s) {
					t.Errorf("stdout should not contain %q:\n%s", s, stdout.String())
				}
			}

			// Failures are always reported, with a hint.
			if !strings.Contains(stderr.String(), "FAILED b.xml") {
				t.Errorf("stderr missing failure line:\n%s", stderr.String())
			}
			if !strings.Contains(stderr.String(), "hint:") {
				t.Errorf("stderr missing hint:\n%s", stderr.String())
			}
		})
	}
}

func TestReportResults_SingleFileNoSummary(t *testing.T) {
	t.Parallel()

	env, stdout, _ := testEnv()
	reportResults([]ConversionResult{{InputPath: "a.xml", OutputPath: "a.pdf"}}, false, false, env)

	if strings.Contains(stdout.String(), "succeeded") {
		t.Errorf("single result should not print a summary:\n%s", stdout.String())
	}
}

// ---------------------------------------------------------------------------
// TestNewBatchError - Batch failure reporting
// ---------------------------------------------------------------------------

func TestNewBatchError(t *testing.T) {
	t.Parallel()

	if err := newBatchError([]ConversionResult{{InputPath: "a.xml"}}); err != nil {
		t.Errorf("all succeeded: err = %v, want nil", err)
	}

	err := newBatchError([]ConversionResult{
		{InputPath: "a.xml"},
		{InputPath: "b.xml", Err: fmt.Errorf("%w: missing ide", cfextrato.ErrMalformedDocument)},
		{InputPath: "c.xml", Err: cfextrato.ErrLogoRead},
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if err.Error() != "2 of 3 conversion(s) failed" {
		t.Errorf("Error() = %q", err.Error())
	}
	if !errors.Is(err, cfextrato.ErrMalformedDocument) {
		t.Error("batch error should unwrap to the first failure")
	}
	if got := exitCodeFor(err); got != ExitMalformed {
		t.Errorf("exitCodeFor = %d, want %d", got, ExitMalformed)
	}
	if hint := hintFor(err); hint != "" {
		t.Errorf("hintFor(batch) = %q, want none", hint)
	}
}
