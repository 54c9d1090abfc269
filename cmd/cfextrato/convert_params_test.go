package main

import (
	"errors"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	cfextrato "github.com/alnah/go-cfextrato"
	"github.com/alnah/go-cfextrato/internal/config"
	"github.com/alnah/go-cfextrato/internal/dateutil"
)

const sampleConfig = `output:
  dir: "/file/out"
receipt:
  notice: "file notice"
  logo: "/file/logo.png"
pdf:
  backend: fpdf
  timeout: "20s"
workers: 2
`

// writeConfig writes a YAML config into a temp dir and returns its path.
func writeConfig(t *testing.T, content string) string {
	t.Helper()
	return writeFile(t, t.TempDir(), "cfextrato.yaml", content)
}

// ---------------------------------------------------------------------------
// TestResolveConfig - Flags > env > file > defaults
// ---------------------------------------------------------------------------

func TestResolveConfig_Defaults(t *testing.T) {
	t.Parallel()

	cfg, err := resolveConfig(&convertFlags{}, &envSettings{})
	if err != nil {
		t.Fatalf("resolveConfig() error: %v", err)
	}
	if cfg.PDF.Backend != cfextrato.BackendRod {
		t.Errorf("Backend = %q, want rod", cfg.PDF.Backend)
	}
	if cfg.Receipt.DateFormat != dateutil.DefaultDateFormat {
		t.Errorf("DateFormat = %q, want default", cfg.Receipt.DateFormat)
	}
}

func TestResolveConfig_Precedence(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, sampleConfig)

	flags := &convertFlags{
		common: commonFlags{config: path},
		pdf:    pdfFlags{backend: "rod"},
	}
	env := &envSettings{
		Notice:  "env notice",
		Backend: "fpdf",
		Timeout: "40s",
	}

	cfg, err := resolveConfig(flags, env)
	if err != nil {
		t.Fatalf("resolveConfig() error: %v", err)
	}

	tests := []struct {
		field string
		got   string
		want  string
	}{
		{"backend (flag over env over file)", cfg.PDF.Backend, "rod"},
		{"notice (env over file)", cfg.Receipt.Notice, "env notice"},
		{"timeout (env over file)", cfg.PDF.Timeout, "40s"},
		{"logo (file)", cfg.Receipt.Logo, "/file/logo.png"},
		{"output dir (file)", cfg.Output.Dir, "/file/out"},
		{"date format (default fills file gap)", cfg.Receipt.DateFormat, dateutil.DefaultDateFormat},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s = %q, want %q", tt.field, tt.got, tt.want)
		}
	}
	if cfg.Workers != 2 {
		t.Errorf("Workers = %d, want 2 from file", cfg.Workers)
	}
}

func TestResolveConfig_ConfigFromEnv(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, "receipt:\n  notice: \"from file\"\n")

	cfg, err := resolveConfig(&convertFlags{}, &envSettings{ConfigPath: path})
	if err != nil {
		t.Fatalf("resolveConfig() error: %v", err)
	}
	if cfg.Receipt.Notice != "from file" {
		t.Errorf("Notice = %q, want value from CFEXTRATO_CONFIG file", cfg.Receipt.Notice)
	}
	if cfg.PDF.Backend != cfextrato.BackendRod {
		t.Errorf("Backend = %q, want default rod", cfg.PDF.Backend)
	}
}

func TestResolveConfig_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		flags    *convertFlags
		env      *envSettings
		wantErr  error
		contains string
	}{
		{
			name:    "negative workers",
			flags:   &convertFlags{workers: -1},
			env:     &envSettings{},
			wantErr: ErrInvalidWorkerCount,
		},
		{
			name:    "too many workers",
			flags:   &convertFlags{workers: config.MaxWorkers + 1},
			env:     &envSettings{},
			wantErr: ErrInvalidWorkerCount,
		},
		{
			name:     "config name not found",
			flags:    &convertFlags{common: commonFlags{config: "cfextrato-missing-config"}},
			env:      &envSettings{},
			wantErr:  config.ErrConfigNotFound,
			contains: "hint: use --config",
		},
		{
			name:    "config path not found",
			flags:   &convertFlags{common: commonFlags{config: "./missing/cfextrato.yaml"}},
			env:     &envSettings{},
			wantErr: config.ErrConfigNotFound,
		},
		{
			name:    "invalid backend from env",
			flags:   &convertFlags{},
			env:     &envSettings{Backend: "dompdf"},
			wantErr: config.ErrInvalidValue,
		},
		{
			name:    "invalid timeout flag",
			flags:   &convertFlags{pdf: pdfFlags{timeout: "soon"}},
			env:     &envSettings{},
			wantErr: config.ErrInvalidValue,
		},
		{
			name:    "invalid date format flag",
			flags:   &convertFlags{receipt: receiptFlags{dateFormat: "[DD"}},
			env:     &envSettings{},
			wantErr: dateutil.ErrInvalidDateFormat,
		},
		{
			name:    "env workers out of range",
			flags:   &convertFlags{},
			env:     &envSettings{Workers: config.MaxWorkers + 1},
			wantErr: config.ErrInvalidValue,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := resolveConfig(tt.flags, tt.env)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("error = %v, want %v", err, tt.wantErr)
			}
			if tt.contains != "" && !strings.Contains(err.Error(), tt.contains) {
				t.Errorf("error %q should contain %q", err, tt.contains)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestMergeFlags - CLI values override config values
// ---------------------------------------------------------------------------

func TestMergeFlags(t *testing.T) {
	t.Parallel()

	cfg := config.DefaultConfig()
	cfg.Receipt.Notice = "from config"
	cfg.Workers = 3

	mergeFlags(&convertFlags{
		output:     "/out",
		workers:    5,
		receipt:    receiptFlags{logo: "logo.png", dateFormat: "iso"},
		assets:     assetFlags{style: "none", assetPath: "/assets"},
		pdf:        pdfFlags{backend: "fpdf", timeout: "1m"},
		outputMode: outputFlags{html: true, htmlOnly: true},
	}, cfg)

	if cfg.Output.Dir != "/out" || !cfg.Output.HTML || !cfg.Output.HTMLOnly {
		t.Errorf("Output = %+v", cfg.Output)
	}
	if cfg.Workers != 5 {
		t.Errorf("Workers = %d, want 5", cfg.Workers)
	}
	if cfg.Receipt.Logo != "logo.png" || cfg.Receipt.DateFormat != "iso" {
		t.Errorf("Receipt = %+v", cfg.Receipt)
	}
	if cfg.Receipt.Notice != "from config" {
		t.Errorf("Notice = %q, empty flag should keep config value", cfg.Receipt.Notice)
	}
	if cfg.Assets.Style != "none" || cfg.Assets.BasePath != "/assets" {
		t.Errorf("Assets = %+v", cfg.Assets)
	}
	if cfg.PDF.Backend != "fpdf" || cfg.PDF.Timeout != "1m" {
		t.Errorf("PDF = %+v", cfg.PDF)
	}
}

func TestMergeFlags_ZeroWorkersKeepsConfig(t *testing.T) {
	t.Parallel()

	cfg := &config.Config{Workers: 4}
	mergeFlags(&convertFlags{}, cfg)
	if cfg.Workers != 4 {
		t.Errorf("Workers = %d, want 4 (0 means not set)", cfg.Workers)
	}
}

// ---------------------------------------------------------------------------
// TestConverterOptions - Config to library options
// ---------------------------------------------------------------------------

func TestConverterOptions(t *testing.T) {
	t.Parallel()

	cfg := config.DefaultConfig()
	cfg.PDF.Backend = "fpdf"
	cfg.PDF.Timeout = "5s"
	cfg.Assets.Style = cfextrato.NoStyle

	opts, err := converterOptions(cfg)
	if err != nil {
		t.Fatalf("converterOptions() error: %v", err)
	}

	conv, err := cfextrato.NewConverter(opts...)
	if err != nil {
		t.Fatalf("NewConverter() error: %v", err)
	}
	defer conv.Close()

	if conv.Backend() != cfextrato.BackendFPDF {
		t.Errorf("Backend() = %q, want fpdf", conv.Backend())
	}
}

func TestConverterOptions_InvalidTimeout(t *testing.T) {
	t.Parallel()

	cfg := config.DefaultConfig()
	cfg.PDF.Timeout = "-3s"

	if _, err := converterOptions(cfg); !errors.Is(err, config.ErrInvalidValue) {
		t.Errorf("error = %v, want ErrInvalidValue", err)
	}
}

func TestConverterOptions_BadAssetPath(t *testing.T) {
	t.Parallel()

	cfg := config.DefaultConfig()
	cfg.Assets.BasePath = filepath.Join(t.TempDir(), "missing")

	opts, err := converterOptions(cfg)
	if err != nil {
		t.Fatalf("converterOptions() error: %v", err)
	}
	if _, err := cfextrato.NewConverter(opts...); !errors.Is(err, cfextrato.ErrInvalidAssetPath) {
		t.Errorf("NewConverter() error = %v, want ErrInvalidAssetPath", err)
	}
}

// ---------------------------------------------------------------------------
// TestBuildParams - Logo loaded once
// ---------------------------------------------------------------------------

func TestBuildParams(t *testing.T) {
	t.Parallel()

	logoPath := filepath.Join(t.TempDir(), "logo.png")
	f, err := os.Create(logoPath)
	if err != nil {
		t.Fatal(err)
	}
	if err := png.Encode(f, image.NewGray(image.Rect(0, 0, 2, 2))); err != nil {
		t.Fatal(err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}

	cfg := config.DefaultConfig()
	cfg.Receipt.Logo = logoPath
	cfg.Receipt.Notice = "notice"
	cfg.Output = config.OutputConfig{Dir: "/out", HTML: true}

	params, err := buildParams(cfg)
	if err != nil {
		t.Fatalf("buildParams() error: %v", err)
	}
	if params.logo == nil || params.logo.MIMEType != "image/png" {
		t.Errorf("logo = %+v, want loaded PNG", params.logo)
	}
	if params.notice != "notice" || params.outputDir != "/out" || !params.html || params.htmlOnly {
		t.Errorf("params = %+v", params)
	}
}

func TestBuildParams_MissingLogo(t *testing.T) {
	t.Parallel()

	cfg := config.DefaultConfig()
	cfg.Receipt.Logo = filepath.Join(t.TempDir(), "missing.png")

	if _, err := buildParams(cfg); !errors.Is(err, cfextrato.ErrLogoRead) {
		t.Errorf("error = %v, want ErrLogoRead", err)
	}
}

func TestBuildParams_NoLogo(t *testing.T) {
	t.Parallel()

	params, err := buildParams(config.DefaultConfig())
	if err != nil {
		t.Fatalf("buildParams() error: %v", err)
	}
	if params.logo != nil {
		t.Error("logo should be nil when not configured")
	}
}
