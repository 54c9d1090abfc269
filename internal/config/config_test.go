package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()

	if cfg.PDF.Backend != "rod" {
		t.Errorf("PDF.Backend = %q, want rod", cfg.PDF.Backend)
	}
	if cfg.Receipt.DateFormat == "" {
		t.Error("Receipt.DateFormat should default to the receipt layout")
	}
	if cfg.Assets.BasePath != "" {
		t.Errorf("Assets.BasePath = %q, want empty", cfg.Assets.BasePath)
	}
	if cfg.Workers != 0 {
		t.Errorf("Workers = %d, want 0 (auto)", cfg.Workers)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("DefaultConfig().Validate() = %v", err)
	}
}

func TestValidateFieldLength(t *testing.T) {
	t.Parallel()

	if err := validateFieldLength("f", "1234567890", 10); err != nil {
		t.Errorf("value at limit: unexpected error %v", err)
	}
	err := validateFieldLength("receipt.notice", "12345678901", 10)
	if !errors.Is(err, ErrFieldTooLong) {
		t.Fatalf("error = %v, want ErrFieldTooLong", err)
	}
	if !strings.Contains(err.Error(), "receipt.notice") {
		t.Errorf("error %q should name the field", err)
	}
}

func TestConfig_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
		anyErr  bool
	}{
		{name: "zero config", mutate: func(*Config) {}},
		{name: "fpdf backend", mutate: func(c *Config) { c.PDF.Backend = "fpdf" }},
		{name: "backend is case-insensitive", mutate: func(c *Config) { c.PDF.Backend = "ROD" }},
		{name: "timeout", mutate: func(c *Config) { c.PDF.Timeout = "45s" }},
		{name: "date preset", mutate: func(c *Config) { c.Receipt.DateFormat = "iso" }},
		{name: "max workers", mutate: func(c *Config) { c.Workers = MaxWorkers }},

		{
			name:    "unknown backend",
			mutate:  func(c *Config) { c.PDF.Backend = "dompdf" },
			wantErr: ErrInvalidValue,
		},
		{
			name:    "unparsable timeout",
			mutate:  func(c *Config) { c.PDF.Timeout = "soon" },
			wantErr: ErrInvalidValue,
		},
		{
			name:    "negative timeout",
			mutate:  func(c *Config) { c.PDF.Timeout = "-1s" },
			wantErr: ErrInvalidValue,
		},
		{
			name:    "too many workers",
			mutate:  func(c *Config) { c.Workers = MaxWorkers + 1 },
			wantErr: ErrInvalidValue,
		},
		{
			name:    "negative workers",
			mutate:  func(c *Config) { c.Workers = -1 },
			wantErr: ErrInvalidValue,
		},
		{
			name:    "notice too long",
			mutate:  func(c *Config) { c.Receipt.Notice = strings.Repeat("x", MaxNoticeLength+1) },
			wantErr: ErrFieldTooLong,
		},
		{
			name:    "logo path too long",
			mutate:  func(c *Config) { c.Receipt.Logo = strings.Repeat("x", MaxPathLength+1) },
			wantErr: ErrFieldTooLong,
		},
		{
			name:   "bad date format",
			mutate: func(c *Config) { c.Receipt.DateFormat = "[DD" },
			anyErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var cfg Config
			tt.mutate(&cfg)
			err := cfg.Validate()

			switch {
			case tt.wantErr != nil:
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
				}
			case tt.anyErr:
				if err == nil {
					t.Error("Validate() = nil, want error")
				}
			default:
				if err != nil {
					t.Errorf("Validate() unexpected error: %v", err)
				}
			}
		})
	}
}

func TestPDFConfig_TimeoutDuration(t *testing.T) {
	t.Parallel()

	d, err := PDFConfig{}.TimeoutDuration()
	if err != nil || d != 0 {
		t.Errorf("empty timeout = (%v, %v), want (0, nil)", d, err)
	}

	d, err = PDFConfig{Timeout: "1m30s"}.TimeoutDuration()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Seconds() != 90 {
		t.Errorf("TimeoutDuration() = %v, want 1m30s", d)
	}
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cfextrato.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("setup: %v", err)
	}
	return path
}

func TestLoadConfig(t *testing.T) {
	t.Parallel()

	t.Run("empty name", func(t *testing.T) {
		t.Parallel()

		_, err := LoadConfig("")
		if !errors.Is(err, ErrEmptyConfigName) {
			t.Errorf("error = %v, want ErrEmptyConfigName", err)
		}
	})

	t.Run("full file", func(t *testing.T) {
		t.Parallel()

		path := writeConfig(t, `output:
  dir: "/srv/extratos"
  html: true
receipt:
  logo: "/srv/logo.png"
  notice: "Consulte pelo aplicativo **De olho na nota**"
  dateFormat: "iso"
assets:
  basePath: "/srv/assets"
  style: "loja"
pdf:
  backend: "fpdf"
  timeout: "20s"
workers: 4
`)

		cfg, err := LoadConfig(path)
		if err != nil {
			t.Fatalf("LoadConfig() error = %v", err)
		}
		if cfg.Output.Dir != "/srv/extratos" || !cfg.Output.HTML {
			t.Errorf("Output = %+v", cfg.Output)
		}
		if cfg.Receipt.Logo != "/srv/logo.png" || cfg.Receipt.DateFormat != "iso" {
			t.Errorf("Receipt = %+v", cfg.Receipt)
		}
		if !strings.Contains(cfg.Receipt.Notice, "De olho na nota") {
			t.Errorf("Receipt.Notice = %q", cfg.Receipt.Notice)
		}
		if cfg.Assets.BasePath != "/srv/assets" || cfg.Assets.Style != "loja" {
			t.Errorf("Assets = %+v", cfg.Assets)
		}
		if cfg.PDF.Backend != "fpdf" || cfg.PDF.Timeout != "20s" {
			t.Errorf("PDF = %+v", cfg.PDF)
		}
		if cfg.Workers != 4 {
			t.Errorf("Workers = %d, want 4", cfg.Workers)
		}
	})

	t.Run("missing file path", func(t *testing.T) {
		t.Parallel()

		_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
		if !errors.Is(err, ErrConfigNotFound) {
			t.Errorf("error = %v, want ErrConfigNotFound", err)
		}
	})

	t.Run("missing config name", func(t *testing.T) {
		t.Parallel()

		_, err := LoadConfig("no-such-cfextrato-config-name")
		if !errors.Is(err, ErrConfigNotFound) {
			t.Errorf("error = %v, want ErrConfigNotFound", err)
		}
	})

	t.Run("invalid YAML", func(t *testing.T) {
		t.Parallel()

		_, err := LoadConfig(writeConfig(t, "workers: [unclosed"))
		if !errors.Is(err, ErrConfigParse) {
			t.Errorf("error = %v, want ErrConfigParse", err)
		}
	})

	t.Run("unknown field rejected", func(t *testing.T) {
		t.Parallel()

		_, err := LoadConfig(writeConfig(t, "pdf:\n  paper: a4\n"))
		if !errors.Is(err, ErrConfigParse) {
			t.Errorf("error = %v, want ErrConfigParse", err)
		}
	})

	t.Run("validation runs after parsing", func(t *testing.T) {
		t.Parallel()

		_, err := LoadConfig(writeConfig(t, "pdf:\n  backend: dompdf\n"))
		if !errors.Is(err, ErrInvalidValue) {
			t.Errorf("error = %v, want ErrInvalidValue", err)
		}
	})
}

func TestSearchPaths(t *testing.T) {
	t.Parallel()

	paths := SearchPaths("loja")
	if len(paths) < 2 {
		t.Fatalf("SearchPaths() = %v, want at least the local paths", paths)
	}
	if paths[0] != "loja.yaml" || paths[1] != "loja.yml" {
		t.Errorf("local paths = %v, want loja.yaml then loja.yml", paths[:2])
	}
	for _, p := range paths[2:] {
		if !strings.Contains(p, userConfigDirName) {
			t.Errorf("user path %q should live under %s", p, userConfigDirName)
		}
	}
}
