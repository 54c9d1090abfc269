package cfextrato

import (
	"strings"
	"time"
)

// Option configures a Converter.
type Option func(*Converter)

// converterConfig holds settings applied by options before NewConverter
// builds the renderer and PDF backend.
type converterConfig struct {
	timeout     time.Duration
	assetPath   string
	assetLoader AssetLoader
	style       string
	backend     string
	dateFormat  string
}

// defaultTimeout bounds one PDF rendering when no timeout is specified.
const defaultTimeout = 30 * time.Second

// WithTimeout sets the PDF rendering timeout.
// Panics if d <= 0 (programmer error, similar to time.NewTicker).
func WithTimeout(d time.Duration) Option {
	if d <= 0 {
		panic("cfextrato: WithTimeout duration must be positive")
	}
	return func(c *Converter) {
		c.cfg.timeout = d
	}
}

// WithAssetPath loads templates and styles from dir, falling back to the
// embedded assets for anything dir does not provide.
func WithAssetPath(dir string) Option {
	return func(c *Converter) {
		c.cfg.assetPath = dir
	}
}

// WithAssetLoader uses a custom AssetLoader. It takes precedence over WithAssetPath.
func WithAssetLoader(loader AssetLoader) Option {
	return func(c *Converter) {
		c.cfg.assetLoader = loader
	}
}

// WithStyle selects a style name, a CSS file path, or NoStyle.
func WithStyle(style string) Option {
	return func(c *Converter) {
		c.cfg.style = style
	}
}

// WithPDFBackend selects BackendRod (default) or BackendFPDF.
// NewConverter returns ErrInvalidBackend for other names.
func WithPDFBackend(name string) Option {
	return func(c *Converter) {
		c.cfg.backend = strings.ToLower(strings.TrimSpace(name))
	}
}

// WithDateLayout sets how the emission instant is printed: a preset
// ("br", "iso", "date") or a token layout such as "DD/MM/YYYY HH:mm".
func WithDateLayout(format string) Option {
	return func(c *Converter) {
		c.cfg.dateFormat = format
	}
}
