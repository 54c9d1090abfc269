package cfextrato

import (
	"context"
	"fmt"
)

// Input describes one receipt to convert.
type Input struct {
	// Source is an XML file path or XML content. Ignored when Document is set.
	Source string

	// Document is an already parsed receipt.
	Document *Document

	// LogoPath points to an image printed at the top. Ignored when Logo is set.
	LogoPath string

	// Logo is an already loaded image.
	Logo *Logo

	// AppQueryNotice is printed under the QR code (inline Markdown allowed).
	AppQueryNotice string

	// HTMLOnly skips PDF generation.
	HTMLOnly bool

	// Download, when set, receives the PDF named after infCFe/@Id.
	Download Download
}

// ConvertResult holds the outputs of one conversion.
type ConvertResult struct {
	HTML []byte
	PDF  []byte // nil when Input.HTMLOnly
	View *ViewModel
}

// Converter runs the receipt pipeline: load, normalize, render HTML, print PDF.
// Create with NewConverter, call Convert for each receipt, and Close when done.
// A Converter owns at most one browser; use a ConverterPool for parallel work.
type Converter struct {
	cfg          converterConfig
	renderer     *Renderer
	pdfConverter pdfConverter
}

// NewConverter builds a Converter. The browser, if any, starts on first use.
// Returns ErrInvalidBackend for an unknown backend, ErrInvalidAssetPath for an
// unreadable asset directory, and ErrTemplate if the template fails to load.
func NewConverter(opts ...Option) (*Converter, error) {
	c := &Converter{
		cfg: converterConfig{timeout: defaultTimeout, backend: BackendRod},
	}
	for _, opt := range opts {
		opt(c)
	}

	loader := c.cfg.assetLoader
	if loader == nil && c.cfg.assetPath != "" {
		var err error
		if loader, err = NewAssetLoader(c.cfg.assetPath); err != nil {
			return nil, err
		}
	}

	renderer, err := NewRenderer(RendererConfig{
		Assets:     loader,
		Style:      c.cfg.style,
		DateFormat: c.cfg.dateFormat,
	})
	if err != nil {
		return nil, err
	}
	c.renderer = renderer

	if c.cfg.backend == "" {
		c.cfg.backend = BackendRod
	}
	switch c.cfg.backend {
	case BackendRod:
		c.pdfConverter = newRodConverter(c.cfg.timeout)
	case BackendFPDF:
		c.pdfConverter = newFPDFConverter()
	default:
		return nil, fmt.Errorf("%w: %q (must be %s or %s)", ErrInvalidBackend, c.cfg.backend, BackendRod, BackendFPDF)
	}

	return c, nil
}

// Convert runs the full pipeline for one receipt.
// Recovers from internal panics so one bad document cannot crash a batch.
func (c *Converter) Convert(ctx context.Context, input Input) (result *ConvertResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			result = nil
			err = fmt.Errorf("internal error: %v", r)
		}
	}()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	doc := input.Document
	if doc == nil {
		if doc, err = LoadDocument(input.Source); err != nil {
			return nil, err
		}
	}

	logo := input.Logo
	if logo == nil && input.LogoPath != "" {
		if logo, err = LoadLogo(input.LogoPath); err != nil {
			return nil, err
		}
	}

	vm, err := Normalize(doc, logo, input.AppQueryNotice)
	if err != nil {
		return nil, err
	}

	htmlContent, err := c.renderer.RenderHTML(vm)
	if err != nil {
		return nil, err
	}

	res := &ConvertResult{HTML: []byte(htmlContent), View: vm}
	if input.HTMLOnly {
		return res, nil
	}

	if res.PDF, err = c.RenderPDF(ctx, htmlContent); err != nil {
		return nil, err
	}

	if input.Download != nil {
		if err := input.Download.Stream(vm.DocumentID, res.PDF); err != nil {
			return nil, err
		}
	}

	return res, nil
}

// RenderHTML renders an already normalized receipt.
func (c *Converter) RenderHTML(vm *ViewModel) (string, error) {
	return c.renderer.RenderHTML(vm)
}

// RenderPDF prints receipt HTML on the receipt page with the configured backend.
// Errors wrap ErrConversion, plus a browser sub-kind for the rod backend.
func (c *Converter) RenderPDF(ctx context.Context, htmlContent string) ([]byte, error) {
	pdf, err := c.pdfConverter.ToPDF(ctx, htmlContent, receiptPageOptions())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConversion, err)
	}
	return pdf, nil
}

// Backend returns the PDF backend name.
func (c *Converter) Backend() string {
	return c.cfg.backend
}

// Close releases resources (headless Chrome browser).
func (c *Converter) Close() error {
	if c.pdfConverter != nil {
		return c.pdfConverter.Close()
	}
	return nil
}
