package cfextrato

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"

	"github.com/alnah/go-cfextrato/internal/fileutil"
	"github.com/alnah/go-cfextrato/internal/process"
)

// PDF backends.
const (
	// BackendRod prints the HTML with headless Chrome (go-rod).
	BackendRod = "rod"

	// BackendFPDF lays out the receipt lines with gofpdf, without a browser.
	BackendFPDF = "fpdf"
)

// pdfConverter turns the rendered receipt page into PDF bytes.
type pdfConverter interface {
	ToPDF(ctx context.Context, htmlContent string, opts *pdfOptions) ([]byte, error)
	Close() error
}

// pdfRenderer prints an HTML file. Tests replace it to run without Chrome.
type pdfRenderer interface {
	RenderFromFile(ctx context.Context, filePath string, opts *pdfOptions) ([]byte, error)
	Close() error
}

var (
	_ pdfConverter = (*rodConverter)(nil)
	_ pdfRenderer  = (*rodRenderer)(nil)
)

// Receipt page in points: the (0, 0, 235.00, 841.89) box of an 80mm roll
// cut to A4 height, portrait.
const (
	receiptWidthPoints  = 235.00
	receiptHeightPoints = 841.89
	receiptMarginPoints = 6.0
	pointsPerInch       = 72.0
)

// pdfOptions is the page geometry in points.
type pdfOptions struct {
	Width  float64
	Height float64
	Margin float64
}

func receiptPageOptions() *pdfOptions {
	return &pdfOptions{
		Width:  receiptWidthPoints,
		Height: receiptHeightPoints,
		Margin: receiptMarginPoints,
	}
}

// rodRenderer prints local HTML files with headless Chrome. The browser is
// launched on first use and reused until Close.
type rodRenderer struct {
	mu       sync.Mutex
	launcher *launcher.Launcher
	browser  *rod.Browser
	timeout  time.Duration
}

func newRodRenderer(timeout time.Duration) *rodRenderer {
	return &rodRenderer{timeout: timeout}
}

// newLauncher configures Chrome from the environment. ROD_BROWSER_BIN
// selects a preinstalled binary; such images and CI runners rarely offer
// Chrome's sandbox, so it is disabled there and on ROD_NO_SANDBOX=1.
func newLauncher() *launcher.Launcher {
	l := launcher.New()
	bin := os.Getenv("ROD_BROWSER_BIN")
	if bin != "" {
		l = l.Bin(bin)
	}
	if bin != "" || os.Getenv("ROD_NO_SANDBOX") == "1" || os.Getenv("CI") == "true" {
		l = l.NoSandbox(true)
	}
	return l
}

func (r *rodRenderer) connect() (*rod.Browser, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.browser != nil {
		return r.browser, nil
	}

	l := newLauncher()
	u, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBrowserConnect, err)
	}
	b := rod.New().ControlURL(u)
	if err := b.Connect(); err != nil {
		stopChrome(l)
		return nil, fmt.Errorf("%w: %v", ErrBrowserConnect, err)
	}
	r.launcher, r.browser = l, b
	return b, nil
}

// Close disconnects and kills the whole Chrome process group.
func (r *rodRenderer) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var err error
	if r.browser != nil {
		err = r.browser.Close()
	}
	if r.launcher != nil {
		stopChrome(r.launcher)
	}
	r.launcher, r.browser = nil, nil
	return err
}

func stopChrome(l *launcher.Launcher) {
	process.KillProcessGroup(l.PID())
	l.Kill()
	l.Cleanup()
}

// RenderFromFile loads path in a new tab and prints it.
func (r *rodRenderer) RenderFromFile(ctx context.Context, path string, opts *pdfOptions) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	browser, err := r.connect()
	if err != nil {
		return nil, err
	}

	page, err := browser.Page(proto.TargetCreateTarget{URL: pageURL(path)})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPageCreate, err)
	}
	defer page.Close()

	timeout, err := pageTimeout(ctx, r.timeout)
	if err != nil {
		return nil, err
	}
	page = page.Context(ctx)
	if err := page.Timeout(timeout).WaitLoad(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPageLoad, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	stream, err := page.PDF(buildPrintOptions(opts))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPDFGeneration, err)
	}
	pdf, err := io.ReadAll(stream)
	if err != nil {
		return nil, fmt.Errorf("%w: reading PDF stream: %v", ErrPDFGeneration, err)
	}
	return pdf, nil
}

// pageTimeout is the time left before ctx's deadline, or fallback when ctx
// has none.
func pageTimeout(ctx context.Context, fallback time.Duration) (time.Duration, error) {
	deadline, ok := ctx.Deadline()
	if !ok {
		return fallback, nil
	}
	left := time.Until(deadline)
	if left <= 0 {
		return 0, context.DeadlineExceeded
	}
	return left, nil
}

// pageURL turns a local path into a file URL, also for Windows drive paths.
func pageURL(path string) string {
	p := filepath.ToSlash(path)
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return (&url.URL{Scheme: "file", Path: p}).String()
}

// buildPrintOptions converts the point geometry into Chrome's print
// parameters, which are in inches. Nil means the receipt page.
func buildPrintOptions(opts *pdfOptions) *proto.PagePrintToPDF {
	if opts == nil {
		opts = receiptPageOptions()
	}
	margin := opts.Margin
	return &proto.PagePrintToPDF{
		PaperWidth:      inches(opts.Width),
		PaperHeight:     inches(opts.Height),
		MarginTop:       inches(margin),
		MarginBottom:    inches(margin),
		MarginLeft:      inches(margin),
		MarginRight:     inches(margin),
		PrintBackground: true,
	}
}

func inches(points float64) *float64 {
	v := points / pointsPerInch
	return &v
}

// rodConverter prints HTML through a rodRenderer. The page is written to a
// temp file first so Chrome loads it like any local document.
type rodConverter struct {
	renderer pdfRenderer
}

func newRodConverter(timeout time.Duration) *rodConverter {
	return &rodConverter{renderer: newRodRenderer(timeout)}
}

func (c *rodConverter) ToPDF(ctx context.Context, htmlContent string, opts *pdfOptions) ([]byte, error) {
	path, cleanup, err := fileutil.WriteTempPage(htmlContent)
	if err != nil {
		return nil, err
	}
	defer cleanup()
	return c.renderer.RenderFromFile(ctx, path, opts)
}

func (c *rodConverter) Close() error {
	return c.renderer.Close()
}
