package cfextrato

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/jung-kurt/gofpdf"
)

// Typography of the browser-free backend, in points.
const (
	fpdfFont        = "Courier"
	fpdfFontSize    = 7.0
	fpdfSmallSize   = 6.0
	fpdfTotalSize   = 8.0
	fpdfLineFactor  = 1.3
	fpdfRuleGap     = 3.0
	fpdfImageGap    = 3.0
	fpdfQRSize      = 110.0
	fpdfBarcodeH    = 28.0
	fpdfLogoMaxH    = 60.0
	fpdfLogoWidthPc = 0.6
)

// printableSelector lists the elements the fpdf backend draws, in document order.
const printableSelector = ".ln, hr, img.logo, img.barcode, img.qrcode"

// fpdfConverter lays out the receipt's printable lines with gofpdf.
// It reads the rendered HTML instead of the ViewModel so that a custom
// template keeps working as long as it marks lines with class "ln".
type fpdfConverter struct{}

var _ pdfConverter = (*fpdfConverter)(nil)

func newFPDFConverter() *fpdfConverter {
	return &fpdfConverter{}
}

// ToPDF draws the receipt on a page of the requested geometry.
func (c *fpdfConverter) ToPDF(ctx context.Context, htmlContent string, opts *pdfOptions) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if opts == nil {
		opts = receiptPageOptions()
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlContent))
	if err != nil {
		return nil, fmt.Errorf("%w: parsing HTML: %v", ErrPDFGeneration, err)
	}

	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "pt",
		Size:           gofpdf.SizeType{Wd: opts.Width, Ht: opts.Height},
	})
	pdf.SetMargins(opts.Margin, opts.Margin, opts.Margin)
	pdf.SetAutoPageBreak(true, opts.Margin)
	pdf.AddPage()

	w := &fpdfWriter{
		pdf:    pdf,
		tr:     pdf.UnicodeTranslatorFromDescriptor(""), // cp1252 core fonts
		usable: opts.Width - 2*opts.Margin,
		margin: opts.Margin,
		height: opts.Height,
	}

	doc.Find(printableSelector).EachWithBreak(func(i int, s *goquery.Selection) bool {
		if ctx.Err() != nil {
			return false
		}
		switch {
		case s.Is("hr"):
			w.rule()
		case s.Is("img"):
			w.image(i, s)
		default:
			w.line(s)
		}
		return !pdf.Err()
	})

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if pdf.Err() {
		return nil, fmt.Errorf("%w: %v", ErrPDFGeneration, pdf.Error())
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPDFGeneration, err)
	}
	return buf.Bytes(), nil
}

// Close is a no-op: gofpdf holds no external resources.
func (c *fpdfConverter) Close() error {
	return nil
}

// fpdfWriter keeps the drawing state of one document.
type fpdfWriter struct {
	pdf    *gofpdf.Fpdf
	tr     func(string) string
	usable float64
	margin float64
	height float64
}

// line draws one .ln element. A child .r span is right-aligned on the last
// wrapped line.
func (w *fpdfWriter) line(s *goquery.Selection) {
	style := ""
	if s.HasClass("bold") {
		style = "B"
	}
	size := fpdfFontSize
	switch {
	case s.HasClass("small"):
		size = fpdfSmallSize
	case s.HasClass("total"):
		size = fpdfTotalSize
	}
	w.pdf.SetFont(fpdfFont, style, size)
	lh := size * fpdfLineFactor

	align := "L"
	if s.HasClass("center") || s.ParentsFiltered(".center").Length() > 0 {
		align = "C"
	}

	right := collapseSpace(s.Find(".r").Text())
	left := s.Clone()
	left.Find(".r").Remove()
	text := w.tr(collapseSpace(left.Text()))

	if right == "" {
		if text != "" {
			w.pdf.MultiCell(w.usable, lh, text, "", align, false)
		}
		return
	}

	right = w.tr(right)
	rw := w.pdf.GetStringWidth(right) + 2
	lines := w.pdf.SplitLines([]byte(text), w.usable-rw)
	if len(lines) == 0 {
		lines = [][]byte{nil}
	}
	for _, ln := range lines[:len(lines)-1] {
		w.pdf.CellFormat(w.usable, lh, string(ln), "", 1, "L", false, 0, "")
	}
	w.pdf.CellFormat(w.usable-rw, lh, string(lines[len(lines)-1]), "", 0, "L", false, 0, "")
	w.pdf.CellFormat(rw, lh, right, "", 1, "R", false, 0, "")
}

// rule draws a dashed separator.
func (w *fpdfWriter) rule() {
	y := w.pdf.GetY() + fpdfRuleGap/2
	w.pdf.SetLineWidth(0.5)
	w.pdf.SetDashPattern([]float64{2, 2}, 0)
	w.pdf.Line(w.margin, y, w.margin+w.usable, y)
	w.pdf.SetDashPattern(nil, 0)
	w.pdf.SetY(y + fpdfRuleGap/2)
}

// image draws a logo, barcode, or QR code from its data URI src.
// Unsupported image types are skipped.
func (w *fpdfWriter) image(i int, s *goquery.Selection) {
	src, _ := s.Attr("src")
	imageType, data, ok := decodeImageDataURI(src)
	if !ok {
		return
	}

	name := fmt.Sprintf("img%d", i)
	opts := gofpdf.ImageOptions{ImageType: imageType}
	info := w.pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(data))
	if info == nil || w.pdf.Err() {
		return
	}

	var iw, ih float64
	switch {
	case s.HasClass("qrcode"):
		iw, ih = fpdfQRSize, fpdfQRSize
	case s.HasClass("barcode"):
		iw, ih = w.usable, fpdfBarcodeH
	default:
		iw = w.usable * fpdfLogoWidthPc
		ih = iw * info.Height() / info.Width()
		if ih > fpdfLogoMaxH {
			ih = fpdfLogoMaxH
			iw = ih * info.Width() / info.Height()
		}
	}

	y := w.pdf.GetY() + fpdfImageGap
	if y+ih > w.height-w.margin {
		w.pdf.AddPage()
		y = w.pdf.GetY()
	}
	x := w.margin + (w.usable-iw)/2
	w.pdf.ImageOptions(name, x, y, iw, ih, false, opts, 0, "")
	w.pdf.SetY(y + ih + fpdfImageGap)
}

// decodeImageDataURI splits a base64 image data URI into a gofpdf image
// type and its bytes.
func decodeImageDataURI(uri string) (imageType string, data []byte, ok bool) {
	meta, payload, found := strings.Cut(strings.TrimPrefix(uri, "data:"), ",")
	if !found || !strings.HasPrefix(uri, "data:") || !strings.HasSuffix(meta, ";base64") {
		return "", nil, false
	}

	switch strings.TrimSuffix(meta, ";base64") {
	case "image/png":
		imageType = "PNG"
	case "image/jpeg", "image/jpg":
		imageType = "JPG"
	case "image/gif":
		imageType = "GIF"
	default:
		return "", nil, false
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, false
	}
	return imageType, data, true
}

// collapseSpace joins all whitespace runs into single spaces.
func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
