package cfextrato

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"html/template"
	"image"
	"image/draw"
	"image/png"
	"strings"

	"github.com/boombuler/barcode"
	"github.com/boombuler/barcode/code128"
	"github.com/boombuler/barcode/qr"
	"github.com/shopspring/decimal"

	"github.com/alnah/go-cfextrato/internal/dateutil"
	"github.com/alnah/go-cfextrato/internal/pipeline"
)

// Image sizes in pixels. The printed size is set by CSS; these only need
// enough resolution for a thermal-paper scan.
const (
	qrCodeSize     = 256
	barcodeHeight  = 80
	barcodeScaleX  = 2
	keyGroupLength = 4
)

// paymentMethods maps pgto/MP/cMP codes to their printed labels.
var paymentMethods = map[string]string{
	"01": "Dinheiro",
	"02": "Cheque",
	"03": "Cartão de Crédito",
	"04": "Cartão de Débito",
	"05": "Crédito Loja",
	"10": "Vale Alimentação",
	"11": "Vale Refeição",
	"12": "Vale Presente",
	"13": "Vale Combustível",
	"15": "Boleto Bancário",
	"16": "Depósito Bancário",
	"17": "Pagamento Instantâneo (PIX)",
	"18": "Transferência bancária, Carteira Digital",
	"19": "Programa de fidelidade, Cashback, Crédito Virtual",
	"99": "Outros",
}

// templateFuncs returns the helpers available to the receipt template.
func templateFuncs(dates *dateutil.Layout, md pipeline.FreeTextConverter) template.FuncMap {
	return template.FuncMap{
		"qrcode":        QRCodeDataURI,
		"barcode":       BarcodeDataURI,
		"money":         FormatMoney,
		"quantity":      FormatQuantity,
		"nonzero":       isNonZero,
		"groupKey":      GroupKey,
		"paymentMethod": PaymentMethodLabel,
		"itemNumber":    itemNumber,
		"dataURI":       safeDataURI,
		"datetime":      dates.Format,
		"markdown": func(text string) (template.HTML, error) {
			out, err := md.ToHTML(text)
			if err != nil {
				return "", err
			}
			// #nosec G203 -- goldmark drops raw HTML and escapes text
			return template.HTML(out), nil
		},
	}
}

// resolveDateLayout compiles a dateutil preset or token format.
func resolveDateLayout(format string) (*dateutil.Layout, error) {
	layout, err := dateutil.Compile(format)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTemplate, err)
	}
	return layout, nil
}

// QRCodeDataURI encodes payload as a QR code PNG data URI.
func QRCodeDataURI(payload string) (template.URL, error) {
	code, err := qr.Encode(payload, qr.M, qr.Auto)
	if err != nil {
		return "", fmt.Errorf("encoding QR code: %w", err)
	}
	code, err = barcode.Scale(code, qrCodeSize, qrCodeSize)
	if err != nil {
		return "", fmt.Errorf("scaling QR code: %w", err)
	}
	return pngDataURI(code)
}

// BarcodeDataURI encodes the document key as a Code128 PNG data URI.
func BarcodeDataURI(key string) (template.URL, error) {
	code, err := code128.Encode(key)
	if err != nil {
		return "", fmt.Errorf("encoding barcode: %w", err)
	}
	scaled, err := barcode.Scale(code, code.Bounds().Dx()*barcodeScaleX, barcodeHeight)
	if err != nil {
		return "", fmt.Errorf("scaling barcode: %w", err)
	}
	return pngDataURI(scaled)
}

// pngDataURI encodes img as an 8-bit grayscale PNG. The barcode library
// reports a 16-bit color model, which PDF writers such as gofpdf reject.
func pngDataURI(img image.Image) (template.URL, error) {
	gray := image.NewGray(img.Bounds())
	draw.Draw(gray, gray.Bounds(), img, img.Bounds().Min, draw.Src)

	var buf bytes.Buffer
	if err := png.Encode(&buf, gray); err != nil {
		return "", fmt.Errorf("encoding PNG: %w", err)
	}
	// #nosec G203 -- base64 payload generated here
	return template.URL("data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())), nil
}

// FormatMoney renders a decimal amount the Brazilian way: "1234.5" becomes
// "1.234,50". An empty value renders as "0,00".
func FormatMoney(value string) (string, error) {
	return formatDecimal(value, 2)
}

// FormatQuantity renders a quantity with three decimals: "1.0000" becomes "1,000".
func FormatQuantity(value string) (string, error) {
	return formatDecimal(value, 3)
}

func formatDecimal(value string, places int32) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		value = "0"
	}
	d, err := decimal.NewFromString(value)
	if err != nil {
		return "", fmt.Errorf("invalid amount %q: %w", value, err)
	}
	d = d.Round(places)

	intPart, frac, _ := strings.Cut(d.Abs().StringFixed(places), ".")

	var b strings.Builder
	if d.IsNegative() {
		b.WriteByte('-')
	}
	for i := 0; i < len(intPart); i++ {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteByte(intPart[i])
	}
	if places > 0 {
		b.WriteByte(',')
		b.WriteString(frac)
	}
	return b.String(), nil
}

// isNonZero reports whether value parses to a non-zero amount.
// Absent and malformed values count as zero so optional lines stay hidden.
func isNonZero(value string) bool {
	d, err := decimal.NewFromString(strings.TrimSpace(value))
	return err == nil && !d.IsZero()
}

// GroupKey splits the access key into groups of four digits.
func GroupKey(key string) string {
	var b strings.Builder
	b.Grow(len(key) + len(key)/keyGroupLength)
	for i := 0; i < len(key); i++ {
		if i > 0 && i%keyGroupLength == 0 {
			b.WriteByte(' ')
		}
		b.WriteByte(key[i])
	}
	return b.String()
}

// PaymentMethodLabel returns the printed label of a cMP code.
// Unknown codes are printed as is.
func PaymentMethodLabel(code string) string {
	if label, ok := paymentMethods[code]; ok {
		return label
	}
	return "Meio de pagamento " + code
}

// itemNumber formats a zero-based index as the 3-digit item number.
func itemNumber(i int) string {
	return fmt.Sprintf("%03d", i+1)
}

// safeDataURI marks an image data URI as trusted. Anything else is dropped.
func safeDataURI(uri string) template.URL {
	if !strings.HasPrefix(uri, "data:image/") {
		return ""
	}
	// #nosec G203 -- only image data URIs built by Logo.DataURI
	return template.URL(uri)
}
