package cfextrato

import "errors"

// Sentinel errors for library operations.
var (
	// ErrMalformedDocument indicates the XML failed to parse or a required
	// node or attribute is missing.
	ErrMalformedDocument = errors.New("malformed CFe document")

	// ErrUnsupportedDate indicates dEmi/hEmi are not an 8-digit date and a
	// 6-digit time.
	ErrUnsupportedDate = errors.New("unsupported emission date/time")

	// ErrTemplate indicates the receipt template could not be loaded, parsed, or executed.
	ErrTemplate = errors.New("template rendering failed")

	// ErrConversion indicates the HTML to PDF converter failed.
	ErrConversion = errors.New("PDF conversion failed")

	// ErrInvalidMaskInput indicates the input length does not match the
	// number of placeholders in a mask pattern.
	ErrInvalidMaskInput = errors.New("input does not fit mask")

	ErrLogoRead       = errors.New("failed to read logo")
	ErrEmptySource    = errors.New("document source cannot be empty")
	ErrInvalidBackend = errors.New("invalid PDF backend")
	ErrDownload       = errors.New("failed to stream PDF download")

	// Browser errors. Always reported together with ErrConversion.
	ErrBrowserConnect = errors.New("failed to connect to browser")
	ErrPageCreate     = errors.New("failed to create browser page")
	ErrPageLoad       = errors.New("failed to load page")
	ErrPDFGeneration  = errors.New("PDF generation failed")

	// Asset loading errors.
	ErrStyleNotFound    = errors.New("style not found")
	ErrTemplateNotFound = errors.New("template not found")
	ErrInvalidAssetPath = errors.New("invalid asset path")
)
