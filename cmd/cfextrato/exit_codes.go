package main

import (
	"context"
	"errors"
	"os"

	cfextrato "github.com/alnah/go-cfextrato"
	"github.com/alnah/go-cfextrato/internal/config"
	"github.com/alnah/go-cfextrato/internal/dateutil"
)

// Exit codes for the cfextrato CLI.
// Follows Unix conventions: 0=success, 1=general, 2=usage, and custom codes < 126.
const (
	ExitSuccess   = 0 // Successful conversion
	ExitGeneral   = 1 // General/unexpected error
	ExitUsage     = 2 // Invalid flags, config, style, or template
	ExitIO        = 3 // File not found, permission denied, write failures
	ExitBrowser   = 4 // Browser/PDF backend errors
	ExitMalformed = 5 // Malformed CFe document or unsupported emission date
)

// exitCodeFor returns the appropriate exit code for an error.
// It uses errors.Is to check wrapped errors, so callers must use fmt.Errorf("%w", err).
func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}

	// Browser/PDF errors (exit 4)
	if errors.Is(err, cfextrato.ErrConversion) ||
		errors.Is(err, cfextrato.ErrBrowserConnect) ||
		errors.Is(err, cfextrato.ErrPageCreate) ||
		errors.Is(err, cfextrato.ErrPageLoad) ||
		errors.Is(err, cfextrato.ErrPDFGeneration) ||
		errors.Is(err, context.DeadlineExceeded) {
		return ExitBrowser
	}

	// Document errors (exit 5)
	if errors.Is(err, cfextrato.ErrMalformedDocument) ||
		errors.Is(err, cfextrato.ErrUnsupportedDate) ||
		errors.Is(err, cfextrato.ErrEmptySource) {
		return ExitMalformed
	}

	// I/O errors (exit 3)
	if errors.Is(err, os.ErrNotExist) ||
		errors.Is(err, os.ErrPermission) ||
		errors.Is(err, cfextrato.ErrLogoRead) ||
		errors.Is(err, cfextrato.ErrDownload) ||
		errors.Is(err, ErrWriteOutput) ||
		errors.Is(err, ErrNoInput) ||
		errors.Is(err, ErrNoDocuments) {
		return ExitIO
	}

	// Usage/config/template errors (exit 2)
	if errors.Is(err, ErrUsage) ||
		errors.Is(err, ErrInvalidExtension) ||
		errors.Is(err, ErrInvalidWorkerCount) ||
		errors.Is(err, config.ErrConfigNotFound) ||
		errors.Is(err, config.ErrEmptyConfigName) ||
		errors.Is(err, config.ErrConfigParse) ||
		errors.Is(err, config.ErrFieldTooLong) ||
		errors.Is(err, config.ErrInvalidValue) ||
		errors.Is(err, dateutil.ErrInvalidDateFormat) ||
		errors.Is(err, cfextrato.ErrTemplate) ||
		errors.Is(err, cfextrato.ErrStyleNotFound) ||
		errors.Is(err, cfextrato.ErrTemplateNotFound) ||
		errors.Is(err, cfextrato.ErrInvalidAssetPath) ||
		errors.Is(err, cfextrato.ErrInvalidBackend) {
		return ExitUsage
	}

	return ExitGeneral
}
