package main

import (
	"context"
	"errors"

	cfextrato "github.com/alnah/go-cfextrato"
	"github.com/alnah/go-cfextrato/internal/hints"
)

// hintFor returns an actionable hint for err, or "".
// Batch errors get none: each failure was already printed with its own.
func hintFor(err error) string {
	var be *batchError
	if err == nil || errors.As(err, &be) {
		return ""
	}

	switch {
	case errors.Is(err, cfextrato.ErrBrowserConnect):
		return hints.ForBrowserConnect()
	case errors.Is(err, cfextrato.ErrPageLoad), errors.Is(err, context.DeadlineExceeded):
		return hints.ForTimeout()
	case errors.Is(err, cfextrato.ErrMalformedDocument):
		return hints.ForMalformedDocument()
	case errors.Is(err, cfextrato.ErrLogoRead):
		return hints.ForLogo()
	case errors.Is(err, ErrWriteOutput), errors.Is(err, cfextrato.ErrDownload):
		return hints.ForOutputDirectory()
	}
	return ""
}
