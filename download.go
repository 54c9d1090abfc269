package cfextrato

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Download delivers a rendered PDF under a name (without extension).
// The Converter streams to it when Input.Download is set, using the raw
// infCFe/@Id (prefix included) as the name.
type Download interface {
	Stream(name string, pdf []byte) error
}

// Compile-time interface checks.
var (
	_ Download = FileDownload{}
	_ Download = HTTPDownload{}
)

// FileDownload writes <Dir>/<name>.pdf, creating Dir if needed.
type FileDownload struct {
	Dir string
}

// Stream writes the PDF to disk.
func (d FileDownload) Stream(name string, pdf []byte) error {
	if err := validateDownloadName(name); err != nil {
		return err
	}
	dir := d.Dir
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("%w: creating %s: %v", ErrDownload, dir, err)
	}
	// #nosec G306 -- receipts are meant to be shared
	if err := os.WriteFile(d.Path(name), pdf, 0o644); err != nil {
		return fmt.Errorf("%w: %v", ErrDownload, err)
	}
	return nil
}

// Path returns where Stream writes name.
func (d FileDownload) Path(name string) string {
	dir := d.Dir
	if dir == "" {
		dir = "."
	}
	return filepath.Join(dir, name+".pdf")
}

// HTTPDownload sends the PDF as an attachment on an HTTP response.
type HTTPDownload struct {
	W http.ResponseWriter
}

// Stream writes headers and body. Headers cannot be changed afterwards.
func (d HTTPDownload) Stream(name string, pdf []byte) error {
	if d.W == nil {
		return fmt.Errorf("%w: nil response writer", ErrDownload)
	}
	if err := validateDownloadName(name); err != nil {
		return err
	}

	h := d.W.Header()
	h.Set("Content-Type", "application/pdf")
	h.Set("Content-Disposition", `attachment; filename="`+name+`.pdf"`)
	h.Set("Content-Length", strconv.Itoa(len(pdf)))
	d.W.WriteHeader(http.StatusOK)

	if _, err := d.W.Write(pdf); err != nil {
		return fmt.Errorf("%w: %v", ErrDownload, err)
	}
	return nil
}

// validateDownloadName rejects names that could escape the target directory
// or break the Content-Disposition header.
func validateDownloadName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: empty name", ErrDownload)
	}
	if name == "." || name == ".." || strings.ContainsAny(name, "/\\\"\x00\r\n") {
		return fmt.Errorf("%w: invalid name %q", ErrDownload, name)
	}
	return nil
}
