package cfextrato

import (
	"encoding/base64"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"strings"
)

// MaxLogoSize caps the logo file read into memory (default 2MB).
var MaxLogoSize int64 = 2 << 20

// Logo is an image embedded at the top of the receipt.
type Logo struct {
	Data     []byte
	MIMEType string // e.g. "image/png"
}

// LoadLogo reads an image file and derives its MIME type from the extension.
func LoadLogo(path string) (*Logo, error) {
	f, err := os.Open(path) // #nosec G304 -- user-provided path
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLogoRead, err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, MaxLogoSize+1))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLogoRead, err)
	}
	if int64(len(data)) > MaxLogoSize {
		return nil, fmt.Errorf("%w: %s exceeds %d bytes", ErrLogoRead, path, MaxLogoSize)
	}

	return &Logo{Data: data, MIMEType: imageMIMEType(path)}, nil
}

// DataURI returns the logo as a base64 data URI, or "" for a nil logo.
func (l *Logo) DataURI() string {
	if l == nil || len(l.Data) == 0 {
		return ""
	}
	return "data:" + l.MIMEType + ";base64," + base64.StdEncoding.EncodeToString(l.Data)
}

// imageMIMEType maps a file extension to an image MIME type.
// Unknown extensions fall back to "image/<ext>".
func imageMIMEType(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	if t := mime.TypeByExtension(ext); strings.HasPrefix(t, "image/") {
		// Drop parameters such as "; charset=utf-8" (svg on some systems).
		if i := strings.IndexByte(t, ';'); i != -1 {
			t = strings.TrimSpace(t[:i])
		}
		return t
	}
	return "image/" + strings.TrimPrefix(ext, ".")
}
