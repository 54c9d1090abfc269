package cfextrato

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// pngBytes returns a small opaque grayscale PNG.
func pngBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewGray(image.Rect(0, 0, 4, 4))
	img.Set(1, 1, color.White)

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encoding png: %v", err)
	}
	return buf.Bytes()
}

func writeTestLogo(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, pngBytes(t), 0o600); err != nil {
		t.Fatalf("writing logo: %v", err)
	}
	return path
}

func TestLoadLogo(t *testing.T) {
	t.Parallel()

	path := writeTestLogo(t, "logo.png")
	logo, err := LoadLogo(path)
	if err != nil {
		t.Fatalf("LoadLogo() unexpected error: %v", err)
	}
	if logo.MIMEType != "image/png" {
		t.Errorf("MIMEType = %q, want image/png", logo.MIMEType)
	}
	if !strings.HasPrefix(logo.DataURI(), "data:image/png;base64,iVBORw0KGgo") {
		t.Errorf("DataURI() = %.40q...", logo.DataURI())
	}
}

func TestLoadLogo_Errors(t *testing.T) {
	t.Parallel()

	t.Run("missing file", func(t *testing.T) {
		t.Parallel()

		_, err := LoadLogo(filepath.Join(t.TempDir(), "missing.png"))
		if !errors.Is(err, ErrLogoRead) {
			t.Errorf("error = %v, want ErrLogoRead", err)
		}
	})

	t.Run("directory", func(t *testing.T) {
		t.Parallel()

		_, err := LoadLogo(t.TempDir())
		if !errors.Is(err, ErrLogoRead) {
			t.Errorf("error = %v, want ErrLogoRead", err)
		}
	})
}

func TestLogoDataURI_Empty(t *testing.T) {
	t.Parallel()

	var nilLogo *Logo
	if got := nilLogo.DataURI(); got != "" {
		t.Errorf("nil DataURI() = %q, want empty", got)
	}
	if got := (&Logo{MIMEType: "image/png"}).DataURI(); got != "" {
		t.Errorf("empty DataURI() = %q, want empty", got)
	}
}

func TestImageMIMEType(t *testing.T) {
	t.Parallel()

	tests := []struct {
		path string
		want string
	}{
		{"logo.png", "image/png"},
		{"logo.PNG", "image/png"},
		{"logo.jpg", "image/jpeg"},
		{"logo.jpeg", "image/jpeg"},
		{"logo.gif", "image/gif"},
		{"logo.zzimg", "image/zzimg"},
	}

	for _, tt := range tests {
		if got := imageMIMEType(tt.path); got != tt.want {
			t.Errorf("imageMIMEType(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}
