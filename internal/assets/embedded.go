package assets

import (
	"embed"
	"fmt"
)

//go:embed styles/*.css templates/*.html
var embedded embed.FS

// EmbeddedLoader serves the receipt template and style built into the binary.
type EmbeddedLoader struct{}

func NewEmbeddedLoader() *EmbeddedLoader {
	return &EmbeddedLoader{}
}

func (e *EmbeddedLoader) LoadStyle(name string) (string, error) {
	return e.load(styleKind, name)
}

func (e *EmbeddedLoader) LoadTemplate(name string) (string, error) {
	return e.load(templateKind, name)
}

func (e *EmbeddedLoader) load(k kind, name string) (string, error) {
	if err := ValidateAssetName(name); err != nil {
		return "", err
	}
	content, err := embedded.ReadFile(k.path(name))
	if err != nil {
		return "", fmt.Errorf("%w: %q", k.notFound, name)
	}
	return string(content), nil
}

var _ AssetLoader = (*EmbeddedLoader)(nil)
