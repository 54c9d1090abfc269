package cfextrato

import (
	"errors"

	"github.com/alnah/go-cfextrato/internal/assets"
)

// Built-in asset names.
const (
	// DefaultTemplate is the receipt layout.
	DefaultTemplate = assets.DefaultTemplateName

	// DefaultStyle is the CSS applied when no style is chosen.
	DefaultStyle = assets.DefaultStyleName
)

// AssetLoader defines the contract for loading the receipt template and CSS
// styles. Implementations may load from disk, embedded files, or elsewhere.
//
// NewAssetLoader returns a filesystem loader with fallback to the embedded
// defaults.
type AssetLoader interface {
	// LoadStyle loads a CSS style by name (without .css extension).
	// Returns ErrStyleNotFound if the style doesn't exist.
	LoadStyle(name string) (string, error)

	// LoadTemplate loads an HTML template by name (without .html extension).
	// Returns ErrTemplateNotFound if the template doesn't exist.
	LoadTemplate(name string) (string, error)
}

// NewAssetLoader creates an AssetLoader for the given base path.
// If basePath is empty, only embedded assets are used. Otherwise files in
// basePath take precedence:
//   - styles/{name}.css
//   - templates/{name}.html
//
// Returns ErrInvalidAssetPath if basePath is set but not a readable directory.
func NewAssetLoader(basePath string) (AssetLoader, error) {
	resolver, err := assets.NewAssetResolver(basePath)
	if err != nil {
		return nil, publicAssetError(err)
	}
	return &assetLoaderAdapter{resolver: resolver}, nil
}

// assetLoaderAdapter wraps the internal resolver to return public errors.
type assetLoaderAdapter struct {
	resolver *assets.AssetResolver
}

// assetDir returns the custom asset directory, "" for embedded assets.
func (a *assetLoaderAdapter) assetDir() string {
	return a.resolver.BasePath()
}

func (a *assetLoaderAdapter) LoadStyle(name string) (string, error) {
	return exported(a.resolver.LoadStyle(name))
}

func (a *assetLoaderAdapter) LoadTemplate(name string) (string, error) {
	return exported(a.resolver.LoadTemplate(name))
}

var _ AssetLoader = (*assetLoaderAdapter)(nil)

func exported(content string, err error) (string, error) {
	return content, publicAssetError(err)
}

// assetErrorMap pairs internal asset errors with the exported sentinel they
// match. An invalid name can never exist, so it reads as not found.
var assetErrorMap = []struct{ internal, exported error }{
	{assets.ErrStyleNotFound, ErrStyleNotFound},
	{assets.ErrTemplateNotFound, ErrTemplateNotFound},
	{assets.ErrInvalidBasePath, ErrInvalidAssetPath},
	{assets.ErrPathTraversal, ErrInvalidAssetPath},
	{assets.ErrInvalidAssetName, ErrStyleNotFound},
}

// publicAssetError re-labels err with an exported sentinel and keeps its
// message. Errors with no mapping pass through.
func publicAssetError(err error) error {
	if err == nil {
		return nil
	}
	for _, m := range assetErrorMap {
		if errors.Is(err, m.internal) {
			return &assetError{exported: m.exported, cause: err}
		}
	}
	return err
}

type assetError struct {
	exported error
	cause    error
}

func (e *assetError) Error() string { return e.cause.Error() }
func (e *assetError) Unwrap() error { return e.exported }
