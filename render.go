package cfextrato

import (
	"bytes"
	"fmt"
	"html/template"
	"os"

	"github.com/alnah/go-cfextrato/internal/assets"
	"github.com/alnah/go-cfextrato/internal/fileutil"
	"github.com/alnah/go-cfextrato/internal/pipeline"
)

// NoStyle disables CSS injection. The template's own markup is used as is.
const NoStyle = "none"

// RendererConfig configures a Renderer.
type RendererConfig struct {
	// Assets supplies the template and styles. Nil uses the embedded ones.
	Assets AssetLoader

	// Style is a style name, a CSS file path, or NoStyle. Empty means DefaultStyle.
	Style string

	// DateFormat is a dateutil preset ("br", "iso", ...) or token layout
	// ("DD/MM/YYYY HH:mm"). Empty means the receipt default.
	DateFormat string

	// BaseDir resolves relative img and link references in a custom template.
	// Empty means the directory of a loader built by NewAssetLoader, if any.
	BaseDir string
}

// assetDirLoader is implemented by loaders backed by a directory on disk.
type assetDirLoader interface {
	assetDir() string
}

// Renderer executes the receipt template against a ViewModel.
// A Renderer is immutable after construction and safe for concurrent use.
type Renderer struct {
	tmpl     *template.Template
	css      string
	baseDir  string
	injector pipeline.CSSInjector
}

// NewRenderer loads and parses the receipt template and resolves the style.
// Failures wrap ErrTemplate; a missing style also matches ErrStyleNotFound.
func NewRenderer(cfg RendererConfig) (*Renderer, error) {
	loader := cfg.Assets
	if loader == nil {
		loader = &assetLoaderAdapter{resolver: mustEmbeddedResolver()}
	}

	layout, err := resolveDateLayout(cfg.DateFormat)
	if err != nil {
		return nil, err
	}

	source, err := loader.LoadTemplate(DefaultTemplate)
	if err != nil {
		return nil, fmt.Errorf("%w: loading %q: %w", ErrTemplate, DefaultTemplate, err)
	}

	tmpl, err := template.New(DefaultTemplate).
		Funcs(templateFuncs(layout, pipeline.NewGoldmarkConverter())).
		Option("missingkey=error").
		Parse(source)
	if err != nil {
		return nil, fmt.Errorf("%w: parsing %q: %v", ErrTemplate, DefaultTemplate, err)
	}

	css, err := resolveStyle(loader, cfg.Style)
	if err != nil {
		return nil, err
	}

	baseDir := cfg.BaseDir
	if d, ok := loader.(assetDirLoader); ok && baseDir == "" {
		baseDir = d.assetDir()
	}

	return &Renderer{
		tmpl:     tmpl,
		css:      css,
		baseDir:  baseDir,
		injector: pipeline.StyleTag{},
	}, nil
}

// RenderHTML produces the receipt HTML. Output is deterministic for a given
// ViewModel and configuration.
func (r *Renderer) RenderHTML(vm *ViewModel) (string, error) {
	if vm == nil {
		return "", fmt.Errorf("%w: nil view model", ErrTemplate)
	}

	var buf bytes.Buffer
	if err := r.tmpl.Execute(&buf, vm); err != nil {
		return "", fmt.Errorf("%w: %v", ErrTemplate, err)
	}
	out, err := pipeline.ResolveAssetPaths(r.injector.InjectCSS(buf.String(), r.css), r.baseDir)
	if err != nil {
		return "", fmt.Errorf("%w: resolving asset paths: %v", ErrTemplate, err)
	}
	return out, nil
}

// resolveStyle turns a style name or CSS path into CSS content.
func resolveStyle(loader AssetLoader, style string) (string, error) {
	switch {
	case style == NoStyle:
		return "", nil
	case style == "":
		style = DefaultStyle
	case fileutil.IsFilePath(style):
		content, err := os.ReadFile(style) // #nosec G304 -- user-provided path
		if err != nil {
			return "", fmt.Errorf("%w: loading style file %q: %w", ErrTemplate, style, err)
		}
		return string(content), nil
	}

	css, err := loader.LoadStyle(style)
	if err != nil {
		return "", fmt.Errorf("%w: loading style %q: %w", ErrTemplate, style, err)
	}
	return css, nil
}

// mustEmbeddedResolver returns a resolver over the embedded assets only,
// which cannot fail.
func mustEmbeddedResolver() *assets.AssetResolver {
	r, err := assets.NewAssetResolver("")
	if err != nil {
		panic(fmt.Sprintf("embedded asset resolver: %v", err))
	}
	return r
}
