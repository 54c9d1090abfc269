package assets

// Built-in asset names.
const (
	DefaultTemplateName = "extrato"
	DefaultStyleName    = "receipt"
)

// AssetLoader loads the receipt template and its styles by name.
// Names carry no extension; invalid names fail with ErrInvalidAssetName.
type AssetLoader interface {
	// LoadStyle returns styles/{name}.css or ErrStyleNotFound.
	LoadStyle(name string) (string, error)

	// LoadTemplate returns templates/{name}.html or ErrTemplateNotFound.
	LoadTemplate(name string) (string, error)
}

// kind locates one family of assets inside an asset tree.
type kind struct {
	dir      string
	ext      string
	notFound error
}

var (
	styleKind    = kind{dir: "styles", ext: ".css", notFound: ErrStyleNotFound}
	templateKind = kind{dir: "templates", ext: ".html", notFound: ErrTemplateNotFound}
)

// path returns the slash-separated path of name, relative to the tree root.
func (k kind) path(name string) string {
	return k.dir + "/" + name + k.ext
}
