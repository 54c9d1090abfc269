package assets

import "errors"

// AssetResolver serves assets from a custom directory when one is set and
// falls back to the embedded tree for anything the directory does not have.
// Only "not found" falls back; invalid names and read errors are returned.
type AssetResolver struct {
	custom   *FilesystemLoader // nil without a custom directory
	embedded *EmbeddedLoader
}

// NewAssetResolver returns an embedded-only resolver when customBasePath is
// empty, and ErrInvalidBasePath when it is set but unusable.
func NewAssetResolver(customBasePath string) (*AssetResolver, error) {
	r := &AssetResolver{embedded: NewEmbeddedLoader()}
	if customBasePath == "" {
		return r, nil
	}

	custom, err := NewFilesystemLoader(customBasePath)
	if err != nil {
		return nil, err
	}
	r.custom = custom
	return r, nil
}

// BasePath returns the custom directory, or "" when only embedded assets are used.
func (r *AssetResolver) BasePath() string {
	if r.custom == nil {
		return ""
	}
	return r.custom.BasePath()
}

func (r *AssetResolver) LoadStyle(name string) (string, error) {
	return r.load(name, (*FilesystemLoader).LoadStyle, (*EmbeddedLoader).LoadStyle)
}

func (r *AssetResolver) LoadTemplate(name string) (string, error) {
	return r.load(name, (*FilesystemLoader).LoadTemplate, (*EmbeddedLoader).LoadTemplate)
}

func (r *AssetResolver) load(
	name string,
	fromCustom func(*FilesystemLoader, string) (string, error),
	fromEmbedded func(*EmbeddedLoader, string) (string, error),
) (string, error) {
	if r.custom != nil {
		content, err := fromCustom(r.custom, name)
		if err == nil || !isNotFound(err) {
			return content, err
		}
	}
	return fromEmbedded(r.embedded, name)
}

func isNotFound(err error) bool {
	return errors.Is(err, ErrStyleNotFound) || errors.Is(err, ErrTemplateNotFound)
}

var _ AssetLoader = (*AssetResolver)(nil)
