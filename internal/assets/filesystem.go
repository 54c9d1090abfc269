package assets

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// FilesystemLoader reads assets from a custom directory laid out like the
// embedded tree. Reads go through os.Root, so neither names nor symlinks can
// reach files outside the directory.
type FilesystemLoader struct {
	basePath string
}

// NewFilesystemLoader checks that basePath is a readable directory.
func NewFilesystemLoader(basePath string) (*FilesystemLoader, error) {
	if basePath == "" {
		return nil, fmt.Errorf("%w: empty path", ErrInvalidBasePath)
	}

	abs, err := filepath.Abs(basePath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidBasePath, err)
	}

	root, err := os.OpenRoot(abs)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidBasePath, abs, err)
	}
	defer root.Close()

	if _, err := fs.ReadDir(root.FS(), "."); err != nil {
		return nil, fmt.Errorf("%w: cannot read %s: %v", ErrInvalidBasePath, abs, err)
	}

	return &FilesystemLoader{basePath: abs}, nil
}

// BasePath returns the absolute asset directory.
func (f *FilesystemLoader) BasePath() string {
	return f.basePath
}

func (f *FilesystemLoader) LoadStyle(name string) (string, error) {
	return f.load(styleKind, name)
}

func (f *FilesystemLoader) LoadTemplate(name string) (string, error) {
	return f.load(templateKind, name)
}

func (f *FilesystemLoader) load(k kind, name string) (string, error) {
	if err := ValidateAssetName(name); err != nil {
		return "", err
	}

	root, err := os.OpenRoot(f.basePath)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrAssetRead, err)
	}
	defer root.Close()

	rel := filepath.FromSlash(k.path(name))
	content, err := root.ReadFile(rel)
	switch {
	case err == nil:
		return string(content), nil
	case errors.Is(err, fs.ErrNotExist):
		return "", fmt.Errorf("%w: %q", k.notFound, name)
	case isSymlink(root, rel):
		return "", fmt.Errorf("%w: %s", ErrPathTraversal, k.path(name))
	default:
		return "", fmt.Errorf("%w: %v", ErrAssetRead, err)
	}
}

func isSymlink(root *os.Root, rel string) bool {
	info, err := root.Lstat(rel)
	return err == nil && info.Mode()&fs.ModeSymlink != 0
}

var _ AssetLoader = (*FilesystemLoader)(nil)
