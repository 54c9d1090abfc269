package assets

import "errors"

var (
	ErrStyleNotFound    = errors.New("style not found")
	ErrTemplateNotFound = errors.New("template not found")

	// ErrInvalidAssetName rejects names that could leave their directory.
	ErrInvalidAssetName = errors.New("invalid asset name")

	// ErrInvalidBasePath means the custom asset directory cannot be used.
	ErrInvalidBasePath = errors.New("invalid base path")

	ErrAssetRead = errors.New("failed to read asset")

	// ErrPathTraversal is returned when a custom asset resolves outside its
	// directory, typically through a symlink.
	ErrPathTraversal = errors.New("path traversal detected")
)
