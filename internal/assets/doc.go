// Package assets loads the receipt template and its CSS styles.
//
// Built-in assets are embedded in the binary. A custom directory may
// override any of them:
//
//	{basePath}/
//	├── styles/{name}.css
//	└── templates/{name}.html
//
// AssetResolver tries the custom directory first and falls back to the
// embedded files, so an override directory only holds what it changes.
//
// Names are plain identifiers. Disk reads go through an os.Root opened on
// basePath, so neither "../" nor a symlink can reach a file outside it.
package assets
