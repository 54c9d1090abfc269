// Package fileutil holds the file and path helpers shared by the library and
// the CLI.
package fileutil

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// tempPagePattern names the pages handed to the browser so leftovers from a
// crashed run are easy to spot in the temp directory.
const tempPagePattern = "cfextrato-*.html"

// WriteTempPage writes an HTML page to a new temp file and returns its path
// with a cleanup func that removes it. On error nothing is left behind and
// cleanup is nil.
func WriteTempPage(page string) (path string, cleanup func(), err error) {
	f, err := os.CreateTemp("", tempPagePattern)
	if err != nil {
		return "", nil, fmt.Errorf("creating temp page: %w", err)
	}
	path = f.Name()
	remove := func() { _ = os.Remove(path) }

	_, err = io.WriteString(f, page)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		remove()
		return "", nil, fmt.Errorf("writing temp page: %w", err)
	}
	return path, remove, nil
}

// FileExists reports whether path names an existing regular file.
// Strings that cannot be paths, such as inline XML, report false without
// touching the filesystem.
func FileExists(path string) bool {
	if path == "" || strings.ContainsAny(path, "<\x00\n") {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// IsFilePath reports whether s is a path ("./loja.css", `C:\x.css`) rather
// than an asset name ("receipt").
func IsFilePath(s string) bool {
	return strings.ContainsAny(s, `/\`)
}

// IsXMLFile reports whether path has a .xml extension, in any case.
func IsXMLFile(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".xml")
}
