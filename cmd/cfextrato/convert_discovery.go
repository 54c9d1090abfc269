package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"

	"github.com/alnah/go-cfextrato/internal/config"
	"github.com/alnah/go-cfextrato/internal/fileutil"
)

var (
	ErrNoInput            = errors.New("no input specified")
	ErrNoDocuments        = errors.New("no XML files found")
	ErrInvalidExtension   = errors.New("file must have .xml extension")
	ErrInvalidWorkerCount = errors.New("invalid worker count")
)

// discoverFiles returns inputPath itself when it is an .xml file, or every
// .xml file below it, sorted, when it is a directory.
func discoverFiles(inputPath string) ([]string, error) {
	info, err := os.Stat(inputPath)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		if !fileutil.IsXMLFile(inputPath) {
			return nil, fmt.Errorf("%w: got %q", ErrInvalidExtension, filepath.Ext(inputPath))
		}
		return []string{inputPath}, nil
	}

	var files []string
	walk := func(rel string, d fs.DirEntry, err error) error {
		if err != nil {
			return fmt.Errorf("scanning %s: %w", filepath.Join(inputPath, rel), err)
		}
		if d.Type().IsRegular() && fileutil.IsXMLFile(rel) {
			files = append(files, filepath.Join(inputPath, filepath.FromSlash(rel)))
		}
		return nil
	}
	if err := fs.WalkDir(os.DirFS(inputPath), ".", walk); err != nil {
		return nil, err
	}
	slices.Sort(files)
	return files, nil
}

// validateWorkers checks that the worker count is within valid bounds.
func validateWorkers(n int) error {
	if n < 0 {
		return fmt.Errorf("%w: %d (must be >= 0, 0 means auto)", ErrInvalidWorkerCount, n)
	}
	if n > config.MaxWorkers {
		return fmt.Errorf("%w: %d (maximum is %d)", ErrInvalidWorkerCount, n, config.MaxWorkers)
	}
	return nil
}

// outputDirFor returns where outputs of inputPath are written.
func outputDirFor(inputPath, outputDir string) string {
	if outputDir != "" {
		return outputDir
	}
	return filepath.Dir(inputPath)
}
