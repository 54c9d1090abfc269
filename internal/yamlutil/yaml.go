// Package yamlutil decodes the cfextrato config file. Decoding is strict:
// an unknown key is an error, so a misspelled setting never goes unnoticed.
package yamlutil

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/goccy/go-yaml"
)

// MaxInputSize caps how much of a config source is read.
var MaxInputSize = 1 << 20

var (
	ErrNilData        = errors.New("yamlutil: nil or empty data")
	ErrNilDestination = errors.New("yamlutil: nil destination pointer")
	ErrInputTooLarge  = errors.New("yamlutil: input exceeds maximum size")
)

// Decode reads r up to MaxInputSize and decodes it into v.
func Decode(r io.Reader, v any) error {
	if v == nil {
		return ErrNilDestination
	}
	data, err := io.ReadAll(io.LimitReader(r, int64(MaxInputSize)+1))
	if err != nil {
		return fmt.Errorf("yamlutil: %w", err)
	}
	return UnmarshalStrict(data, v)
}

// UnmarshalStrict decodes data into v.
func UnmarshalStrict(data []byte, v any) error {
	switch {
	case len(data) == 0:
		return ErrNilData
	case len(data) > MaxInputSize:
		return fmt.Errorf("%w: %d bytes (max %d)", ErrInputTooLarge, len(data), MaxInputSize)
	case v == nil:
		return ErrNilDestination
	}

	dec := yaml.NewDecoder(bytes.NewReader(data), yaml.Strict())
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("yamlutil: %w", err)
	}
	return nil
}

// ReadFileStrict decodes the file at path. A missing file keeps
// os.ErrNotExist in the chain.
func ReadFileStrict(path string, v any) error {
	f, err := os.Open(path) // #nosec G304 -- user-provided config path
	if err != nil {
		return err
	}
	defer f.Close()

	if err := Decode(f, v); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}
