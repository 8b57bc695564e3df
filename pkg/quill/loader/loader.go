// Package loader reads Quill scripts from disk or stdin, decompressing
// .gz and .zst files transparently.
package loader

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

// StdinName is the path that selects standard input.
const StdinName = "-"

// Compression identifies how a script file is encoded on disk.
type Compression int

const (
	None Compression = iota
	Gzip
	Zstd
)

func (c Compression) String() string {
	switch c {
	case Gzip:
		return "gzip"
	case Zstd:
		return "zstd"
	default:
		return "none"
	}
}

// Detect returns the compression implied by the file name and the name
// without its compression suffix.
func Detect(path string) (Compression, string) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".gz":
		return Gzip, strings.TrimSuffix(path, filepath.Ext(path))
	case ".zst":
		return Zstd, strings.TrimSuffix(path, filepath.Ext(path))
	}
	return None, path
}

// Load reads the script at path. "-" reads standard input. It returns the
// source text and the name to show in diagnostics.
func Load(path string) (source, displayName string, err error) {
	return LoadFrom(path, os.Stdin)
}

// LoadFrom is Load with an explicit reader for "-".
func LoadFrom(path string, stdin io.Reader) (source, displayName string, err error) {
	if path == StdinName {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", "", fmt.Errorf("failed to read stdin: %w", err)
		}
		return string(data), "<stdin>", nil
	}

	f, err := os.Open(path)
	if err != nil {
		return "", "", fmt.Errorf("failed to read file '%s': %w", path, err)
	}
	defer f.Close()

	compression, name := Detect(path)
	data, err := Decode(f, compression)
	if err != nil {
		return "", "", fmt.Errorf("failed to read file '%s': %w", path, err)
	}
	if !utf8.Valid(data) {
		return "", "", fmt.Errorf("file '%s' is not valid UTF-8", path)
	}

	return string(data), name, nil
}

// Decode reads all of r, undoing the given compression.
func Decode(r io.Reader, compression Compression) ([]byte, error) {
	switch compression {
	case Gzip:
		zr, err := gzip.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("gzip: %w", err)
		}
		defer zr.Close()
		return io.ReadAll(zr)

	case Zstd:
		zr, err := zstd.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("zstd: %w", err)
		}
		defer zr.Close()
		return io.ReadAll(zr)
	}
	return io.ReadAll(r)
}

// Encode compresses src. Used by tooling and tests that produce
// compressed scripts.
func Encode(src []byte, compression Compression) ([]byte, error) {
	var buf bytes.Buffer

	switch compression {
	case Gzip:
		zw := gzip.NewWriter(&buf)
		if _, err := zw.Write(src); err != nil {
			return nil, err
		}
		if err := zw.Close(); err != nil {
			return nil, err
		}

	case Zstd:
		zw, err := zstd.NewWriter(&buf)
		if err != nil {
			return nil, err
		}
		if _, err := zw.Write(src); err != nil {
			zw.Close()
			return nil, err
		}
		if err := zw.Close(); err != nil {
			return nil, err
		}

	default:
		buf.Write(src)
	}

	return buf.Bytes(), nil
}
