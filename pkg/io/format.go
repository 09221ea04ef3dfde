package io

import (
	"io"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"

	"github.com/matzehuels/kle/pkg/errors"
)

// Format names an encoding of the row notation.
type Format string

// Supported formats.
const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatCBOR Format = "cbor"
)

// Formats lists the supported formats in display order.
var Formats = []Format{FormatJSON, FormatYAML, FormatCBOR}

// ParseFormat resolves a user-supplied format name. The empty string selects
// JSON.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(name) {
	case "", "json", "jsonc":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "cbor":
		return FormatCBOR, nil
	}
	return "", errors.New(errors.ErrCodeInvalidFormat, "unknown format %q (want json, yaml or cbor)", name)
}

// Compression names a stream compression applied around a format.
type Compression string

// Supported compressions.
const (
	CompressNone Compression = ""
	CompressGzip Compression = "gzip"
	CompressZstd Compression = "zstd"
)

var compressionSuffixes = map[string]Compression{
	".gz":   CompressGzip,
	".zst":  CompressZstd,
	".zstd": CompressZstd,
}

var formatSuffixes = map[string]Format{
	".json":  FormatJSON,
	".jsonc": FormatJSON,
	".yaml":  FormatYAML,
	".yml":   FormatYAML,
	".cbor":  FormatCBOR,
}

// DetectPath infers format and compression from a file name such as
// "board.kbd.json" or "board.yaml.zst".
func DetectPath(path string) (Format, Compression, error) {
	name := strings.ToLower(filepath.Base(path))

	comp := CompressNone
	if c, ok := compressionSuffixes[filepath.Ext(name)]; ok {
		comp = c
		name = strings.TrimSuffix(name, filepath.Ext(name))
	}

	f, ok := formatSuffixes[filepath.Ext(name)]
	if !ok {
		return "", "", errors.New(errors.ErrCodeUnsupported, "cannot infer layout format from %q", path)
	}
	return f, comp, nil
}

func decompress(r io.Reader, c Compression) (io.ReadCloser, error) {
	switch c {
	case CompressGzip:
		return gzip.NewReader(r)
	case CompressZstd:
		d, err := zstd.NewReader(r)
		if err != nil {
			return nil, err
		}
		return d.IOReadCloser(), nil
	}
	return io.NopCloser(r), nil
}

type nopWriteCloser struct{ io.Writer }

func (nopWriteCloser) Close() error { return nil }

// compress wraps w. Closing the result flushes the compressor but leaves w
// open.
func compress(w io.Writer, c Compression) (io.WriteCloser, error) {
	switch c {
	case CompressGzip:
		return gzip.NewWriter(w), nil
	case CompressZstd:
		return zstd.NewWriter(w)
	}
	return nopWriteCloser{w}, nil
}
