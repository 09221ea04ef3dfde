package io

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"time"

	"github.com/matzehuels/kle/pkg/errors"
	"github.com/matzehuels/kle/pkg/kle"
	"github.com/matzehuels/kle/pkg/observability"
)

// Read decodes a layout in the given format from r.
//
// Read returns an [errors.ErrCodeInvalidFormat] error when the bytes cannot be
// parsed and an [errors.ErrCodeInvalidLayout] error, wrapping the
// [*kle.FormatError], when they parse but do not describe a layout.
// Read does not close r.
func Read(ctx context.Context, r io.Reader, format Format) (*kle.Keyboard, error) {
	start := time.Now()
	kbd, err := read(r, format)
	observability.Codec().OnDecode(ctx, string(format), keyCount(kbd), time.Since(start), err)
	return kbd, err
}

func read(r io.Reader, format Format) (*kle.Keyboard, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "read layout")
	}
	tree, err := DecodeTree(data, format)
	if err != nil {
		return nil, err
	}
	kbd, err := kle.Deserialize(tree)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidLayout, err, "invalid layout")
	}
	return kbd, nil
}

// ReadJSON decodes a JSON layout from r.
func ReadJSON(r io.Reader) (*kle.Keyboard, error) {
	return Read(context.Background(), r, FormatJSON)
}

// Import reads the layout file at path. Format and compression are inferred
// from the file name; see [DetectPath].
func Import(ctx context.Context, path string) (*kle.Keyboard, error) {
	format, comp, err := DetectPath(path)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "layout %s", path)
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "open %s", path)
	}
	defer f.Close()

	r, err := decompress(f, comp)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decompress %s", path)
	}
	defer r.Close()

	return Read(ctx, r, format)
}

// ReadModel decodes a keyboard model written by [WriteModel]. Missing fields
// take their defaults.
func ReadModel(r io.Reader) (*kle.Keyboard, error) {
	kbd := kle.NewKeyboard()
	if err := json.NewDecoder(r).Decode(kbd); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode model")
	}
	return kbd, nil
}

func keyCount(kbd *kle.Keyboard) int {
	if kbd == nil {
		return 0
	}
	return len(kbd.Keys)
}
