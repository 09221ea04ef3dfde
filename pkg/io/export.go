package io

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/matzehuels/kle/pkg/errors"
	"github.com/matzehuels/kle/pkg/kle"
	"github.com/matzehuels/kle/pkg/observability"
)

// Write serializes kbd to its canonical row notation and encodes it to w.
// Write does not close w.
func Write(ctx context.Context, w io.Writer, kbd *kle.Keyboard, opts Options) error {
	start := time.Now()
	err := EncodeTree(w, kle.Serialize(kbd), opts)
	format := opts.Format
	if format == "" {
		format = FormatJSON
	}
	observability.Codec().OnEncode(ctx, string(format), keyCount(kbd), time.Since(start), err)
	return err
}

// WriteJSON writes kbd as indented JSON rows.
// The output can be re-imported with [ReadJSON].
func WriteJSON(kbd *kle.Keyboard, w io.Writer) error {
	return Write(context.Background(), w, kbd, Options{Format: FormatJSON, Indent: "  "})
}

// Export writes kbd to a file at path. When opts.Format is empty the format
// is inferred from the file name; a .gz or .zst suffix always selects
// compression.
func Export(ctx context.Context, kbd *kle.Keyboard, path string, opts Options) error {
	format, comp, err := DetectPath(path)
	if err != nil && opts.Format == "" {
		return err
	}
	if opts.Format == "" {
		opts.Format = format
	}

	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidPath, err, "create %s", path)
	}
	defer f.Close()

	w, err := compress(f, comp)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "compress %s", path)
	}
	if err := Write(ctx, w, kbd, opts); err != nil {
		w.Close()
		return err
	}
	if err := w.Close(); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "flush %s", path)
	}
	return f.Close()
}

// WriteModel writes the normalized keyboard model as indented JSON.
func WriteModel(w io.Writer, kbd *kle.Keyboard) error {
	data, err := marshalJSON(kbd, "  ")
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "encode model")
	}
	_, err = w.Write(append(data, '\n'))
	return err
}
