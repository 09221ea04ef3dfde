// Package io reads and writes keyboard layouts in files and streams.
//
// # Overview
//
// The codec in [kle] converts between the compact row notation and the
// normalized keyboard model, but knows nothing about bytes. This package adds
// the byte level:
//
//   - Three encodings of the row notation: JSON, YAML and CBOR
//   - Optional gzip or zstd compression, selected by file suffix
//   - Tolerant JSON input: comments and trailing commas are accepted
//   - Canonical output: everything written goes through [kle.Serialize]
//
// # Formats
//
// The format is detected from the file name by [DetectPath]:
//
//	layout.json, layout.kbd.json, layout.jsonc  -> JSON
//	layout.yaml, layout.yml                     -> YAML
//	layout.cbor                                 -> CBOR
//	layout.json.gz, layout.yaml.zst             -> compressed
//
// All three formats carry the same tree: a list whose optional first element
// is the metadata mapping, followed by one list per row. Mapping keys keep
// their serialized order in JSON and YAML output. CBOR output uses core
// deterministic encoding, so equal layouts always produce equal bytes.
//
// # Import
//
// Use [Import] to read a layout from a file path, or [Read] to read from any
// io.Reader:
//
//	kbd, err := io.Import(ctx, "ergodox.kbd.json")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// Structural problems in the layout are reported as
// [errors.ErrCodeInvalidLayout] wrapping the codec's [*kle.FormatError];
// undecodable bytes are reported as [errors.ErrCodeInvalidFormat].
//
// # Export
//
// Use [Export] to write a layout to a file, or [Write] to write to any
// io.Writer:
//
//	err := io.Export(ctx, kbd, "ergodox.yaml", io.Options{})
//
// JSON output is compact by default. [Options.Indent] pretty-prints it and
// [Options.Compact] writes one row per line, the way keyboard-layout-editor
// presents raw data.
//
// # Model Output
//
// [WriteModel] and [ReadModel] exchange the normalized model itself as JSON,
// for tools that want absolute key positions instead of the row notation.
//
// # Concurrency
//
// All functions are safe for concurrent use. Each call works on its own
// keyboard; the returned keyboards are independent of their inputs.
//
// [kle]: github.com/matzehuels/kle/pkg/kle
// [errors.ErrCodeInvalidLayout]: github.com/matzehuels/kle/pkg/errors.ErrCodeInvalidLayout
// [errors.ErrCodeInvalidFormat]: github.com/matzehuels/kle/pkg/errors.ErrCodeInvalidFormat
package io
