// Package kle converts keyboard layouts between the compact row-array notation
// used by keyboard-layout-editor ("serialized form") and an explicit keyboard
// model with fixed 12-slot legend arrays.
//
// # Serialized Form
//
// A layout is an ordered list of rows. Each row mixes property mappings and
// legend strings. A string emits one key; a mapping changes the template that
// subsequent keys inherit from:
//
//	[
//	  {"name": "60%"},
//	  [{"a": 7}, "Esc", "1", "2"],
//	  [{"w": 1.5}, "Tab", "Q", "W"]
//	]
//
// Most properties persist until overridden (color, profile, alignment, text
// defaults). Size and flag properties (w, h, x2, y2, w2, h2, n, l, d) reset
// after every key. Positions advance by the width of the previous key and
// each row starts one unit below the previous one, at the rotation origin.
//
// Legend strings are newline-delimited. Their order depends on the active
// alignment ("a"), which selects one of eight remapping tables onto the
// twelve model slots:
//
//	 0  8  2
//	 6  9  7
//	 1 10  3
//	 4 11  5   (front legends)
//
// # Model Form
//
// [Deserialize] expands the row list into a [Keyboard]: every [Key] carries
// its full position, size, rotation, flags and three 12-slot arrays (labels,
// per-slot text colors, per-slot text sizes). Empty strings and zero sizes
// mean "use Key.Default".
//
// [Serialize] performs the inverse, re-deriving the minimal property diffs
// and picking, for every key, the alignment that encodes its legends in the
// fewest slots. The output is canonical: deserializing it and serializing
// again yields the same rows.
//
// # Legacy Encodings
//
// Older layouts encode per-legend text colors inside "t" as a
// newline-delimited list; the most frequent color becomes the default and the
// others become per-slot overrides. Text sizes may arrive as "f" (default),
// "f2" (all legends but the first) or "fa" (explicit list). The encoder
// always writes the modern forms: "t" plus "ta" for colors, "f" plus "fa"
// for sizes.
//
// # Errors
//
// Structural problems are reported as [*FormatError]. Malformed attribute
// values are coerced or ignored rather than rejected.
//
// # Concurrency
//
// [Deserialize] and [Serialize] keep all state local to the call and are safe
// to use from multiple goroutines. A [Keyboard] itself is not synchronized.
package kle
