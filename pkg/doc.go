// Package pkg holds the kle libraries.
//
// # Overview
//
// kle reads and writes the compact row notation of keyboard-layout-editor.com.
// The pkg directory is organized into these areas:
//
//  1. [kle] - The codec: row notation to normalized keys and back
//  2. [io] - Formats (JSON, YAML, CBOR), compression and file import/export
//  3. [cache] - Response and result caching (file, Redis, null)
//  4. [integrations] - Remote layout sources (GitHub gists)
//  5. [errors], [observability], [buildinfo] - Shared infrastructure
//
// # Architecture
//
// The typical data flow:
//
//	file / stdin / gist
//	         ↓
//	    [io] package (decode bytes into a row tree)
//	         ↓
//	    [kle] package (Deserialize into a Keyboard)
//	         ↓
//	    [kle] package (Serialize back to canonical rows)
//	         ↓
//	    JSON/YAML/CBOR output
//
// # Quick Start
//
//	import (
//	    "context"
//	    "fmt"
//	    "os"
//
//	    kleio "github.com/matzehuels/kle/pkg/io"
//	)
//
//	ctx := context.Background()
//	kbd, err := kleio.Import(ctx, "board.kbd.json")
//	if err != nil {
//	    return err
//	}
//	fmt.Println(len(kbd.Keys), "keys")
//	err = kleio.Write(ctx, os.Stdout, kbd, kleio.Options{Indent: "  "})
//
// [kle]: github.com/matzehuels/kle/pkg/kle
// [io]: github.com/matzehuels/kle/pkg/io
// [cache]: github.com/matzehuels/kle/pkg/cache
// [integrations]: github.com/matzehuels/kle/pkg/integrations
// [errors]: github.com/matzehuels/kle/pkg/errors
// [observability]: github.com/matzehuels/kle/pkg/observability
// [buildinfo]: github.com/matzehuels/kle/pkg/buildinfo
package pkg
