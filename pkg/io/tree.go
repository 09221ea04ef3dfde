package io

import (
	"bytes"
	"encoding/json"
	"io"
	"reflect"
	"strings"

	"github.com/fxamacker/cbor/v2"
	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/kle/pkg/errors"
	"github.com/matzehuels/kle/pkg/kle"
)

// Options control how layouts are written.
type Options struct {
	// Format selects the encoding. Export infers it from the path when empty;
	// Write defaults to JSON.
	Format Format

	// Indent pretty-prints JSON output with the given indent string.
	Indent string

	// Compact writes JSON with one row per line. It takes precedence over
	// Indent.
	Compact bool
}

var (
	cborEnc cbor.EncMode
	cborDec cbor.DecMode
)

func init() {
	var err error
	cborEnc, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("io: CBOR encoder initialization failed: " + err.Error())
	}
	cborDec, err = cbor.DecOptions{
		DefaultMapType: reflect.TypeOf(map[string]any(nil)),
	}.DecMode()
	if err != nil {
		panic("io: CBOR decoder initialization failed: " + err.Error())
	}
}

// DecodeTree parses data into the generic row tree accepted by
// [kle.Deserialize].
func DecodeTree(data []byte, format Format) (any, error) {
	var tree any
	var err error
	switch format {
	case FormatJSON, "":
		err = json.Unmarshal(jsonc.ToJSON(data), &tree)
	case FormatYAML:
		err = yaml.Unmarshal(data, &tree)
	case FormatCBOR:
		err = cborDec.Unmarshal(data, &tree)
	default:
		return nil, errors.New(errors.ErrCodeInvalidFormat, "unknown format %q", format)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode %s", format)
	}
	return tree, nil
}

// EncodeTree writes a row tree, as produced by [kle.Serialize], to w.
func EncodeTree(w io.Writer, tree any, opts Options) error {
	var err error
	switch opts.Format {
	case FormatJSON, "":
		err = encodeJSON(w, tree, opts)
	case FormatYAML:
		err = encodeYAML(w, tree)
	case FormatCBOR:
		err = cborEnc.NewEncoder(w).Encode(plain(tree))
	default:
		return errors.New(errors.ErrCodeInvalidFormat, "unknown format %q", opts.Format)
	}
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "encode %s", opts.Format)
	}
	return nil
}

// marshalJSON encodes v without escaping HTML; legends often contain markup.
func marshalJSON(v any, indent string) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", indent)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

func encodeJSON(w io.Writer, tree any, opts Options) error {
	rows, isList := tree.([]any)
	if !opts.Compact || !isList {
		data, err := marshalJSON(tree, opts.Indent)
		if err != nil {
			return err
		}
		_, err = w.Write(append(data, '\n'))
		return err
	}

	var buf bytes.Buffer
	buf.WriteByte('[')
	for i, row := range rows {
		if i > 0 {
			buf.WriteString(",\n")
		}
		data, err := marshalJSON(row, "")
		if err != nil {
			return err
		}
		buf.Write(data)
	}
	buf.WriteString("]\n")
	_, err := w.Write(buf.Bytes())
	return err
}

func encodeYAML(w io.Writer, tree any) error {
	node, err := yamlNode(tree)
	if err != nil {
		return err
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(node); err != nil {
		return err
	}
	return enc.Close()
}

// yamlNode converts a row tree into a YAML node, keeping the order of
// [kle.Props] mappings.
func yamlNode(v any) (*yaml.Node, error) {
	switch x := v.(type) {
	case kle.Props:
		n := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		for _, p := range x {
			val, err := yamlNode(p.Value)
			if err != nil {
				return nil, err
			}
			key := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: p.Key}
			n.Content = append(n.Content, key, val)
		}
		return n, nil
	case []any:
		n := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for _, item := range x {
			child, err := yamlNode(item)
			if err != nil {
				return nil, err
			}
			n.Content = append(n.Content, child)
		}
		return n, nil
	case string:
		// Block scalars drop leading line breaks, which carry legend slots.
		if strings.Contains(x, "\n") {
			return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: x, Style: yaml.DoubleQuotedStyle}, nil
		}
	}
	n := &yaml.Node{}
	if err := n.Encode(v); err != nil {
		return nil, err
	}
	return n, nil
}

// plain replaces ordered mappings with maps for encoders that sort keys
// themselves.
func plain(v any) any {
	switch x := v.(type) {
	case kle.Props:
		m := make(map[string]any, len(x))
		for _, p := range x {
			m[p.Key] = plain(p.Value)
		}
		return m
	case []any:
		out := make([]any, len(x))
		for i, item := range x {
			out[i] = plain(item)
		}
		return out
	}
	return v
}
