package kle

import (
	"encoding/json"
	"maps"
	"math"
	"reflect"
	"slices"

	"github.com/spf13/cast"
)

// Attribute values arrive from JSON, YAML or CBOR decoders, or from callers
// building trees by hand, so the helpers below accept any scalar shape and
// fall back to zero values instead of failing.

func toString(v any) string {
	if v == nil {
		return ""
	}
	return cast.ToString(v)
}

func toFloat(v any) float64 {
	if n, ok := v.(json.Number); ok {
		f, _ := n.Float64()
		return f
	}
	f := cast.ToFloat64(v)
	if math.IsNaN(f) {
		return 0
	}
	return f
}

func toInt(v any) (int, bool) {
	if n, ok := v.(json.Number); ok {
		v = n.String()
	}
	f, err := cast.ToFloat64E(v)
	if err != nil || f != math.Trunc(f) {
		return 0, false
	}
	return int(f), true
}

// truthy applies loose truthiness: nil, false, "", 0 and NaN are false,
// everything else (including empty sequences and mappings) is true.
func truthy(v any) bool {
	switch x := v.(type) {
	case nil:
		return false
	case bool:
		return x
	case string:
		return x != ""
	case []any, map[string]any, Props:
		return true
	case json.Number:
		return toFloat(x) != 0
	}
	f, err := cast.ToFloat64E(v)
	if err != nil {
		return true
	}
	return f != 0 && !math.IsNaN(f)
}

// asSequence returns v as a list. Strings and byte slices are not lists.
func asSequence(v any) ([]any, bool) {
	switch x := v.(type) {
	case []any:
		return x, true
	case Props, string, []byte, nil:
		return nil, false
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}

// asMapping returns v as ordered props. Unordered maps are sorted by key so
// custom metadata keeps a deterministic order.
func asMapping(v any) (Props, bool) {
	switch x := v.(type) {
	case Props:
		return x, true
	case map[string]any:
		p := make(Props, 0, len(x))
		for _, k := range slices.Sorted(maps.Keys(x)) {
			p = append(p, Prop{Key: k, Value: x[k]})
		}
		return p, true
	case map[any]any:
		m := make(map[string]any, len(x))
		for k, val := range x {
			m[toString(k)] = val
		}
		return asMapping(m)
	}
	return nil, false
}

func toBackground(v any) *Background {
	switch x := v.(type) {
	case *Background:
		return x
	case Background:
		return &x
	}
	p, ok := asMapping(v)
	if !ok {
		return nil
	}
	name, _ := p.Get("name")
	style, _ := p.Get("style")
	return &Background{Name: toString(name), Style: toString(style)}
}

func toFloats(v any) []float64 {
	seq, ok := asSequence(v)
	if !ok {
		return nil
	}
	out := make([]float64, len(seq))
	for i, x := range seq {
		out[i] = toFloat(x)
	}
	return out
}
