package kle

import (
	"strings"
)

// Deserialize expands a serialized layout into a keyboard model.
//
// rows is the decoded row list: a slice whose elements are rows (slices of
// legend strings and property mappings) plus an optional metadata mapping at
// index 0. Mappings may be map[string]any, map[any]any or [Props].
//
// Deserialize returns a [*FormatError] if rows is not a list, if an element
// is neither a row nor a mapping, if metadata appears after the first
// element, or if rotation is changed anywhere but at the start of a row.
func Deserialize(rows any) (*Keyboard, error) {
	seq, ok := asSequence(rows)
	if !ok {
		return nil, formatErr("expected an array of objects", rows)
	}

	d := &decoder{
		kbd:     NewKeyboard(),
		current: NewKey(),
		align:   DefaultAlignment,
	}
	for r, row := range seq {
		if items, ok := asSequence(row); ok {
			if err := d.row(items); err != nil {
				return nil, err
			}
			continue
		}
		if props, ok := asMapping(row); ok {
			if r != 0 {
				return nil, formatErr("keyboard metadata must be the first element", row)
			}
			d.metadata(props)
			continue
		}
		return nil, formatErr("unexpected", row)
	}
	return d.kbd, nil
}

type decoder struct {
	kbd     *Keyboard
	current Key
	align   int

	clusterX, clusterY float64
}

func (d *decoder) row(items []any) error {
	for k, item := range items {
		if label, ok := item.(string); ok {
			d.key(label)
			continue
		}
		props, ok := asMapping(item)
		if !ok {
			continue
		}
		if err := d.props(k, props); err != nil {
			return err
		}
	}
	d.current.Y++
	d.current.X = d.current.RotationX
	return nil
}

// key emits a key from the current template and advances the cursor.
func (d *decoder) key(label string) {
	cur := &d.current

	k := *cur
	if k.Width2 == 0 {
		k.Width2 = cur.Width
	}
	if k.Height2 == 0 {
		k.Height2 = cur.Height
	}
	k.Labels = reorderIn(strings.Split(label, "\n"), d.align, "")
	k.clean()
	d.kbd.Keys = append(d.kbd.Keys, k)

	cur.X += cur.Width
	cur.Width, cur.Height = 1, 1
	cur.X2, cur.Y2, cur.Width2, cur.Height2 = 0, 0, 0, 0
	cur.Nub, cur.Stepped, cur.Decal = false, false, false
}

// nonNull reports whether key is present with a non-nil value.
func nonNull(p Props, key string) (any, bool) {
	v, ok := p.Get(key)
	return v, ok && v != nil
}

// truthyProp returns the value under key when it is truthy.
func truthyProp(p Props, key string) (any, bool) {
	v, ok := p.Get(key)
	return v, ok && truthy(v)
}

// props applies a property mapping found at position k of a row to the
// template. The order of the steps below is significant.
func (d *decoder) props(k int, p Props) error {
	cur := &d.current

	_, hasR := nonNull(p, "r")
	_, hasRX := nonNull(p, "rx")
	_, hasRY := nonNull(p, "ry")
	if k != 0 && (hasR || hasRX || hasRY) {
		return formatErr("rotation can only be specified on the first key in a row", p.Map())
	}

	if v, ok := nonNull(p, "r"); ok {
		cur.RotationAngle = toFloat(v)
	}
	if v, ok := nonNull(p, "rx"); ok {
		d.clusterX = toFloat(v)
		cur.RotationX = d.clusterX
		cur.X, cur.Y = d.clusterX, d.clusterY
	}
	if v, ok := nonNull(p, "ry"); ok {
		d.clusterY = toFloat(v)
		cur.RotationY = d.clusterY
		cur.X, cur.Y = d.clusterX, d.clusterY
	}
	if v, ok := nonNull(p, "a"); ok {
		if a, ok := toInt(v); ok && ValidAlignment(a) {
			d.align = a
		}
	}

	d.textSize(p)

	if v, ok := p.Get("p"); ok {
		cur.Profile = toString(v)
	}
	if v, ok := truthyProp(p, "c"); ok {
		cur.Color = toString(v)
	}

	d.textColor(p)

	if v, ok := truthyProp(p, "x"); ok {
		cur.X += toFloat(v)
	}
	if v, ok := truthyProp(p, "y"); ok {
		cur.Y += toFloat(v)
	}
	if v, ok := truthyProp(p, "w"); ok {
		cur.Width = toFloat(v)
		cur.Width2 = cur.Width
	}
	if v, ok := truthyProp(p, "h"); ok {
		cur.Height = toFloat(v)
		cur.Height2 = cur.Height
	}
	if v, ok := truthyProp(p, "x2"); ok {
		cur.X2 = toFloat(v)
	}
	if v, ok := truthyProp(p, "y2"); ok {
		cur.Y2 = toFloat(v)
	}
	if v, ok := truthyProp(p, "w2"); ok {
		cur.Width2 = toFloat(v)
	}
	if v, ok := truthyProp(p, "h2"); ok {
		cur.Height2 = toFloat(v)
	}
	if _, ok := truthyProp(p, "n"); ok {
		cur.Nub = true
	}
	if _, ok := truthyProp(p, "l"); ok {
		cur.Stepped = true
	}
	if _, ok := truthyProp(p, "d"); ok {
		cur.Decal = true
	}
	if v, ok := nonNull(p, "g"); ok {
		cur.Ghost = truthy(v)
	}
	if v, ok := p.Get("sm"); ok {
		cur.SwitchMount = toString(v)
	}
	if v, ok := p.Get("sb"); ok {
		cur.SwitchBrand = toString(v)
	}
	if v, ok := p.Get("st"); ok {
		cur.SwitchType = toString(v)
	}
	return nil
}

// textSize handles f (default), f2 (every legend but the first) and fa
// (explicit list).
func (d *decoder) textSize(p Props) {
	cur := &d.current

	f, hasF := truthyProp(p, "f")
	f2, hasF2 := truthyProp(p, "f2")
	fa, hasFA := truthyProp(p, "fa")

	if hasF {
		cur.Default.TextSize = toFloat(f)
		cur.TextSize = [Slots]float64{}
	}
	if hasF2 {
		size := toFloat(f2)
		tmp := make([]float64, Slots)
		tmp[0] = cur.Default.TextSize
		for i := 1; i < Slots; i++ {
			tmp[i] = size
		}
		cur.TextSize = reorderIn(tmp, d.align, 0)
	}
	if hasFA {
		cur.TextSize = reorderIn(toFloats(fa), d.align, 0)
	}
	if hasF || hasF2 || hasFA {
		for i, s := range cur.TextSize {
			if s == cur.Default.TextSize {
				cur.TextSize[i] = 0
			}
		}
	}
}

// textColor handles t (default, or the legacy per-legend list) and ta
// (per-legend overrides).
func (d *decoder) textColor(p Props) {
	cur := &d.current

	if v, ok := truthyProp(p, "t"); ok {
		t := toString(v)
		if !strings.Contains(t, "\n") {
			cur.Default.TextColor = t
		} else {
			split := strings.Split(t, "\n")
			if strings.TrimSpace(split[0]) != "" {
				cur.Default.TextColor = mostCommonColor(split)
			}
			cur.TextColor = reorderIn(split, d.align, cur.Default.TextColor)
			d.clearDefaultColors()
		}
	}
	if v, ok := truthyProp(p, "ta"); ok {
		cur.TextColor = reorderIn(strings.Split(toString(v), "\n"), d.align, "")
		d.clearDefaultColors()
	}
}

func (d *decoder) clearDefaultColors() {
	cur := &d.current
	for i, c := range cur.TextColor {
		if c == cur.Default.TextColor {
			cur.TextColor[i] = ""
		}
	}
}

// mostCommonColor returns the most frequent non-blank entry. Ties go to the
// entry that reached the count first.
func mostCommonColor(colors []string) string {
	counts := make(map[string]int)
	best, top := "", 0
	for _, c := range colors {
		if strings.TrimSpace(c) == "" {
			continue
		}
		counts[c]++
		if counts[c] > top {
			best, top = c, counts[c]
		}
	}
	if best == "" {
		return DefaultTextColor
	}
	return best
}

// metadata copies every truthy attribute of the leading metadata mapping.
func (d *decoder) metadata(p Props) {
	for _, kv := range p {
		if truthy(kv.Value) {
			d.kbd.Meta.Set(kv.Key, kv.Value)
		}
	}
}
