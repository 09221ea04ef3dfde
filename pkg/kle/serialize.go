package kle

import (
	"strings"
)

// Serialize converts a keyboard model into its compact serialized form.
//
// The result is a list whose first element is the metadata mapping (only
// when some attribute differs from [NewKeyboardMetadata]) followed by one
// list per row. Every row holds, per key, an optional [Props] diff and the
// key's legend string. Serialize does not modify kbd.
//
// Overrides on slots without a legend, and overrides equal to the key's
// default, are dropped. Each key is written with the alignment that needs
// the fewest legend positions.
func Serialize(kbd *Keyboard) []any {
	rows := []any{}
	if kbd == nil {
		return rows
	}

	e := newEncoder()
	for _, k := range kbd.Keys {
		if row := e.key(k); row != nil {
			rows = append(rows, row)
		}
	}
	if len(e.row) > 0 {
		rows = append(rows, e.row)
	}

	if meta := metadataDiff(&kbd.Meta); len(meta) > 0 {
		rows = append([]any{meta}, rows...)
	}
	return rows
}

// cluster identifies a rotation group.
type cluster struct {
	angle, x, y float64
}

// encoder mirrors the template a decoder would hold after reading the rows
// emitted so far.
type encoder struct {
	current Key
	align   int
	cluster cluster
	newRow  bool
	started bool

	row []any
}

func newEncoder() *encoder {
	e := &encoder{
		current: NewKey(),
		align:   DefaultAlignment,
		newRow:  true,
	}
	e.current.Y = -1
	return e
}

// key appends k to the pending row. When k opens a new row, the finished row
// is returned.
func (e *encoder) key(k Key) (flushed []any) {
	cleanDefaults(&k)
	align, labels := bestAlignment(k.Labels, e.align)
	cur := &e.current

	c := cluster{angle: k.RotationAngle, x: k.RotationX, y: k.RotationY}
	newCluster := c != e.cluster
	if e.started {
		e.newRow = k.Y != cur.Y
	}
	e.started = true

	if len(e.row) > 0 && (newCluster || e.newRow) {
		flushed = e.row
		e.row = nil
		e.newRow = true
	}
	if e.newRow {
		cur.Y++
		if c.x != e.cluster.x || c.y != e.cluster.y {
			cur.Y = c.y
		}
		cur.X = c.x
		e.cluster = c
		e.newRow = false
	}

	var p Props
	if k.RotationAngle != cur.RotationAngle {
		p = p.Set("r", k.RotationAngle)
		cur.RotationAngle = k.RotationAngle
	}
	if k.RotationX != cur.RotationX {
		p = p.Set("rx", k.RotationX)
		cur.RotationX = k.RotationX
	}
	if k.RotationY != cur.RotationY {
		p = p.Set("ry", k.RotationY)
		cur.RotationY = k.RotationY
	}

	dx := k.X - cur.X
	if dx != 0 {
		p = p.Set("x", dx)
	}
	dy := k.Y - cur.Y
	if dy != 0 {
		p = p.Set("y", dy)
	}
	cur.X += k.Width + dx
	cur.Y += dy

	if k.Color != cur.Color {
		p = p.Set("c", k.Color)
		cur.Color = k.Color
	}

	p = e.textColor(p, &k, align)

	if k.Ghost != cur.Ghost {
		p = p.Set("g", k.Ghost)
		cur.Ghost = k.Ghost
	}
	if k.Profile != cur.Profile {
		p = p.Set("p", k.Profile)
		cur.Profile = k.Profile
	}
	if k.SwitchMount != cur.SwitchMount {
		p = p.Set("sm", k.SwitchMount)
		cur.SwitchMount = k.SwitchMount
	}
	if k.SwitchBrand != cur.SwitchBrand {
		p = p.Set("sb", k.SwitchBrand)
		cur.SwitchBrand = k.SwitchBrand
	}
	if k.SwitchType != cur.SwitchType {
		p = p.Set("st", k.SwitchType)
		cur.SwitchType = k.SwitchType
	}
	if align != e.align {
		p = p.Set("a", align)
		e.align = align
	}

	p = e.textSize(p, &k, align)

	if k.Width != 1 {
		p = p.Set("w", k.Width)
	}
	if k.Height != 1 {
		p = p.Set("h", k.Height)
	}
	if k.Width2 != k.Width {
		p = p.Set("w2", k.Width2)
	}
	if k.Height2 != k.Height {
		p = p.Set("h2", k.Height2)
	}
	if k.X2 != 0 {
		p = p.Set("x2", k.X2)
	}
	if k.Y2 != 0 {
		p = p.Set("y2", k.Y2)
	}
	if k.Stepped {
		p = p.Set("l", true)
	}
	if k.Nub {
		p = p.Set("n", true)
	}
	if k.Decal {
		p = p.Set("d", true)
	}

	if len(p) > 0 {
		e.row = append(e.row, p)
	}
	e.row = append(e.row, strings.Join(labels, "\n"))
	return flushed
}

// textColor emits t and ta so that a decoder reproduces k's colors. A lone
// override on the first serialized legend of a single-legend key becomes the
// default instead.
func (e *encoder) textColor(p Props, k *Key, align int) Props {
	cur := &e.current

	def, overrides := k.Default.TextColor, k.TextColor
	// Unlike keyboard-layout-editor.com, promotion is limited to single-legend keys.
	if colors, _ := reorderOut(k.TextColor, align, ""); len(colors) == 1 && legendCount(k) == 1 {
		def, overrides = colors[0], [Slots]string{}
	}

	if def != cur.Default.TextColor {
		p = p.Set("t", def)
		cur.Default.TextColor = def
	}
	if masked(cur.TextColor, k) == overrides {
		return p
	}

	out, _ := reorderOut(overrides, align, "")
	ta := strings.Join(out, "\n")
	if ta == "" {
		// keyboard-layout-editor.com never clears inherited overrides this way.
		ta = "\n"
	}
	p = p.Set("ta", ta)
	cur.TextColor = overrides
	return p
}

// textSize emits f and fa so that a decoder reproduces k's sizes.
func (e *encoder) textSize(p Props, k *Key, align int) Props {
	cur := &e.current

	if k.Default.TextSize != cur.Default.TextSize {
		p = p.Set("f", k.Default.TextSize)
		cur.Default.TextSize = k.Default.TextSize
		cur.TextSize = [Slots]float64{}
	}
	if masked(cur.TextSize, k) == k.TextSize {
		return p
	}

	if k.TextSize == ([Slots]float64{}) {
		p = p.Set("f", k.Default.TextSize)
		cur.TextSize = [Slots]float64{}
		return p
	}
	out, _ := reorderOut(k.TextSize, align, 0)
	p = p.Set("fa", out)
	cur.TextSize = k.TextSize
	return p
}

// masked returns the running overrides as a decoder would copy them onto k.
func masked[T comparable](running [Slots]T, k *Key) [Slots]T {
	var zero T
	for i := range running {
		if k.Labels[i] == "" {
			running[i] = zero
		}
	}
	return running
}

func legendCount(k *Key) int {
	n := 0
	for _, l := range k.Labels {
		if l != "" {
			n++
		}
	}
	return n
}

// cleanDefaults drops overrides on empty slots and overrides equal to the
// key's own default.
func cleanDefaults(k *Key) {
	k.clean()
	for i := range k.Labels {
		if k.TextColor[i] == k.Default.TextColor {
			k.TextColor[i] = ""
		}
		if k.TextSize[i] == k.Default.TextSize {
			k.TextSize[i] = 0
		}
	}
}

// bestAlignment picks the alignment whose serialized legend list is
// shortest, preferring higher alignments on ties. Keys without legends keep
// the running alignment.
func bestAlignment(labels [Slots]string, running int) (int, []string) {
	if labels == ([Slots]string{}) {
		// keyboard-layout-editor.com emits a:0 here instead.
		return running, nil
	}
	best, bestOut := -1, []string(nil)
	for a := numAlignments - 1; a >= 0; a-- {
		out, ok := reorderOut(labels, a, "")
		if !ok {
			continue
		}
		if best < 0 || len(out) < len(bestOut) {
			best, bestOut = a, out
		}
	}
	return best, bestOut
}

// metadataDiff returns the attributes that differ from default metadata, in
// standard order followed by custom attributes.
func metadataDiff(m *KeyboardMetadata) Props {
	def := NewKeyboardMetadata()
	var p Props
	for _, name := range m.Names() {
		v, _ := m.Get(name)
		switch dv, std := def.Get(name); {
		case name == MetaBackground:
			if m.Background == nil {
				continue
			}
		case std && v == dv:
			continue
		}
		p = p.Set(name, v)
	}
	return p
}
