package kle

import (
	"encoding/json"
	"maps"
	"slices"
)

// Slots is the number of legend positions on a key.
const Slots = 12

// Default property values for a fresh key.
const (
	DefaultKeyColor  = "#cccccc"
	DefaultTextColor = "#000000"
	DefaultTextSize  = 3
	DefaultAlignment = 4
)

// Default property values for fresh keyboard metadata.
const (
	DefaultBackColor = "#eeeeee"
)

// TextDefaults holds the fallback text color and size used by every legend
// slot whose override is empty.
type TextDefaults struct {
	TextColor string  `json:"textColor"`
	TextSize  float64 `json:"textSize"`
}

// Key is a single keycap in normalized form.
//
// Labels, TextColor and TextSize are indexed by model slot (see the package
// documentation for the slot grid). An empty label means the slot is unused;
// an empty color or a zero size means the slot falls back to Default.
type Key struct {
	Color     string         `json:"color"`
	Labels    [Slots]string  `json:"labels"`
	TextColor [Slots]string  `json:"textColor"`
	TextSize  [Slots]float64 `json:"textSize"`
	Default   TextDefaults   `json:"default"`

	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`

	// Secondary rectangle, used by stepped and L-shaped keys (ISO enter).
	X2      float64 `json:"x2"`
	Y2      float64 `json:"y2"`
	Width2  float64 `json:"width2"`
	Height2 float64 `json:"height2"`

	RotationX     float64 `json:"rotation_x"`
	RotationY     float64 `json:"rotation_y"`
	RotationAngle float64 `json:"rotation_angle"`

	Decal   bool `json:"decal"`
	Ghost   bool `json:"ghost"`
	Stepped bool `json:"stepped"`
	Nub     bool `json:"nub"`

	Profile     string `json:"profile"`
	SwitchMount string `json:"sm"`
	SwitchBrand string `json:"sb"`
	SwitchType  string `json:"st"`
}

// NewKey returns a key with default properties: a 1x1 cap at the origin,
// no legends, black size-3 text.
func NewKey() Key {
	return Key{
		Color: DefaultKeyColor,
		Default: TextDefaults{
			TextColor: DefaultTextColor,
			TextSize:  DefaultTextSize,
		},
		Width:   1,
		Height:  1,
		Width2:  1,
		Height2: 1,
	}
}

// UnmarshalJSON decodes a key, starting from [NewKey] so omitted fields keep
// their defaults.
func (k *Key) UnmarshalJSON(data []byte) error {
	type plain Key
	v := plain(NewKey())
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*k = Key(v)
	return nil
}

// clean clears overrides on empty slots, which every pass must enforce.
func (k *Key) clean() {
	for i := range k.Labels {
		if k.Labels[i] == "" {
			k.TextColor[i] = ""
			k.TextSize[i] = 0
		}
	}
}

// Background describes a keyboard background texture.
type Background struct {
	Name  string `json:"name"`
	Style string `json:"style"`
}

// KeyboardMetadata holds layout-wide attributes. Attributes that are not part
// of the standard set are preserved in Extra and round-trip unchanged.
type KeyboardMetadata struct {
	Author      string
	Backcolor   string
	Background  *Background
	Name        string
	Notes       string
	Radii       string
	SwitchBrand string
	SwitchMount string
	SwitchType  string

	Extra map[string]any
}

// Standard metadata attribute names, in serialization order.
const (
	MetaAuthor      = "author"
	MetaBackcolor   = "backcolor"
	MetaBackground  = "background"
	MetaName        = "name"
	MetaNotes       = "notes"
	MetaRadii       = "radii"
	MetaSwitchBrand = "switchBrand"
	MetaSwitchMount = "switchMount"
	MetaSwitchType  = "switchType"
)

var metadataFields = []string{
	MetaAuthor,
	MetaBackcolor,
	MetaBackground,
	MetaName,
	MetaNotes,
	MetaRadii,
	MetaSwitchBrand,
	MetaSwitchMount,
	MetaSwitchType,
}

// NewKeyboardMetadata returns metadata with default values.
func NewKeyboardMetadata() KeyboardMetadata {
	return KeyboardMetadata{Backcolor: DefaultBackColor}
}

// Get returns the value of a standard or custom attribute. The second result
// reports whether the attribute exists (standard attributes always exist).
func (m *KeyboardMetadata) Get(name string) (any, bool) {
	switch name {
	case MetaAuthor:
		return m.Author, true
	case MetaBackcolor:
		return m.Backcolor, true
	case MetaBackground:
		if m.Background == nil {
			return nil, true
		}
		return map[string]any{"name": m.Background.Name, "style": m.Background.Style}, true
	case MetaName:
		return m.Name, true
	case MetaNotes:
		return m.Notes, true
	case MetaRadii:
		return m.Radii, true
	case MetaSwitchBrand:
		return m.SwitchBrand, true
	case MetaSwitchMount:
		return m.SwitchMount, true
	case MetaSwitchType:
		return m.SwitchType, true
	}
	v, ok := m.Extra[name]
	return v, ok
}

// Set assigns an attribute. Standard string attributes are coerced to
// strings; background accepts a mapping with name and style. Anything else
// is stored as a custom attribute.
func (m *KeyboardMetadata) Set(name string, value any) {
	switch name {
	case MetaAuthor:
		m.Author = toString(value)
	case MetaBackcolor:
		m.Backcolor = toString(value)
	case MetaBackground:
		m.Background = toBackground(value)
	case MetaName:
		m.Name = toString(value)
	case MetaNotes:
		m.Notes = toString(value)
	case MetaRadii:
		m.Radii = toString(value)
	case MetaSwitchBrand:
		m.SwitchBrand = toString(value)
	case MetaSwitchMount:
		m.SwitchMount = toString(value)
	case MetaSwitchType:
		m.SwitchType = toString(value)
	default:
		if m.Extra == nil {
			m.Extra = make(map[string]any)
		}
		m.Extra[name] = value
	}
}

// Names returns the standard attribute names followed by the custom ones in
// sorted order.
func (m *KeyboardMetadata) Names() []string {
	names := slices.Clone(metadataFields)
	return append(names, slices.Sorted(maps.Keys(m.Extra))...)
}

// MarshalJSON writes the metadata as a flat object, custom attributes
// included.
func (m KeyboardMetadata) MarshalJSON() ([]byte, error) {
	var p Props
	for _, name := range m.Names() {
		v, _ := m.Get(name)
		if name == MetaBackground && v == nil {
			continue
		}
		p = p.Set(name, v)
	}
	return json.Marshal(p)
}

// UnmarshalJSON reads a flat object, starting from default values.
func (m *KeyboardMetadata) UnmarshalJSON(data []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*m = NewKeyboardMetadata()
	for _, name := range slices.Sorted(maps.Keys(raw)) {
		m.Set(name, raw[name])
	}
	return nil
}

// Keyboard is a complete layout: metadata plus keys in serialization order.
type Keyboard struct {
	Meta KeyboardMetadata `json:"meta"`
	Keys []Key            `json:"keys"`
}

// NewKeyboard returns an empty keyboard with default metadata.
func NewKeyboard() *Keyboard {
	return &Keyboard{Meta: NewKeyboardMetadata(), Keys: []Key{}}
}

// UnmarshalJSON decodes a keyboard, defaulting missing metadata.
func (k *Keyboard) UnmarshalJSON(data []byte) error {
	type plain Keyboard
	v := plain(*NewKeyboard())
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*k = Keyboard(v)
	return nil
}
