package kle

import (
	"encoding/json"
	"errors"
	"reflect"
	"strings"
	"testing"
)

func parse(t *testing.T, s string) any {
	t.Helper()
	var v any
	if err := json.Unmarshal([]byte(s), &v); err != nil {
		t.Fatalf("parse %s: %v", s, err)
	}
	return v
}

func mustDeserialize(t *testing.T, s string) *Keyboard {
	t.Helper()
	kbd, err := Deserialize(parse(t, s))
	if err != nil {
		t.Fatalf("Deserialize(%s): %v", s, err)
	}
	return kbd
}

// assertJSON compares got against a JSON literal, ignoring key order.
func assertJSON(t *testing.T, got any, want string) {
	t.Helper()
	data, err := json.Marshal(got)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var g, w any
	if err := json.Unmarshal(data, &g); err != nil {
		t.Fatalf("unmarshal got: %v", err)
	}
	if err := json.Unmarshal([]byte(want), &w); err != nil {
		t.Fatalf("unmarshal want: %v", err)
	}
	if !reflect.DeepEqual(g, w) {
		t.Errorf("got  %s\nwant %s", data, want)
	}
}

func labels(ls ...string) [Slots]string {
	var out [Slots]string
	copy(out[:], ls)
	return out
}

func TestNewKey(t *testing.T) {
	k := NewKey()
	if k.Color != "#cccccc" {
		t.Errorf("Color = %q, want #cccccc", k.Color)
	}
	if k.Default.TextColor != "#000000" || k.Default.TextSize != 3 {
		t.Errorf("Default = %+v, want {#000000 3}", k.Default)
	}
	if k.Width != 1 || k.Height != 1 || k.Width2 != 1 || k.Height2 != 1 {
		t.Errorf("size = %vx%v (%vx%v), want 1x1", k.Width, k.Height, k.Width2, k.Height2)
	}
	if k.Labels != ([Slots]string{}) {
		t.Errorf("Labels = %q, want empty", k.Labels)
	}
}

func TestKeyUnmarshalDefaults(t *testing.T) {
	var k Key
	if err := json.Unmarshal([]byte(`{"labels":["A"],"x":2,"sm":"cherry"}`), &k); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if k.Labels[0] != "A" || k.X != 2 || k.SwitchMount != "cherry" {
		t.Errorf("decoded fields lost: %+v", k)
	}
	if k.Width != 1 || k.Color != DefaultKeyColor || k.Default.TextSize != DefaultTextSize {
		t.Errorf("omitted fields not defaulted: %+v", k)
	}
}

func TestKeyboardJSON(t *testing.T) {
	kbd := NewKeyboard()
	kbd.Meta.Name = "60%"
	kbd.Meta.Set("layoutVersion", "2")
	kbd.Keys = append(kbd.Keys, NewKey())

	data, err := json.Marshal(kbd)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if strings.Contains(string(data), `"background"`) {
		t.Errorf("nil background should be omitted: %s", data)
	}

	var got Keyboard
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.Meta.Name != "60%" {
		t.Errorf("Name = %q, want 60%%", got.Meta.Name)
	}
	if v, _ := got.Meta.Get("layoutVersion"); v != "2" {
		t.Errorf("layoutVersion = %v, want 2", v)
	}
	if !reflect.DeepEqual(got.Keys, kbd.Keys) {
		t.Errorf("Keys = %+v, want %+v", got.Keys, kbd.Keys)
	}
}

func TestKeyboardUnmarshalMissingMeta(t *testing.T) {
	var kbd Keyboard
	if err := json.Unmarshal([]byte(`{"keys":[{"x":1}]}`), &kbd); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if kbd.Meta.Backcolor != DefaultBackColor {
		t.Errorf("Backcolor = %q, want %q", kbd.Meta.Backcolor, DefaultBackColor)
	}
	if len(kbd.Keys) != 1 || kbd.Keys[0].Width != 1 {
		t.Errorf("Keys = %+v", kbd.Keys)
	}
}

func TestMetadataBackground(t *testing.T) {
	var m KeyboardMetadata
	m.Set(MetaBackground, map[string]any{"name": "Carbon", "style": "background-image: url('/bg/carbon.png')"})
	if m.Background == nil || m.Background.Name != "Carbon" {
		t.Fatalf("Background = %+v", m.Background)
	}
	m.Set(MetaBackground, "not a mapping")
	if m.Background != nil {
		t.Errorf("Background = %+v, want nil", m.Background)
	}
}

func TestPropsOrder(t *testing.T) {
	var p Props
	p = p.Set("y", 1).Set("x", 2).Set("y", 3)

	data, err := json.Marshal(p)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if got, want := string(data), `{"y":3,"x":2}`; got != want {
		t.Errorf("json = %s, want %s", got, want)
	}
	if !p.Has("x") || p.Has("z") {
		t.Errorf("Has mismatch for %v", p.Keys())
	}
	if got, _ := json.Marshal(Props(nil)); string(got) != "{}" {
		t.Errorf("nil props = %s, want {}", got)
	}
}

func TestFormatError(t *testing.T) {
	_, err := Deserialize("test")
	var fe *FormatError
	if !errors.As(err, &fe) {
		t.Fatalf("err = %v, want *FormatError", err)
	}
	if fe.Value != "test" {
		t.Errorf("Value = %v, want test", fe.Value)
	}
	if !strings.HasPrefix(err.Error(), "kle: expected an array") {
		t.Errorf("Error() = %q", err.Error())
	}
}

func TestTruthy(t *testing.T) {
	tests := []struct {
		in   any
		want bool
	}{
		{nil, false},
		{false, false},
		{true, true},
		{"", false},
		{"0", true},
		{0.0, false},
		{2, true},
		{json.Number("0"), false},
		{json.Number("1.5"), true},
		{[]any{}, true},
		{map[string]any{}, true},
	}
	for _, tt := range tests {
		if got := truthy(tt.in); got != tt.want {
			t.Errorf("truthy(%#v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
