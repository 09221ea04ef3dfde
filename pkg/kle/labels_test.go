package kle

import (
	"reflect"
	"testing"
)

func TestLabelMapsAreInverse(t *testing.T) {
	for a := range numAlignments {
		for i, s := range labelMap[a] {
			if s < 0 {
				continue
			}
			if got := slotMap[a][s]; got != i {
				t.Errorf("a=%d: slotMap[%d] = %d, want %d", a, s, got, i)
			}
		}
		for s, i := range slotMap[a] {
			if i < 0 {
				continue
			}
			if got := labelMap[a][i]; got != s {
				t.Errorf("a=%d: labelMap[%d] = %d, want %d", a, i, got, s)
			}
		}
	}
}

func TestReorderIn(t *testing.T) {
	got := reorderIn([]string{"A", "", "C", "", "", "", "", "", "", "", "", "", "ignored"}, AlignFront, "-")
	want := [Slots]string{"A", "-", "C", "-", "-", "-", "-", "-", "-", "-", "-", "-"}
	if got != want {
		t.Errorf("reorderIn = %q, want %q", got, want)
	}

	// Position 2 cannot be expressed with centered x.
	got = reorderIn([]string{"A", "B", "C"}, AlignCenterX, "")
	want = labels("", "A", "", "", "", "", "", "B")
	if got != want {
		t.Errorf("reorderIn(a=1) = %q, want %q", got, want)
	}
}

func TestReorderOut(t *testing.T) {
	tests := []struct {
		name   string
		in     [Slots]string
		align  int
		want   []string
		wantOK bool
	}{
		{"Empty", labels(), AlignFront, []string{}, true},
		{"TopLeft", labels("A"), AlignFront, []string{"A"}, true},
		{"TrimsTrailing", labels("A", "", "", "", "", "", "B"), AlignFront, []string{"A", "B"}, true},
		{"KeepsGaps", labels("A", "", "", "", "", "", "", "", "D"), AlignNone, []string{"A", "", "", "D"}, true},
		{"Unrepresentable", labels("A"), AlignCenter, nil, false},
		{"FrontCenter", labels("", "", "", "", "", "", "", "", "", "", "F"), AlignFrontCenter, []string{"", "", "", "", "F"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := reorderOut(tt.in, tt.align, "")
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if ok && !reflect.DeepEqual(got, tt.want) {
				t.Errorf("reorderOut = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestBestAlignment(t *testing.T) {
	tests := []struct {
		name      string
		labels    [Slots]string
		running   int
		wantAlign int
		wantOut   []string
	}{
		{"Blank", labels(), AlignCenter, AlignCenter, nil},
		{"TopLeft", labels("A"), AlignNone, AlignFront, []string{"A"}},
		{"CenterTieGoesHigh", labels("", "", "", "", "x"), AlignFront, AlignFrontCenter, []string{"x"}},
		{"Front", labels("", "", "", "", "", "", "", "", "", "F"), AlignFront, AlignCenter, []string{"", "", "", "", "F"}},
		{"All", labels("0", "1", "2", "3", "4", "5", "6", "7", "8", "9", "10", "11"), AlignFront, AlignNone,
			[]string{"0", "6", "2", "8", "9", "11", "3", "5", "1", "4", "7", "10"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, out := bestAlignment(tt.labels, tt.running)
			if a != tt.wantAlign {
				t.Errorf("align = %d, want %d", a, tt.wantAlign)
			}
			if !reflect.DeepEqual(out, tt.wantOut) {
				t.Errorf("labels = %q, want %q", out, tt.wantOut)
			}
		})
	}
}

func TestSlotLookups(t *testing.T) {
	if got := ModelSlot(AlignFront, 1); got != 6 {
		t.Errorf("ModelSlot(4, 1) = %d, want 6", got)
	}
	if got := ModelSlot(AlignFront, 5); got != -1 {
		t.Errorf("ModelSlot(4, 5) = %d, want -1", got)
	}
	if got := SerializedIndex(AlignNone, 10); got != 11 {
		t.Errorf("SerializedIndex(0, 10) = %d, want 11", got)
	}
	if got := SerializedIndex(9, 0); got != -1 {
		t.Errorf("SerializedIndex(9, 0) = %d, want -1", got)
	}
	if ValidAlignment(8) || ValidAlignment(-1) || !ValidAlignment(0) {
		t.Error("ValidAlignment bounds")
	}
}
