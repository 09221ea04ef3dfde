package kle

import (
	"encoding/json"
	"math/rand"
	"reflect"
	"testing"
)

func TestRoundTrip(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"Empty", `[]`},
		{"Metadata", `[{"name":"test"}]`},
		{"MetadataWithKeys", `[{"author":"Test Author","backcolor":"#123456","name":"Test Keyboard","notes":"Test notes"},["A","B"]]`},
		{"Origin", `[["1"]]`},
		{"AdvanceByWidth", `[[{"x":1},"1","2"]]`},
		{"NewRow", `[[{"y":1},"1"],["2"]]`},
		{"GapInRow", `[["1",{"x":1},"2"]]`},
		{"GapBetweenRows", `[["1"],[{"y":1},"2"]]`},
		{"Offset", `[[{"x":1,"y":1},"1"]]`},
		{"SecondaryOffset", `[[{"x":1,"y":1,"x2":2,"y2":2},"1"]]`},
		{"RotationOrigin", `[[{"r":10,"rx":1,"ry":1,"y":-1.1,"x":2},"E"]]`},
		{"RotationCluster", `[[{"r":45,"rx":5,"ry":3,"x":1,"y":2},"A",{"x":0.5},"B"]]`},
		{"Width", `[[{"w":5},"1","2"]]`},
		{"Height", `[[{"h":5},"1","2"]]`},
		{"SecondarySize", `[[{"w":2,"h":2},"1",{"w":2,"h":2,"w2":4,"h2":4},"2"]]`},
		{"SteppedEnter", `[[{"w":2.25,"h":2,"w2":1.25,"h2":1,"x2":-0.75,"y2":1,"l":true},"Enter"]]`},
		{"Flags", `[[{"l":true,"n":true,"d":true},"1","2"]]`},
		{"Ghost", `[["0",{"g":true},"1","2",{"g":false},"3"]]`},
		{"DecalAndGhost", `[[{"d":true},"Decal",{"g":true},"Ghost"]]`},
		{"Profile", `[["0",{"p":"DSA"},"1","2",{"p":""},"3"]]`},
		{"ProfileAndNub", `[[{"p":"DSA","n":true},"F",{"p":"SA R1","n":true},"J","K"]]`},
		{"SwitchMount", `[["1",{"sm":"cherry"},"2","3",{"sm":""},"4"]]`},
		{"SwitchBrand", `[["1",{"sb":"cherry"},"2","3",{"sb":""},"4"]]`},
		{"SwitchType", `[["1",{"st":"MX1A-11Nx"},"2","3",{"st":""},"4"]]`},
		{"Switches", `[[{"sm":"cherry","sb":"gateron","st":"red"},"A",{"st":"blue"},"B"]]`},
		{"Colors", `[[{"c":"#ff0000","t":"#00ff00"},"1","2"]]`},
		{"ColorAllLegends", `[[{"a":0,"t":"#444444"},"0\n1\n2\n3\n4\n5\n6\n7\n8\n9\n10\n11"]]`},
		{"DefaultColorOnly", `[[{"t":"#ff0000"},"A"]]`},
		{"PerLegendColor", `[[{"t":"#ff0000"},"A",{"ta":"\n#00ff00"},"\nB"]]`},
		{"PerLegendColors", `[[{"t":"#ff0000","ta":"\n#00ff00\n\n#0000ff"},"A\nB\n\nD"]]`},
		{"PerLegendPropagation", `[[{"ta":"\n#ff0000"},"1\n1","1\n1"]]`},
		{"RowAlignments", `[["A"],[{"a":7},"B"]]`},
		{"Inheritance", `[[{"r":30,"rx":2,"ry":1,"w":1.5,"h":2,"c":"#ff0000","p":"Cherry","l":true,"n":true},"Key1","Key2"]]`},
		{"FontSizes", `[[{"f":2,"fa":[0,4,4]},"A\nB\nC",{"fa":[3,0,5,6]},"D\nE\nF\nG"]]`},
		{"CustomMetadata", `[{"name":"x","layoutVersion":2},["A"]]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertJSON(t, Serialize(mustDeserialize(t, tt.input)), tt.input)
		})
	}
}

// randomKey builds a key with values the serialized form can express:
// non-zero sizes, non-empty defaults and legends without line breaks.
func randomKey(rng *rand.Rand, prev *Key) Key {
	pick := func(vals ...string) string { return vals[rng.Intn(len(vals))] }
	colors := []string{"#000000", "#ffffff", "#ff0000", "#00ff00", "#0000ff", "#cccccc"}

	k := NewKey()
	if prev != nil && rng.Intn(3) > 0 {
		k.RotationAngle, k.RotationX, k.RotationY = prev.RotationAngle, prev.RotationX, prev.RotationY
		k.Y = prev.Y
		k.X = prev.X + prev.Width
	} else {
		k.RotationAngle = float64(rng.Intn(5)*15 - 30)
		k.RotationX = float64(rng.Intn(7) - 3)
		k.RotationY = float64(rng.Intn(7) - 3)
		k.X = float64(rng.Intn(21) - 10)
		k.Y = float64(rng.Intn(21) - 10)
	}
	if rng.Intn(4) == 0 {
		k.X += 0.25 * float64(rng.Intn(9)-4)
	}

	k.Width = float64(rng.Intn(4)+1) * 0.5
	k.Height = float64(rng.Intn(3) + 1)
	k.Width2, k.Height2 = k.Width, k.Height
	if rng.Intn(4) == 0 {
		k.Width2 = float64(rng.Intn(4) + 1)
		k.Height2 = float64(rng.Intn(3) + 1)
		k.X2 = float64(rng.Intn(5) - 2)
		k.Y2 = float64(rng.Intn(3))
	}

	k.Color = colors[rng.Intn(len(colors))]
	k.Default.TextColor = colors[rng.Intn(len(colors))]
	k.Default.TextSize = float64(rng.Intn(3) + 2)
	for i := range Slots {
		if rng.Intn(3) == 0 {
			k.Labels[i] = pick("A", "Esc", " ", "1", "Shift", "€")
		}
		if rng.Intn(2) == 0 {
			k.TextColor[i] = colors[rng.Intn(len(colors))]
		}
		if rng.Intn(2) == 0 {
			k.TextSize[i] = float64(rng.Intn(9) + 1)
		}
	}

	k.Decal = rng.Intn(5) == 0
	k.Ghost = rng.Intn(5) == 0
	k.Stepped = rng.Intn(5) == 0
	k.Nub = rng.Intn(5) == 0
	k.Profile = pick("", "DSA", "SA", "OEM")
	k.SwitchMount = pick("", "cherry", "alps")
	k.SwitchBrand = pick("", "gateron")
	k.SwitchType = pick("", "MX1A-11Nx", "red")
	return k
}

func randomKeyboard(rng *rand.Rand, n int) *Keyboard {
	kbd := NewKeyboard()
	var prev *Key
	for range n {
		k := randomKey(rng, prev)
		kbd.Keys = append(kbd.Keys, k)
		prev = &kbd.Keys[len(kbd.Keys)-1]
	}
	return kbd
}

func effectiveColor(k Key, i int) string {
	if k.TextColor[i] != "" {
		return k.TextColor[i]
	}
	return k.Default.TextColor
}

func effectiveSize(k Key, i int) float64 {
	if k.TextSize[i] != 0 {
		return k.TextSize[i]
	}
	return k.Default.TextSize
}

// sameGeometry compares everything except legend styling.
func sameGeometry(a, b Key) bool {
	a.TextColor, b.TextColor = [Slots]string{}, [Slots]string{}
	a.TextSize, b.TextSize = [Slots]float64{}, [Slots]float64{}
	a.Default, b.Default = TextDefaults{}, TextDefaults{}
	return a == b
}

func TestRoundTripRandomKeyboards(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for run := range 500 {
		kbd := randomKeyboard(rng, rng.Intn(20)+1)

		rows := Serialize(kbd)
		got, err := Deserialize(rows)
		if err != nil {
			t.Fatalf("run %d: Deserialize: %v", run, err)
		}
		if len(got.Keys) != len(kbd.Keys) {
			t.Fatalf("run %d: keys = %d, want %d", run, len(got.Keys), len(kbd.Keys))
		}

		for n, want := range kbd.Keys {
			k := got.Keys[n]
			if !sameGeometry(k, want) {
				t.Fatalf("run %d key %d:\n got %+v\nwant %+v", run, n, k, want)
			}
			for i := range Slots {
				if k.Labels[i] == "" {
					if k.TextColor[i] != "" || k.TextSize[i] != 0 {
						t.Fatalf("run %d key %d slot %d: overrides without legend", run, n, i)
					}
					continue
				}
				if effectiveColor(k, i) != effectiveColor(want, i) {
					t.Fatalf("run %d key %d slot %d: color %s, want %s", run, n, i, effectiveColor(k, i), effectiveColor(want, i))
				}
				if effectiveSize(k, i) != effectiveSize(want, i) {
					t.Fatalf("run %d key %d slot %d: size %v, want %v", run, n, i, effectiveSize(k, i), effectiveSize(want, i))
				}
			}
		}
	}
}

func TestSerializeIsIdempotent(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	for run := range 500 {
		kbd := randomKeyboard(rng, rng.Intn(20)+1)
		if rng.Intn(2) == 0 {
			kbd.Meta.Name = "random"
			kbd.Meta.Set("revision", float64(run+1))
		}

		first := Serialize(kbd)
		data, err := json.Marshal(first)
		if err != nil {
			t.Fatalf("run %d: marshal: %v", run, err)
		}

		// Go through JSON so the second pass sees decoder output.
		var tree any
		if err := json.Unmarshal(data, &tree); err != nil {
			t.Fatalf("run %d: unmarshal: %v", run, err)
		}
		again, err := Deserialize(tree)
		if err != nil {
			t.Fatalf("run %d: Deserialize: %v", run, err)
		}
		second, err := json.Marshal(Serialize(again))
		if err != nil {
			t.Fatalf("run %d: marshal: %v", run, err)
		}
		if string(second) != string(data) {
			t.Fatalf("run %d: not idempotent\nfirst  %s\nsecond %s", run, data, second)
		}

		// The model read back from canonical rows is itself stable.
		third, err := Deserialize(Serialize(again))
		if err != nil {
			t.Fatalf("run %d: Deserialize: %v", run, err)
		}
		if !reflect.DeepEqual(third.Keys, again.Keys) {
			t.Fatalf("run %d: model changed on second round trip", run)
		}
	}
}
