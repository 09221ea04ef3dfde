package io

import (
	"bytes"
	"context"
	stderrors "errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/matzehuels/kle/pkg/errors"
	"github.com/matzehuels/kle/pkg/kle"
	"github.com/matzehuels/kle/pkg/observability"
)

const sampleLayout = `[
	{"name": "sample", "author": "me", "background": {"name": "Carbon", "style": "background-image: url('/bg/carbon.png')"}, "revision": 3},
	[{"c": "#444444", "t": "#ffffff"}, "Esc", {"x": 1}, "F1", "F2"],
	[{"a": 7, "f": 4}, "<i class='kb kb-Unicode-Arrow-Up'></i>", {"w": 2.25, "fa": [6]}, "Enter"],
	[{"r": 15, "rx": 4, "ry": 3, "y": -0.5, "p": "DSA", "a": 4}, "Space", {"ta": "\n#ff0000"}, "A\nB"]
]`

func mustRead(t *testing.T, s string) *kle.Keyboard {
	t.Helper()
	kbd, err := Read(context.Background(), strings.NewReader(s), FormatJSON)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	return kbd
}

func canonical(t *testing.T, kbd *kle.Keyboard) string {
	t.Helper()
	var buf bytes.Buffer
	if err := Write(context.Background(), &buf, kbd, Options{}); err != nil {
		t.Fatalf("Write: %v", err)
	}
	return buf.String()
}

func TestDetectPath(t *testing.T) {
	tests := []struct {
		path     string
		wantFmt  Format
		wantComp Compression
		wantErr  bool
	}{
		{"layout.json", FormatJSON, CompressNone, false},
		{"dir/ergodox.kbd.json", FormatJSON, CompressNone, false},
		{"notes.JSONC", FormatJSON, CompressNone, false},
		{"layout.yaml", FormatYAML, CompressNone, false},
		{"layout.yml", FormatYAML, CompressNone, false},
		{"layout.cbor", FormatCBOR, CompressNone, false},
		{"layout.json.gz", FormatJSON, CompressGzip, false},
		{"layout.yaml.zst", FormatYAML, CompressZstd, false},
		{"layout.cbor.zstd", FormatCBOR, CompressZstd, false},

		{"layout.txt", "", "", true},
		{"layout.gz", "", "", true},
		{"layout", "", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			f, c, err := DetectPath(tt.path)
			if (err != nil) != tt.wantErr {
				t.Fatalf("DetectPath(%q) error = %v, wantErr %v", tt.path, err, tt.wantErr)
			}
			if err != nil {
				if !errors.Is(err, errors.ErrCodeUnsupported) {
					t.Errorf("error code = %v, want %v", errors.GetCode(err), errors.ErrCodeUnsupported)
				}
				return
			}
			if f != tt.wantFmt || c != tt.wantComp {
				t.Errorf("DetectPath(%q) = %q, %q, want %q, %q", tt.path, f, c, tt.wantFmt, tt.wantComp)
			}
		})
	}
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]Format{"": FormatJSON, "JSON": FormatJSON, "yml": FormatYAML, "cbor": FormatCBOR} {
		got, err := ParseFormat(in)
		if err != nil || got != want {
			t.Errorf("ParseFormat(%q) = %q, %v, want %q", in, got, err, want)
		}
	}
	if _, err := ParseFormat("toml"); !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("ParseFormat(toml) error = %v, want %s", err, errors.ErrCodeInvalidFormat)
	}
}

func TestExportImportRoundTrip(t *testing.T) {
	kbd := mustRead(t, sampleLayout)
	want := canonical(t, kbd)
	dir := t.TempDir()

	for _, name := range []string{
		"layout.json", "layout.kbd.json", "layout.yaml", "layout.cbor",
		"layout.json.gz", "layout.yaml.zst", "layout.cbor.gz",
	} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name)
			if err := Export(context.Background(), kbd, path, Options{}); err != nil {
				t.Fatalf("Export: %v", err)
			}
			got, err := Import(context.Background(), path)
			if err != nil {
				t.Fatalf("Import: %v", err)
			}
			if len(got.Keys) != len(kbd.Keys) {
				t.Fatalf("keys = %d, want %d", len(got.Keys), len(kbd.Keys))
			}
			if c := canonical(t, got); c != want {
				t.Errorf("round trip changed layout\n got %s\nwant %s", c, want)
			}
		})
	}
}

func TestExportFormatOverride(t *testing.T) {
	kbd := mustRead(t, `[["A"]]`)
	path := filepath.Join(t.TempDir(), "layout.txt")
	if err := Export(context.Background(), kbd, path, Options{Format: FormatYAML}); err != nil {
		t.Fatalf("Export: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if got := string(data); got != "- - A\n" {
		t.Errorf("output = %q, want %q", got, "- - A\n")
	}
}

func TestExportCompresses(t *testing.T) {
	kbd := mustRead(t, sampleLayout)
	dir := t.TempDir()
	for name, magic := range map[string][]byte{
		"layout.json.gz":  {0x1f, 0x8b},
		"layout.json.zst": {0x28, 0xb5, 0x2f, 0xfd},
	} {
		path := filepath.Join(dir, name)
		if err := Export(context.Background(), kbd, path, Options{}); err != nil {
			t.Fatalf("Export(%s): %v", name, err)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatal(err)
		}
		if !bytes.HasPrefix(data, magic) {
			t.Errorf("%s: missing magic %x, got %x", name, magic, data[:4])
		}
	}
}

func TestReadAcceptsComments(t *testing.T) {
	kbd := mustRead(t, `[
		// top row
		["Q", "W", /* inline */ "E",],
	]`)
	if len(kbd.Keys) != 3 || kbd.Keys[2].Labels[0] != "E" {
		t.Errorf("keys = %+v", kbd.Keys)
	}
}

func TestReadYAML(t *testing.T) {
	in := `
- name: yaml board
- - a: 7
    c: "#ff0000"
  - Esc
  - F1
- - w: 2
  - "0"
`
	kbd, err := Read(context.Background(), strings.NewReader(in), FormatYAML)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if kbd.Meta.Name != "yaml board" {
		t.Errorf("name = %q", kbd.Meta.Name)
	}
	if len(kbd.Keys) != 3 {
		t.Fatalf("keys = %d, want 3", len(kbd.Keys))
	}
	if k := kbd.Keys[0]; k.Labels[4] != "Esc" || k.Color != "#ff0000" {
		t.Errorf("key 0 = %+v", k)
	}
	if k := kbd.Keys[2]; k.Labels[4] != "0" || k.Width != 2 || k.Y != 1 {
		t.Errorf("key 2 = %+v", k)
	}
}

func TestReadErrors(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		format Format
		code   errors.Code
	}{
		{"MalformedJSON", `[["A"`, FormatJSON, errors.ErrCodeInvalidFormat},
		{"MalformedYAML", "- [a\n", FormatYAML, errors.ErrCodeInvalidFormat},
		{"MalformedCBOR", "\xff\xff", FormatCBOR, errors.ErrCodeInvalidFormat},
		{"NotAList", `{"name":"x"}`, FormatJSON, errors.ErrCodeInvalidLayout},
		{"LateMetadata", `[["A"],{"name":"x"}]`, FormatJSON, errors.ErrCodeInvalidLayout},
		{"UnknownFormat", `[]`, Format("toml"), errors.ErrCodeInvalidFormat},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Read(context.Background(), strings.NewReader(tt.input), tt.format)
			if err == nil {
				t.Fatal("expected error")
			}
			if !errors.Is(err, tt.code) {
				t.Errorf("code = %v, want %v (%v)", errors.GetCode(err), tt.code, err)
			}
		})
	}
}

func TestReadWrapsFormatError(t *testing.T) {
	_, err := ReadJSON(strings.NewReader(`[[{"r":10},"A",{"r":20},"B"]]`))
	var fe *kle.FormatError
	if !stderrors.As(err, &fe) {
		t.Fatalf("error %v does not wrap *kle.FormatError", err)
	}
	if !errors.Is(err, errors.ErrCodeInvalidLayout) {
		t.Errorf("code = %v, want %v", errors.GetCode(err), errors.ErrCodeInvalidLayout)
	}
}

func TestImportMissingFile(t *testing.T) {
	_, err := Import(context.Background(), filepath.Join(t.TempDir(), "missing.json"))
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("code = %v, want %v", errors.GetCode(err), errors.ErrCodeFileNotFound)
	}
}

func TestWriteJSONOptions(t *testing.T) {
	kbd := mustRead(t, `[{"name":"x"},["A","B"],[{"a":7},"<b>C</b>"]]`)

	tests := []struct {
		name string
		opts Options
		want string
	}{
		{"Default", Options{}, `[{"name":"x"},["A","B"],[{"a":7},"<b>C</b>"]]` + "\n"},
		{"Compact", Options{Compact: true}, "[{\"name\":\"x\"},\n[\"A\",\"B\"],\n[{\"a\":7},\"<b>C</b>\"]]\n"},
		{"Indent", Options{Indent: "  "}, "[\n  {\n    \"name\": \"x\"\n  },\n  [\n    \"A\",\n    \"B\"\n  ],\n  [\n    {\n      \"a\": 7\n    },\n    \"<b>C</b>\"\n  ]\n]\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := Write(context.Background(), &buf, kbd, tt.opts); err != nil {
				t.Fatalf("Write: %v", err)
			}
			if got := buf.String(); got != tt.want {
				t.Errorf("output:\n%s\nwant:\n%s", got, tt.want)
			}
		})
	}
}

func TestWriteYAMLKeepsPropertyOrder(t *testing.T) {
	kbd := mustRead(t, `[[{"c":"#ff0000","a":7,"w":2},"A"]]`)
	var buf bytes.Buffer
	if err := Write(context.Background(), &buf, kbd, Options{Format: FormatYAML}); err != nil {
		t.Fatalf("Write: %v", err)
	}
	out := buf.String()
	c, a, w := strings.Index(out, "c:"), strings.Index(out, "a:"), strings.Index(out, "w:")
	if c < 0 || a < 0 || w < 0 || !(c < a && a < w) {
		t.Errorf("unexpected property order:\n%s", out)
	}
}

func TestYAMLKeepsLeadingLineBreaks(t *testing.T) {
	kbd := mustRead(t, `[[{"t":"#ff0000"},"A",{"ta":"\n#00ff00"},"\nB","\n\nC\nD"]]`)

	var buf bytes.Buffer
	if err := Write(context.Background(), &buf, kbd, Options{Format: FormatYAML}); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, err := Read(context.Background(), &buf, FormatYAML)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(got.Keys) != len(kbd.Keys) {
		t.Fatalf("keys = %d, want %d", len(got.Keys), len(kbd.Keys))
	}
	for i := range kbd.Keys {
		if got.Keys[i].Labels != kbd.Keys[i].Labels {
			t.Errorf("key %d labels = %q, want %q", i, got.Keys[i].Labels, kbd.Keys[i].Labels)
		}
		if got.Keys[i].TextColor != kbd.Keys[i].TextColor {
			t.Errorf("key %d text colors = %q, want %q", i, got.Keys[i].TextColor, kbd.Keys[i].TextColor)
		}
	}
	if c, want := canonical(t, got), canonical(t, kbd); c != want {
		t.Errorf("YAML round trip changed layout\n got %s\nwant %s", c, want)
	}
}

func TestWriteCBORIsDeterministic(t *testing.T) {
	kbd := mustRead(t, sampleLayout)
	var first, second bytes.Buffer
	for _, buf := range []*bytes.Buffer{&first, &second} {
		if err := Write(context.Background(), buf, kbd, Options{Format: FormatCBOR}); err != nil {
			t.Fatalf("Write: %v", err)
		}
	}
	if !bytes.Equal(first.Bytes(), second.Bytes()) {
		t.Error("CBOR output differs between runs")
	}
}

func TestModelRoundTrip(t *testing.T) {
	kbd := mustRead(t, sampleLayout)
	var buf bytes.Buffer
	if err := WriteModel(&buf, kbd); err != nil {
		t.Fatalf("WriteModel: %v", err)
	}
	if !strings.Contains(buf.String(), `"rotation_angle": 15`) {
		t.Errorf("model output missing rotation:\n%s", buf.String())
	}
	got, err := ReadModel(&buf)
	if err != nil {
		t.Fatalf("ReadModel: %v", err)
	}
	if canonical(t, got) != canonical(t, kbd) {
		t.Error("model round trip changed layout")
	}
}

func TestReadModelDefaults(t *testing.T) {
	kbd, err := ReadModel(strings.NewReader(`{"keys":[{"labels":["A"],"x":2}]}`))
	if err != nil {
		t.Fatalf("ReadModel: %v", err)
	}
	if kbd.Meta.Backcolor != kle.DefaultBackColor {
		t.Errorf("backcolor = %q", kbd.Meta.Backcolor)
	}
	if k := kbd.Keys[0]; k.Width != 1 || k.Height != 1 || k.X != 2 {
		t.Errorf("key = %+v", k)
	}
	if _, err := ReadModel(strings.NewReader(`{`)); !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("error = %v, want %s", err, errors.ErrCodeInvalidFormat)
	}
}

type recordingHooks struct {
	observability.NoopCodecHooks
	mu     sync.Mutex
	events []string
}

func (h *recordingHooks) OnDecode(_ context.Context, format string, keys int, _ time.Duration, err error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events = append(h.events, "decode:"+format+":"+strconv.Itoa(keys)+":"+errString(err))
}

func (h *recordingHooks) OnEncode(_ context.Context, format string, keys int, _ time.Duration, err error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events = append(h.events, "encode:"+format+":"+strconv.Itoa(keys)+":"+errString(err))
}

func errString(err error) string {
	if err != nil {
		return "err"
	}
	return "ok"
}

func TestCodecHooks(t *testing.T) {
	h := &recordingHooks{}
	observability.SetCodecHooks(h)
	defer observability.Reset()

	kbd := mustRead(t, `[["A","B"]]`)
	canonical(t, kbd)
	_, _ = Read(context.Background(), strings.NewReader(`{`), FormatYAML)

	want := []string{"decode:json:2:ok", "encode:json:2:ok", "decode:yaml:0:err"}
	if strings.Join(h.events, " ") != strings.Join(want, " ") {
		t.Errorf("events = %v, want %v", h.events, want)
	}
}
