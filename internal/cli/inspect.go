package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/spf13/cast"
	"github.com/spf13/cobra"

	"github.com/matzehuels/kle/pkg/kle"
)

// alignmentNames describes the legend alignment values.
var alignmentNames = map[int]string{
	0: "none",
	1: "center x",
	2: "center y",
	3: "center x+y",
	4: "center front",
	5: "center front+x",
	6: "center front+y",
	7: "center front+x+y",
}

// layoutStats summarizes a keyboard for the inspect command.
type layoutStats struct {
	Keys       int            `json:"keys"`
	Rows       int            `json:"rows"`
	Clusters   int            `json:"clusters"`
	Decals     int            `json:"decals"`
	Ghosts     int            `json:"ghosts"`
	Bounds     bounds         `json:"bounds"`
	Profiles   map[string]int `json:"profiles"`
	Colors     map[string]int `json:"colors"`
	Alignments map[int]int    `json:"alignments"`
}

// bounds is the unrotated bounding box of all keys, in key units.
type bounds struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// computeStats gathers statistics for kbd. Row counts and alignments come
// from the canonical serialization, so they describe what normalize writes.
func computeStats(kbd *kle.Keyboard) layoutStats {
	s := layoutStats{
		Keys:       len(kbd.Keys),
		Profiles:   map[string]int{},
		Colors:     map[string]int{},
		Alignments: map[int]int{},
	}

	type origin struct{ angle, x, y float64 }
	clusters := map[origin]bool{}
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)

	for _, k := range kbd.Keys {
		clusters[origin{k.RotationAngle, k.RotationX, k.RotationY}] = true
		if k.Decal {
			s.Decals++
		}
		if k.Ghost {
			s.Ghosts++
		}
		profile := k.Profile
		if profile == "" {
			profile = "(default)"
		}
		s.Profiles[profile]++
		s.Colors[k.Color]++

		minX = math.Min(minX, math.Min(k.X, k.X+k.X2))
		minY = math.Min(minY, math.Min(k.Y, k.Y+k.Y2))
		maxX = math.Max(maxX, math.Max(k.X+k.Width, k.X+k.X2+k.Width2))
		maxY = math.Max(maxY, math.Max(k.Y+k.Height, k.Y+k.Y2+k.Height2))
	}
	s.Clusters = len(clusters)
	if s.Keys > 0 {
		s.Bounds = bounds{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
	}

	align := 4
	for _, item := range kle.Serialize(kbd) {
		row, ok := item.([]any)
		if !ok {
			continue
		}
		s.Rows++
		for _, v := range row {
			switch x := v.(type) {
			case kle.Props:
				if a, ok := x.Get("a"); ok {
					align = cast.ToInt(a)
				}
			case string:
				if x != "" {
					s.Alignments[align]++
				}
			}
		}
	}
	return s
}

// inspectCommand creates the inspect command.
func (c *CLI) inspectCommand() *cobra.Command {
	var (
		inFormat string
		asJSON   bool
	)

	cmd := &cobra.Command{
		Use:   "inspect [file|-]",
		Short: "Show layout metadata and key statistics",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kbd, err := c.readLayout(cmd.Context(), cmd.InOrStdin(), firstArg(args), inFormat)
			if err != nil {
				return err
			}
			stats := computeStats(kbd)
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(stats)
			}
			printInspect(cmd.OutOrStdout(), kbd, stats)
			return nil
		},
	}

	cmd.Flags().StringVar(&inFormat, "input-format", "", "stdin format: json, yaml, cbor (default json)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print statistics as JSON")
	return cmd
}

func printInspect(w io.Writer, kbd *kle.Keyboard, s layoutStats) {
	var meta [][2]string
	for _, name := range kbd.Meta.Names() {
		v, _ := kbd.Meta.Get(name)
		if str := metaString(v); str != "" {
			meta = append(meta, [2]string{name, str})
		}
	}
	if len(meta) > 0 {
		fmt.Fprintln(w, renderKeyValues("Metadata", meta))
		fmt.Fprintln(w)
	}

	summary := [][2]string{
		{"Keys", strconv.Itoa(s.Keys)},
		{"Rows", strconv.Itoa(s.Rows)},
		{"Clusters", strconv.Itoa(s.Clusters)},
		{"Size", fmt.Sprintf("%gu × %gu", round(s.Bounds.Width), round(s.Bounds.Height))},
	}
	if s.Decals > 0 {
		summary = append(summary, [2]string{"Decals", strconv.Itoa(s.Decals)})
	}
	if s.Ghosts > 0 {
		summary = append(summary, [2]string{"Ghosts", strconv.Itoa(s.Ghosts)})
	}
	fmt.Fprintln(w, renderKeyValues("Layout", summary))

	if s.Keys == 0 {
		return
	}

	aligns := make(map[string]int, len(s.Alignments))
	for a, n := range s.Alignments {
		aligns[fmt.Sprintf("%d %s", a, alignmentNames[a])] = n
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, joinBlocks(
		renderCounts("Profile", s.Profiles),
		renderCounts("Color", s.Colors),
		renderCounts("Alignment", aligns),
	))
}

// metaString formats a metadata value for display.
func metaString(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case map[string]any:
		if name, ok := x["name"].(string); ok {
			return name
		}
	case string:
		return x
	}
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(data)
}

func round(f float64) float64 {
	return math.Round(f*1000) / 1000
}

// pluralize returns "1 key", "2 keys".
func pluralize(n int, noun string) string {
	if n == 1 {
		return "1 " + noun
	}
	return strconv.Itoa(n) + " " + noun + "s"
}
