package kle

// Alignment values for the "a" attribute.
const (
	AlignNone         = 0
	AlignCenterX      = 1
	AlignCenterY      = 2
	AlignCenter       = 3
	AlignFront        = 4
	AlignFrontCenterX = 5
	AlignFrontCenterY = 6
	AlignFrontCenter  = 7

	numAlignments = 8
)

// labelMap maps a serialized legend index to a model slot for each
// alignment. -1 marks serialized positions that alignment cannot express.
var labelMap = [numAlignments][Slots]int{
	{0, 6, 2, 8, 9, 11, 3, 5, 1, 4, 7, 10},
	{1, 7, -1, -1, 9, 11, 4, -1, -1, -1, -1, 10},
	{3, -1, 5, -1, 9, 11, -1, -1, 4, -1, -1, 10},
	{4, -1, -1, -1, 9, 11, -1, -1, -1, -1, -1, 10},
	{0, 6, 2, 8, 10, -1, 3, 5, 1, 4, 7, -1},
	{1, 7, -1, -1, 10, -1, 4, -1, -1, -1, -1, -1},
	{3, -1, 5, -1, 10, -1, -1, -1, 4, -1, -1, -1},
	{4, -1, -1, -1, 10, -1, -1, -1, -1, -1, -1, -1},
}

// slotMap is the inverse of labelMap: model slot to serialized index.
var slotMap = [numAlignments][Slots]int{
	{0, 8, 2, 6, 9, 7, 1, 10, 3, 4, 11, 5},
	{-1, 0, -1, -1, 6, -1, -1, 1, -1, 4, 11, 5},
	{-1, -1, -1, 0, 8, 2, -1, -1, -1, 4, 11, 5},
	{-1, -1, -1, -1, 0, -1, -1, -1, -1, 4, 11, 5},
	{0, 8, 2, 6, 9, 7, 1, 10, 3, -1, 4, -1},
	{-1, 0, -1, -1, 6, -1, -1, 1, -1, -1, 4, -1},
	{-1, -1, -1, 0, 8, 2, -1, -1, -1, -1, 4, -1},
	{-1, -1, -1, -1, 0, -1, -1, -1, -1, -1, 4, -1},
}

// ValidAlignment reports whether a is one of the eight alignments.
func ValidAlignment(a int) bool {
	return a >= 0 && a < numAlignments
}

// ModelSlot returns the model slot that serialized index i occupies under
// alignment a, or -1 when it has none.
func ModelSlot(a, i int) int {
	if !ValidAlignment(a) || i < 0 || i >= Slots {
		return -1
	}
	return labelMap[a][i]
}

// SerializedIndex returns the serialized index of model slot s under
// alignment a, or -1 when the slot cannot be expressed.
func SerializedIndex(a, s int) int {
	if !ValidAlignment(a) || s < 0 || s >= Slots {
		return -1
	}
	return slotMap[a][s]
}

// reorderIn spreads serialized values onto model slots. Zero values, indices
// past the last slot and positions the alignment cannot express are skipped.
func reorderIn[T comparable](values []T, align int, fill T) [Slots]T {
	var ret [Slots]T
	for i := range ret {
		ret[i] = fill
	}
	var zero T
	for i, v := range values {
		if i >= Slots {
			break
		}
		if v == zero {
			continue
		}
		if s := labelMap[align][i]; s >= 0 {
			ret[s] = v
		}
	}
	return ret
}

// reorderOut folds model slots back into serialized order and trims trailing
// fill values. ok is false if any non-zero slot is not expressible.
func reorderOut[T comparable](values [Slots]T, align int, fill T) (out []T, ok bool) {
	out = make([]T, Slots)
	for i := range out {
		out[i] = fill
	}
	var zero T
	for s, v := range values {
		if v == zero {
			continue
		}
		i := slotMap[align][s]
		if i < 0 {
			return nil, false
		}
		out[i] = v
	}
	for len(out) > 0 && out[len(out)-1] == fill {
		out = out[:len(out)-1]
	}
	return out, true
}
