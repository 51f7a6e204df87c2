package score

import (
	"math/bits"

	"github.com/outofforest/seedhash/types"
)

// WindowScorer scores layouts by counting mismatches against the template window ending at the
// read's last base.
type WindowScorer struct {
	Template types.PackedWindow

	// IndelPenalty is added when the layout is slid by one base.
	IndelPenalty int
}

// FastScore returns the number of mismatching bases.
func (s WindowScorer) FastScore(_ types.ReadID, layout Layout) int {
	return mismatches(s.Template, layout.Window, layout.Care)
}

// IndelScore returns the better of the fast score and the scores of the layout slid by one base
// in either direction. Base slid out of the window counts as mismatch.
func (s WindowScorer) IndelScore(readID types.ReadID, layout Layout) int {
	w := layout.Window
	up := mismatches(s.Template, types.PackedWindow{V0: w.V0 << 1, V1: w.V1 << 1}, layout.Care<<1) +
		int(layout.Care>>(types.PlaneBits-1))
	down := mismatches(s.Template, types.PackedWindow{V0: w.V0 >> 1, V1: w.V1 >> 1}, layout.Care>>1) +
		int(layout.Care&1)
	return min(s.FastScore(readID, layout), min(up, down)+s.IndelPenalty)
}

func mismatches(template, read types.PackedWindow, care uint64) int {
	return bits.OnesCount64(((template.V0 ^ read.V0) | (template.V1 ^ read.V1)) & care)
}
