package window

import (
	"github.com/pkg/errors"

	"github.com/outofforest/seedhash/types"
)

// Encode returns the code of the nucleotide. Only unambiguous bases are accepted.
func Encode(b byte) (types.Base, bool) {
	switch b {
	case 'A', 'a':
		return types.BaseA, true
	case 'C', 'c':
		return types.BaseC, true
	case 'G', 'g':
		return types.BaseG, true
	case 'T', 't':
		return types.BaseT, true
	default:
		return 0, false
	}
}

// Pack packs the sequence so its last base lands on bit 0.
func Pack(seq []byte) (types.PackedWindow, error) {
	if len(seq) > types.PlaneBits {
		return types.PackedWindow{}, errors.Errorf("sequence of %d bases does not fit in the window", len(seq))
	}

	var a Accumulator
	for i, b := range seq {
		if !a.AddBase(b) {
			return types.PackedWindow{}, errors.Errorf("invalid base %q at position %d", b, i)
		}
	}
	return a.Window(), nil
}

// Accumulator keeps the packed window of the most recent bases.
type Accumulator struct {
	v0, v1 uint64
	soFar  uint64
}

// Add shifts the base into the window.
func (a *Accumulator) Add(code types.Base) {
	a.v0 = a.v0<<1 | uint64(code>>1)
	a.v1 = a.v1<<1 | uint64(code&1)
	a.soFar++
}

// AddBase encodes and adds the nucleotide. Ambiguous base resets the window.
func (a *Accumulator) AddBase(b byte) bool {
	code, ok := Encode(b)
	if !ok {
		a.Reset()
		return false
	}
	a.Add(code)
	return true
}

// Window returns the packed window.
func (a *Accumulator) Window() types.PackedWindow {
	return types.PackedWindow{V0: a.v0, V1: a.v1}
}

// SoFar returns the number of bases added since the last reset.
func (a *Accumulator) SoFar() uint64 {
	return a.soFar
}

// Reset clears the window.
func (a *Accumulator) Reset() {
	*a = Accumulator{}
}
