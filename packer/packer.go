package packer

import (
	"math/bits"

	"github.com/pkg/errors"

	"github.com/outofforest/seedhash/types"
)

// MaxTerms is the maximum number of contiguous runs a permutation may move.
const MaxTerms = 4

// Segment moves Length bits starting at bit Source of a plane to bit Dest of the output.
type Segment struct {
	Source uint8
	Length uint8
	Dest   uint8
}

// Segments converts the list of source bits, where output bit i is taken from sources[i],
// into the minimal list of segments.
func Segments(sources []int) []Segment {
	segments := make([]Segment, 0, MaxTerms)
	for i, s := range sources {
		if i > 0 && sources[i-1]+1 == s {
			segments[len(segments)-1].Length++
			continue
		}
		segments = append(segments, Segment{
			Source: uint8(s),
			Length: 1,
			Dest:   uint8(i),
		})
	}
	return segments
}

type term struct {
	sel   uint64
	right uint8
	left  uint8
}

// NewPermutation compiles segments into permutation.
func NewPermutation(segments ...Segment) (Permutation, error) {
	var p Permutation
	if len(segments) > MaxTerms {
		return p, errors.Errorf("%d segments exceed the limit of %d", len(segments), MaxTerms)
	}

	var dest uint64
	for i, s := range segments {
		if s.Length == 0 {
			return p, errors.Errorf("segment %d is empty", i)
		}
		if int(s.Source)+int(s.Length) > types.PlaneBits {
			return p, errors.Errorf("segment %d reads bits [%d, %d) outside the plane", i, s.Source,
				int(s.Source)+int(s.Length))
		}
		if int(s.Dest)+int(s.Length) > types.PlaneBits {
			return p, errors.Errorf("segment %d writes bits [%d, %d) outside the plane", i, s.Dest,
				int(s.Dest)+int(s.Length))
		}

		m := rangeMask(s.Dest, s.Length)
		if dest&m != 0 {
			return p, errors.Errorf("segment %d overwrites output bits", i)
		}
		dest |= m

		t := term{sel: rangeMask(s.Source, s.Length)}
		if s.Source > s.Dest {
			t.right = s.Source - s.Dest
		} else {
			t.left = s.Dest - s.Source
		}
		p.terms[i] = t
	}
	p.dest = dest

	return p, nil
}

// Permutation relocates runs of plane bits. Unused terms select nothing.
type Permutation struct {
	terms [MaxTerms]term
	dest  uint64
}

// Apply applies permutation to a plane.
func (p *Permutation) Apply(v uint64) uint64 {
	t := &p.terms
	return (v&t[0].sel)>>t[0].right<<t[0].left |
		(v&t[1].sel)>>t[1].right<<t[1].left |
		(v&t[2].sel)>>t[2].right<<t[2].left |
		(v&t[3].sel)>>t[3].right<<t[3].left
}

// Window applies permutation to both planes of the window.
func (p *Permutation) Window(w types.PackedWindow) types.PackedWindow {
	return types.PackedWindow{
		V0: p.Apply(w.V0),
		V1: p.Apply(w.V1),
	}
}

// Sources returns the bits read by the permutation.
func (p *Permutation) Sources() uint64 {
	t := &p.terms
	return t[0].sel | t[1].sel | t[2].sel | t[3].sel
}

// Destinations returns the bits written by the permutation.
func (p *Permutation) Destinations() uint64 {
	return p.dest
}

// NewMask compiles segments into mask producing hashes of 2*width bits.
// Segments must write every output bit below width exactly once.
func NewMask(width uint8, segments ...Segment) (Mask, error) {
	if width == 0 || width > types.MaxWindowSize {
		return Mask{}, errors.Errorf("window size %d out of range [1, %d]", width, types.MaxWindowSize)
	}

	p, err := NewPermutation(segments...)
	if err != nil {
		return Mask{}, err
	}
	if p.dest != rangeMask(0, width) {
		return Mask{}, errors.Errorf("segments do not cover output bits [0, %d) exactly", width)
	}

	return Mask{
		perm:  p,
		width: width,
	}, nil
}

// Mask selects bases of a window and packs them into a hash.
type Mask struct {
	perm  Permutation
	width uint8
}

// Hash computes the hash of the window.
func (m *Mask) Hash(v0, v1 uint64) types.WindowHash {
	return types.WindowHash(m.perm.Apply(v0)<<m.width | m.perm.Apply(v1))
}

// Width returns the number of bases selected by the mask.
func (m *Mask) Width() int {
	return int(m.width)
}

// Positions returns the window bits selected by the mask.
func (m *Mask) Positions() uint64 {
	return m.perm.Sources()
}

// Equal tells if both masks produce the same hashes.
func (m *Mask) Equal(m2 *Mask) bool {
	return m.width == m2.width && m.perm.terms == m2.perm.terms
}

func rangeMask(from, length uint8) uint64 {
	if length >= types.PlaneBits {
		return ^uint64(0)
	}
	return (uint64(1)<<length - 1) << from
}

// Count returns the number of bits set in the mask.
func Count(mask uint64) int {
	return bits.OnesCount64(mask)
}
