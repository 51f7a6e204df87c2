package score

import (
	"math/bits"

	"github.com/pkg/errors"

	"github.com/outofforest/seedhash/packer"
	"github.com/outofforest/seedhash/scheme"
	"github.com/outofforest/seedhash/types"
)

// Layout is the read remapped so its bases land on the bits of the template window ending at
// the read's last base.
type Layout struct {
	Window types.PackedWindow
	// Length is the number of template bases spanned by the read.
	Length int
	// Care marks the bits carrying read bases.
	Care uint64
}

// Scorer scores read layouts. Lower score is better.
type Scorer interface {
	FastScore(readID types.ReadID, layout Layout) int
	IndelScore(readID types.ReadID, layout Layout) int
}

// NewHook creates scoring hook of the scheme. Contiguous reads are scored as they are.
// Split reads are remapped twice, once per score offset.
func NewHook(s *scheme.Scheme) (*Hook, error) {
	readLength := uint8(s.ReadLength())
	split := s.Split()
	if split == nil {
		p, err := packer.NewPermutation(packer.Segment{Length: readLength})
		if err != nil {
			return nil, err
		}
		return &Hook{permutations: [2]packer.Permutation{p, p}}, nil
	}

	h := &Hook{}
	for i, offset := range split.ScoreOffsets {
		segments, err := splitSegments(readLength, uint8(split.At), offset)
		if err != nil {
			return nil, err
		}
		h.permutations[i], err = packer.NewPermutation(segments...)
		if err != nil {
			return nil, err
		}
	}
	return h, nil
}

// Hook remaps reads before they are scored.
type Hook struct {
	permutations [2]packer.Permutation
}

// Layouts returns both layouts of the packed read.
func (h *Hook) Layouts(read types.PackedWindow) [2]Layout {
	return [2]Layout{
		layout(&h.permutations[0], read),
		layout(&h.permutations[1], read),
	}
}

// FastScore returns the better fast score of both layouts.
func (h *Hook) FastScore(scorer Scorer, readID types.ReadID, read types.PackedWindow) int {
	layouts := h.Layouts(read)
	return min(scorer.FastScore(readID, layouts[0]), scorer.FastScore(readID, layouts[1]))
}

// IndelScore returns the better indel score of both layouts.
func (h *Hook) IndelScore(scorer Scorer, readID types.ReadID, read types.PackedWindow) int {
	layouts := h.Layouts(read)
	return min(scorer.IndelScore(readID, layouts[0]), scorer.IndelScore(readID, layouts[1]))
}

func layout(p *packer.Permutation, read types.PackedWindow) Layout {
	return Layout{
		Window: p.Window(read),
		Length: bits.Len64(p.Destinations()),
		Care:   p.Destinations(),
	}
}

// splitSegments keeps the trailing segment in place. On gap the leading segment moves up by
// the offset, on overlap its bases duplicating the trailing segment are dropped.
func splitSegments(readLength, at uint8, offset int) ([]packer.Segment, error) {
	trailing := packer.Segment{Length: at}
	switch {
	case offset > 0:
		return []packer.Segment{
			trailing,
			{Source: at, Length: readLength - at, Dest: at + uint8(offset)},
		}, nil
	case offset < 0 && -offset < int(readLength-at):
		return []packer.Segment{
			trailing,
			{Source: at + uint8(-offset), Length: readLength - at - uint8(-offset), Dest: at},
		}, nil
	default:
		return nil, errors.Errorf("score offset %d is not supported", offset)
	}
}
