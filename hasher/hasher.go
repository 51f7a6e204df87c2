package hasher

import (
	"math/bits"

	"github.com/outofforest/seedhash/packer"
	"github.com/outofforest/seedhash/scheme"
	"github.com/outofforest/seedhash/types"
)

// Source reports the number of bases accumulated in the window.
type Source interface {
	SoFar() uint64
}

// New creates window hasher applying the scheme.
func New(
	s *scheme.Scheme,
	source Source,
	readCallback types.ReadCallback,
	templateCallback types.TemplateCallback,
) *Hasher {
	seeds := s.Seeds()
	variants := make([]variant, 0, s.TemplateCalls())
	for i := range seeds {
		for j := range seeds[i].Template {
			m := &seeds[i].Template[j]
			variants = append(variants, variant{
				mask:  m,
				seed:  types.SeedIndex(i),
				reach: uint64(bits.Len64(m.Positions())),
			})
		}
	}

	return &Hasher{
		seeds:            seeds,
		variants:         variants,
		source:           source,
		readLength:       uint64(s.ReadLength()),
		bias:             s.Bias(),
		readCallback:     readCallback,
		templateCallback: templateCallback,
	}
}

// variant is the template mask of the seed. Reach is the number of bases the mask needs.
type variant struct {
	mask  *packer.Mask
	seed  types.SeedIndex
	reach uint64
}

// Hasher emits seed hashes of windows.
type Hasher struct {
	seeds            []scheme.Seed
	variants         []variant
	source           Source
	readLength       uint64
	bias             types.Position
	readCallback     types.ReadCallback
	templateCallback types.TemplateCallback
}

// ReadAll reports hashes of all the seeds of the read window.
// Nothing is reported until the window holds the whole read.
func (h *Hasher) ReadAll(readID types.ReadID, v0, v1 uint64) {
	if h.source.SoFar() < h.readLength {
		return
	}
	for i := range h.seeds {
		h.readCallback.ReadCall(readID, h.seeds[i].Read.Hash(v0, v1), types.SeedIndex(i))
	}
}

// TemplateAll reports hashes of all the seed variants of the template window ending at the
// position, followed by a single call to Done. Variants of one seed are reported one after
// another, seeds in ascending order. Nothing is reported until the window holds one base more
// than the read. Variants selecting bases not accumulated yet (gap variants right after the
// window is reset) are skipped. Errors returned by the callback are passed through as they are.
func (h *Hasher) TemplateAll(position types.Position, v0, v1 uint64) error {
	soFar := h.source.SoFar()
	if soFar <= h.readLength {
		return nil
	}

	position += h.bias
	for i := range h.variants {
		v := &h.variants[i]
		if v.reach > soFar {
			continue
		}
		if err := h.templateCallback.TemplateCall(position, v.mask.Hash(v0, v1), v.seed); err != nil {
			return err
		}
	}
	return h.templateCallback.Done()
}
