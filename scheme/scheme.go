package scheme

import (
	"slices"

	"github.com/pkg/errors"
	"github.com/zeebo/blake3"

	"github.com/outofforest/photon"
	"github.com/outofforest/seedhash/packer"
	"github.com/outofforest/seedhash/types"
)

// Split describes a read sequenced as two segments separated by a gap or overlap of unknown size.
// The leading segment occupies window bits [At, ReadLength).
type Split struct {
	At int

	// Offsets are the candidate shifts of the leading segment on the template.
	// Positive offset is a gap, negative one is an overlap.
	Offsets []int

	// Bias is added to the template position reported for every variant.
	Bias int

	// ScoreOffsets are the two layouts tried by the scoring hook.
	ScoreOffsets [2]int
}

// Definition is the declarative description of a scheme.
type Definition struct {
	Name       string
	ReadLength int

	// Blocks of BlockSize bases tile window bits [0, Blocks*BlockSize).
	BlockSize int
	Blocks    int

	Substitutions int
	Indels        int
	Split         *Split
}

// Seed holds the masks of one seed slot.
type Seed struct {
	Read     packer.Mask
	Template []packer.Mask
}

// Scheme is the compiled, immutable seed scheme.
type Scheme struct {
	def           Definition
	windowSize    int
	seeds         []Seed
	templateCalls int
	fingerprint   [32]byte
}

// New compiles the definition.
func New(def Definition) (*Scheme, error) {
	if err := validate(def); err != nil {
		return nil, errors.Wrapf(err, "invalid scheme %q", def.Name)
	}

	dropped := def.Substitutions + def.Indels
	s := &Scheme{
		def:        def,
		windowSize: (def.Blocks - dropped) * def.BlockSize,
	}
	if def.Split != nil {
		split := *def.Split
		split.Offsets = slices.Clone(split.Offsets)
		s.def.Split = &split
	}

	for drop := range combinations(def.Blocks, dropped) {
		sources := make([]int, 0, s.windowSize)
		for b := range def.Blocks {
			if slices.Contains(drop, b) {
				continue
			}
			for i := range def.BlockSize {
				sources = append(sources, b*def.BlockSize+i)
			}
		}

		seed, err := s.compileSeed(sources, drop)
		if err != nil {
			return nil, errors.Wrapf(err, "scheme %q, seed %d", def.Name, len(s.seeds))
		}
		s.seeds = append(s.seeds, seed)
		s.templateCalls += len(seed.Template)
	}

	s.fingerprint = fingerprint(s)
	return s, nil
}

func (s *Scheme) compileSeed(sources, drop []int) (Seed, error) {
	read, err := s.mask(sources)
	if err != nil {
		return Seed{}, err
	}
	seed := Seed{
		Read:     read,
		Template: []packer.Mask{read},
	}

	switch {
	case s.def.Split != nil:
		split := s.def.Split
		if sources[len(sources)-1] < split.At {
			break
		}
		seed.Template = seed.Template[:0]
		for _, offset := range split.Offsets {
			if err := s.addVariant(&seed, shift(sources, split.At, offset)); err != nil {
				return Seed{}, err
			}
		}
	case s.def.Indels > 0:
		for _, b := range drop {
			above := (b + 1) * s.def.BlockSize
			for _, offset := range []int{-1, 1} {
				if err := s.addVariant(&seed, shift(sources, above, offset)); err != nil {
					return Seed{}, err
				}
			}
		}
	}

	return seed, nil
}

func (s *Scheme) addVariant(seed *Seed, sources []int) error {
	m, err := s.mask(sources)
	if err != nil {
		return err
	}
	for i := range seed.Template {
		if seed.Template[i].Equal(&m) {
			return nil
		}
	}
	seed.Template = append(seed.Template, m)
	return nil
}

func (s *Scheme) mask(sources []int) (packer.Mask, error) {
	for _, src := range sources {
		if src < 0 || src >= types.PlaneBits {
			return packer.Mask{}, errors.Errorf("source bit %d outside the window", src)
		}
	}
	return packer.NewMask(uint8(s.windowSize), packer.Segments(sources)...)
}

// Name returns the name of the scheme.
func (s *Scheme) Name() string {
	return s.def.Name
}

// ReadLength returns the number of bases in a read.
func (s *Scheme) ReadLength() int {
	return s.def.ReadLength
}

// WindowSize returns the number of bases selected by each seed.
func (s *Scheme) WindowSize() int {
	return s.windowSize
}

// HashBits returns the width of the hash.
func (s *Scheme) HashBits() int {
	return 2 * s.windowSize
}

// WindowBits returns the number of bits used to store bases selected by a seed.
func (s *Scheme) WindowBits() int {
	return 2 * s.windowSize
}

// NumberWindows returns the number of seeds.
func (s *Scheme) NumberWindows() int {
	return len(s.seeds)
}

// Substitutions returns the number of substitutions the scheme tolerates.
func (s *Scheme) Substitutions() int {
	return s.def.Substitutions
}

// Indels returns the number of single-base indels the scheme tolerates.
func (s *Scheme) Indels() int {
	return s.def.Indels
}

// Bias returns the offset added to reported template positions.
func (s *Scheme) Bias() types.Position {
	if s.def.Split == nil {
		return 0
	}
	return types.Position(s.def.Split.Bias)
}

// Split returns a copy of the split layout or nil if reads are contiguous.
func (s *Scheme) Split() *Split {
	if s.def.Split == nil {
		return nil
	}
	split := *s.def.Split
	split.Offsets = slices.Clone(split.Offsets)
	return &split
}

// Seeds returns the compiled seeds.
func (s *Scheme) Seeds() []Seed {
	return s.seeds
}

// TemplateCalls returns the number of template hashes computed for one template position.
func (s *Scheme) TemplateCalls() int {
	return s.templateCalls
}

// Fingerprint returns the digest identifying hashes produced by the scheme.
func (s *Scheme) Fingerprint() [32]byte {
	return s.fingerprint
}

func validate(def Definition) error {
	switch {
	case def.Name == "":
		return errors.New("name is empty")
	case def.ReadLength <= 0 || def.ReadLength > types.MaxWindowSize:
		return errors.Errorf("read length %d out of range [1, %d]", def.ReadLength, types.MaxWindowSize)
	case def.BlockSize <= 0 || def.Blocks <= 0:
		return errors.New("blocks must not be empty")
	case def.Blocks*def.BlockSize > def.ReadLength:
		return errors.Errorf("%d blocks of %d bases do not fit in the read", def.Blocks, def.BlockSize)
	case def.Substitutions < 0 || def.Indels < 0 || def.Indels > 1:
		return errors.New("unsupported error budget")
	case def.Substitutions+def.Indels >= def.Blocks:
		return errors.New("every block is dropped")
	case (def.Blocks-def.Substitutions-def.Indels)*def.BlockSize > types.MaxWindowSize:
		return errors.Errorf("window exceeds %d bases", types.MaxWindowSize)
	}

	if split := def.Split; split != nil {
		switch {
		case def.Indels > 0:
			return errors.New("split reads do not support indels")
		case split.At <= 0 || split.At >= def.ReadLength:
			return errors.Errorf("split point %d outside the read", split.At)
		case split.At%def.BlockSize != 0:
			return errors.Errorf("split point %d is not aligned to blocks", split.At)
		case len(split.Offsets) == 0:
			return errors.New("split offsets are empty")
		case !slices.Contains(split.Offsets, split.ScoreOffsets[0]) ||
			!slices.Contains(split.Offsets, split.ScoreOffsets[1]):
			return errors.New("score offsets must be taken from offsets")
		}
	}
	return nil
}

// shift moves sources at or above the bit by the offset.
func shift(sources []int, from, offset int) []int {
	shifted := make([]int, 0, len(sources))
	for _, s := range sources {
		if s >= from {
			s += offset
		}
		shifted = append(shifted, s)
	}
	return shifted
}

// combinations yields all k-element subsets of [0, n) in lexicographic order.
func combinations(n, k int) func(func([]int) bool) {
	return func(yield func([]int) bool) {
		c := make([]int, k)
		for i := range c {
			c[i] = i
		}
		for {
			if !yield(c) {
				return
			}

			i := k - 1
			for i >= 0 && c[i] == n-k+i {
				i--
			}
			if i < 0 {
				return
			}
			c[i]++
			for j := i + 1; j < k; j++ {
				c[j] = c[j-1] + 1
			}
		}
	}
}

type maskRecord struct {
	Seed    uint64
	Variant uint64
	Hash    uint64
}

// fingerprint digests the hashes every mask produces for a fixed probe window. Index built
// with one scheme may be queried only by schemes having the same fingerprint.
func fingerprint(s *Scheme) [32]byte {
	const probeV0, probeV1 = 0x9e3779b97f4a7c15, 0xc2b2ae3d27d4eb4f

	h := blake3.New()
	windowSize := uint64(s.windowSize)
	_, _ = h.Write(photon.NewFromValue(&windowSize).B)
	for i, seed := range s.seeds {
		for j := -1; j < len(seed.Template); j++ {
			m := &seed.Read
			if j >= 0 {
				m = &seed.Template[j]
			}
			r := maskRecord{
				Seed:    uint64(i),
				Variant: uint64(j + 1),
				Hash:    uint64(m.Hash(probeV0, probeV1)) ^ m.Positions(),
			}
			_, _ = h.Write(photon.NewFromValue(&r).B)
		}
	}

	var digest [32]byte
	copy(digest[:], h.Sum(nil))
	return digest
}
