package index

import (
	"cmp"
	"slices"

	"github.com/outofforest/seedhash/scheme"
	"github.com/outofforest/seedhash/types"
)

// Candidate is the read whose seed hashes hit the template window.
type Candidate struct {
	Read     types.ReadID
	Position types.Position
	Hits     int
}

// Sink receives candidates found at the template position. Slice is reused after sink returns.
type Sink func(position types.Position, candidates []Candidate) error

// NewProbe creates probe looking template hashes up in the table.
func NewProbe(table *Table, s *scheme.Scheme, sink Sink) (*Probe, error) {
	if err := table.Compatible(s); err != nil {
		return nil, err
	}
	return &Probe{
		table: table,
		sink:  sink,
		hits:  map[types.ReadID]*hit{},
	}, nil
}

// Probe collects candidates of the template window. It implements types.TemplateCallback and
// expects variants of one seed to be reported consecutively between calls to Done.
type Probe struct {
	table *Table
	sink  Sink

	position   types.Position
	hits       map[types.ReadID]*hit
	free       []*hit
	candidates []Candidate
}

type hit struct {
	count int
	// seed is the index of the last counted seed plus one.
	seed uint64
}

// TemplateCall looks the hash up and counts the hit for every read stored under it.
// Many variants of the same seed hitting the read are counted once, provided calls for one seed
// come one after another, as hasher.Hasher reports them.
func (p *Probe) TemplateCall(position types.Position, hash types.WindowHash, seed types.SeedIndex) error {
	p.position = position
	for read := range p.table.Lookup(NewKey(seed, hash)) {
		h, exists := p.hits[read]
		if !exists {
			h = p.newHit()
			p.hits[read] = h
		}
		if h.seed == uint64(seed)+1 {
			continue
		}
		h.seed = uint64(seed) + 1
		h.count++
	}
	return nil
}

// Done hands candidates collected for the window to the sink.
func (p *Probe) Done() error {
	if len(p.hits) == 0 {
		return nil
	}

	p.candidates = p.candidates[:0]
	for read, h := range p.hits {
		p.candidates = append(p.candidates, Candidate{
			Read:     read,
			Position: p.position,
			Hits:     h.count,
		})
		*h = hit{}
		p.free = append(p.free, h)
	}
	clear(p.hits)

	slices.SortFunc(p.candidates, func(a, b Candidate) int {
		return cmp.Compare(a.Read, b.Read)
	})

	return p.sink(p.position, p.candidates)
}

func (p *Probe) newHit() *hit {
	if len(p.free) == 0 {
		return &hit{}
	}
	h := p.free[len(p.free)-1]
	p.free = p.free[:len(p.free)-1]
	return h
}
