package test

import (
	"math/rand"

	"github.com/outofforest/seedhash/hasher"
	"github.com/outofforest/seedhash/scheme"
	"github.com/outofforest/seedhash/types"
	"github.com/outofforest/seedhash/window"
)

const bases = "ACGT"

// RandomSequence generates random sequence of unambiguous bases.
func RandomSequence(rng *rand.Rand, length int) []byte {
	seq := make([]byte, length)
	for i := range seq {
		seq[i] = bases[rng.Intn(len(bases))]
	}
	return seq
}

// OtherBase returns the base differing from b, selected by n in range [0, 3).
func OtherBase(b byte, n int) byte {
	code, _ := window.Encode(b)
	return bases[(int(code)+1+n)%len(bases)]
}

// ReadCall is the recorded read callback invocation.
type ReadCall struct {
	ReadID types.ReadID
	Hash   types.WindowHash
	Seed   types.SeedIndex
}

// ReadRecorder records read callback invocations.
type ReadRecorder struct {
	Calls []ReadCall
}

// ReadCall records the invocation.
func (r *ReadRecorder) ReadCall(readID types.ReadID, hash types.WindowHash, seed types.SeedIndex) {
	r.Calls = append(r.Calls, ReadCall{ReadID: readID, Hash: hash, Seed: seed})
}

// TemplateCall is the recorded template callback invocation.
type TemplateCall struct {
	Position types.Position
	Hash     types.WindowHash
	Seed     types.SeedIndex
	Done     bool
}

// TemplateRecorder records template callback invocations, including calls to Done.
type TemplateRecorder struct {
	Calls []TemplateCall

	// FailAt makes the FailAt-th call to TemplateCall return CallErr.
	FailAt  int
	CallErr error
	DoneErr error

	templateCalls int
}

// TemplateCall records the invocation.
func (r *TemplateRecorder) TemplateCall(position types.Position, hash types.WindowHash, seed types.SeedIndex) error {
	r.templateCalls++
	if r.templateCalls == r.FailAt {
		return r.CallErr
	}
	r.Calls = append(r.Calls, TemplateCall{Position: position, Hash: hash, Seed: seed})
	return nil
}

// Done records the invocation.
func (r *TemplateRecorder) Done() error {
	r.Calls = append(r.Calls, TemplateCall{Done: true})
	return r.DoneErr
}

// Reset forgets recorded invocations.
func (r *TemplateRecorder) Reset() {
	r.Calls = r.Calls[:0]
	r.templateCalls = 0
}

// ReadHashes returns read hashes indexed by seed.
func ReadHashes(s *scheme.Scheme, read []byte) []types.WindowHash {
	var acc window.Accumulator
	recorder := &ReadRecorder{}
	h := hasher.New(s, &acc, recorder, nil)
	for _, b := range read {
		acc.AddBase(b)
	}
	w := acc.Window()
	h.ReadAll(0, w.V0, w.V1)

	hashes := make([]types.WindowHash, len(recorder.Calls))
	for _, c := range recorder.Calls {
		hashes[c.Seed] = c.Hash
	}
	return hashes
}

// TemplateHashes returns template calls reported for the window ending at the end position.
func TemplateHashes(s *scheme.Scheme, template []byte, end int) []TemplateCall {
	var acc window.Accumulator
	recorder := &TemplateRecorder{}
	h := hasher.New(s, &acc, nil, recorder)
	for _, b := range template[:end+1] {
		acc.AddBase(b)
	}
	w := acc.Window()
	_ = h.TemplateAll(types.Position(end), w.V0, w.V1)
	return recorder.Calls
}

// Matches tells if any read hash is reported by the template window ending at the end
// position, under the expected reported position.
func Matches(s *scheme.Scheme, read, template []byte, end int) bool {
	readHashes := ReadHashes(s, read)
	if len(readHashes) == 0 {
		return false
	}
	for _, c := range TemplateHashes(s, template, end) {
		if c.Done || c.Position != types.Position(end)+s.Bias() {
			continue
		}
		if readHashes[c.Seed] == c.Hash {
			return true
		}
	}
	return false
}
