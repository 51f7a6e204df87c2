package types

const (
	// MaxWindowSize is the maximum number of bases a single seed may select.
	MaxWindowSize = 32

	// PlaneBits is the number of bases a packed window plane can hold.
	PlaneBits = 64
)

// Base is the 2-bit code of a nucleotide.
type Base uint8

// Base codes.
const (
	BaseA Base = iota
	BaseC
	BaseG
	BaseT
)

type (
	// SeedIndex identifies one seed slot of a scheme.
	SeedIndex uint32

	// WindowHash is the packed value of the bases selected by one seed.
	WindowHash uint64

	// ReadID identifies a read hashed into the index.
	ReadID uint32

	// Position is the 0-based template coordinate of the last base of a window.
	Position int64
)

// PackedWindow stores bases in two bit planes. Bit i of both planes encodes base i counted
// backwards from the newest base. V0 keeps the high bit of the base code, V1 the low one.
type PackedWindow struct {
	V0 uint64
	V1 uint64
}

// ReadCallback receives read-side seed hashes.
type ReadCallback interface {
	ReadCall(readID ReadID, hash WindowHash, seed SeedIndex)
}

// TemplateCallback receives template-side seed hashes.
type TemplateCallback interface {
	// TemplateCall is called once for every seed variant of a template position.
	TemplateCall(position Position, hash WindowHash, seed SeedIndex) error

	// Done is called once all the variants of a template position have been reported.
	Done() error
}
