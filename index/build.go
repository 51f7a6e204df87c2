package index

import (
	"github.com/pkg/errors"

	"github.com/outofforest/seedhash/hasher"
	"github.com/outofforest/seedhash/scheme"
	"github.com/outofforest/seedhash/types"
	"github.com/outofforest/seedhash/window"
)

// Read is the sequenced read stored in the table.
type Read struct {
	ID       types.ReadID
	Sequence []byte
}

// Build hashes the reads into the new table. Only the first ReadLength bases of each read are
// used.
func Build(s *scheme.Scheme, reads []Read) (*Table, error) {
	table, err := New(Config{Scheme: s})
	if err != nil {
		return nil, err
	}

	readLength := s.ReadLength()
	var acc window.Accumulator
	h := hasher.New(s, &acc, table, nil)
	for _, r := range reads {
		if len(r.Sequence) < readLength {
			return nil, errors.Errorf("read %d has %d bases, %d required", r.ID, len(r.Sequence), readLength)
		}

		acc.Reset()
		for i, b := range r.Sequence[:readLength] {
			if !acc.AddBase(b) {
				return nil, errors.Errorf("read %d: invalid base %q at position %d", r.ID, b, i)
			}
		}

		w := acc.Window()
		h.ReadAll(r.ID, w.V0, w.V1)
	}
	return table, nil
}
