package scheme

import (
	"github.com/pkg/errors"
	"github.com/samber/lo"
)

// NewRegistry compiles definitions into the registry.
func NewRegistry(defs ...Definition) (*Registry, error) {
	r := &Registry{
		schemes: make([]*Scheme, 0, len(defs)),
		byName:  make(map[string]*Scheme, len(defs)),
	}
	for _, def := range defs {
		if _, exists := r.byName[def.Name]; exists {
			return nil, errors.Errorf("scheme %q defined twice", def.Name)
		}
		s, err := New(def)
		if err != nil {
			return nil, err
		}
		r.schemes = append(r.schemes, s)
		r.byName[def.Name] = s
	}
	return r, nil
}

// Default returns the registry of catalog schemes.
func Default() (*Registry, error) {
	return NewRegistry(Catalog()...)
}

// Registry keeps compiled schemes.
type Registry struct {
	schemes []*Scheme
	byName  map[string]*Scheme
}

// Schemes returns schemes in definition order.
func (r *Registry) Schemes() []*Scheme {
	return r.schemes
}

// Get returns scheme by name.
func (r *Registry) Get(name string) (*Scheme, error) {
	s, exists := r.byName[name]
	if !exists {
		return nil, errors.Errorf("scheme %q does not exist", name)
	}
	return s, nil
}

// Select returns the contiguous-read scheme for the read length tolerating the requested
// errors. Wider windows win, then fewer seeds.
func (r *Registry) Select(readLength, substitutions, indels int) (*Scheme, error) {
	candidates := lo.Filter(r.schemes, func(s *Scheme, _ int) bool {
		return s.Split() == nil &&
			s.ReadLength() == readLength &&
			s.Indels() >= indels &&
			s.Substitutions()+s.Indels() >= substitutions+indels
	})
	if len(candidates) == 0 {
		return nil, errors.Errorf("no scheme for read length %d tolerating %d substitutions and %d indels",
			readLength, substitutions, indels)
	}

	return lo.MinBy(candidates, func(a, b *Scheme) bool {
		if a.WindowSize() != b.WindowSize() {
			return a.WindowSize() > b.WindowSize()
		}
		return a.NumberWindows() < b.NumberWindows()
	}), nil
}
