package index

import (
	"unsafe"

	"github.com/cespare/xxhash"
	"github.com/pkg/errors"

	"github.com/outofforest/mass"
	"github.com/outofforest/photon"
	"github.com/outofforest/seedhash/scheme"
	"github.com/outofforest/seedhash/types"
)

const (
	bitsPerHop   = 4
	arraySize    = 1 << bitsPerHop
	mask         = arraySize - 1
	uint64Length = 8
	postingBatch = 1024
)

type pointerType byte

const (
	freePointerType pointerType = iota
	kvPointerType
	nodePointerType
)

// Key identifies seed hash in the table.
type Key struct {
	Hash types.WindowHash
	Seed uint64
}

// NewKey creates key of the seed hash.
func NewKey(seed types.SeedIndex, hash types.WindowHash) Key {
	return Key{
		Hash: hash,
		Seed: uint64(seed),
	}
}

// Config stores table configuration.
type Config struct {
	Scheme *scheme.Scheme
}

// New creates new table.
func New(config Config) (*Table, error) {
	if config.Scheme == nil {
		return nil, errors.New("scheme is not set")
	}

	return &Table{
		root: node{
			KVs: &[arraySize]kvPair{},
		},
		rootNodeType: kvPointerType,
		massPosting:  mass.New[posting](postingBatch),
		schemeName:   config.Scheme.Name(),
		fingerprint:  config.Scheme.Fingerprint(),
	}, nil
}

// Table maps seed hashes to reads. Table must not be modified while it is being looked up, but
// once built it may be looked up concurrently.
type Table struct {
	root         node
	rootNodeType pointerType
	hashMod      uint64
	massPosting  *mass.Mass[posting]

	schemeName  string
	fingerprint [32]byte

	keys     uint64
	postings uint64
}

// ReadCall stores the read-side hash.
func (t *Table) ReadCall(readID types.ReadID, hash types.WindowHash, seed types.SeedIndex) {
	t.Add(NewKey(seed, hash), readID)
}

// Compatible returns error if hashes of the scheme can't be looked up in the table.
func (t *Table) Compatible(s *scheme.Scheme) error {
	if s.Fingerprint() != t.fingerprint {
		return errors.Errorf("table built with scheme %q can't be queried with scheme %q", t.schemeName, s.Name())
	}
	return nil
}

// Stats returns the number of distinct keys and stored postings.
func (t *Table) Stats() (keys uint64, postings uint64) {
	return t.keys, t.postings
}

// Lookup iterates over reads stored under the key, the most recent first.
func (t *Table) Lookup(key Key) func(func(types.ReadID) bool) {
	return func(yield func(types.ReadID) bool) {
		for p := t.find(key); p != nil; p = p.Next {
			if !yield(p.Read) {
				return
			}
		}
	}
}

func (t *Table) find(key Key) *posting {
	h := t.root.hasher.Hash(key)
	nType := t.rootNodeType
	n := &t.root
	for {
		if n.hasher.mod != 0 {
			h = n.hasher.Hash(key)
		}

		index := h & mask
		h >>= bitsPerHop

		if n.Types[index] == freePointerType {
			return nil
		}

		switch nType {
		case nodePointerType:
			nType = n.Types[index]
			n = &n.Pointers[index]
		default:
			kv := &n.KVs[index]
			if kv.Hash == h && kv.Key == key {
				return kv.Head
			}
			return nil
		}
	}
}

// Add adds read to the list stored under the key.
func (t *Table) Add(key Key, readID types.ReadID) {
	p := t.massPosting.New()
	p.Read = readID
	t.postings++

	h := t.root.hasher.Hash(key)
	nType := t.rootNodeType
	n := &t.root

	var parentNode *node
	var parentIndex uint64

	for {
		if n.hasher.mod != 0 {
			h = n.hasher.Hash(key)
		}

		index := h & mask
		h >>= bitsPerHop

		switch nType {
		case nodePointerType:
			if n.Types[index] == freePointerType {
				n.Types[index] = kvPointerType
				n.Pointers[index] = node{
					KVs: &[arraySize]kvPair{},
				}
			}
			parentIndex = index
			parentNode = n
			nType = n.Types[index]
			n = &n.Pointers[index]
		default:
			if n.Types[index] == freePointerType {
				n.Types[index] = kvPointerType
				n.KVs[index] = kvPair{
					Hash: h,
					Key:  key,
					Head: p,
				}
				t.keys++
				return
			}

			kv := &n.KVs[index]
			var conflict bool
			if kv.Hash == h {
				if kv.Key == key {
					p.Next = kv.Head
					kv.Head = p
					return
				}

				// hash conflict

				conflict = true
			}

			// conflict or split needed

			n2 := node{
				Pointers: &[arraySize]node{},
				hasher:   n.hasher,
			}

			for i := range uint64(arraySize) {
				if n.Types[i] == freePointerType {
					continue
				}

				n2.Types[i] = kvPointerType
				n2.Pointers[i] = node{
					KVs: &[arraySize]kvPair{},
				}

				kv := n.KVs[i]
				var hash uint64
				if conflict && i == index {
					t.hashMod++
					n2.Pointers[i].hasher = newKeyHasher(t.hashMod)
					hash = n2.Pointers[i].hasher.Hash(kv.Key)
				} else {
					hash = kv.Hash
				}

				index := hash & mask
				n2.Pointers[i].Types[index] = kvPointerType
				n2.Pointers[i].KVs[index] = kvPair{
					Hash: hash >> bitsPerHop,
					Key:  kv.Key,
					Head: kv.Head,
				}
			}

			if parentNode == nil {
				t.rootNodeType = nodePointerType
				t.root = n2
				parentNode = &t.root
			} else {
				parentNode.Types[parentIndex] = nodePointerType
				parentNode.Pointers[parentIndex] = n2
				parentNode = &parentNode.Pointers[parentIndex]
			}

			parentIndex = index
			n = &parentNode.Pointers[index]
		}
	}
}

type posting struct {
	Read types.ReadID
	Next *posting
}

type kvPair struct {
	Hash uint64
	Key  Key
	Head *posting
}

type node struct {
	hasher keyHasher

	Types    [arraySize]pointerType
	KVs      *[arraySize]kvPair
	Pointers *[arraySize]node
}

func newKeyHasher(mod uint64) keyHasher {
	return keyHasher{mod: mod}
}

// keyHasher with non-zero mod salts the key so keys conflicting on the parent level are spread.
type keyHasher struct {
	mod uint64
}

func (h keyHasher) Hash(key Key) uint64 {
	if h.mod == 0 {
		return xxhash.Sum64(photon.NewFromValue(&key).B)
	}

	var b [uint64Length + unsafe.Sizeof(Key{})]byte
	copy(b[:], photon.NewFromValue(&h.mod).B)
	copy(b[uint64Length:], photon.NewFromValue(&key).B)
	return xxhash.Sum64(b[:])
}
