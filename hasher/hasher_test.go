package hasher_test

import (
	"math/bits"
	"math/rand"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/outofforest/seedhash/hasher"
	"github.com/outofforest/seedhash/scheme"
	"github.com/outofforest/seedhash/test"
	"github.com/outofforest/seedhash/types"
)

type counter uint64

func (c *counter) SoFar() uint64 {
	return uint64(*c)
}

func registry(t *testing.T) *scheme.Registry {
	r, err := scheme.Default()
	require.NoError(t, err)
	return r
}

func TestToyReadAll(t *testing.T) {
	s, err := registry(t).Get("L4w4s0e0")
	require.NoError(t, err)

	const v0, v1 = 0b1010, 0b0101

	mSoFar := counter(4)
	recorder := &test.ReadRecorder{}
	h := hasher.New(s, &mSoFar, recorder, nil)
	h.ReadAll(7, v0, v1)

	require.Equal(t, []test.ReadCall{
		{ReadID: 7, Hash: ((v0 & 0xF) << 4) | (v1 & 0xF), Seed: 0},
	}, recorder.Calls)
}

func TestReadGating(t *testing.T) {
	s, err := registry(t).Get("L30w12s1e0")
	require.NoError(t, err)

	var mSoFar counter
	recorder := &test.ReadRecorder{}
	h := hasher.New(s, &mSoFar, recorder, nil)

	for mSoFar = 0; mSoFar < 30; mSoFar++ {
		h.ReadAll(1, ^uint64(0), ^uint64(0))
		require.Empty(t, recorder.Calls)
	}

	h.ReadAll(1, ^uint64(0), ^uint64(0))
	require.Len(t, recorder.Calls, s.NumberWindows())
	for i, c := range recorder.Calls {
		assert.EqualValues(t, i, c.Seed)
		assert.EqualValues(t, 1, c.ReadID)
		assert.EqualValues(t, uint64(1)<<24-1, c.Hash)
	}
}

func TestTemplateGating(t *testing.T) {
	s, err := registry(t).Get("L30w12s1e0")
	require.NoError(t, err)

	var mSoFar counter
	recorder := &test.TemplateRecorder{}
	h := hasher.New(s, &mSoFar, nil, recorder)

	for mSoFar = 0; mSoFar <= 30; mSoFar++ {
		require.NoError(t, h.TemplateAll(100, 1, 2))
		require.Empty(t, recorder.Calls)
	}

	require.NoError(t, h.TemplateAll(100, 1, 2))
	require.Len(t, recorder.Calls, s.TemplateCalls()+1)
}

func TestAllSchemes(t *testing.T) {
	rng := rand.New(rand.NewSource(2))

	for _, s := range registry(t).Schemes() {
		t.Run(s.Name(), func(t *testing.T) {
			mSoFar := counter(64)
			readRecorder := &test.ReadRecorder{}
			templateRecorder := &test.TemplateRecorder{}
			h := hasher.New(s, &mSoFar, readRecorder, templateRecorder)

			for range 100 {
				v0, v1 := rng.Uint64(), rng.Uint64()
				position := types.Position(rng.Int63n(1 << 40))

				readRecorder.Calls = nil
				h.ReadAll(3, v0, v1)
				require.Len(t, readRecorder.Calls, s.NumberWindows())
				for i, c := range readRecorder.Calls {
					require.EqualValues(t, i, c.Seed)
					require.LessOrEqual(t, bits.Len64(uint64(c.Hash)), s.HashBits())
				}

				// Deterministic.
				first := readRecorder.Calls
				readRecorder.Calls = nil
				h.ReadAll(3, v0, v1)
				require.Equal(t, first, readRecorder.Calls)

				templateRecorder.Reset()
				require.NoError(t, h.TemplateAll(position, v0, v1))
				calls := templateRecorder.Calls
				require.Len(t, calls, s.TemplateCalls()+1)
				require.GreaterOrEqual(t, len(calls)-1, s.NumberWindows())

				seen := map[types.SeedIndex]struct{}{}
				var previous types.SeedIndex
				for _, c := range calls[:len(calls)-1] {
					require.False(t, c.Done)
					require.Equal(t, position+s.Bias(), c.Position)
					require.GreaterOrEqual(t, c.Seed, previous)
					require.LessOrEqual(t, bits.Len64(uint64(c.Hash)), s.HashBits())
					previous = c.Seed
					seen[c.Seed] = struct{}{}
				}
				require.True(t, calls[len(calls)-1].Done)
				require.Len(t, seen, s.NumberWindows())
			}
		})
	}
}

func TestVariantWithoutShiftMatchesRead(t *testing.T) {
	s, err := registry(t).Get("L32w16s1e1")
	require.NoError(t, err)

	mSoFar := counter(40)
	readRecorder := &test.ReadRecorder{}
	templateRecorder := &test.TemplateRecorder{}
	h := hasher.New(s, &mSoFar, readRecorder, templateRecorder)

	h.ReadAll(0, 0x123456789, 0x987654321)
	require.NoError(t, h.TemplateAll(0, 0x123456789, 0x987654321))

	// First variant of every seed is the unshifted one.
	var seed types.SeedIndex
	var next int
	for i, c := range templateRecorder.Calls[:len(templateRecorder.Calls)-1] {
		if i == next {
			require.Equal(t, readRecorder.Calls[seed].Hash, c.Hash)
			next += len(s.Seeds()[seed].Template)
			seed++
		}
	}
	require.EqualValues(t, s.NumberWindows(), seed)
}

func TestTemplateCallErrorPassesThrough(t *testing.T) {
	s, err := registry(t).Get("L30w12s1e1")
	require.NoError(t, err)

	errTest := errors.New("write failed")

	mSoFar := counter(31)
	recorder := &test.TemplateRecorder{
		FailAt:  7,
		CallErr: errTest,
	}
	h := hasher.New(s, &mSoFar, nil, recorder)

	err = h.TemplateAll(10, 1, 1)
	require.Same(t, errTest, err)

	// Calls stop at the failure and Done is not reported.
	require.Len(t, recorder.Calls, 6)
	for _, c := range recorder.Calls {
		require.False(t, c.Done)
	}
}

func TestDoneErrorPassesThrough(t *testing.T) {
	s, err := registry(t).Get("Split30w20s2Overlap")
	require.NoError(t, err)

	errTest := errors.New("flush failed")

	mSoFar := counter(31)
	recorder := &test.TemplateRecorder{
		DoneErr: errTest,
	}
	h := hasher.New(s, &mSoFar, nil, recorder)

	err = h.TemplateAll(10, 1, 1)
	require.Same(t, errTest, err)
	require.Len(t, recorder.Calls, s.TemplateCalls()+1)
	require.True(t, recorder.Calls[len(recorder.Calls)-1].Done)
	require.EqualValues(t, 14, recorder.Calls[0].Position)
}

func TestVariantsBeyondAccumulatedBasesAreSkipped(t *testing.T) {
	s, err := registry(t).Get("Split30w25s1Gap")
	require.NoError(t, err)

	var mSoFar counter
	recorder := &test.TemplateRecorder{}
	h := hasher.New(s, &mSoFar, nil, recorder)

	for mSoFar = 31; mSoFar <= 40; mSoFar++ {
		var expected int
		for _, seed := range s.Seeds() {
			for _, m := range seed.Template {
				if uint64(bits.Len64(m.Positions())) <= uint64(mSoFar) {
					expected++
				}
			}
		}

		if mSoFar < 37 {
			require.Less(t, expected, s.TemplateCalls())
		}

		recorder.Reset()
		require.NoError(t, h.TemplateAll(50, 1, 2))
		require.Len(t, recorder.Calls, expected+1)
		require.True(t, recorder.Calls[expected].Done)
	}
	require.Len(t, recorder.Calls, s.TemplateCalls()+1)

	// Seed dropping the last block reaches the fewest bases.
	mSoFar = 31
	recorder.Reset()
	require.NoError(t, h.TemplateAll(50, 1, 2))
	for _, c := range recorder.Calls[:len(recorder.Calls)-1] {
		require.EqualValues(t, s.NumberWindows()-1, c.Seed)
	}
}
