package window

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/outofforest/seedhash/types"
)

func TestEncode(t *testing.T) {
	for b, expected := range map[byte]types.Base{
		'A': types.BaseA, 'c': types.BaseC, 'G': types.BaseG, 't': types.BaseT,
	} {
		code, ok := Encode(b)
		require.True(t, ok)
		assert.Equal(t, expected, code)
	}

	for _, b := range []byte("NnRY-.") {
		_, ok := Encode(b)
		assert.False(t, ok)
	}
}

func TestAccumulator(t *testing.T) {
	var a Accumulator
	assert.Zero(t, a.SoFar())

	// G = 10, T = 11, A = 00, C = 01; newest base on bit 0.
	for _, b := range []byte("GTAC") {
		require.True(t, a.AddBase(b))
	}
	assert.EqualValues(t, 4, a.SoFar())
	assert.Equal(t, types.PackedWindow{V0: 0b1100, V1: 0b0101}, a.Window())

	require.False(t, a.AddBase('N'))
	assert.Zero(t, a.SoFar())
	assert.Equal(t, types.PackedWindow{}, a.Window())
}

func TestAccumulatorSlides(t *testing.T) {
	var a Accumulator
	for range 64 {
		a.Add(types.BaseT)
	}
	a.Add(types.BaseA)

	assert.EqualValues(t, 65, a.SoFar())
	assert.Equal(t, types.PackedWindow{V0: ^uint64(1), V1: ^uint64(1)}, a.Window())
}

func TestPack(t *testing.T) {
	w, err := Pack([]byte("GTAC"))
	require.NoError(t, err)
	assert.Equal(t, types.PackedWindow{V0: 0b1100, V1: 0b0101}, w)

	_, err = Pack([]byte("GTNC"))
	require.Error(t, err)

	_, err = Pack(make([]byte, 65))
	require.Error(t, err)
}
