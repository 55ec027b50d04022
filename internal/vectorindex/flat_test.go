package vectorindex

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlatL2_Search(t *testing.T) {
	x := NewFlatL2(2)
	require.NoError(t, x.Add([]float32{0, 0}, []float32{1, 0}, []float32{0, 3}, []float32{1, 0}))
	assert.Equal(t, 4, x.Len())

	got, err := x.Search([]float32{1, 0}, 3)
	require.NoError(t, err)
	require.Len(t, got, 3)
	// duplicates tie at zero distance and keep insertion order
	assert.Equal(t, Neighbor{ID: 1, Distance: 0}, got[0])
	assert.Equal(t, Neighbor{ID: 3, Distance: 0}, got[1])
	assert.Equal(t, 0, got[2].ID)
	assert.InDelta(t, 1.0, got[2].Distance, 1e-6)
}

func TestFlatL2_KClamped(t *testing.T) {
	x := NewFlatL2(1)
	got, err := x.Search([]float32{1}, 5)
	require.NoError(t, err)
	assert.Empty(t, got)

	require.NoError(t, x.Add([]float32{2}))
	got, err = x.Search([]float32{1}, 5)
	require.NoError(t, err)
	assert.Len(t, got, 1)

	got, err = x.Search([]float32{1}, 0)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestFlatL2_DimensionMismatch(t *testing.T) {
	x := NewFlatL2(3)
	assert.Error(t, x.Add([]float32{1, 2, 3}, []float32{1, 2}))
	assert.Equal(t, 0, x.Len(), "a failed Add must not insert anything")
	_, err := x.Search([]float32{1}, 1)
	assert.Error(t, err)
}

func TestFlatL2_AddCopiesInput(t *testing.T) {
	x := NewFlatL2(1)
	v := []float32{5}
	require.NoError(t, x.Add(v))
	v[0] = 100
	got, _ := x.Search([]float32{5}, 1)
	assert.Equal(t, float32(0), got[0].Distance)
}

func TestNormalize(t *testing.T) {
	v := Normalize([]float32{3, 4})
	assert.InDelta(t, 0.6, v[0], 1e-6)
	assert.InDelta(t, 0.8, v[1], 1e-6)

	var sum float64
	for _, f := range v {
		sum += float64(f * f)
	}
	assert.InDelta(t, 1.0, math.Sqrt(sum), 1e-6)

	zero := Normalize([]float32{0, 0})
	assert.Equal(t, []float32{0, 0}, zero)
}
