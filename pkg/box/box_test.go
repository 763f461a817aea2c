package box

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"volslice/internal/models"
)

func assertOrdered(t *testing.T, b Box) {
	t.Helper()
	for i := 0; i < 3; i++ {
		assert.LessOrEqual(t, b.Start[i], b.End[i], "axis %d", i)
	}
}

func TestFromCorners(t *testing.T) {
	b := FromCorners([3]float64{5, -1, 2}, [3]float64{-5, 1, 0})
	assert.Equal(t, [3]float64{-5, -1, 0}, b.Start)
	assert.Equal(t, [3]float64{5, 1, 2}, b.End)
	assert.Equal(t, [3]float64{10, 2, 2}, b.Diag())
	assert.Equal(t, [3]float64{0, 0, 1}, b.Center())
}

func TestFromCenterSize(t *testing.T) {
	b := FromCenterSize([3]float64{1, 2, 3}, [3]float64{2, 4, 6})
	assert.Equal(t, [3]float64{0, 0, 0}, b.Start)
	assert.Equal(t, [3]float64{2, 4, 6}, b.End)
}

func TestFromImageIdentity(t *testing.T) {
	b, err := FromImage([]int{10, 20, 30}, models.Identity())
	require.NoError(t, err)
	assert.Equal(t, [3]float64{0, 0, 0}, b.Start)
	assert.Equal(t, [3]float64{10, 20, 30}, b.End)
}

func TestFromImageFlipsAndPermutations(t *testing.T) {
	flipped := models.Scaling([3]float64{-2, 1, -0.5}, [3]float64{100, -20, 7})
	permuted := models.Affine{
		{0, 0, 3, -10},
		{-1, 0, 0, 4},
		{0, 2, 0, 0},
		{0, 0, 0, 1},
	}

	for name, aff := range map[string]models.Affine{"flipped": flipped, "permuted": permuted} {
		t.Run(name, func(t *testing.T) {
			b, err := FromImage([]int{4, 6, 8}, aff)
			require.NoError(t, err)
			assertOrdered(t, b)
		})
	}

	b, err := FromImage([]int{4, 6, 8}, flipped)
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{92, -20, 3}, b.Start[:], 1e-12)
	assert.InDeltaSlice(t, []float64{100, -14, 7}, b.End[:], 1e-12)
}

func TestFromImageBadShape(t *testing.T) {
	_, err := FromImage([]int{4, 4}, models.Identity())
	assert.True(t, errors.Is(err, ErrBadShape))
}

func TestFromMask(t *testing.T) {
	mask := models.NewVolume([]int{10, 10, 10}, models.Scaling([3]float64{-1, 1, 1}, [3]float64{0, 0, 0}))
	mask.Set(2, 3, 4, 0, 1)
	mask.Set(6, 5, 7, 0, 1)

	b, err := FromMask(mask, 1)
	require.NoError(t, err)
	assertOrdered(t, b)
	assert.Equal(t, [3]float64{-7, 2, 3}, b.Start)
	assert.Equal(t, [3]float64{-1, 6, 8}, b.End)
}

func TestFromMaskEmpty(t *testing.T) {
	mask := models.NewVolume([]int{3, 3, 3}, models.Identity())
	_, err := FromMask(mask, 0)
	assert.ErrorIs(t, err, ErrEmptyMask)
}

func TestSlicePositions(t *testing.T) {
	b := FromCorners([3]float64{0, 0, 0}, [3]float64{10, 20, 40})
	pos := b.SlicePositions(3, 0.25, 0.75)
	require.Len(t, pos, 3)
	assert.Equal(t, [3]float64{2.5, 5, 10}, pos[0])
	assert.Equal(t, [3]float64{5, 10, 20}, pos[1])
	assert.Equal(t, [3]float64{7.5, 15, 30}, pos[2])

	assert.Len(t, b.SlicePositions(1, 0.5, 0.9), 1)
	assert.Nil(t, b.SlicePositions(0, 0, 1))
}
