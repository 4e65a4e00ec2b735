package ml

import (
	"errors"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	wqerrors "github.com/LilVoxy/water_quality/errors"
)

func TestTrainTestSplit_Partition(t *testing.T) {
	tests := []struct {
		n         int
		wantTrain int
		wantTest  int
	}{
		{2, 1, 1},
		{5, 4, 1},
		{10, 8, 2},
		{11, 8, 3},
		{15, 12, 3},
		{1000, 800, 200},
	}
	for _, tt := range tests {
		train, test, err := TrainTestSplit(tt.n, 0.2, 42)
		require.NoError(t, err, "n=%d", tt.n)
		assert.Len(t, train, tt.wantTrain, "n=%d", tt.n)
		assert.Len(t, test, tt.wantTest, "n=%d", tt.n)

		all := append(append([]int(nil), train...), test...)
		sort.Ints(all)
		for i, v := range all {
			assert.Equal(t, i, v, "n=%d: union must be 0..n-1 without repeats", tt.n)
		}
	}
}

func TestTrainTestSplit_Reproducible(t *testing.T) {
	trainA, testA, err := TrainTestSplit(50, 0.2, 42)
	require.NoError(t, err)
	trainB, testB, err := TrainTestSplit(50, 0.2, 42)
	require.NoError(t, err)

	assert.Equal(t, trainA, trainB)
	assert.Equal(t, testA, testB)
}

func TestTrainTestSplit_TooSmall(t *testing.T) {
	for _, n := range []int{0, 1} {
		_, _, err := TrainTestSplit(n, 0.2, 42)
		assert.True(t, errors.Is(err, wqerrors.ErrEmptyDataset), "n=%d", n)
	}
}

func TestTrainTestSplit_BadRatio(t *testing.T) {
	for _, r := range []float64{0, 1, -0.1, 1.5} {
		_, _, err := TrainTestSplit(10, r, 42)
		assert.True(t, errors.Is(err, wqerrors.ErrInvalidInput), "ratio=%g", r)
	}
}

func TestSelect(t *testing.T) {
	xs := [][]float64{{0}, {1}, {2}}
	ys := []int{0, 1, 2}
	sx, sy := Select(xs, ys, []int{2, 0})
	assert.Equal(t, [][]float64{{2}, {0}}, sx)
	assert.Equal(t, []int{2, 0}, sy)
}

func TestAccuracy(t *testing.T) {
	acc, err := Accuracy([]int{0, 1, 1, 2}, []int{0, 1, 2, 2})
	require.NoError(t, err)
	assert.InDelta(t, 0.75, acc, 1e-9)

	_, err = Accuracy([]int{0}, []int{0, 1})
	assert.Error(t, err)
	_, err = Accuracy(nil, nil)
	assert.True(t, errors.Is(err, wqerrors.ErrEmptyDataset))
}

func TestConfusionMatrix(t *testing.T) {
	m := ConfusionMatrix([]int{0, 1, 1, 0}, []int{0, 1, 0, 0}, 2)
	assert.Equal(t, [][]int{{2, 1}, {0, 1}}, m)
}
