package ml

import (
	"math"
	"math/rand"

	wqerrors "github.com/LilVoxy/water_quality/errors"
)

// TrainTestSplit partitions row indices 0..n-1. The test subset holds
// ceil(testRatio*n) rows taken from the front of a seeded permutation and
// the training subset holds the rest, so the two are disjoint and together
// cover every row.
func TrainTestSplit(n int, testRatio float64, seed int64) (train, test []int, err error) {
	if testRatio <= 0 || testRatio >= 1 {
		return nil, nil, wqerrors.New(wqerrors.ErrorTypeData, wqerrors.ErrInvalidInput,
			"test ratio must be in (0,1), got %g", testRatio)
	}
	nTest := int(math.Ceil(testRatio*float64(n) - 1e-9))
	nTrain := n - nTest
	if nTest < 1 || nTrain < 1 {
		return nil, nil, wqerrors.New(wqerrors.ErrorTypeData, wqerrors.ErrEmptyDataset,
			"%d labeled rows cannot be split into non-empty train and test subsets", n)
	}

	perm := rand.New(rand.NewSource(seed)).Perm(n)
	test = append([]int(nil), perm[:nTest]...)
	train = append([]int(nil), perm[nTest:]...)
	return train, test, nil
}

// Select returns the rows of features and codes at idx, in idx order.
func Select(features [][]float64, codes []int, idx []int) ([][]float64, []int) {
	xs := make([][]float64, len(idx))
	ys := make([]int, len(idx))
	for i, j := range idx {
		xs[i] = features[j]
		ys[i] = codes[j]
	}
	return xs, ys
}
