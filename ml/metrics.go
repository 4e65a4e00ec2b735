package ml

import (
	wqerrors "github.com/LilVoxy/water_quality/errors"
)

// Accuracy is the share of predicted codes equal to the expected ones.
func Accuracy(predicted, expected []int) (float64, error) {
	if len(predicted) != len(expected) {
		return 0, wqerrors.New(wqerrors.ErrorTypeData, wqerrors.ErrInvalidInput,
			"%d predictions for %d expected codes", len(predicted), len(expected))
	}
	if len(expected) == 0 {
		return 0, wqerrors.New(wqerrors.ErrorTypeData, wqerrors.ErrEmptyDataset, "no rows to score")
	}
	correct := 0
	for i := range expected {
		if predicted[i] == expected[i] {
			correct++
		}
	}
	return float64(correct) / float64(len(expected)), nil
}

// ConfusionMatrix counts [expected][predicted] pairs over numClasses codes.
func ConfusionMatrix(predicted, expected []int, numClasses int) [][]int {
	m := make([][]int, numClasses)
	for i := range m {
		m[i] = make([]int, numClasses)
	}
	for i := range expected {
		e, p := expected[i], predicted[i]
		if e < 0 || e >= numClasses || p < 0 || p >= numClasses {
			continue
		}
		m[e][p]++
	}
	return m
}
