// Package ml holds the supervised classifiers used by the training job and
// the prediction service.
//
// Any algorithm that satisfies Classifier can back the pipeline; the
// trainer and the service only ever see feature vectors and integer codes.
package ml

import (
	"math"

	wqerrors "github.com/LilVoxy/water_quality/errors"
)

// Classifier is the capability the rest of the system relies on.
type Classifier interface {
	// Fit trains on rows of features and their integer class codes.
	Fit(features [][]float64, codes []int) error
	// Predict returns the class code for one feature vector.
	Predict(features []float64) (int, error)
}

// Hyperparameters is the fixed fitting configuration. It is stored inside
// the model artifact so a fit can be reproduced.
type Hyperparameters struct {
	NumTrees        int   `json:"n_estimators" yaml:"trees"`
	MaxDepth        int   `json:"max_depth" yaml:"max_depth"` // 0: unlimited
	MinSamplesSplit int   `json:"min_samples_split" yaml:"min_samples_split"`
	MinSamplesLeaf  int   `json:"min_samples_leaf" yaml:"min_samples_leaf"`
	MaxFeatures     int   `json:"max_features" yaml:"max_features"` // 0: floor(sqrt(features))
	Bootstrap       bool  `json:"bootstrap" yaml:"bootstrap"`
	Seed            int64 `json:"random_state" yaml:"seed"`
}

// DefaultHyperparameters returns 200 bootstrapped trees seeded with 42.
func DefaultHyperparameters() Hyperparameters {
	return Hyperparameters{
		NumTrees:        200,
		MaxDepth:        0,
		MinSamplesSplit: 2,
		MinSamplesLeaf:  1,
		MaxFeatures:     0,
		Bootstrap:       true,
		Seed:            42,
	}
}

func (h Hyperparameters) validate() error {
	switch {
	case h.NumTrees < 1:
		return invalidParam("n_estimators must be >= 1, got %d", h.NumTrees)
	case h.MaxDepth < 0:
		return invalidParam("max_depth must be >= 0, got %d", h.MaxDepth)
	case h.MinSamplesSplit < 2:
		return invalidParam("min_samples_split must be >= 2, got %d", h.MinSamplesSplit)
	case h.MinSamplesLeaf < 1:
		return invalidParam("min_samples_leaf must be >= 1, got %d", h.MinSamplesLeaf)
	case h.MaxFeatures < 0:
		return invalidParam("max_features must be >= 0, got %d", h.MaxFeatures)
	}
	return nil
}

// featuresPerSplit resolves MaxFeatures against the input width.
func (h Hyperparameters) featuresPerSplit(numFeatures int) int {
	k := h.MaxFeatures
	if k == 0 {
		k = int(math.Sqrt(float64(numFeatures)))
	}
	if k < 1 {
		k = 1
	}
	if k > numFeatures {
		k = numFeatures
	}
	return k
}

func invalidParam(format string, args ...interface{}) error {
	return wqerrors.New(wqerrors.ErrorTypeData, wqerrors.ErrInvalidInput, format, args...)
}

// checkTrainingSet validates the shape of a fit call and returns the number
// of classes (max code + 1) and the feature width.
func checkTrainingSet(features [][]float64, codes []int) (numClasses, numFeatures int, err error) {
	if len(features) == 0 {
		return 0, 0, wqerrors.New(wqerrors.ErrorTypeData, wqerrors.ErrEmptyDataset, "no training rows")
	}
	if len(features) != len(codes) {
		return 0, 0, wqerrors.New(wqerrors.ErrorTypeData, wqerrors.ErrInvalidInput,
			"%d feature rows but %d codes", len(features), len(codes))
	}
	numFeatures = len(features[0])
	if numFeatures == 0 {
		return 0, 0, wqerrors.New(wqerrors.ErrorTypeData, wqerrors.ErrInvalidInput, "feature rows are empty")
	}
	for i, row := range features {
		if len(row) != numFeatures {
			return 0, 0, wqerrors.New(wqerrors.ErrorTypeData, wqerrors.ErrInvalidInput,
				"row %d has %d features, expected %d", i, len(row), numFeatures)
		}
		for _, v := range row {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return 0, 0, wqerrors.New(wqerrors.ErrorTypeData, wqerrors.ErrInvalidInput,
					"row %d contains a non-finite feature", i)
			}
		}
		if codes[i] < 0 {
			return 0, 0, wqerrors.New(wqerrors.ErrorTypeData, wqerrors.ErrOutOfRange,
				"row %d has negative class code %d", i, codes[i])
		}
		if codes[i]+1 > numClasses {
			numClasses = codes[i] + 1
		}
	}
	return numClasses, numFeatures, nil
}
