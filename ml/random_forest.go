package ml

import (
	"math/rand"

	wqerrors "github.com/LilVoxy/water_quality/errors"
)

// RandomForest averages the leaf class distributions of bootstrapped CART
// trees. Every field is exported so the fitted state serialises as-is.
type RandomForest struct {
	Params      Hyperparameters `json:"params"`
	NumClasses  int             `json:"num_classes"`
	NumFeatures int             `json:"num_features"`
	Trees       []*DecisionTree `json:"trees"`
}

var _ Classifier = (*RandomForest)(nil)

func NewRandomForest(params Hyperparameters) *RandomForest {
	return &RandomForest{Params: params}
}

// Fit grows Params.NumTrees trees. Each tree draws from its own source,
// seeded in sequence from Params.Seed, so a fit is reproducible for the
// same rows in the same order.
func (f *RandomForest) Fit(features [][]float64, codes []int) error {
	if err := f.Params.validate(); err != nil {
		return err
	}
	numClasses, numFeatures, err := checkTrainingSet(features, codes)
	if err != nil {
		return err
	}

	seeds := rand.New(rand.NewSource(f.Params.Seed))
	trees := make([]*DecisionTree, f.Params.NumTrees)
	n := len(features)
	for t := range trees {
		rng := rand.New(rand.NewSource(seeds.Int63()))
		rows := make([]int, n)
		if f.Params.Bootstrap {
			for i := range rows {
				rows[i] = rng.Intn(n)
			}
		} else {
			for i := range rows {
				rows[i] = i
			}
		}
		trees[t] = buildTree(features, codes, rows, numClasses, f.Params, rng)
	}

	f.NumClasses = numClasses
	f.NumFeatures = numFeatures
	f.Trees = trees
	return nil
}

func (f *RandomForest) Fitted() bool {
	return f != nil && len(f.Trees) > 0
}

// PredictProba returns the mean class distribution for x.
func (f *RandomForest) PredictProba(x []float64) ([]float64, error) {
	if !f.Fitted() {
		return nil, wqerrors.New(wqerrors.ErrorTypeModelNotLoaded, wqerrors.ErrModelNotLoaded, "random forest is not fitted")
	}
	if len(x) != f.NumFeatures {
		return nil, wqerrors.New(wqerrors.ErrorTypeInputValidation, wqerrors.ErrInvalidInput,
			"expected %d features, got %d", f.NumFeatures, len(x))
	}
	proba := make([]float64, f.NumClasses)
	for _, t := range f.Trees {
		for i, p := range t.leafFor(x) {
			proba[i] += p
		}
	}
	for i := range proba {
		proba[i] /= float64(len(f.Trees))
	}
	return proba, nil
}

// Predict returns the most probable class; ties go to the lowest code.
func (f *RandomForest) Predict(x []float64) (int, error) {
	proba, err := f.PredictProba(x)
	if err != nil {
		return 0, err
	}
	best := 0
	for i, p := range proba {
		if p > proba[best] {
			best = i
		}
	}
	return best, nil
}

// PredictAll predicts every row of features.
func (f *RandomForest) PredictAll(features [][]float64) ([]int, error) {
	out := make([]int, len(features))
	for i, x := range features {
		code, err := f.Predict(x)
		if err != nil {
			return nil, err
		}
		out[i] = code
	}
	return out, nil
}
