package quality

import (
	"math"

	wqerrors "github.com/LilVoxy/water_quality/errors"
)

// FeatureNames is the column order of every feature vector, in training and
// in serving.
var FeatureNames = []string{"turb_idx", "chl_ratio", "bg_ratio"}

// NumFeatures is len(FeatureNames).
const NumFeatures = 3

// Reading is one sensor sample.
type Reading struct {
	TurbIdx  float64 `json:"turb_idx"`
	ChlRatio float64 `json:"chl_ratio"`
	BgRatio  float64 `json:"bg_ratio"`
}

// LabeledReading is a reading with the label the rule classifier gave it.
type LabeledReading struct {
	Reading
	Label Label `json:"label"`
}

// Vector builds the model input for r. Trainer and prediction service both
// go through here so the column order cannot drift.
func (r Reading) Vector() []float64 {
	return []float64{r.TurbIdx, r.ChlRatio, r.BgRatio}
}

// Validate rejects non-finite and negative features.
func (r Reading) Validate() error {
	values := r.Vector()
	for i, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return wqerrors.New(wqerrors.ErrorTypeInputValidation, wqerrors.ErrInvalidInput,
				"%s must be a finite number", FeatureNames[i])
		}
		if v < 0 {
			return wqerrors.New(wqerrors.ErrorTypeInputValidation, wqerrors.ErrInvalidInput,
				"%s must be >= 0, got %g", FeatureNames[i], v)
		}
	}
	return nil
}

// NewReading builds a Reading from optional values, as decoded from a
// request body. A nil field means the feature was missing.
func NewReading(turbIdx, chlRatio, bgRatio *float64) (Reading, error) {
	fields := []*float64{turbIdx, chlRatio, bgRatio}
	for i, f := range fields {
		if f == nil {
			return Reading{}, wqerrors.New(wqerrors.ErrorTypeInputValidation, wqerrors.ErrInvalidInput,
				"%s is required", FeatureNames[i])
		}
	}
	r := Reading{TurbIdx: *turbIdx, ChlRatio: *chlRatio, BgRatio: *bgRatio}
	if err := r.Validate(); err != nil {
		return Reading{}, err
	}
	return r, nil
}
