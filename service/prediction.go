// Package service serves predictions from a loaded model and encoder pair.
package service

import (
	"time"

	"github.com/LilVoxy/water_quality/artifacts"
	wqerrors "github.com/LilVoxy/water_quality/errors"
	"github.com/LilVoxy/water_quality/ml"
	"github.com/LilVoxy/water_quality/quality"
)

// ArtifactLoader reads a persisted model and encoder.
type ArtifactLoader interface {
	Load() (*artifacts.ModelArtifact, *artifacts.EncodingArtifact, error)
}

// Info describes the loaded model.
type Info struct {
	RunID           string             `json:"run_id"`
	TrainedAt       time.Time          `json:"trained_at"`
	Accuracy        float64            `json:"accuracy"`
	FeatureNames    []string           `json:"feature_names"`
	Classes         []quality.Label    `json:"classes"`
	Hyperparameters ml.Hyperparameters `json:"hyperparameters"`
}

// Handle is a loaded model and encoder. It never changes after LoadOnce, so
// any number of goroutines may call Predict.
type Handle struct {
	model   ml.Classifier
	encoder *quality.Encoder
	info    Info
}

// LoadOnce loads both artifacts. Every failure is an ArtifactError.
func LoadOnce(loader ArtifactLoader) (*Handle, error) {
	model, enc, err := loader.Load()
	if err != nil {
		if _, typed := wqerrors.TypeOf(err); typed {
			return nil, err
		}
		return nil, wqerrors.New(wqerrors.ErrorTypeArtifact, err, "load artifacts")
	}
	if model == nil || enc == nil || !model.Forest.Fitted() {
		return nil, wqerrors.New(wqerrors.ErrorTypeArtifact, wqerrors.ErrArtifactMismatch,
			"loader returned no fitted model and encoder")
	}

	encoder, err := enc.Encoder()
	if err != nil {
		return nil, err
	}

	return &Handle{
		model:   model.Forest,
		encoder: encoder,
		info: Info{
			RunID:           model.RunID,
			TrainedAt:       model.TrainedAt,
			Accuracy:        model.Accuracy,
			FeatureNames:    append([]string(nil), model.FeatureNames...),
			Classes:         encoder.Classes(),
			Hyperparameters: model.Hyperparameters,
		},
	}, nil
}

// NewHandle wraps an in-memory model and encoder.
func NewHandle(model ml.Classifier, encoder *quality.Encoder, info Info) *Handle {
	info.Classes = encoder.Classes()
	return &Handle{model: model, encoder: encoder, info: info}
}

// Predict labels one reading. A nil handle reports ErrModelNotLoaded.
func (h *Handle) Predict(r quality.Reading) (quality.Label, error) {
	if h == nil {
		return "", wqerrors.New(wqerrors.ErrorTypeModelNotLoaded, wqerrors.ErrModelNotLoaded, "no model is loaded")
	}
	if err := r.Validate(); err != nil {
		return "", err
	}

	code, err := h.model.Predict(r.Vector())
	if err != nil {
		return "", err
	}
	return h.encoder.Decode(code)
}

// Info describes the loaded model. The second result is false for a nil
// handle.
func (h *Handle) Info() (Info, bool) {
	if h == nil {
		return Info{}, false
	}
	info := h.info
	info.Classes = append([]quality.Label(nil), h.info.Classes...)
	info.FeatureNames = append([]string(nil), h.info.FeatureNames...)
	return info, true
}
