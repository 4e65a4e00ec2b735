// routes/predict_handlers.go
package routes

import (
	"net/http"
	"time"

	"github.com/LilVoxy/water_quality/quality"
	"github.com/LilVoxy/water_quality/websocket"
)

// PredictRequest is the body of POST /predict. Pointers tell a missing
// feature apart from a zero one.
type PredictRequest struct {
	TurbIdx  *float64 `json:"turb_idx" validate:"required,gte=0"`
	ChlRatio *float64 `json:"chl_ratio" validate:"required,gte=0"`
	BgRatio  *float64 `json:"bg_ratio" validate:"required,gte=0"`
}

// PredictResponse is the body of a successful prediction
type PredictResponse struct {
	Quality quality.Label `json:"quality"`
}

// PredictionEvent is what the live feed receives for each prediction
type PredictionEvent struct {
	Source    string          `json:"source"`
	Reading   quality.Reading `json:"reading"`
	Quality   quality.Label   `json:"quality"`
	Timestamp time.Time       `json:"timestamp"`
}

// PredictHandler serves POST /predict and POST /api/predict
func (api *API) PredictHandler(w http.ResponseWriter, r *http.Request) {
	var req PredictRequest
	if err := api.decodeAndValidate(r, &req); err != nil {
		api.telemetry.RecordError()
		writeError(w, err)
		return
	}

	reading, err := quality.NewReading(req.TurbIdx, req.ChlRatio, req.BgRatio)
	if err != nil {
		api.telemetry.RecordError()
		writeError(w, err)
		return
	}

	label, err := api.predict(reading)
	if err != nil {
		writeError(w, err)
		return
	}

	api.hub.Broadcast(websocket.EventPrediction, PredictionEvent{
		Source:    "predict",
		Reading:   reading,
		Quality:   label,
		Timestamp: time.Now().UTC(),
	})
	writeJSON(w, http.StatusOK, PredictResponse{Quality: label})
}

// predict runs the model and records the outcome
func (api *API) predict(reading quality.Reading) (quality.Label, error) {
	start := time.Now()
	label, err := api.predictor.Predict(reading)
	if err != nil {
		api.telemetry.RecordError()
		return "", err
	}
	api.telemetry.RecordPrediction(label, time.Since(start))
	return label, nil
}
