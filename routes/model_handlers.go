// routes/model_handlers.go
package routes

import (
	"net/http"
	"strconv"

	"github.com/LilVoxy/water_quality/ETL/models"
	wqerrors "github.com/LilVoxy/water_quality/errors"
	"github.com/LilVoxy/water_quality/telemetry"
)

// MetricsResponse is the body of GET /api/metrics
type MetricsResponse struct {
	telemetry.Snapshot
	FeedClients int `json:"feed_clients"`
}

// HealthResponse is the body of GET /healthz
type HealthResponse struct {
	Status      string `json:"status"`
	ModelLoaded bool   `json:"model_loaded"`
}

// TrainingRunsResponse is the body of GET /api/training/runs
type TrainingRunsResponse struct {
	Runs []models.TrainingRun `json:"runs"`
}

// ModelInfoHandler describes the served model
func (api *API) ModelInfoHandler(w http.ResponseWriter, r *http.Request) {
	info, ok := api.predictor.Info()
	if !ok {
		writeError(w, wqerrors.New(wqerrors.ErrorTypeModelNotLoaded, wqerrors.ErrModelNotLoaded, "no model is loaded"))
		return
	}
	writeJSON(w, http.StatusOK, info)
}

// MetricsHandler reports prediction counters and latency
func (api *API) MetricsHandler(w http.ResponseWriter, r *http.Request) {
	resp := MetricsResponse{Snapshot: api.telemetry.Snapshot()}
	if api.hub != nil {
		resp.FeedClients = api.hub.ClientCount()
	}
	writeJSON(w, http.StatusOK, resp)
}

// TrainingRunsHandler lists training runs of the last ?days=N days
func (api *API) TrainingRunsHandler(w http.ResponseWriter, r *http.Request) {
	days := 7
	if s := r.URL.Query().Get("days"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 {
			writeError(w, wqerrors.New(wqerrors.ErrorTypeInputValidation, wqerrors.ErrInvalidInput,
				"days must be a positive integer"))
			return
		}
		days = n
	}

	runs, err := api.runs.GetRuns(days)
	if err != nil {
		writeError(w, wqerrors.New(wqerrors.ErrorTypeData, err, "load training runs"))
		return
	}
	writeJSON(w, http.StatusOK, TrainingRunsResponse{Runs: runs})
}

// HealthHandler always answers 200 while the process is up
func (api *API) HealthHandler(w http.ResponseWriter, r *http.Request) {
	_, loaded := api.predictor.Info()
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok", ModelLoaded: loaded})
}
