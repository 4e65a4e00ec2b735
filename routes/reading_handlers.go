// routes/reading_handlers.go
package routes

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/LilVoxy/water_quality/database"
	wqerrors "github.com/LilVoxy/water_quality/errors"
	"github.com/LilVoxy/water_quality/quality"
	"github.com/LilVoxy/water_quality/websocket"
)

const maxRecentLimit = 1000

// CreateReadingRequest is the body of POST /api/data. The boat telemetry
// fields are optional and stored as sent.
type CreateReadingRequest struct {
	DeviceID    string   `json:"device_id" validate:"max=64"`
	TurbIdx     *float64 `json:"turb_idx" validate:"required,gte=0"`
	ChlRatio    *float64 `json:"chl_ratio" validate:"required,gte=0"`
	BgRatio     *float64 `json:"bg_ratio" validate:"required,gte=0"`
	PH          *float64 `json:"ph" validate:"omitempty,gte=0,lte=14"`
	Temperature *float64 `json:"temperature"`
	Voltage     *float64 `json:"voltage" validate:"omitempty,gte=0"`
	Status      string   `json:"status" validate:"max=32"`
}

// ReadingsResponse is the body of GET /api/data
type ReadingsResponse struct {
	Readings []database.StoredReading `json:"readings"`
}

// CreateReadingHandler stores a sensor reading, labelled with the served
// model's prediction when a model is loaded
func (api *API) CreateReadingHandler(w http.ResponseWriter, r *http.Request) {
	var req CreateReadingRequest
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

	stored := database.StoredReading{
		DeviceID:    req.DeviceID,
		Reading:     reading,
		PH:          req.PH,
		Temperature: req.Temperature,
		Voltage:     req.Voltage,
		Status:      req.Status,
		CreatedAt:   time.Now().UTC(),
	}

	label, err := api.predict(reading)
	switch {
	case err == nil:
		stored.Quality = label
	case errors.Is(err, wqerrors.ErrModelNotLoaded):
		// Stored unlabelled; the reading is still training data.
	default:
		writeError(w, err)
		return
	}

	id, err := api.readings.SaveReading(r.Context(), stored)
	if err != nil {
		writeError(w, wqerrors.New(wqerrors.ErrorTypeData, err, "store reading"))
		return
	}
	stored.ID = id
	api.recent.Flush()
	api.telemetry.RecordIngest()

	log.Printf("✅ Stored reading %d (quality=%q)", id, stored.Quality)
	api.hub.Broadcast(websocket.EventReading, stored)
	writeJSON(w, http.StatusCreated, stored)
}

// RecentReadingsHandler serves GET /api/data?limit=N, newest first
func (api *API) RecentReadingsHandler(w http.ResponseWriter, r *http.Request) {
	limit := api.options.RecentLimit
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 || n > maxRecentLimit {
			writeError(w, wqerrors.New(wqerrors.ErrorTypeInputValidation, wqerrors.ErrInvalidInput,
				"limit must be an integer in [1,%d]", maxRecentLimit))
			return
		}
		limit = n
	}

	key := fmt.Sprintf("recent:%d", limit)
	if cached, ok := api.recent.Get(key); ok {
		writeJSON(w, http.StatusOK, ReadingsResponse{Readings: cached.([]database.StoredReading)})
		return
	}

	readings, err := api.readings.RecentReadings(r.Context(), limit)
	if err != nil {
		writeError(w, wqerrors.New(wqerrors.ErrorTypeData, err, "load recent readings"))
		return
	}
	api.recent.Set(key, readings, cache.DefaultExpiration)
	writeJSON(w, http.StatusOK, ReadingsResponse{Readings: readings})
}
