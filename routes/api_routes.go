// routes/api_routes.go
package routes

import (
	"context"
	"net/http"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"github.com/patrickmn/go-cache"

	"github.com/LilVoxy/water_quality/ETL/models"
	"github.com/LilVoxy/water_quality/database"
	"github.com/LilVoxy/water_quality/quality"
	"github.com/LilVoxy/water_quality/service"
	"github.com/LilVoxy/water_quality/telemetry"
	"github.com/LilVoxy/water_quality/websocket"
)

// Predictor labels readings; a nil *service.Handle is a valid Predictor that
// reports that no model is loaded.
type Predictor interface {
	Predict(r quality.Reading) (quality.Label, error)
	Info() (service.Info, bool)
}

// ReadingStore is the part of the readings store the API uses.
type ReadingStore interface {
	SaveReading(ctx context.Context, r database.StoredReading) (int64, error)
	RecentReadings(ctx context.Context, limit int) ([]database.StoredReading, error)
}

// RunLog lists training runs.
type RunLog interface {
	GetRuns(days int) ([]models.TrainingRun, error)
}

// Options are the tunables of the API.
type Options struct {
	RecentLimit       int
	RecentReadingsTTL time.Duration
}

// API holds the dependencies shared by the handlers.
type API struct {
	predictor Predictor
	readings  ReadingStore
	runs      RunLog
	hub       *websocket.Hub
	telemetry *telemetry.Telemetry
	recent    *cache.Cache
	validate  *validator.Validate
	options   Options
}

// NewAPI builds the handlers. readings, runs and hub may be nil; the routes
// that need them are then not registered.
func NewAPI(predictor Predictor, readings ReadingStore, runs RunLog, hub *websocket.Hub, tm *telemetry.Telemetry, options Options) *API {
	if options.RecentLimit <= 0 {
		options.RecentLimit = 10
	}
	if options.RecentReadingsTTL <= 0 {
		options.RecentReadingsTTL = 5 * time.Second
	}
	if tm == nil {
		tm = telemetry.NewTelemetry()
	}

	validate := validator.New()
	validate.RegisterTagNameFunc(jsonFieldName)

	return &API{
		predictor: predictor,
		readings:  readings,
		runs:      runs,
		hub:       hub,
		telemetry: tm,
		recent:    cache.New(options.RecentReadingsTTL, 2*options.RecentReadingsTTL),
		validate:  validate,
		options:   options,
	}
}

// SetupRoutes registers every API and WebSocket route on router
func SetupRoutes(router *mux.Router, api *API) {
	router.Use(CORSMiddleware)

	// Predictions
	router.HandleFunc("/predict", api.PredictHandler).Methods("POST", "OPTIONS")
	router.HandleFunc("/api/predict", api.PredictHandler).Methods("POST", "OPTIONS")

	// Sensor readings
	if api.readings != nil {
		router.HandleFunc("/api/data", api.CreateReadingHandler).Methods("POST", "OPTIONS")
		router.HandleFunc("/api/data", api.RecentReadingsHandler).Methods("GET", "OPTIONS")
	}

	// Model and service state
	router.HandleFunc("/api/model", api.ModelInfoHandler).Methods("GET", "OPTIONS")
	router.HandleFunc("/api/metrics", api.MetricsHandler).Methods("GET", "OPTIONS")
	if api.runs != nil {
		router.HandleFunc("/api/training/runs", api.TrainingRunsHandler).Methods("GET", "OPTIONS")
	}
	router.HandleFunc("/healthz", api.HealthHandler).Methods("GET")

	// Live feed
	if api.hub != nil {
		router.HandleFunc("/ws/predictions", api.hub.HandleConnections)
	}
}

// CORSMiddleware allows browser dashboards on other origins
func CORSMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func jsonFieldName(field reflect.StructField) string {
	name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
	if name == "-" || name == "" {
		return field.Name
	}
	return name
}
