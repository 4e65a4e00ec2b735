package telemetry

import (
	"time"

	gometrics "github.com/rcrowley/go-metrics"

	"github.com/LilVoxy/water_quality/quality"
)

const (
	PredictionCount      = "predictions"
	PredictionErrorCount = "prediction_errors"
	PredictionLatency    = "prediction_latency"
	ReadingsIngested     = "readings_ingested"
)

// Telemetry counts what the prediction server does.
type Telemetry struct {
	registry    gometrics.Registry
	predictions map[quality.Label]gometrics.Counter
	errors      gometrics.Counter
	ingested    gometrics.Counter
	latency     gometrics.Timer
}

func NewTelemetry() *Telemetry {
	telemetry := Telemetry{registry: gometrics.NewRegistry()}
	telemetry.predictions = make(map[quality.Label]gometrics.Counter, len(quality.Labels))
	for _, label := range quality.Labels {
		c := gometrics.NewCounter()
		telemetry.registry.Register(PredictionCount+"."+label.String(), c)
		telemetry.predictions[label] = c
	}
	telemetry.errors = gometrics.NewCounter()
	telemetry.ingested = gometrics.NewCounter()
	telemetry.latency = gometrics.NewTimer()

	telemetry.registry.Register(PredictionErrorCount, telemetry.errors)
	telemetry.registry.Register(ReadingsIngested, telemetry.ingested)
	telemetry.registry.Register(PredictionLatency, telemetry.latency)
	return &telemetry
}

// RecordPrediction counts a served label and its latency.
func (t *Telemetry) RecordPrediction(label quality.Label, took time.Duration) {
	if c, ok := t.predictions[label]; ok {
		c.Inc(1)
	}
	t.latency.Update(took)
}

func (t *Telemetry) RecordError() {
	t.errors.Inc(1)
}

func (t *Telemetry) RecordIngest() {
	t.ingested.Inc(1)
}

// Snapshot is the JSON view of the counters.
type Snapshot struct {
	Predictions      map[quality.Label]int64 `json:"predictions"`
	PredictionErrors int64                   `json:"prediction_errors"`
	ReadingsIngested int64                   `json:"readings_ingested"`
	Latency          LatencySnapshot         `json:"latency"`
}

// LatencySnapshot holds latency figures in milliseconds.
type LatencySnapshot struct {
	Count int64   `json:"count"`
	Mean  float64 `json:"mean_ms"`
	P50   float64 `json:"p50_ms"`
	P99   float64 `json:"p99_ms"`
	Max   float64 `json:"max_ms"`
}

func (t *Telemetry) Snapshot() Snapshot {
	snap := Snapshot{Predictions: make(map[quality.Label]int64, len(t.predictions))}
	t.registry.Each(func(name string, metric interface{}) {
		switch m := metric.(type) {
		case gometrics.Counter:
			switch name {
			case PredictionErrorCount:
				snap.PredictionErrors = m.Count()
			case ReadingsIngested:
				snap.ReadingsIngested = m.Count()
			}
		case gometrics.Timer:
			ps := m.Percentiles([]float64{0.5, 0.99})
			snap.Latency = LatencySnapshot{
				Count: m.Count(),
				Mean:  m.Mean() / float64(time.Millisecond),
				P50:   ps[0] / float64(time.Millisecond),
				P99:   ps[1] / float64(time.Millisecond),
				Max:   float64(m.Max()) / float64(time.Millisecond),
			}
		}
	})
	for label, c := range t.predictions {
		snap.Predictions[label] = c.Count()
	}
	return snap
}
