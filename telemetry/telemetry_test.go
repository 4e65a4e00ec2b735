package telemetry

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/LilVoxy/water_quality/quality"
)

func TestTelemetry_Snapshot(t *testing.T) {
	tm := NewTelemetry()
	tm.RecordPrediction(quality.Good, 2*time.Millisecond)
	tm.RecordPrediction(quality.Good, 4*time.Millisecond)
	tm.RecordPrediction(quality.VeryPoor, 6*time.Millisecond)
	tm.RecordPrediction(quality.Unknown, time.Millisecond)
	tm.RecordError()
	tm.RecordIngest()
	tm.RecordIngest()

	snap := tm.Snapshot()
	assert.Equal(t, int64(2), snap.Predictions[quality.Good])
	assert.Equal(t, int64(1), snap.Predictions[quality.VeryPoor])
	assert.Equal(t, int64(0), snap.Predictions[quality.Poor])
	assert.NotContains(t, snap.Predictions, quality.Unknown)
	assert.Equal(t, int64(1), snap.PredictionErrors)
	assert.Equal(t, int64(2), snap.ReadingsIngested)
	assert.Equal(t, int64(4), snap.Latency.Count)
	assert.InDelta(t, 3.25, snap.Latency.Mean, 1e-9)
	assert.InDelta(t, 6.0, snap.Latency.Max, 1e-9)
}

func TestTelemetry_EmptySnapshot(t *testing.T) {
	snap := NewTelemetry().Snapshot()
	assert.Len(t, snap.Predictions, 4)
	assert.Zero(t, snap.Latency.Count)
}
