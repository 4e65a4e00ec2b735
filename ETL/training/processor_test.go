package training

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LilVoxy/water_quality/ETL/extractors"
	"github.com/LilVoxy/water_quality/ETL/models"
	"github.com/LilVoxy/water_quality/ETL/utils"
	"github.com/LilVoxy/water_quality/artifacts"
	"github.com/LilVoxy/water_quality/config"
	"github.com/LilVoxy/water_quality/database"
	wqerrors "github.com/LilVoxy/water_quality/errors"
	"github.com/LilVoxy/water_quality/quality"
)

type failingSource struct{}

func (failingSource) ReadingsForTraining(context.Context) ([]quality.Reading, error) {
	return nil, errors.New("connection refused")
}

type fixture struct {
	store *database.Store
	runs  *models.SQLTrainingRunRepository
	files *artifacts.FileStore
	logs  *bytes.Buffer
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store, err := database.Open(context.Background(), config.DatabaseConfig{Driver: "sqlite", Path: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	runs := models.NewSQLTrainingRunRepository(store.DB(), store.Driver())
	require.NoError(t, runs.CreateTrainingRunsTable())

	return &fixture{
		store: store,
		runs:  runs,
		files: artifacts.NewFileStore(t.TempDir(), "", ""),
		logs:  &bytes.Buffer{},
	}
}

func (f *fixture) processor(source extractors.ReadingSource, minAccuracy float64) *TrainingProcessor {
	return NewTrainingProcessor(source, f.files, f.runs, utils.NewWriterLogger(f.logs, true), ProcessorConfig{
		Trainer:             testConfig(),
		MinAccuracyWarning:  minAccuracy,
		RunLogRetentionDays: 30,
	})
}

func (f *fixture) seed(t *testing.T, readings []quality.Reading) {
	t.Helper()
	for _, r := range readings {
		_, err := f.store.SaveReading(context.Background(), database.StoredReading{Reading: r})
		require.NoError(t, err)
	}
}

func TestProcess_Success(t *testing.T) {
	f := newFixture(t)
	f.seed(t, sampleReadings(100, 9))

	runID, err := f.processor(f.store, 0.5).Process(context.Background())
	require.NoError(t, err)

	model, enc, err := f.files.Load()
	require.NoError(t, err)
	assert.Equal(t, runID, model.RunID)
	assert.Equal(t, runID, enc.RunID)
	assert.Equal(t, quality.FeatureNames, model.FeatureNames)

	last, err := f.runs.GetLastSuccessfulRun()
	require.NoError(t, err)
	require.NotNil(t, last)
	assert.Equal(t, runID, last.RunID)
	assert.Equal(t, models.RunStatusSuccess, last.Status)
	assert.Equal(t, 100, last.ReadingsExtracted)
	assert.Equal(t, 20, last.ReadingsDiscarded)
	assert.Equal(t, 64, last.TrainRows)
	assert.Equal(t, 16, last.TestRows)
	assert.InDelta(t, model.Accuracy, last.Accuracy, 1e-9)

	assert.Contains(t, f.logs.String(), "UNKNOWN readings discarded")
	assert.NotContains(t, f.logs.String(), "Low model accuracy")
}

func TestProcess_LowAccuracyStillSaves(t *testing.T) {
	f := newFixture(t)
	f.seed(t, sampleReadings(40, 10))

	runID, err := f.processor(f.store, 1.01).Process(context.Background())
	require.NoError(t, err)

	model, _, err := f.files.Load()
	require.NoError(t, err)
	assert.Equal(t, runID, model.RunID)
	assert.Contains(t, f.logs.String(), "Low model accuracy")
}

func TestProcess_EmptyTableFailsAndKeepsOldArtifacts(t *testing.T) {
	f := newFixture(t)
	f.seed(t, sampleReadings(50, 11))
	firstRun, err := f.processor(f.store, 0).Process(context.Background())
	require.NoError(t, err)

	empty := newFixture(t)
	empty.files = f.files
	_, err = empty.processor(empty.store, 0).Process(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, wqerrors.ErrEmptyDataset))

	model, _, err := f.files.Load()
	require.NoError(t, err)
	assert.Equal(t, firstRun, model.RunID)

	runs, err := empty.runs.GetRuns(1)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, models.RunStatusFailed, runs[0].Status)
	assert.Contains(t, runs[0].ErrorMessage, "empty dataset")
}

func TestProcess_SourceFailureIsDataError(t *testing.T) {
	f := newFixture(t)
	_, err := f.processor(failingSource{}, 0).Process(context.Background())
	require.Error(t, err)
	typ, _ := wqerrors.TypeOf(err)
	assert.Equal(t, wqerrors.ErrorTypeData, typ)
}

func TestProcess_WithoutRunLog(t *testing.T) {
	f := newFixture(t)
	f.seed(t, sampleReadings(30, 12))
	p := NewTrainingProcessor(f.store, f.files, nil, utils.NewWriterLogger(f.logs, false), ProcessorConfig{Trainer: testConfig()})

	_, err := p.Process(context.Background())
	assert.NoError(t, err)
}

func TestProcess_CleansUpOldRuns(t *testing.T) {
	f := newFixture(t)
	f.seed(t, sampleReadings(30, 13))
	_, err := f.runs.CreateRunEntry("ancient", time.Now().AddDate(0, 0, -400))
	require.NoError(t, err)

	_, err = f.processor(f.store, 0).Process(context.Background())
	require.NoError(t, err)

	runs, err := f.runs.GetRuns(1000)
	require.NoError(t, err)
	for _, r := range runs {
		assert.NotEqual(t, "ancient", r.RunID)
	}
}
