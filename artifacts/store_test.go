package artifacts

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	wqerrors "github.com/LilVoxy/water_quality/errors"
	"github.com/LilVoxy/water_quality/ml"
	"github.com/LilVoxy/water_quality/quality"
)

func fittedArtifacts(t *testing.T, runID string) (ModelArtifact, EncodingArtifact) {
	t.Helper()

	readings := []quality.Reading{
		{TurbIdx: 10, ChlRatio: 0.2, BgRatio: 1.5},
		{TurbIdx: 20, ChlRatio: 0.3, BgRatio: 1.2},
		{TurbIdx: 100, ChlRatio: 0.7, BgRatio: 0.8},
		{TurbIdx: 120, ChlRatio: 0.9, BgRatio: 0.7},
		{TurbIdx: 200, ChlRatio: 1.2, BgRatio: 0.4},
		{TurbIdx: 250, ChlRatio: 0.1, BgRatio: 0.9},
		{TurbIdx: 400, ChlRatio: 0.2, BgRatio: 1.2},
		{TurbIdx: 500, ChlRatio: 2.0, BgRatio: 0.1},
	}
	labeled, _ := quality.LabelReadings(readings)
	labels := make([]quality.Label, len(labeled))
	xs := make([][]float64, len(labeled))
	for i, lr := range labeled {
		labels[i] = lr.Label
		xs[i] = lr.Vector()
	}
	enc, err := quality.FitEncoder(labels)
	require.NoError(t, err)
	codes, err := enc.EncodeAll(labels)
	require.NoError(t, err)

	params := ml.DefaultHyperparameters()
	params.NumTrees = 5
	forest := ml.NewRandomForest(params)
	require.NoError(t, forest.Fit(xs, codes))

	model := ModelArtifact{
		FormatVersion:   FormatVersion,
		RunID:           runID,
		TrainedAt:       time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
		Accuracy:        1,
		FeatureNames:    quality.FeatureNames,
		Hyperparameters: params,
		Forest:          forest,
	}
	return model, NewEncodingArtifact(runID, enc)
}

func TestFileStore_SaveLoad(t *testing.T) {
	store := NewFileStore(filepath.Join(t.TempDir(), "nested"), "", "")
	model, enc := fittedArtifacts(t, "run-1")
	require.NoError(t, store.Save(model, enc))

	gotModel, gotEnc, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, "run-1", gotModel.RunID)
	assert.Equal(t, model.TrainedAt, gotModel.TrainedAt.UTC())
	assert.Equal(t, model.Hyperparameters, gotModel.Hyperparameters)
	assert.Equal(t, model.Forest.Trees, gotModel.Forest.Trees)
	assert.Equal(t, enc.Classes, gotEnc.Classes)

	decoder, err := gotEnc.Encoder()
	require.NoError(t, err)
	assert.Equal(t, len(enc.Classes), decoder.Len())

	entries, err := os.ReadDir(filepath.Dir(store.ModelPath()))
	require.NoError(t, err)
	assert.Len(t, entries, 2, "temporary files must not be left behind")
}

func TestFileStore_SaveOverwrites(t *testing.T) {
	store := NewFileStore(t.TempDir(), "", "")
	m1, e1 := fittedArtifacts(t, "run-1")
	require.NoError(t, store.Save(m1, e1))
	m2, e2 := fittedArtifacts(t, "run-2")
	require.NoError(t, store.Save(m2, e2))

	got, _, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, "run-2", got.RunID)
}

func TestFileStore_SaveRejectsRunMismatch(t *testing.T) {
	store := NewFileStore(t.TempDir(), "", "")
	model, _ := fittedArtifacts(t, "run-1")
	_, enc := fittedArtifacts(t, "run-2")

	err := store.Save(model, enc)
	assert.True(t, errors.Is(err, wqerrors.ErrArtifactMismatch))
	_, statErr := os.Stat(store.ModelPath())
	assert.True(t, os.IsNotExist(statErr))
}

func TestFileStore_LoadDetectsMixedRuns(t *testing.T) {
	dir := t.TempDir()
	store := NewFileStore(dir, "", "")
	m1, e1 := fittedArtifacts(t, "run-1")
	require.NoError(t, store.Save(m1, e1))

	other := NewFileStore(t.TempDir(), "", "")
	m2, e2 := fittedArtifacts(t, "run-2")
	require.NoError(t, other.Save(m2, e2))
	data, err := os.ReadFile(other.EncoderPath())
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(store.EncoderPath(), data, 0o644))

	_, _, err = store.Load()
	require.Error(t, err)
	assert.True(t, errors.Is(err, wqerrors.ErrArtifactMismatch))
	typ, ok := wqerrors.TypeOf(err)
	assert.True(t, ok)
	assert.Equal(t, wqerrors.ErrorTypeArtifact, typ)
}

func TestFileStore_LoadMissing(t *testing.T) {
	_, _, err := NewFileStore(t.TempDir(), "", "").Load()
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))
	typ, _ := wqerrors.TypeOf(err)
	assert.Equal(t, wqerrors.ErrorTypeArtifact, typ)
}

func TestFileStore_LoadCorrupted(t *testing.T) {
	store := NewFileStore(t.TempDir(), "", "")
	model, enc := fittedArtifacts(t, "run-1")
	require.NoError(t, store.Save(model, enc))

	data, err := os.ReadFile(store.ModelPath())
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(store.ModelPath(), data[:len(data)/2], 0o644))

	_, _, err = store.Load()
	typ, _ := wqerrors.TypeOf(err)
	assert.Equal(t, wqerrors.ErrorTypeArtifact, typ)
}

func TestEncodingArtifact_InvalidClasses(t *testing.T) {
	_, err := EncodingArtifact{RunID: "x", Classes: []quality.Label{quality.Poor, quality.Good}}.Encoder()
	typ, _ := wqerrors.TypeOf(err)
	assert.Equal(t, wqerrors.ErrorTypeArtifact, typ)
}
