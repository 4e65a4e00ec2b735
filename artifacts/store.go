// artifacts/store.go
package artifacts

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	wqerrors "github.com/LilVoxy/water_quality/errors"
	"github.com/LilVoxy/water_quality/ml"
	"github.com/LilVoxy/water_quality/processor"
	"github.com/LilVoxy/water_quality/quality"
)

// FormatVersion is bumped whenever ModelArtifact changes shape.
const FormatVersion = 1

const (
	DefaultModelFile   = "model.wqm"
	DefaultEncoderFile = "encoder.wqe"
)

// ModelArtifact is the persisted form of a fitted forest.
type ModelArtifact struct {
	FormatVersion   int                `json:"format_version"`
	RunID           string             `json:"run_id"`
	TrainedAt       time.Time          `json:"trained_at"`
	Accuracy        float64            `json:"accuracy"`
	FeatureNames    []string           `json:"feature_names"`
	Hyperparameters ml.Hyperparameters `json:"hyperparameters"`
	Forest          *ml.RandomForest   `json:"forest"`
}

// EncodingArtifact is the persisted form of a fitted label encoder.
type EncodingArtifact struct {
	RunID   string          `json:"run_id"`
	Classes []quality.Label `json:"classes"`
}

// NewEncodingArtifact captures enc under runID.
func NewEncodingArtifact(runID string, enc *quality.Encoder) EncodingArtifact {
	return EncodingArtifact{RunID: runID, Classes: enc.Classes()}
}

// Encoder rebuilds the label encoder.
func (a EncodingArtifact) Encoder() (*quality.Encoder, error) {
	enc, err := quality.NewEncoderFromClasses(a.Classes)
	if err != nil {
		return nil, wqerrors.New(wqerrors.ErrorTypeArtifact, err, "encoder artifact is invalid")
	}
	return enc, nil
}

// FileStore keeps the two artifacts side by side in one directory.
type FileStore struct {
	dir         string
	modelFile   string
	encoderFile string
}

// NewFileStore returns a store rooted at dir. Empty file names fall back to
// DefaultModelFile and DefaultEncoderFile.
func NewFileStore(dir, modelFile, encoderFile string) *FileStore {
	if modelFile == "" {
		modelFile = DefaultModelFile
	}
	if encoderFile == "" {
		encoderFile = DefaultEncoderFile
	}
	return &FileStore{dir: dir, modelFile: modelFile, encoderFile: encoderFile}
}

func (s *FileStore) ModelPath() string {
	return filepath.Join(s.dir, s.modelFile)
}

func (s *FileStore) EncoderPath() string {
	return filepath.Join(s.dir, s.encoderFile)
}

// Save writes both artifacts. Each file is replaced atomically, so a reader
// sees either the previous or the new file, never a partial one.
func (s *FileStore) Save(model ModelArtifact, enc EncodingArtifact) error {
	if model.RunID == "" || model.RunID != enc.RunID {
		return wqerrors.New(wqerrors.ErrorTypeArtifact, wqerrors.ErrArtifactMismatch,
			"model run %q and encoder run %q differ", model.RunID, enc.RunID)
	}
	if !model.Forest.Fitted() {
		return wqerrors.New(wqerrors.ErrorTypeArtifact, wqerrors.ErrModelNotLoaded, "refusing to save an unfitted model")
	}
	if model.FormatVersion == 0 {
		model.FormatVersion = FormatVersion
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return wqerrors.New(wqerrors.ErrorTypeArtifact, err, "create artifact directory %s", s.dir)
	}

	// Encoder first: a crash between the two writes leaves a run mismatch
	// that Load reports instead of a silently stale model.
	if err := writeAtomic(s.EncoderPath(), enc); err != nil {
		return err
	}
	return writeAtomic(s.ModelPath(), model)
}

// Load reads both artifacts and checks that they come from the same run.
func (s *FileStore) Load() (*ModelArtifact, *EncodingArtifact, error) {
	var model ModelArtifact
	if err := readFile(s.ModelPath(), &model); err != nil {
		return nil, nil, err
	}
	var enc EncodingArtifact
	if err := readFile(s.EncoderPath(), &enc); err != nil {
		return nil, nil, err
	}

	if model.FormatVersion != FormatVersion {
		return nil, nil, wqerrors.New(wqerrors.ErrorTypeArtifact, wqerrors.ErrArtifactMismatch,
			"model format version %d, expected %d", model.FormatVersion, FormatVersion)
	}
	if model.RunID != enc.RunID {
		return nil, nil, wqerrors.New(wqerrors.ErrorTypeArtifact, wqerrors.ErrArtifactMismatch,
			"model run %q does not match encoder run %q", model.RunID, enc.RunID)
	}
	if !model.Forest.Fitted() {
		return nil, nil, wqerrors.New(wqerrors.ErrorTypeArtifact, wqerrors.ErrArtifactMismatch, "model artifact holds no trees")
	}
	if model.Forest.NumClasses > len(enc.Classes) {
		return nil, nil, wqerrors.New(wqerrors.ErrorTypeArtifact, wqerrors.ErrArtifactMismatch,
			"model predicts %d classes but encoder knows %d", model.Forest.NumClasses, len(enc.Classes))
	}
	if model.Forest.NumFeatures != quality.NumFeatures {
		return nil, nil, wqerrors.New(wqerrors.ErrorTypeArtifact, wqerrors.ErrArtifactMismatch,
			"model expects %d features, readings have %d", model.Forest.NumFeatures, quality.NumFeatures)
	}
	return &model, &enc, nil
}

func writeAtomic(path string, v interface{}) error {
	tmp := fmt.Sprintf("%s.%s.tmp", path, uuid.NewString())
	f, err := os.OpenFile(tmp, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return wqerrors.New(wqerrors.ErrorTypeArtifact, err, "create %s", tmp)
	}

	if err := processor.WriteArtifact(f, v); err != nil {
		f.Close()
		os.Remove(tmp)
		return wqerrors.New(wqerrors.ErrorTypeArtifact, err, "write %s", path)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tmp)
		return wqerrors.New(wqerrors.ErrorTypeArtifact, err, "sync %s", path)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return wqerrors.New(wqerrors.ErrorTypeArtifact, err, "close %s", path)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return wqerrors.New(wqerrors.ErrorTypeArtifact, err, "replace %s", path)
	}
	return nil
}

func readFile(path string, v interface{}) error {
	f, err := os.Open(path)
	if err != nil {
		return wqerrors.New(wqerrors.ErrorTypeArtifact, err, "open %s", path)
	}
	defer f.Close()

	if err := processor.ReadArtifact(f, v); err != nil {
		return wqerrors.New(wqerrors.ErrorTypeArtifact, err, "read %s", path)
	}
	return nil
}
