package training

import (
	wqerrors "github.com/LilVoxy/water_quality/errors"
	"github.com/LilVoxy/water_quality/ETL/transform"
	"github.com/LilVoxy/water_quality/ETL/utils"
	"github.com/LilVoxy/water_quality/ml"
	"github.com/LilVoxy/water_quality/quality"
)

// Config is the fitting configuration of one run.
type Config struct {
	Hyperparameters ml.Hyperparameters
	TestRatio       float64
}

// DefaultConfig returns the default hyperparameters and an 80/20 split.
func DefaultConfig() Config {
	return Config{
		Hyperparameters: ml.DefaultHyperparameters(),
		TestRatio:       0.2,
	}
}

// Result is everything a run produces.
type Result struct {
	Model           *ml.RandomForest
	Encoder         *quality.Encoder
	Accuracy        float64
	Confusion       [][]int // [expected][predicted] codes on the test rows
	TrainIndices    []int // positions in the labeled set
	TestIndices     []int
	ClassCounts     map[quality.Label]int
	Discarded       int
	Hyperparameters ml.Hyperparameters
}

// Trainer turns raw readings into a fitted model and encoder.
type Trainer struct {
	config  Config
	labeler *transform.Labeler
	logger  *utils.ETLLogger
}

// NewTrainer creates a Trainer. logger may be nil.
func NewTrainer(config Config, logger *utils.ETLLogger) *Trainer {
	return &Trainer{
		config:  config,
		labeler: transform.NewLabeler(logger),
		logger:  logger,
	}
}

// Train labels readings, fits the encoder on every surviving label, splits
// with the configured seed, fits the forest on the training rows and scores
// it on the test rows. The same readings in the same order always give the
// same partitions, trees and accuracy.
func (t *Trainer) Train(readings []quality.Reading) (*Result, error) {
	set, err := t.labeler.Label(readings)
	if err != nil {
		return nil, err
	}

	labels := set.Labels()
	encoder, err := quality.FitEncoder(labels)
	if err != nil {
		return nil, err
	}
	codes, err := encoder.EncodeAll(labels)
	if err != nil {
		return nil, err
	}
	features := set.Features()

	params := t.config.Hyperparameters
	trainIdx, testIdx, err := ml.TrainTestSplit(len(features), t.config.TestRatio, params.Seed)
	if err != nil {
		return nil, err
	}
	t.debug("Split %d labeled rows into %d train / %d test", len(features), len(trainIdx), len(testIdx))

	trainX, trainY := ml.Select(features, codes, trainIdx)
	testX, testY := ml.Select(features, codes, testIdx)

	model := ml.NewRandomForest(params)
	if err := model.Fit(trainX, trainY); err != nil {
		return nil, wqerrors.New(wqerrors.ErrorTypeData, err, "fit random forest")
	}

	predicted, err := model.PredictAll(testX)
	if err != nil {
		return nil, err
	}
	accuracy, err := ml.Accuracy(predicted, testY)
	if err != nil {
		return nil, err
	}
	confusion := ml.ConfusionMatrix(predicted, testY, encoder.Len())
	for code, row := range confusion {
		label, _ := encoder.Decode(code)
		t.debug("Test rows labeled %s predicted as %v", label, row)
	}

	return &Result{
		Model:           model,
		Encoder:         encoder,
		Accuracy:        accuracy,
		Confusion:       confusion,
		TrainIndices:    trainIdx,
		TestIndices:     testIdx,
		ClassCounts:     set.ClassCounts,
		Discarded:       set.Discarded,
		Hyperparameters: params,
	}, nil
}

func (t *Trainer) debug(format string, v ...interface{}) {
	if t.logger != nil {
		t.logger.Debug(format, v...)
	}
}
