package training

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/LilVoxy/water_quality/ETL/extractors"
	"github.com/LilVoxy/water_quality/ETL/models"
	"github.com/LilVoxy/water_quality/ETL/utils"
	"github.com/LilVoxy/water_quality/artifacts"
	"github.com/LilVoxy/water_quality/quality"
)

// ArtifactSaver persists a finished run.
type ArtifactSaver interface {
	Save(model artifacts.ModelArtifact, enc artifacts.EncodingArtifact) error
}

// ProcessorConfig holds the run-level settings around Trainer.
type ProcessorConfig struct {
	Trainer             Config
	MinAccuracyWarning  float64
	RunLogRetentionDays int
}

// TrainingProcessor runs extract, label, fit, evaluate and persist as one job
// and records it in the run log.
type TrainingProcessor struct {
	extractor  *extractors.ReadingExtractor
	trainer    *Trainer
	saver      ArtifactSaver
	repository models.TrainingRunRepository
	logger     *utils.ETLLogger
	config     ProcessorConfig
	now        func() time.Time
}

// NewTrainingProcessor creates a processor. repository may be nil, in which
// case runs are only logged.
func NewTrainingProcessor(
	source extractors.ReadingSource,
	saver ArtifactSaver,
	repository models.TrainingRunRepository,
	logger *utils.ETLLogger,
	config ProcessorConfig,
) *TrainingProcessor {
	return &TrainingProcessor{
		extractor:  extractors.NewReadingExtractor(source, logger),
		trainer:    NewTrainer(config.Trainer, logger),
		saver:      saver,
		repository: repository,
		logger:     logger,
		config:     config,
		now:        time.Now,
	}
}

// Process executes one training run and returns its id.
func (p *TrainingProcessor) Process(ctx context.Context) (string, error) {
	startTime := p.now()
	runID := uuid.NewString()
	p.logger.LogTrainingStart(runID)

	logID := p.openRunEntry(runID, startTime)

	readings, err := p.extractor.Extract(ctx)
	if err != nil {
		p.fail(logID, err)
		return runID, err
	}

	result, err := p.trainer.Train(readings)
	if err != nil {
		p.fail(logID, err)
		return runID, fmt.Errorf("training failed: %w", err)
	}

	p.logger.Info("Model accuracy on %d test rows: %.4f", len(result.TestIndices), result.Accuracy)
	if result.Accuracy < p.config.MinAccuracyWarning {
		p.logger.Warn("Low model accuracy (%.4f < %.4f). The model is saved anyway.",
			result.Accuracy, p.config.MinAccuracyWarning)
	}

	model := artifacts.ModelArtifact{
		FormatVersion:   artifacts.FormatVersion,
		RunID:           runID,
		TrainedAt:       p.now().UTC(),
		Accuracy:        result.Accuracy,
		FeatureNames:    quality.FeatureNames,
		Hyperparameters: result.Hyperparameters,
		Forest:          result.Model,
	}
	if err := p.saver.Save(model, artifacts.NewEncodingArtifact(runID, result.Encoder)); err != nil {
		p.fail(logID, err)
		return runID, fmt.Errorf("saving artifacts failed: %w", err)
	}

	p.succeed(logID, models.RunStats{
		ReadingsExtracted: len(readings),
		ReadingsDiscarded: result.Discarded,
		TrainRows:         len(result.TrainIndices),
		TestRows:          len(result.TestIndices),
		Accuracy:          result.Accuracy,
	})
	p.cleanupOldRuns()

	p.logger.LogTrainingComplete(startTime, len(result.TrainIndices), len(result.TestIndices), result.Accuracy)
	return runID, nil
}

func (p *TrainingProcessor) openRunEntry(runID string, startTime time.Time) int {
	if p.repository == nil {
		return 0
	}
	id, err := p.repository.CreateRunEntry(runID, startTime)
	if err != nil {
		// The run log is bookkeeping; training goes ahead without it.
		p.logger.Error("Could not create training run entry: %v", err)
		return 0
	}
	return id
}

func (p *TrainingProcessor) succeed(logID int, stats models.RunStats) {
	if p.repository == nil || logID == 0 {
		return
	}
	if err := p.repository.UpdateRunSuccess(logID, p.now(), stats); err != nil {
		p.logger.Error("Could not update training run entry: %v", err)
	}
}

func (p *TrainingProcessor) fail(logID int, cause error) {
	p.logger.Error("Training run failed: %v", cause)
	if p.repository == nil || logID == 0 {
		return
	}
	if err := p.repository.UpdateRunFailure(logID, p.now(), cause.Error()); err != nil {
		p.logger.Error("Could not update training run entry: %v", err)
	}
}

func (p *TrainingProcessor) cleanupOldRuns() {
	if p.repository == nil || p.config.RunLogRetentionDays <= 0 {
		return
	}
	cutoff := p.now().AddDate(0, 0, -p.config.RunLogRetentionDays)
	deleted, err := p.repository.DeleteRunsBefore(cutoff)
	if err != nil {
		p.logger.Warn("Could not delete old training runs: %v", err)
		return
	}
	if deleted > 0 {
		p.logger.Debug("Deleted %d training runs older than %s", deleted, cutoff.Format("2006-01-02"))
	}
}
