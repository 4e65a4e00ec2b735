package extractors

import (
	"context"
	"time"

	wqerrors "github.com/LilVoxy/water_quality/errors"
	"github.com/LilVoxy/water_quality/ETL/utils"
	"github.com/LilVoxy/water_quality/quality"
)

// ReadingSource is the read side of the readings store.
type ReadingSource interface {
	ReadingsForTraining(ctx context.Context) ([]quality.Reading, error)
}

// ReadingExtractor pulls the full training set from the data store
type ReadingExtractor struct {
	source ReadingSource
	logger *utils.ETLLogger
}

// NewReadingExtractor creates a ReadingExtractor
func NewReadingExtractor(source ReadingSource, logger *utils.ETLLogger) *ReadingExtractor {
	return &ReadingExtractor{
		source: source,
		logger: logger,
	}
}

// Extract returns every stored reading in insertion order. A store failure
// is a DataError; an empty table is not an error here, the trainer rejects it.
func (e *ReadingExtractor) Extract(ctx context.Context) ([]quality.Reading, error) {
	startTime := time.Now()
	e.logger.Info("Starting extract phase")

	readings, err := e.source.ReadingsForTraining(ctx)
	if err != nil {
		e.logger.Error("Error extracting readings: %v", err)
		return nil, wqerrors.New(wqerrors.ErrorTypeData, err, "extract readings")
	}

	e.logger.LogExtractComplete(len(readings), time.Since(startTime))
	return readings, nil
}
