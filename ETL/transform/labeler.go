package transform

import (
	wqerrors "github.com/LilVoxy/water_quality/errors"
	"github.com/LilVoxy/water_quality/ETL/utils"
	"github.com/LilVoxy/water_quality/quality"
)

// LabeledSet is the output of the labeling phase.
type LabeledSet struct {
	Rows        []quality.LabeledReading
	ClassCounts map[quality.Label]int
	Discarded   int
}

// Labels returns the label column of Rows.
func (s *LabeledSet) Labels() []quality.Label {
	labels := make([]quality.Label, len(s.Rows))
	for i, r := range s.Rows {
		labels[i] = r.Label
	}
	return labels
}

// Features returns the feature matrix of Rows.
func (s *LabeledSet) Features() [][]float64 {
	features := make([][]float64, len(s.Rows))
	for i, r := range s.Rows {
		features[i] = r.Vector()
	}
	return features
}

// Labeler applies the rule classifier to raw readings
type Labeler struct {
	logger *utils.ETLLogger
}

// NewLabeler creates a Labeler. logger may be nil.
func NewLabeler(logger *utils.ETLLogger) *Labeler {
	return &Labeler{logger: logger}
}

// Label validates and labels readings, dropping UNKNOWN rows.
func (l *Labeler) Label(readings []quality.Reading) (*LabeledSet, error) {
	if len(readings) == 0 {
		return nil, wqerrors.New(wqerrors.ErrorTypeData, wqerrors.ErrEmptyDataset, "no readings to label")
	}
	for i, r := range readings {
		if err := r.Validate(); err != nil {
			return nil, wqerrors.New(wqerrors.ErrorTypeData, err, "reading %d is invalid", i)
		}
	}

	rows, discarded := quality.LabelReadings(readings)
	if len(rows) == 0 {
		return nil, wqerrors.New(wqerrors.ErrorTypeLabeling, wqerrors.ErrEmptyDataset,
			"all %d readings were labeled %s", len(readings), quality.Unknown)
	}

	counts := make(map[quality.Label]int, len(quality.Labels))
	for _, r := range rows {
		counts[r.Label]++
	}

	if l.logger != nil {
		named := make(map[string]int, len(counts))
		for label, n := range counts {
			named[label.String()] = n
		}
		l.logger.LogLabelingComplete(named, discarded)
	}

	return &LabeledSet{Rows: rows, ClassCounts: counts, Discarded: discarded}, nil
}
