package quality

import (
	"strings"

	wqerrors "github.com/LilVoxy/water_quality/errors"
)

// Label is the water-quality category assigned to a reading.
type Label string

const (
	Good     Label = "GOOD"
	Moderate Label = "MODERATE"
	Poor     Label = "POOR"
	VeryPoor Label = "VERY_POOR"

	// Unknown marks a reading that no rule matched. It is dropped before
	// training and is never a model class.
	Unknown Label = "UNKNOWN"
)

// Labels lists the trainable categories in rule priority order.
var Labels = []Label{Good, Moderate, Poor, VeryPoor}

func (l Label) String() string {
	return string(l)
}

// Trainable reports whether l is one of the four model classes.
func (l Label) Trainable() bool {
	switch l {
	case Good, Moderate, Poor, VeryPoor:
		return true
	}
	return false
}

// ParseLabel accepts the canonical names case-insensitively.
func ParseLabel(s string) (Label, error) {
	l := Label(strings.ToUpper(strings.TrimSpace(s)))
	if l.Trainable() || l == Unknown {
		return l, nil
	}
	return "", wqerrors.New(wqerrors.ErrorTypeEncoding, wqerrors.ErrUnknownLabel, "unrecognised label %q", s)
}
