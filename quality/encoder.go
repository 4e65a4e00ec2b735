package quality

import (
	"sort"

	wqerrors "github.com/LilVoxy/water_quality/errors"
)

// Encoder maps labels to dense integer codes and back. Codes follow the
// lexical order of the fitted label names, so refitting the same label set
// always gives the same codes.
type Encoder struct {
	classes []Label
	codes   map[Label]int
}

// FitEncoder fits an encoder on the distinct labels in labels.
func FitEncoder(labels []Label) (*Encoder, error) {
	seen := make(map[Label]struct{}, len(Labels))
	classes := make([]Label, 0, len(Labels))
	for _, l := range labels {
		if !l.Trainable() {
			return nil, wqerrors.New(wqerrors.ErrorTypeEncoding, wqerrors.ErrUnknownLabel,
				"cannot fit encoder on label %q", l)
		}
		if _, ok := seen[l]; ok {
			continue
		}
		seen[l] = struct{}{}
		classes = append(classes, l)
	}
	if len(classes) == 0 {
		return nil, wqerrors.New(wqerrors.ErrorTypeEncoding, wqerrors.ErrEmptyDataset,
			"cannot fit encoder on an empty label set")
	}
	sort.Slice(classes, func(i, j int) bool { return classes[i] < classes[j] })
	return newEncoder(classes), nil
}

// NewEncoderFromClasses rebuilds a persisted encoder. classes must be the
// exact slice produced by Classes at fit time.
func NewEncoderFromClasses(classes []Label) (*Encoder, error) {
	if len(classes) == 0 {
		return nil, wqerrors.New(wqerrors.ErrorTypeEncoding, wqerrors.ErrEmptyDataset, "encoder has no classes")
	}
	for i, l := range classes {
		if !l.Trainable() {
			return nil, wqerrors.New(wqerrors.ErrorTypeEncoding, wqerrors.ErrUnknownLabel,
				"encoder class %d is %q", i, l)
		}
		if i > 0 && classes[i-1] >= l {
			return nil, wqerrors.New(wqerrors.ErrorTypeEncoding, wqerrors.ErrArtifactMismatch,
				"encoder classes are not strictly sorted at %d", i)
		}
	}
	cp := make([]Label, len(classes))
	copy(cp, classes)
	return newEncoder(cp), nil
}

func newEncoder(classes []Label) *Encoder {
	codes := make(map[Label]int, len(classes))
	for i, l := range classes {
		codes[l] = i
	}
	return &Encoder{classes: classes, codes: codes}
}

func (e *Encoder) Encode(l Label) (int, error) {
	code, ok := e.codes[l]
	if !ok {
		return 0, wqerrors.New(wqerrors.ErrorTypeEncoding, wqerrors.ErrUnknownLabel,
			"label %q was not seen when the encoder was fitted", l)
	}
	return code, nil
}

// EncodeAll encodes labels in order.
func (e *Encoder) EncodeAll(labels []Label) ([]int, error) {
	out := make([]int, len(labels))
	for i, l := range labels {
		code, err := e.Encode(l)
		if err != nil {
			return nil, err
		}
		out[i] = code
	}
	return out, nil
}

func (e *Encoder) Decode(code int) (Label, error) {
	if code < 0 || code >= len(e.classes) {
		return "", wqerrors.New(wqerrors.ErrorTypeEncoding, wqerrors.ErrOutOfRange,
			"code %d outside fitted range [0,%d)", code, len(e.classes))
	}
	return e.classes[code], nil
}

// Classes returns a copy of the fitted labels indexed by code.
func (e *Encoder) Classes() []Label {
	cp := make([]Label, len(e.classes))
	copy(cp, e.classes)
	return cp
}

func (e *Encoder) Len() int {
	return len(e.classes)
}
