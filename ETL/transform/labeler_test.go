package transform

import (
	"bytes"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LilVoxy/water_quality/ETL/utils"
	wqerrors "github.com/LilVoxy/water_quality/errors"
	"github.com/LilVoxy/water_quality/quality"
)

func TestLabeler_CountsAndDiscards(t *testing.T) {
	var logs bytes.Buffer
	readings := []quality.Reading{
		{TurbIdx: 10, ChlRatio: 0.2, BgRatio: 1.5},
		{TurbIdx: 400, ChlRatio: 0.2, BgRatio: 1.2},
		{TurbIdx: 0, ChlRatio: 0, BgRatio: 0},
		{TurbIdx: 200, ChlRatio: 1.2, BgRatio: 0.4},
		{TurbIdx: 20, ChlRatio: 0.1, BgRatio: 2},
	}

	set, err := NewLabeler(utils.NewWriterLogger(&logs, false)).Label(readings)
	require.NoError(t, err)
	assert.Equal(t, 1, set.Discarded)
	assert.Equal(t, map[quality.Label]int{quality.Good: 2, quality.VeryPoor: 1, quality.Poor: 1}, set.ClassCounts)
	assert.Equal(t, []quality.Label{quality.Good, quality.VeryPoor, quality.Poor, quality.Good}, set.Labels())
	assert.Equal(t, []float64{400, 0.2, 1.2}, set.Features()[1])
	assert.Contains(t, logs.String(), "GOOD=2, POOR=1, VERY_POOR=1; 1 UNKNOWN readings discarded")
}

func TestLabeler_Errors(t *testing.T) {
	l := NewLabeler(nil)

	_, err := l.Label(nil)
	assert.True(t, errors.Is(err, wqerrors.ErrEmptyDataset))
	typ, _ := wqerrors.TypeOf(err)
	assert.Equal(t, wqerrors.ErrorTypeData, typ)

	_, err = l.Label([]quality.Reading{{TurbIdx: 1, ChlRatio: 0.1, BgRatio: 0.1}})
	assert.True(t, errors.Is(err, wqerrors.ErrEmptyDataset))
	typ, _ = wqerrors.TypeOf(err)
	assert.Equal(t, wqerrors.ErrorTypeLabeling, typ)

	_, err = l.Label([]quality.Reading{{TurbIdx: -1, ChlRatio: 0.1, BgRatio: 1.5}})
	assert.True(t, errors.Is(err, wqerrors.ErrInvalidInput))
	typ, _ = wqerrors.TypeOf(err)
	assert.Equal(t, wqerrors.ErrorTypeData, typ)

	_, err = l.Label([]quality.Reading{{TurbIdx: math.Inf(1), ChlRatio: 0.1, BgRatio: 1.5}})
	assert.True(t, errors.Is(err, wqerrors.ErrInvalidInput))
}
