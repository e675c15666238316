package dataprep

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"segkit/pkg/frame"
)

func TestImputeSteps(t *testing.T) {
	vals := []frame.Value{1, 2, 2, nil, 10, math.NaN()}

	mean, err := ImputeMean(vals)
	require.NoError(t, err)
	out := mean.Run(vals)
	assert.Equal(t, 3.75, out[3])
	assert.Equal(t, 3.75, out[5])
	assert.Equal(t, 1, out[0])

	median, err := ImputeMedian(vals)
	require.NoError(t, err)
	assert.Equal(t, 2.0, median.Run(vals)[3])

	mode, err := ImputeMode(vals)
	require.NoError(t, err)
	assert.Equal(t, 2, mode.Run(vals)[3])

	assert.Equal(t, []frame.Value{"k", 1}, ImputeConstant("k").Run([]frame.Value{nil, 1}))
}

func TestImputeErrors(t *testing.T) {
	_, err := ImputeMean([]frame.Value{nil, nil})
	assert.ErrorIs(t, err, ErrNoObservations)
	_, err = ImputeMedian([]frame.Value{"a", nil})
	assert.ErrorIs(t, err, frame.ErrNotNumeric)
	_, err = ImputeMode([]frame.Value{nil})
	assert.ErrorIs(t, err, ErrNoObservations)
}
