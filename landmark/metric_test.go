// Package landmark_test verifies the frame metric's visibility policy
// and the sequence validation rules.
package landmark_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/motionkit/posealign/landmark"
)

// kp builds a fully visible keypoint at (x, y, z).
func kp(x, y, z float64) landmark.Keypoint {
	return landmark.Keypoint{X: x, Y: y, Z: z, Visibility: 1}
}

// TestFrameDistance_IdenticalFramesZero verifies the metric is zero for
// numerically identical frames.
func TestFrameDistance_IdenticalFramesZero(t *testing.T) {
	f := landmark.Frame{kp(0.1, 0.2, 0.3), kp(0.4, 0.5, 0.6)}
	d, ok, err := landmark.FrameDistance(f, f, landmark.DefaultMetricOptions())
	require.NoError(t, err)
	assert.True(t, ok, "fully visible pair must be defined")
	assert.Equal(t, 0.0, d, "identical frames must have zero distance")
}

// TestFrameDistance_Euclidean checks the unweighted distance against a
// hand-computed value.
func TestFrameDistance_Euclidean(t *testing.T) {
	a := landmark.Frame{kp(0, 0, 0), kp(1, 1, 0)}
	b := landmark.Frame{kp(3, 4, 0), kp(1, 1, 0)}
	opts := landmark.MetricOptions{VisibilityThreshold: 0, Weighted: false}

	d, ok, err := landmark.FrameDistance(a, b, opts)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.InDelta(t, 5.0, d, 1e-12, "sqrt(3^2+4^2) over concatenated coords")
}

// TestFrameDistance_SchemaMismatch ensures differing keypoint counts
// error with ErrDimensionMismatch.
func TestFrameDistance_SchemaMismatch(t *testing.T) {
	a := landmark.Frame{kp(0, 0, 0)}
	b := landmark.Frame{kp(0, 0, 0), kp(1, 1, 1)}
	_, _, err := landmark.FrameDistance(a, b, landmark.DefaultMetricOptions())
	assert.ErrorIs(t, err, landmark.ErrDimensionMismatch)
}

// TestFrameDistance_BadThreshold ensures out-of-range thresholds are
// rejected.
func TestFrameDistance_BadThreshold(t *testing.T) {
	f := landmark.Frame{kp(0, 0, 0)}
	_, _, err := landmark.FrameDistance(f, f, landmark.MetricOptions{VisibilityThreshold: 1.5})
	assert.ErrorIs(t, err, landmark.ErrBadThreshold)
}

// TestFrameDistance_LowVisibilityExcluded verifies that a keypoint below
// threshold on either side is dropped from the sum.
func TestFrameDistance_LowVisibilityExcluded(t *testing.T) {
	a := landmark.Frame{kp(0, 0, 0), {X: 100, Visibility: 0.1}}
	b := landmark.Frame{kp(3, 4, 0), {X: -100, Visibility: 0.9}}
	opts := landmark.MetricOptions{VisibilityThreshold: 0.5, Weighted: false}

	d, ok, err := landmark.FrameDistance(a, b, opts)
	require.NoError(t, err)
	assert.True(t, ok, "one visible keypoint keeps the pair defined")
	assert.InDelta(t, 5.0, d, 1e-12, "the occluded keypoint must not contribute")
}

// TestFrameDistance_AllBelowThresholdUndefined verifies the undefined
// case: every keypoint occluded on at least one side.
func TestFrameDistance_AllBelowThresholdUndefined(t *testing.T) {
	a := landmark.Frame{{X: 1, Visibility: 0.2}, {X: 2, Visibility: 0.3}}
	b := landmark.Frame{{X: 1, Visibility: 0.9}, {X: 2, Visibility: 0.1}}
	opts := landmark.MetricOptions{VisibilityThreshold: 0.5}

	d, ok, err := landmark.FrameDistance(a, b, opts)
	require.NoError(t, err)
	assert.False(t, ok, "all-occluded pair must be undefined, not zero")
	assert.Equal(t, 0.0, d)
}

// TestFrameDistance_WeightingShrinksDistance checks that visibility
// weighting scales a keypoint's contribution by min(va, vb).
func TestFrameDistance_WeightingShrinksDistance(t *testing.T) {
	a := landmark.Frame{{X: 0, Visibility: 0.64}}
	b := landmark.Frame{{X: 1, Visibility: 1}}
	plain := landmark.MetricOptions{VisibilityThreshold: 0.5, Weighted: false}
	weighted := landmark.MetricOptions{VisibilityThreshold: 0.5, Weighted: true}

	d0, _, err := landmark.FrameDistance(a, b, plain)
	require.NoError(t, err)
	d1, _, err := landmark.FrameDistance(a, b, weighted)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, d0, 1e-12)
	assert.InDelta(t, 0.8, d1, 1e-12, "sqrt(0.64 * 1^2)")
	assert.Less(t, d1, d0, "weighting must not inflate the distance")
}

// TestFrameDistance_Symmetric verifies metric symmetry, which the
// aligner's symmetry property depends on.
func TestFrameDistance_Symmetric(t *testing.T) {
	a := landmark.Frame{{X: 0.3, Y: 0.7, Z: 0.1, Visibility: 0.8}, kp(1, 2, 3)}
	b := landmark.Frame{{X: 0.9, Y: 0.2, Z: 0.4, Visibility: 0.6}, kp(3, 2, 1)}
	opts := landmark.DefaultMetricOptions()

	dab, _, err := landmark.FrameDistance(a, b, opts)
	require.NoError(t, err)
	dba, _, err := landmark.FrameDistance(b, a, opts)
	require.NoError(t, err)
	assert.Equal(t, dab, dba)
}

// TestFrameDistance_Deterministic pins the determinism contract:
// repeated calls on the same inputs return the identical float64.
func TestFrameDistance_Deterministic(t *testing.T) {
	a := landmark.Frame{{X: 0.123456789, Y: 0.987654321, Z: 0.5, Visibility: 0.77}}
	b := landmark.Frame{{X: 0.918273645, Y: 0.192837465, Z: 0.25, Visibility: 0.91}}
	opts := landmark.DefaultMetricOptions()

	first, _, err := landmark.FrameDistance(a, b, opts)
	require.NoError(t, err)
	for i := 0; i < 100; i++ {
		d, _, err := landmark.FrameDistance(a, b, opts)
		require.NoError(t, err)
		require.Equal(t, first, d)
	}
	assert.False(t, math.IsNaN(first))
}
