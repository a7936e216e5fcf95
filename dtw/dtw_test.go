// Package dtw_test verifies alignment distances, warp path invariants,
// error taxonomy and the memory-mode variants.
package dtw_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/motionkit/posealign/dtw"
	"github.com/motionkit/posealign/landmark"
)

// seq1d builds a single-keypoint sequence whose frames sit at
// (v, 0, 0) with full visibility; the frame distance degenerates to
// |Δv|, which keeps expected values hand-checkable.
func seq1d(id string, vals ...float64) landmark.Sequence {
	frames := make([]landmark.Frame, len(vals))
	for i, v := range vals {
		frames[i] = landmark.Frame{{X: v, Visibility: 1}}
	}
	return landmark.NewSequence(id, frames)
}

// seq2d builds a single-keypoint sequence from (x, y) pairs.
func seq2d(id string, pts ...[2]float64) landmark.Sequence {
	frames := make([]landmark.Frame, len(pts))
	for i, p := range pts {
		frames[i] = landmark.Frame{{X: p[0], Y: p[1], Visibility: 1}}
	}
	return landmark.NewSequence(id, frames)
}

// requirePathInvariants asserts the structural warp path contract:
// boundary endpoints, unit monotone steps, and the length bounds
// max(n,m) <= len <= n+m-1.
func requirePathInvariants(t *testing.T, path []dtw.Coord, n, m int) {
	t.Helper()
	require.NotEmpty(t, path)
	require.Equal(t, dtw.Coord{I: 0, J: 0}, path[0], "path must start at (0,0)")
	require.Equal(t, dtw.Coord{I: n - 1, J: m - 1}, path[len(path)-1], "path must end at (n-1,m-1)")
	for k := 1; k < len(path); k++ {
		di := path[k].I - path[k-1].I
		dj := path[k].J - path[k-1].J
		require.True(t, di == 0 || di == 1, "step %d: I moved by %d", k, di)
		require.True(t, dj == 0 || dj == 1, "step %d: J moved by %d", k, dj)
		require.True(t, di+dj >= 1, "step %d: path must advance", k)
	}
	lo, hi := n, n+m-1
	if m > n {
		lo = m
	}
	require.GreaterOrEqual(t, len(path), lo)
	require.LessOrEqual(t, len(path), hi)
}

// TestAlign_EmptyInput verifies that either empty sequence fails with
// ErrEmptySequence instead of producing a degenerate result.
func TestAlign_EmptyInput(t *testing.T) {
	opts := dtw.DefaultOptions()

	_, err := dtw.Align(seq1d("empty"), seq1d("b", 1, 2, 3), opts)
	assert.ErrorIs(t, err, dtw.ErrEmptySequence, "empty reference must error")

	_, err = dtw.Align(seq1d("a", 1, 2, 3), seq1d("empty"), opts)
	assert.ErrorIs(t, err, dtw.ErrEmptySequence, "empty comparison must error")
}

// TestAlign_BadWindow ensures Window < -1 triggers ErrBadWindow.
func TestAlign_BadWindow(t *testing.T) {
	opts := dtw.DefaultOptions()
	opts.Window = -2
	_, err := dtw.Align(seq1d("a", 1), seq1d("b", 1), opts)
	assert.ErrorIs(t, err, dtw.ErrBadWindow)
}

// TestAlign_StepCostsNeedMatrix ensures ReturnStepCosts with rolling
// memory is rejected with ErrPathNeedsMatrix, never silently ignored.
func TestAlign_StepCostsNeedMatrix(t *testing.T) {
	opts := dtw.DefaultOptions()
	opts.ReturnStepCosts = true
	opts.MemoryMode = dtw.TwoRows

	_, err := dtw.Align(seq1d("a", 1, 2, 3), seq1d("b", 1, 2, 3), opts)
	assert.ErrorIs(t, err, dtw.ErrPathNeedsMatrix, "step costs without FullMatrix must error")
}

// TestAlign_SchemaMismatch ensures sequences with different keypoint
// counts fail with ErrDimensionMismatch.
func TestAlign_SchemaMismatch(t *testing.T) {
	two := landmark.NewSequence("two", []landmark.Frame{
		{{X: 0, Visibility: 1}, {X: 1, Visibility: 1}},
	})
	_, err := dtw.Align(seq1d("one", 0), two, dtw.DefaultOptions())
	assert.ErrorIs(t, err, dtw.ErrDimensionMismatch)
}

// TestAlign_SelfAlignment checks the identity property: aligning a
// sequence with itself yields zero distance along the exact diagonal.
func TestAlign_SelfAlignment(t *testing.T) {
	for _, vals := range [][]float64{
		{7},
		{0, 1, 2},
		{4.2, 4.17, 4.19, 4.08, 4.11, 4.09},
	} {
		a := seq1d("self", vals...)
		res, err := dtw.Align(a, a, dtw.DefaultOptions())
		require.NoError(t, err)
		assert.Equal(t, 0.0, res.TotalDistance, "self-alignment must cost zero")
		require.Len(t, res.Path, len(vals))
		for k, c := range res.Path {
			assert.Equal(t, dtw.Coord{I: k, J: k}, c, "self-alignment path must be the diagonal")
		}
	}
}

// TestAlign_Symmetric verifies distance symmetry under the symmetric
// frame metric.
func TestAlign_Symmetric(t *testing.T) {
	a := seq1d("a", 1, 3, 4, 9, 8)
	b := seq1d("b", 1, 4, 5, 9, 7, 7)
	opts := dtw.DefaultOptions()

	ab, err := dtw.Align(a, b, opts)
	require.NoError(t, err)
	ba, err := dtw.Align(b, a, opts)
	require.NoError(t, err)
	assert.Equal(t, ab.TotalDistance, ba.TotalDistance)
}

// TestAlign_PathInvariants exercises the structural contract across
// assorted shapes, including degenerate 1-frame sequences.
func TestAlign_PathInvariants(t *testing.T) {
	cases := []struct {
		name string
		a, b landmark.Sequence
	}{
		{"1x1", seq1d("a", 5), seq1d("b", 9)},
		{"1xN", seq1d("a", 5), seq1d("b", 1, 2, 3, 4)},
		{"Nx1", seq1d("a", 1, 2, 3, 4), seq1d("b", 5)},
		{"ragged-pace", seq1d("a", 0, 0, 1, 2, 1, 0), seq1d("b", 0, 1, 1, 1, 0)},
		{"shifted", seq1d("a", 10, 11, 12, 13, 14, 15), seq1d("b", 10, 11, 13, 14, 15)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res, err := dtw.Align(tc.a, tc.b, dtw.DefaultOptions())
			require.NoError(t, err)
			require.GreaterOrEqual(t, res.TotalDistance, 0.0)
			requirePathInvariants(t, res.Path, tc.a.Len(), tc.b.Len())
		})
	}
}

// TestAlign_PerfectSubsequence checks a stretched-but-identical pair
// costs zero and the path absorbs the extra frame.
func TestAlign_PerfectSubsequence(t *testing.T) {
	a := seq1d("a", 1, 2, 3)
	b := seq1d("b", 1, 2, 2, 3)
	res, err := dtw.Align(a, b, dtw.DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, 0.0, res.TotalDistance)
	assert.Len(t, res.Path, 4)
}

// TestAlign_ScenarioIdentical2D pins the end-to-end identity scenario:
// a 2-D single-keypoint ramp against itself.
func TestAlign_ScenarioIdentical2D(t *testing.T) {
	a := seq2d("ref", [2]float64{0, 0}, [2]float64{1, 1}, [2]float64{2, 2})
	b := seq2d("cmp", [2]float64{0, 0}, [2]float64{1, 1}, [2]float64{2, 2})

	res, err := dtw.Align(a, b, dtw.DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, 0.0, res.TotalDistance)
	assert.Equal(t, []dtw.Coord{{I: 0, J: 0}, {I: 1, J: 1}, {I: 2, J: 2}}, res.Path)
}

// TestAlign_ScenarioCollapse pins the 3-vs-1 scenario: every reference
// frame maps onto the single comparison frame.
func TestAlign_ScenarioCollapse(t *testing.T) {
	a := seq2d("ref", [2]float64{0, 0}, [2]float64{1, 1}, [2]float64{2, 2})
	b := seq2d("cmp", [2]float64{0, 0})

	res, err := dtw.Align(a, b, dtw.DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, []dtw.Coord{{I: 0, J: 0}, {I: 1, J: 0}, {I: 2, J: 0}}, res.Path)
}

// TestAlign_WindowInfeasible verifies a strict window with a length
// mismatch yields +Inf distance and no path.
func TestAlign_WindowInfeasible(t *testing.T) {
	opts := dtw.DefaultOptions()
	opts.Window = 0
	res, err := dtw.Align(seq1d("a", 1, 2, 3), seq1d("b", 1, 2, 3, 4), opts)
	require.NoError(t, err)
	assert.True(t, math.IsInf(res.TotalDistance, 1), "window=0 with length mismatch must be infeasible")
	assert.Nil(t, res.Path)
}

// TestAlign_WindowApproximation shows a band can only raise the
// distance relative to the exact alignment.
func TestAlign_WindowApproximation(t *testing.T) {
	a := seq1d("a", 0, 0, 0, 5, 5, 5, 9, 9)
	b := seq1d("b", 0, 5, 5, 5, 9, 9, 9, 9)

	exact, err := dtw.Align(a, b, dtw.DefaultOptions())
	require.NoError(t, err)

	banded := dtw.DefaultOptions()
	banded.Window = 1
	approx, err := dtw.Align(a, b, banded)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, approx.TotalDistance, exact.TotalDistance)
}

// TestAlign_TwoRowsDistanceOnly confirms the rolling mode matches the
// full matrix distance and returns no path.
func TestAlign_TwoRowsDistanceOnly(t *testing.T) {
	a := seq1d("a", 0, 1, 2, 3)
	b := seq1d("b", 0, 1, 1, 2, 3)

	ref, err := dtw.Align(a, b, dtw.DefaultOptions())
	require.NoError(t, err)

	opts := dtw.DefaultOptions()
	opts.MemoryMode = dtw.TwoRows
	res, err := dtw.Align(a, b, opts)
	require.NoError(t, err)
	assert.Equal(t, ref.TotalDistance, res.TotalDistance, "TwoRows must match FullMatrix distance")
	assert.Nil(t, res.Path)
	assert.Nil(t, res.StepCosts)
}

// TestAlign_StepCosts verifies per-step costs line up with the path and
// sum back to the total distance.
func TestAlign_StepCosts(t *testing.T) {
	a := seq1d("a", 1, 3, 4, 9, 8)
	b := seq1d("b", 1, 4, 5, 9, 7)
	opts := dtw.DefaultOptions()
	opts.ReturnStepCosts = true

	res, err := dtw.Align(a, b, opts)
	require.NoError(t, err)
	require.Len(t, res.StepCosts, len(res.Path))
	sum := 0.0
	for _, c := range res.StepCosts {
		require.GreaterOrEqual(t, c, 0.0)
		sum += c
	}
	assert.InDelta(t, res.TotalDistance, sum, 1e-9)
}

// TestAlign_DegradedCarryForward verifies the undefined-pair fallback:
// a fully occluded frame borrows the previous finite distance and the
// affected path steps are counted as degraded.
func TestAlign_DegradedCarryForward(t *testing.T) {
	occluded := landmark.Frame{{X: 50, Visibility: 0.1}}
	a := landmark.NewSequence("a", []landmark.Frame{
		{{X: 0, Visibility: 1}},
		{{X: 1, Visibility: 1}},
		occluded,
		{{X: 3, Visibility: 1}},
	})
	b := seq1d("b", 0, 1, 2, 3)

	res, err := dtw.Align(a, b, dtw.DefaultOptions())
	require.NoError(t, err)
	assert.False(t, math.IsInf(res.TotalDistance, 1))
	assert.False(t, math.IsNaN(res.TotalDistance))
	assert.GreaterOrEqual(t, res.DegradedSteps, 1, "occluded frame must be flagged, not silently scored")
	requirePathInvariants(t, res.Path, a.Len(), b.Len())
}

// TestAlign_DeterministicTieBreak pins the diagonal-first rule: on a
// constant pair every predecessor ties, so the path must be the pure
// diagonal.
func TestAlign_DeterministicTieBreak(t *testing.T) {
	a := seq1d("a", 5, 5, 5)
	b := seq1d("b", 5, 5, 5)
	res, err := dtw.Align(a, b, dtw.DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, []dtw.Coord{{I: 0, J: 0}, {I: 1, J: 1}, {I: 2, J: 2}}, res.Path)
}
