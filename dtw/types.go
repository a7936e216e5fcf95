// Package dtw: options, result types and sentinel errors.
package dtw

import (
	"errors"

	"github.com/motionkit/posealign/landmark"
)

// Sentinel errors for alignment. All are matchable with errors.Is.
var (
	// ErrEmptySequence indicates one or both input sequences have no
	// frames. A video in which no pose was ever detected must fail
	// here, never score.
	ErrEmptySequence = errors.New("dtw: input sequences must be non-empty")

	// ErrBadWindow indicates Window < -1.
	ErrBadWindow = errors.New("dtw: window must be -1 (unlimited) or >= 0")

	// ErrPathNeedsMatrix indicates that per-step costs were requested
	// with TwoRows storage, which cannot recover the path they follow.
	ErrPathNeedsMatrix = errors.New("dtw: ReturnStepCosts requires MemoryMode=FullMatrix")

	// ErrDimensionMismatch aliases the landmark sentinel so callers can
	// match either package; both sequences must share one keypoint
	// schema.
	ErrDimensionMismatch = landmark.ErrDimensionMismatch
)

// MemoryMode controls how Align stores its cumulative cost matrix.
//
//   - FullMatrix — keep the entire (n+1)×(m+1) matrix as one flat
//     arena buffer. Required for warp-path backtracking and
//     degraded-step accounting. Memory: O(n·m).
//
//   - TwoRows — keep only the current and previous rows. Memory drops
//     to O(m), but the result carries the distance alone: no path, no
//     step costs, no degraded accounting.
type MemoryMode int

const (
	// FullMatrix mode: store all rows, recover the path. Default.
	FullMatrix MemoryMode = iota

	// TwoRows mode: rolling two-row storage, distance only.
	TwoRows
)

// Coord is one aligned index pair of the warp path: frame I of the
// reference sequence matched against frame J of the comparison.
type Coord struct {
	I int
	J int
}

// Options configures Align.
//
// Fields:
//   - Window — Sakoe–Chiba half-width: cells with |i−j| > Window are
//     excluded. -1 disables the constraint (exact DTW); 0 forces the
//     strict diagonal; values < -1 are rejected with ErrBadWindow.
//     Any Window >= 0 is an approximation and can exclude the true
//     optimum (the distance may even come out +Inf when the band
//     cannot reach the opposite corner).
//   - Metric — visibility policy for the per-step frame distance.
//   - ReturnStepCosts — also record the incremental cost of every path
//     step (for visualization). Requires MemoryMode=FullMatrix;
//     combining it with TwoRows is rejected with ErrPathNeedsMatrix.
//   - MemoryMode — FullMatrix or TwoRows.
type Options struct {
	Window          int
	Metric          landmark.MetricOptions
	ReturnStepCosts bool
	MemoryMode      MemoryMode
}

// DefaultOptions returns the exact-alignment configuration: no window,
// the default visibility policy, full matrix with path recovery and no
// per-step costs.
func DefaultOptions() Options {
	return Options{
		Window:     -1,
		Metric:     landmark.DefaultMetricOptions(),
		MemoryMode: FullMatrix,
	}
}

// Result is the outcome of one alignment.
//
// TotalDistance is the cumulative cost of the optimal warp path,
// >= 0, and 0 iff the sequences are frame-wise identical along the
// diagonal. Under a Window constraint it may be +Inf (band infeasible).
//
// Path holds the warp path in FullMatrix mode: it starts at (0,0),
// ends at (lenA-1, lenB-1), every step advances I and/or J by exactly
// one, and its length lies in [max(lenA,lenB), lenA+lenB-1]. Nil in
// TwoRows mode or when TotalDistance is +Inf.
//
// StepCosts, when requested, holds the incremental cost of each path
// step, aligned index-for-index with Path.
//
// DegradedSteps counts path steps whose frame pair had no keypoint
// above the visibility threshold; their cost was carried forward from
// the previous finite cell rather than measured.
type Result struct {
	TotalDistance float64
	Path          []Coord
	StepCosts     []float64
	DegradedSteps int
}
