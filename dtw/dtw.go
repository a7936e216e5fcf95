package dtw

import (
	"fmt"
	"math"

	"github.com/motionkit/posealign/landmark"
)

// Align computes the Dynamic Time Warping alignment between sequences
// a (reference) and b (comparison).
//
// Algorithm (FullMatrix):
//  1. Let n = a.Len(), m = b.Len(). Allocate the (n+1)×(m+1) cumulative
//     cost matrix C as one flat arena buffer.
//  2. Initialize C[0][0] = 0 and the first row/column to +Inf.
//  3. For i = 1..n, j = 1..m (and |i−j| ≤ Window, if constrained):
//     C[i][j] = cost(a[i-1], b[j-1]) + min(C[i-1][j-1], C[i-1][j], C[i][j-1])
//     where cost is the visibility-aware frame distance; an undefined
//     pair (no usable keypoints) reuses the previous finite distance in
//     scan order and is flagged as degraded.
//  4. TotalDistance = C[n][m].
//  5. Backtrack from (n,m) to (0,0), preferring on ties the diagonal
//     predecessor, then the vertical (i-1,j), then the horizontal
//     (i,j-1) — minimal path length, reproducible output.
//
// Errors: ErrEmptySequence if either sequence has no frames,
// ErrDimensionMismatch (or landmark validation errors) if the two
// sequences do not share one keypoint schema, ErrBadWindow for
// Window < -1, ErrPathNeedsMatrix for ReturnStepCosts with TwoRows,
// landmark.ErrBadThreshold for a bad metric threshold.
// Pure computation, no I/O: nothing else fails.
func Align(a, b landmark.Sequence, opts Options) (Result, error) {
	n, m := a.Len(), b.Len()
	if n == 0 || m == 0 {
		return Result{}, ErrEmptySequence
	}
	if opts.Window < -1 {
		return Result{}, ErrBadWindow
	}
	if opts.ReturnStepCosts && opts.MemoryMode != FullMatrix {
		return Result{}, ErrPathNeedsMatrix
	}
	if opts.Metric.VisibilityThreshold < 0 || opts.Metric.VisibilityThreshold > 1 {
		return Result{}, landmark.ErrBadThreshold
	}
	if err := a.Validate(); err != nil {
		return Result{}, err
	}
	if err := b.Validate(); err != nil {
		return Result{}, err
	}
	if a.Schema() != b.Schema() {
		return Result{}, fmt.Errorf("dtw: reference has %d keypoints, comparison %d: %w",
			a.Schema(), b.Schema(), ErrDimensionMismatch)
	}

	if opts.MemoryMode == TwoRows {
		return alignTwoRows(a, b, opts)
	}
	return alignFullMatrix(a, b, opts)
}

// costMatrix is the arena-backed cumulative cost matrix: a single flat
// buffer indexed by (i, j), replacing any pointer-based traversal so
// that backtracking stays iterative regardless of sequence length.
type costMatrix struct {
	cells []float64
	cols  int
}

func newCostMatrix(rows, cols int) *costMatrix {
	return &costMatrix{cells: make([]float64, rows*cols), cols: cols}
}

func (c *costMatrix) at(i, j int) float64     { return c.cells[i*c.cols+j] }
func (c *costMatrix) set(i, j int, v float64) { c.cells[i*c.cols+j] = v }

func alignFullMatrix(a, b landmark.Sequence, opts Options) (Result, error) {
	n, m := a.Len(), b.Len()
	inf := math.Inf(1)

	cm := newCostMatrix(n+1, m+1)
	for i := 1; i <= n; i++ {
		cm.set(i, 0, inf)
	}
	for j := 1; j <= m; j++ {
		cm.set(0, j, inf)
	}

	// degraded marks cells whose frame pair had no usable keypoints;
	// keyed by the arena index of (i, j).
	degraded := make(map[int]bool)
	lastFinite := 0.0

	for i := 1; i <= n; i++ {
		for j := 1; j <= m; j++ {
			if opts.Window >= 0 && absInt(i-j) > opts.Window {
				cm.set(i, j, inf)
				continue
			}
			d, ok, err := landmark.FrameDistance(a.Frame(i-1), b.Frame(j-1), opts.Metric)
			if err != nil {
				return Result{}, err
			}
			if ok {
				lastFinite = d
			} else {
				d = lastFinite
				degraded[i*cm.cols+j] = true
			}
			best := min3(cm.at(i-1, j-1), cm.at(i-1, j), cm.at(i, j-1))
			cm.set(i, j, d+best)
		}
	}

	total := cm.at(n, m)
	if math.IsInf(total, 1) {
		return Result{TotalDistance: total}, nil
	}

	res := Result{TotalDistance: total}
	res.Path, res.StepCosts, res.DegradedSteps = backtrack(cm, n, m, degraded, opts.ReturnStepCosts)
	return res, nil
}

// backtrack recovers the warp path from the filled cost matrix,
// iteratively, from (n,m) down to (1,1). Ties prefer the diagonal,
// then the vertical, then the horizontal predecessor.
func backtrack(cm *costMatrix, n, m int, degraded map[int]bool, wantCosts bool) ([]Coord, []float64, int) {
	path := make([]Coord, 0, n+m-1)
	var costs []float64
	if wantCosts {
		costs = make([]float64, 0, n+m-1)
	}
	degradedSteps := 0

	i, j := n, m
	for {
		path = append(path, Coord{I: i - 1, J: j - 1})
		if degraded[i*cm.cols+j] {
			degradedSteps++
		}

		if i == 1 && j == 1 {
			if wantCosts {
				costs = append(costs, cm.at(1, 1))
			}
			break
		}

		diag, vert, horiz := cm.at(i-1, j-1), cm.at(i-1, j), cm.at(i, j-1)
		best := min3(diag, vert, horiz)
		if wantCosts {
			costs = append(costs, math.Max(0, cm.at(i, j)-best))
		}
		switch best {
		case diag:
			i, j = i-1, j-1
		case vert:
			i--
		default:
			j--
		}
	}

	reverseCoords(path)
	if wantCosts {
		reverseFloats(costs)
	}
	return path, costs, degradedSteps
}

// alignTwoRows keeps only two matrix rows: O(m) memory, distance only.
// No path, no step costs, no degraded accounting.
func alignTwoRows(a, b landmark.Sequence, opts Options) (Result, error) {
	n, m := a.Len(), b.Len()
	inf := math.Inf(1)

	prev := make([]float64, m+1)
	curr := make([]float64, m+1)
	for j := 1; j <= m; j++ {
		prev[j] = inf
	}

	lastFinite := 0.0
	for i := 1; i <= n; i++ {
		curr[0] = inf
		for j := 1; j <= m; j++ {
			if opts.Window >= 0 && absInt(i-j) > opts.Window {
				curr[j] = inf
				continue
			}
			d, ok, err := landmark.FrameDistance(a.Frame(i-1), b.Frame(j-1), opts.Metric)
			if err != nil {
				return Result{}, err
			}
			if ok {
				lastFinite = d
			} else {
				d = lastFinite
			}
			curr[j] = d + min3(prev[j-1], prev[j], curr[j-1])
		}
		prev, curr = curr, prev
	}

	return Result{TotalDistance: prev[m]}, nil
}

// absInt returns the absolute value of an int.
func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// min3 returns the minimum of three float64 values.
func min3(a, b, c float64) float64 {
	if a < b {
		if a < c {
			return a
		}
		return c
	}
	if b < c {
		return b
	}
	return c
}

func reverseCoords(s []Coord) {
	for l, r := 0, len(s)-1; l < r; l, r = l+1, r-1 {
		s[l], s[r] = s[r], s[l]
	}
}

func reverseFloats(s []float64) {
	for l, r := 0, len(s)-1; l < r; l, r = l+1, r-1 {
		s[l], s[r] = s[r], s[l]
	}
}
