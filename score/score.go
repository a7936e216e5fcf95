// Package score converts a DTW alignment outcome into a bounded,
// human-interpretable similarity percentage.
//
// The raw cumulative distance grows with sequence length, so it is
// first normalized by the warp path length, making scores comparable
// across videos of different duration. The normalized distance d is
// then mapped into [0,100] with
//
//	similarity = 100 / (1 + d)
//
// The mapping is a policy choice; the properties that matter are the
// ones every caller may rely on: identical sequences score exactly
// 100, the score decreases continuously and monotonically as the
// normalized distance grows, and it approaches 0 for unboundedly
// dissimilar sequences. An infinite distance (infeasible banded
// alignment) scores 0.
package score

import (
	"errors"
	"math"
)

// Sentinel errors for similarity scoring.
var (
	// ErrBadDistance is returned for a negative or NaN total distance.
	ErrBadDistance = errors.New("score: total distance must be a non-negative number")

	// ErrBadPathLength is returned for a path length < 1.
	ErrBadPathLength = errors.New("score: path length must be >= 1")
)

// Similarity maps totalDistance, normalized by pathLen, into [0,100].
//
// totalDistance is the cumulative DTW cost; pathLen the number of warp
// path steps it accumulated over. +Inf is a valid input and scores 0.
func Similarity(totalDistance float64, pathLen int) (float64, error) {
	if math.IsNaN(totalDistance) || totalDistance < 0 {
		return 0, ErrBadDistance
	}
	if pathLen < 1 {
		return 0, ErrBadPathLength
	}
	if math.IsInf(totalDistance, 1) {
		return 0, nil
	}
	normalized := totalDistance / float64(pathLen)
	return 100 / (1 + normalized), nil
}
