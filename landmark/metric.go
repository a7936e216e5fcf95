package landmark

import "math"

// MetricOptions configures the pairwise frame distance.
//
// Fields:
//   - VisibilityThreshold — keypoints whose visibility (on either side)
//     falls below this value are excluded from the distance. 0 keeps
//     every keypoint. Must lie in [0,1].
//   - Weighted — when true, each kept keypoint's squared distance is
//     scaled by the lower of the two visibilities, so shaky detections
//     contribute less than confident ones.
type MetricOptions struct {
	VisibilityThreshold float64
	Weighted            bool
}

// DefaultMetricOptions returns the reference metric configuration:
// threshold 0.5 (the detector's own default confidence floor) with
// visibility weighting enabled.
func DefaultMetricOptions() MetricOptions {
	return MetricOptions{VisibilityThreshold: 0.5, Weighted: true}
}

// FrameDistance computes the Euclidean distance between two frames over
// their concatenated keypoint coordinates, subject to the visibility
// policy in opts.
//
// The second return value reports whether the distance is defined: it is
// false when every keypoint of the pair fell below the threshold. In
// that case the distance is 0 and callers must apply their own fallback
// (the aligner carries forward the previous finite cost and flags the
// step as degraded).
//
// Errors: ErrDimensionMismatch when the frames disagree on keypoint
// count, ErrBadThreshold when the threshold is out of range. The
// computation is deterministic: identical inputs always produce the
// identical float64.
func FrameDistance(a, b Frame, opts MetricOptions) (float64, bool, error) {
	if len(a) != len(b) {
		return 0, false, ErrDimensionMismatch
	}
	if opts.VisibilityThreshold < 0 || opts.VisibilityThreshold > 1 {
		return 0, false, ErrBadThreshold
	}

	var sum float64
	used := 0
	for k := range a {
		va, vb := a[k].Visibility, b[k].Visibility
		if va < opts.VisibilityThreshold || vb < opts.VisibilityThreshold {
			continue
		}
		dx := a[k].X - b[k].X
		dy := a[k].Y - b[k].Y
		dz := a[k].Z - b[k].Z
		sq := dx*dx + dy*dy + dz*dz
		if opts.Weighted {
			sq *= math.Min(va, vb)
		}
		sum += sq
		used++
	}
	if used == 0 {
		return 0, false, nil
	}
	return math.Sqrt(sum), true, nil
}
