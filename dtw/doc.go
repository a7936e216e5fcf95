// Package dtw aligns two pose landmark sequences with Dynamic Time
// Warping and reports the cumulative distance plus the optimal warp
// path, with optional banding and memory optimizations.
//
// 🚀 Why DTW?
//
//	Two people never perform a motion at the same speed. DTW warps the
//	time axis of one landmark sequence against the other to find the
//	lowest-cost monotonic frame-to-frame correspondence, making the
//	resulting distance comparable across videos of different lengths
//	and frame rates.
//
// ✨ Key features:
//   - full-matrix mode: exact O(N·M) time & memory, warp path recovered
//     by deterministic backtracking (diagonal, then vertical, then
//     horizontal on ties)
//   - TwoRows mode: O(M) memory, distance only
//   - optional Sakoe–Chiba window (|i−j| ≤ w) to bound wall-clock time
//     on very long sequences — an approximation that may exclude the
//     true optimum
//   - visibility-aware step cost from the landmark frame metric, with
//     carry-forward fallback and degraded-step accounting when a frame
//     pair has no usable keypoints
//
// ⚙️ Usage:
//
//	opts := dtw.DefaultOptions()
//	opts.ReturnStepCosts = true
//
//	res, err := dtw.Align(reference, comparison, opts)
//	if err != nil {
//	  // ErrEmptySequence, ErrDimensionMismatch or ErrBadWindow
//	}
//	fmt.Println(res.TotalDistance, res.Path)
//
// Performance:
//
//   - Time:   O(N·M)
//   - Memory: O(N·M) (FullMatrix) or O(M) (TwoRows)
package dtw
