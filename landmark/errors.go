package landmark

import (
	"errors"
	"fmt"
)

// Sentinel errors for landmark validation and the frame metric.
// All are matchable with errors.Is; wrapping only adds context.
var (
	// ErrDimensionMismatch is returned when two frames (or two frames of
	// one sequence) do not share the same keypoint count.
	ErrDimensionMismatch = errors.New("landmark: keypoint schema mismatch")

	// ErrBadVisibility is returned when a keypoint visibility lies
	// outside [0,1].
	ErrBadVisibility = errors.New("landmark: visibility out of [0,1]")

	// ErrBadThreshold is returned when a metric visibility threshold
	// lies outside [0,1].
	ErrBadThreshold = errors.New("landmark: visibility threshold out of [0,1]")
)

// wrapFrame annotates a sentinel with the sequence id and frame index
// that triggered it.
func wrapFrame(sentinel error, seqID string, frame int) error {
	return fmt.Errorf("sequence %q frame %d: %w", seqID, frame, sentinel)
}
