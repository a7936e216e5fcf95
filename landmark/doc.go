// Package landmark defines the pose time-series types consumed by the
// alignment engine: a Keypoint (one detected body landmark with spatial
// coordinates and a visibility confidence), a Frame (the fixed-schema
// keypoint set observed on one video frame), and a Sequence (the ordered
// per-frame observations extracted from one video).
//
// The package also provides the pairwise frame metric used as the DTW
// step cost: a confidence-aware Euclidean distance over concatenated
// keypoint coordinates. Keypoints whose visibility falls below a
// configurable threshold are excluded from the distance; when every
// keypoint of a pair is below threshold the distance is undefined and
// the caller must apply its own fallback (see FrameDistance).
//
// Sequences are immutable after creation: NewSequence copies its input,
// and nothing in this module mutates a Frame once stored. Re-extraction
// with different detector settings produces a new Sequence (and a new
// session upstream), never an edit of an existing one.
package landmark
