package landmark

// Keypoint is a single detected body landmark.
//
// X, Y, Z are real-valued coordinates in the detector's output space
// (typically normalized image coordinates plus a relative depth).
// Visibility is the detector's confidence that the landmark was actually
// observed, in [0,1].
type Keypoint struct {
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Z          float64 `json:"z"`
	Visibility float64 `json:"visibility"`
}

// Frame is the ordered keypoint set observed on one video frame.
// The keypoint count is fixed by the detector's schema and must be
// identical across all frames of all sequences being compared.
type Frame []Keypoint

// Sequence is the ordered, finite series of Frames extracted from one
// video. Length zero is a valid but degenerate value: it represents a
// video in which no pose was ever detected, and alignment rejects it
// explicitly rather than producing a score.
type Sequence struct {
	// ID identifies the extraction run that produced this sequence.
	ID string

	// Width and Height are the source video dimensions in pixels.
	Width  int
	Height int

	// SourcePath is the basename of the video the sequence came from.
	SourcePath string

	frames []Frame
}

// NewSequence builds an immutable Sequence from frames.
// The frame slice and each frame are copied; later mutation of the
// caller's slices does not affect the Sequence.
func NewSequence(id string, frames []Frame) Sequence {
	cp := make([]Frame, len(frames))
	for i, f := range frames {
		cp[i] = append(Frame(nil), f...)
	}
	return Sequence{ID: id, frames: cp}
}

// Len returns the number of frames in the sequence.
func (s Sequence) Len() int { return len(s.frames) }

// Frame returns the i-th frame. The returned slice must be treated as
// read-only.
func (s Sequence) Frame(i int) Frame { return s.frames[i] }

// Schema returns the keypoint count shared by every frame, or 0 for an
// empty sequence. Use Validate to detect ragged sequences first.
func (s Sequence) Schema() int {
	if len(s.frames) == 0 {
		return 0
	}
	return len(s.frames[0])
}

// Validate checks that every frame carries the same keypoint count and
// that every visibility lies in [0,1]. Returns ErrDimensionMismatch or
// ErrBadVisibility, wrapped with the offending frame index.
func (s Sequence) Validate() error {
	if len(s.frames) == 0 {
		return nil
	}
	want := len(s.frames[0])
	for i, f := range s.frames {
		if len(f) != want {
			return wrapFrame(ErrDimensionMismatch, s.ID, i)
		}
		for _, kp := range f {
			if kp.Visibility < 0 || kp.Visibility > 1 {
				return wrapFrame(ErrBadVisibility, s.ID, i)
			}
		}
	}
	return nil
}
