package landmark

import (
	"encoding/json"
	"fmt"
)

// sequenceJSON mirrors the on-disk layout of a persisted sequence:
// one object per extraction run, one entry per frame.
type sequenceJSON struct {
	SequenceID string      `json:"sequence_id"`
	Width      int         `json:"width"`
	Height     int         `json:"height"`
	FrameCount int         `json:"frame_count"`
	SourcePath string      `json:"source_path"`
	Frames     []frameJSON `json:"frames"`
}

type frameJSON struct {
	FrameID   int        `json:"frame_id"`
	Landmarks []Keypoint `json:"landmarks"`
}

// EncodeSequence serializes s into the per-session artifact format
// (reference_landmarks.json / comparison_landmarks.json).
func EncodeSequence(s Sequence) ([]byte, error) {
	doc := sequenceJSON{
		SequenceID: s.ID,
		Width:      s.Width,
		Height:     s.Height,
		FrameCount: s.Len(),
		SourcePath: s.SourcePath,
		Frames:     make([]frameJSON, s.Len()),
	}
	for i := 0; i < s.Len(); i++ {
		doc.Frames[i] = frameJSON{FrameID: i, Landmarks: s.Frame(i)}
	}
	return json.MarshalIndent(doc, "", "  ")
}

// DecodeSequence parses data produced by EncodeSequence and validates
// the result. Frames are copied into a fresh immutable Sequence.
func DecodeSequence(data []byte) (Sequence, error) {
	var doc sequenceJSON
	if err := json.Unmarshal(data, &doc); err != nil {
		return Sequence{}, fmt.Errorf("landmark: decode sequence: %w", err)
	}
	frames := make([]Frame, len(doc.Frames))
	for i, f := range doc.Frames {
		frames[i] = Frame(f.Landmarks)
	}
	s := NewSequence(doc.SequenceID, frames)
	s.Width = doc.Width
	s.Height = doc.Height
	s.SourcePath = doc.SourcePath
	if err := s.Validate(); err != nil {
		return Sequence{}, err
	}
	return s, nil
}
