package session

import (
	"context"
	"hash/fnv"
	"math"
	"path/filepath"

	"github.com/motionkit/posealign/landmark"
)

// Extractor is the capability boundary to the pose detector: given a
// stored video artifact and the session's detector settings, produce
// the per-frame landmark sequence. Extraction is long-running and may
// block; implementations should honor ctx cancellation. The core never
// looks inside the settings and never retries a failed extraction.
type Extractor interface {
	Extract(ctx context.Context, videoPath string, s Settings) (landmark.Sequence, error)
}

// stubKeypoints matches the detector schema of the production pose
// model (33 body landmarks).
const stubKeypoints = 33

// StubExtractor is a deterministic in-process Extractor for tests and
// demos. Lookups hit Sequences by video basename first; misses
// synthesize a repeatable sequence seeded by the basename and the
// settings, so the same video "extracts" to the same landmarks on
// every run. When Err is set every call fails with it.
type StubExtractor struct {
	Sequences map[string]landmark.Sequence
	Frames    int // synthesized frame count, default 60
	Err       error
}

// Extract implements Extractor.
func (e *StubExtractor) Extract(ctx context.Context, videoPath string, s Settings) (landmark.Sequence, error) {
	if e.Err != nil {
		return landmark.Sequence{}, e.Err
	}
	if err := ctx.Err(); err != nil {
		return landmark.Sequence{}, err
	}
	name := filepath.Base(videoPath)
	if seq, ok := e.Sequences[name]; ok {
		return seq, nil
	}
	return e.synthesize(name, s), nil
}

// synthesize fabricates a smooth pseudo-motion: every keypoint follows
// a sinusoid whose phase derives from an FNV hash of the video name
// and settings. Deterministic by construction.
func (e *StubExtractor) synthesize(name string, s Settings) landmark.Sequence {
	frames := e.Frames
	if frames <= 0 {
		frames = 60
	}

	h := fnv.New64a()
	_, _ = h.Write([]byte(name))
	_, _ = h.Write([]byte{byte(s.ModelComplexity)})
	_, _ = h.Write([]byte{byte(s.MinDetectionConfidence * 100), byte(s.MinTrackingConfidence * 100)})
	phase := float64(h.Sum64()%1000) / 1000 * 2 * math.Pi

	fs := make([]landmark.Frame, frames)
	for i := range fs {
		f := make(landmark.Frame, stubKeypoints)
		t := float64(i) / 30.0
		for k := range f {
			f[k] = landmark.Keypoint{
				X:          0.5 + 0.2*math.Sin(2*t+phase+float64(k)/stubKeypoints),
				Y:          0.5 + 0.2*math.Cos(2*t+phase+float64(k)/stubKeypoints),
				Z:          0.05 * math.Sin(t+phase),
				Visibility: 1,
			}
		}
		fs[i] = f
	}
	seq := landmark.NewSequence(name, fs)
	seq.SourcePath = name
	return seq
}
