package session

import (
	"time"

	"github.com/motionkit/posealign/dtw"
)

// Settings carries the detector sensitivity knobs. They are opaque
// pass-through values: stored on the session, handed to the Extractor,
// echoed in the result document, never interpreted here.
type Settings struct {
	ModelComplexity        int     `json:"model_complexity" yaml:"model_complexity"`
	MinDetectionConfidence float64 `json:"min_detection_confidence" yaml:"min_detection_confidence"`
	MinTrackingConfidence  float64 `json:"min_tracking_confidence" yaml:"min_tracking_confidence"`
}

// DefaultSettings mirrors the detector's own defaults.
func DefaultSettings() Settings {
	return Settings{
		ModelComplexity:        1,
		MinDetectionConfidence: 0.5,
		MinTrackingConfidence:  0.5,
	}
}

// Session is an immutable snapshot of one analysis session's metadata.
// Sequences and results are reached through the Store, which owns the
// mutable state behind this snapshot.
type Session struct {
	ID        string    `json:"session_id"`
	CreatedAt time.Time `json:"created_at"`

	// Stored source artifact locations, addressable by session id.
	ReferencePath  string `json:"reference_path"`
	ComparisonPath string `json:"comparison_path"`

	// Original upload filenames, kept verbatim for the result document.
	ReferenceName  string `json:"reference_name"`
	ComparisonName string `json:"comparison_name"`

	Settings Settings `json:"settings"`

	SequencesAttached bool `json:"sequences_attached"`
}

// Filenames pairs the two sides of a session by role.
type Filenames struct {
	Reference  string `json:"reference"`
	Comparison string `json:"comparison"`
}

// Artifacts lists the per-session files addressable by session id.
//
// The preview paths are set only when annotated renders of the source
// videos exist in the session directory; they stay empty otherwise and
// are omitted from JSON.
type Artifacts struct {
	ReferenceVideo      string `json:"reference_video"`
	ComparisonVideo     string `json:"comparison_video"`
	ReferenceLandmarks  string `json:"reference_landmarks"`
	ComparisonLandmarks string `json:"comparison_landmarks"`
	Results             string `json:"results"`
	PreviewReference    string `json:"preview_reference,omitempty"`
	PreviewComparison   string `json:"preview_comparison,omitempty"`
}

// Metrics is the quantitative core of a result document.
//
// QueryIndices and ReferenceIndices are the warp path split into its
// two columns: step k aligned comparison frame QueryIndices[k] with
// reference frame ReferenceIndices[k].
type Metrics struct {
	Distance             float64   `json:"distance"`
	SimilarityPercentage float64   `json:"similarity_percentage"`
	QueryIndices         []int     `json:"query_indices"`
	ReferenceIndices     []int     `json:"reference_indices"`
	DegradedSteps        int       `json:"degraded_steps"`
	StepCosts            []float64 `json:"step_costs,omitempty"`
}

// ResultDocument is the persisted, retrievable outcome of one
// completed analysis: metrics plus the session metadata a caller needs
// to interpret them.
type ResultDocument struct {
	SessionID         string    `json:"session_id"`
	Metrics           Metrics   `json:"metrics"`
	AnalysisSettings  Settings  `json:"analysis_settings"`
	OriginalFilenames Filenames `json:"original_filenames"`
	Artifacts         Artifacts `json:"artifacts"`
	UploadedAt        time.Time `json:"uploaded_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// splitPath decomposes a warp path into its query (comparison) and
// reference index columns.
func splitPath(path []dtw.Coord) (query, reference []int) {
	if len(path) == 0 {
		return nil, nil
	}
	query = make([]int, len(path))
	reference = make([]int, len(path))
	for k, c := range path {
		reference[k] = c.I
		query[k] = c.J
	}
	return query, reference
}
