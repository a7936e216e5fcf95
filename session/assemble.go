package session

import (
	"time"

	"github.com/motionkit/posealign/dtw"
)

// Assemble composes an alignment outcome, its similarity score and the
// session metadata into the result document returned to callers and
// persisted for later retrieval.
//
// Pure field composition: the same inputs always produce an identical
// document apart from UpdatedAt, which is set to now (UTC).
func Assemble(sess Session, alignment dtw.Result, similarity float64, now time.Time) ResultDocument {
	query, reference := splitPath(alignment.Path)
	return ResultDocument{
		SessionID: sess.ID,
		Metrics: Metrics{
			Distance:             alignment.TotalDistance,
			SimilarityPercentage: similarity,
			QueryIndices:         query,
			ReferenceIndices:     reference,
			DegradedSteps:        alignment.DegradedSteps,
			StepCosts:            alignment.StepCosts,
		},
		AnalysisSettings: sess.Settings,
		OriginalFilenames: Filenames{
			Reference:  sess.ReferenceName,
			Comparison: sess.ComparisonName,
		},
		Artifacts:  sessionArtifacts(sess),
		UploadedAt: sess.CreatedAt,
		UpdatedAt:  now.UTC(),
	}
}
