package session

import (
	"errors"
	"fmt"
)

// Sentinel errors for the session store. All are matchable with
// errors.Is; wrapping adds the session id and stage.
var (
	// ErrSessionNotFound is returned when the session id is unknown.
	ErrSessionNotFound = errors.New("session: session not found")

	// ErrSequencesNotReady is returned when analysis is requested
	// before both landmark sequences are attached.
	ErrSequencesNotReady = errors.New("session: landmark sequences not attached")

	// ErrSequencesAttached is returned on a second attach attempt;
	// sequences are immutable once set.
	ErrSequencesAttached = errors.New("session: sequences already attached")

	// ErrNotFound is returned by LatestResult when no analysis has ever
	// completed for the session.
	ErrNotFound = errors.New("session: no result for session")

	// ErrExtractionFailed wraps a failure of the external landmark
	// extractor; terminal for that attempt, session state untouched.
	ErrExtractionFailed = errors.New("session: landmark extraction failed")

	// ErrStaleResult is returned when a completed analysis loses the
	// commit race to a later-completing run; the newer result stands.
	ErrStaleResult = errors.New("session: result superseded by newer completion")
)

// wrapSession annotates a sentinel with the session id and the stage
// that failed, so surfaced errors are diagnosable without internals.
func wrapSession(sentinel error, id, stage string) error {
	return fmt.Errorf("session %s: %s: %w", id, stage, sentinel)
}
