package session

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/motionkit/posealign/landmark"
)

// Artifact filenames inside a session directory. All four are
// addressable from the session id alone.
const (
	refLandmarksFile = "reference_landmarks.json"
	cmpLandmarksFile = "comparison_landmarks.json"
	resultsFile      = "results.json"
	refPreviewFile   = "preview_reference.mp4"
	cmpPreviewFile   = "preview_comparison.mp4"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS sessions (
	id TEXT PRIMARY KEY,
	created_at INTEGER NOT NULL,
	reference_name TEXT NOT NULL,
	comparison_name TEXT NOT NULL,
	reference_path TEXT NOT NULL,
	comparison_path TEXT NOT NULL,
	model_complexity INTEGER NOT NULL DEFAULT 1,
	min_detection_confidence REAL NOT NULL DEFAULT 0.5,
	min_tracking_confidence REAL NOT NULL DEFAULT 0.5,
	sequences_attached INTEGER NOT NULL DEFAULT 0,
	updated_at INTEGER
)`

// openDB opens (creating if needed) the session index database.
func openDB(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("session: open index database: %w", err)
	}

	// Pragmas for concurrency: WAL allows readers while a writer is
	// active, busy_timeout reduces SQLITE_BUSY under contention.
	_, _ = db.Exec("PRAGMA journal_mode = WAL")
	_, _ = db.Exec("PRAGMA synchronous = NORMAL")
	_, _ = db.Exec("PRAGMA busy_timeout = 5000")

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("session: create schema: %w", err)
	}
	return db, nil
}

func insertSessionRow(db *sql.DB, sess Session) error {
	_, err := db.Exec(`
		INSERT INTO sessions (
			id, created_at, reference_name, comparison_name,
			reference_path, comparison_path,
			model_complexity, min_detection_confidence, min_tracking_confidence,
			sequences_attached
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, 0)`,
		sess.ID, sess.CreatedAt.Unix(), sess.ReferenceName, sess.ComparisonName,
		sess.ReferencePath, sess.ComparisonPath,
		sess.Settings.ModelComplexity, sess.Settings.MinDetectionConfidence,
		sess.Settings.MinTrackingConfidence,
	)
	if err != nil {
		return fmt.Errorf("session %s: index insert: %w", sess.ID, err)
	}
	return nil
}

func markAttachedRow(db *sql.DB, sess Session) error {
	_, err := db.Exec(`
		UPDATE sessions SET
			model_complexity = ?, min_detection_confidence = ?,
			min_tracking_confidence = ?, sequences_attached = 1
		WHERE id = ?`,
		sess.Settings.ModelComplexity, sess.Settings.MinDetectionConfidence,
		sess.Settings.MinTrackingConfidence, sess.ID,
	)
	if err != nil {
		return fmt.Errorf("session %s: index attach update: %w", sess.ID, err)
	}
	return nil
}

func touchUpdatedRow(db *sql.DB, id string, at time.Time) error {
	if _, err := db.Exec(`UPDATE sessions SET updated_at = ? WHERE id = ?`, at.Unix(), id); err != nil {
		return fmt.Errorf("session %s: index result update: %w", id, err)
	}
	return nil
}

func loadSessionRows(db *sql.DB) ([]Session, error) {
	rows, err := db.Query(`
		SELECT id, created_at, reference_name, comparison_name,
		       reference_path, comparison_path,
		       model_complexity, min_detection_confidence, min_tracking_confidence,
		       sequences_attached
		FROM sessions`)
	if err != nil {
		return nil, fmt.Errorf("session: load index: %w", err)
	}
	defer rows.Close()

	var out []Session
	for rows.Next() {
		var s Session
		var created int64
		var attached int
		if err := rows.Scan(
			&s.ID, &created, &s.ReferenceName, &s.ComparisonName,
			&s.ReferencePath, &s.ComparisonPath,
			&s.Settings.ModelComplexity, &s.Settings.MinDetectionConfidence,
			&s.Settings.MinTrackingConfidence, &attached,
		); err != nil {
			return nil, fmt.Errorf("session: scan index row: %w", err)
		}
		s.CreatedAt = time.Unix(created, 0).UTC()
		s.SequencesAttached = attached != 0
		out = append(out, s)
	}
	return out, rows.Err()
}

// sessionDir returns the per-session artifact directory.
func sessionDir(sess Session) string {
	return filepath.Dir(sess.ReferencePath)
}

// sessionArtifacts lists the artifact locations for a session. Preview
// renders are optional, so their paths are reported only when present.
func sessionArtifacts(sess Session) Artifacts {
	dir := sessionDir(sess)
	art := Artifacts{
		ReferenceVideo:      sess.ReferencePath,
		ComparisonVideo:     sess.ComparisonPath,
		ReferenceLandmarks:  filepath.Join(dir, refLandmarksFile),
		ComparisonLandmarks: filepath.Join(dir, cmpLandmarksFile),
		Results:             filepath.Join(dir, resultsFile),
	}
	if p := filepath.Join(dir, refPreviewFile); fileExists(p) {
		art.PreviewReference = p
	}
	if p := filepath.Join(dir, cmpPreviewFile); fileExists(p) {
		art.PreviewComparison = p
	}
	return art
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// writeFileAtomic writes data via a temp file and rename, so a crash
// mid-write never leaves a torn artifact behind.
func writeFileAtomic(path string, data []byte) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// writeSequences persists both landmark sequences into the session
// directory.
func writeSequences(sess Session, ref, cmp landmark.Sequence) error {
	art := sessionArtifacts(sess)
	for _, item := range []struct {
		path string
		seq  landmark.Sequence
	}{
		{art.ReferenceLandmarks, ref},
		{art.ComparisonLandmarks, cmp},
	} {
		data, err := landmark.EncodeSequence(item.seq)
		if err != nil {
			return fmt.Errorf("session %s: encode landmarks: %w", sess.ID, err)
		}
		if err := writeFileAtomic(item.path, data); err != nil {
			return fmt.Errorf("session %s: write landmarks: %w", sess.ID, err)
		}
	}
	return nil
}

// readSequences rehydrates both sequences from the session directory.
// A missing file means the session was never attached.
func readSequences(sess Session) (ref, cmp landmark.Sequence, ok bool, err error) {
	art := sessionArtifacts(sess)
	refData, err := os.ReadFile(art.ReferenceLandmarks)
	if errors.Is(err, os.ErrNotExist) {
		return landmark.Sequence{}, landmark.Sequence{}, false, nil
	}
	if err != nil {
		return landmark.Sequence{}, landmark.Sequence{}, false, err
	}
	cmpData, err := os.ReadFile(art.ComparisonLandmarks)
	if err != nil {
		return landmark.Sequence{}, landmark.Sequence{}, false, err
	}
	if ref, err = landmark.DecodeSequence(refData); err != nil {
		return landmark.Sequence{}, landmark.Sequence{}, false, err
	}
	if cmp, err = landmark.DecodeSequence(cmpData); err != nil {
		return landmark.Sequence{}, landmark.Sequence{}, false, err
	}
	return ref, cmp, true, nil
}

// writeResult persists the result document as results.json.
func writeResult(sess Session, doc ResultDocument) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("session %s: encode result: %w", sess.ID, err)
	}
	if err := writeFileAtomic(sessionArtifacts(sess).Results, data); err != nil {
		return fmt.Errorf("session %s: write result: %w", sess.ID, err)
	}
	return nil
}

// readResult rehydrates results.json if present.
func readResult(sess Session) (ResultDocument, bool, error) {
	data, err := os.ReadFile(sessionArtifacts(sess).Results)
	if errors.Is(err, os.ErrNotExist) {
		return ResultDocument{}, false, nil
	}
	if err != nil {
		return ResultDocument{}, false, err
	}
	var doc ResultDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return ResultDocument{}, false, fmt.Errorf("session %s: decode result: %w", sess.ID, err)
	}
	return doc, true, nil
}
