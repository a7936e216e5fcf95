package session

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/motionkit/posealign/dtw"
	"github.com/motionkit/posealign/landmark"
	"github.com/motionkit/posealign/score"
)

// Options configures a Store.
//
// Fields:
//   - Dir — artifact root; one subdirectory per session id. Required.
//   - DBPath — session index database; defaults to Dir/sessions.db.
//   - Logger — structured logger; defaults to logrus.StandardLogger().
//   - Metric — visibility policy for the frame metric.
//   - Window — Sakoe–Chiba half-width handed to the aligner; -1 (the
//     default from DefaultOptions) keeps alignment exact.
//   - Now — clock override for tests; defaults to time.Now.
type Options struct {
	Dir    string
	DBPath string
	Logger *logrus.Logger
	Metric landmark.MetricOptions
	Window int
	Now    func() time.Time
}

// DefaultOptions returns a Store configuration rooted at dir with the
// default metric policy and exact alignment.
func DefaultOptions(dir string) Options {
	return Options{
		Dir:    dir,
		Metric: landmark.DefaultMetricOptions(),
		Window: -1,
	}
}

// Store owns all session state: the SQLite index, the per-session
// artifact directories, and the in-memory map with its per-session
// locks. It is safe for concurrent use; operations on different
// sessions never serialize against each other.
type Store struct {
	dir    string
	db     *sql.DB
	log    *logrus.Logger
	metric landmark.MetricOptions
	window int
	now    func() time.Time

	mu       sync.RWMutex
	sessions map[string]*sessionState
}

// sessionState is the mutable record behind one session id. st.mu
// serializes same-session mutation; it is never held across an
// alignment computation — in-flight runs are tracked by the inflight
// pointer so joiners can wait without blocking the state.
type sessionState struct {
	mu       sync.Mutex
	info     Session
	ref      *landmark.Sequence
	cmp      *landmark.Sequence
	latest   *ResultDocument
	inflight *inflightRun
}

// inflightRun carries one in-progress analysis to its joiners.
type inflightRun struct {
	done chan struct{}
	doc  ResultDocument
	err  error
}

// Open initializes the artifact root, opens the index database, and
// rehydrates every known session (metadata, sequences, latest result)
// from disk.
func Open(opts Options) (*Store, error) {
	if opts.Dir == "" {
		return nil, fmt.Errorf("session: store dir is required")
	}
	if err := os.MkdirAll(opts.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("session: create store dir: %w", err)
	}
	dbPath := opts.DBPath
	if dbPath == "" {
		dbPath = filepath.Join(opts.Dir, "sessions.db")
	}
	db, err := openDB(dbPath)
	if err != nil {
		return nil, err
	}

	s := &Store{
		dir:      opts.Dir,
		db:       db,
		log:      opts.Logger,
		metric:   opts.Metric,
		window:   opts.Window,
		now:      opts.Now,
		sessions: make(map[string]*sessionState),
	}
	if s.log == nil {
		s.log = logrus.StandardLogger()
	}
	if s.now == nil {
		s.now = time.Now
	}

	rows, err := loadSessionRows(db)
	if err != nil {
		db.Close()
		return nil, err
	}
	for _, info := range rows {
		st := &sessionState{info: info}
		if info.SequencesAttached {
			ref, cmp, ok, err := readSequences(info)
			if err != nil {
				db.Close()
				return nil, err
			}
			if ok {
				st.ref, st.cmp = &ref, &cmp
			}
		}
		doc, ok, err := readResult(info)
		if err != nil {
			db.Close()
			return nil, err
		}
		if ok {
			st.latest = &doc
		}
		s.sessions[info.ID] = st
	}
	s.log.WithField("sessions", len(rows)).Info("session store opened")
	return s, nil
}

// Close releases the index database.
func (s *Store) Close() error { return s.db.Close() }

// Create allocates a new session from two uploaded videos, stores both
// source artifacts under a fresh uuid directory, and indexes the
// session. Sequences are absent until AttachSequences.
func (s *Store) Create(refName, cmpName string, ref, cmp io.Reader) (Session, error) {
	id := uuid.NewString()
	dir := filepath.Join(s.dir, id)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return Session{}, fmt.Errorf("session %s: create dir: %w", id, err)
	}

	info := Session{
		ID:             id,
		CreatedAt:      s.now().UTC(),
		ReferencePath:  filepath.Join(dir, "reference"+videoExt(refName)),
		ComparisonPath: filepath.Join(dir, "comparison"+videoExt(cmpName)),
		ReferenceName:  refName,
		ComparisonName: cmpName,
		Settings:       DefaultSettings(),
	}
	if err := storeArtifact(info.ReferencePath, ref); err != nil {
		return Session{}, fmt.Errorf("session %s: store reference video: %w", id, err)
	}
	if err := storeArtifact(info.ComparisonPath, cmp); err != nil {
		return Session{}, fmt.Errorf("session %s: store comparison video: %w", id, err)
	}
	if err := insertSessionRow(s.db, info); err != nil {
		return Session{}, err
	}

	s.mu.Lock()
	s.sessions[id] = &sessionState{info: info}
	s.mu.Unlock()

	s.log.WithFields(logrus.Fields{
		"session_id": id,
		"reference":  refName,
		"comparison": cmpName,
	}).Info("session created")
	return info, nil
}

// Get returns the metadata snapshot for a session.
func (s *Store) Get(id string) (Session, error) {
	st, err := s.lookup(id)
	if err != nil {
		return Session{}, err
	}
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.info, nil
}

// AttachSequences binds the two extracted landmark sequences and the
// settings that produced them to the session. Sequences attach exactly
// once and are immutable afterwards: a re-extraction with different
// settings must allocate a new session, preserving the reproducibility
// of past results.
func (s *Store) AttachSequences(id string, ref, cmp landmark.Sequence, settings Settings) error {
	st, err := s.lookup(id)
	if err != nil {
		return err
	}
	if err := ref.Validate(); err != nil {
		return fmt.Errorf("session %s: reference: %w", id, err)
	}
	if err := cmp.Validate(); err != nil {
		return fmt.Errorf("session %s: comparison: %w", id, err)
	}

	st.mu.Lock()
	defer st.mu.Unlock()
	if st.ref != nil || st.cmp != nil {
		return wrapSession(ErrSequencesAttached, id, "attach")
	}
	info := st.info
	info.Settings = settings
	info.SequencesAttached = true
	if err := writeSequences(info, ref, cmp); err != nil {
		return err
	}
	if err := markAttachedRow(s.db, info); err != nil {
		return err
	}
	st.info = info
	st.ref, st.cmp = &ref, &cmp

	s.log.WithFields(logrus.Fields{
		"session_id": id,
		"ref_frames": ref.Len(),
		"cmp_frames": cmp.Len(),
	}).Info("sequences attached")
	return nil
}

// ExtractAndAttach runs the extractor over both stored videos and
// attaches the resulting sequences. Extraction is the long-running
// prerequisite step; a failure on either side surfaces as
// ErrExtractionFailed and leaves the session exactly as it was —
// nothing is attached unless both extractions succeed.
func (s *Store) ExtractAndAttach(ctx context.Context, id string, ex Extractor, settings Settings) error {
	info, err := s.Get(id)
	if err != nil {
		return err
	}

	ref, err := ex.Extract(ctx, info.ReferencePath, settings)
	if err != nil {
		s.log.WithField("session_id", id).WithError(err).Warn("reference extraction failed")
		return fmt.Errorf("session %s: reference video: %w: %w", id, ErrExtractionFailed, err)
	}
	cmp, err := ex.Extract(ctx, info.ComparisonPath, settings)
	if err != nil {
		s.log.WithField("session_id", id).WithError(err).Warn("comparison extraction failed")
		return fmt.Errorf("session %s: comparison video: %w: %w", id, ErrExtractionFailed, err)
	}
	return s.AttachSequences(id, ref, cmp, settings)
}

// Analyze aligns the session's two sequences, scores the result, and
// commits it as the session's latest result.
//
// Safe to call repeatedly and concurrently: at most one alignment is
// in flight per session, and every concurrent caller receives that
// computation's outcome. Commits are ordered by completion time, so a
// slower, older run can never overwrite a newer result. A failure
// leaves the previous latest result untouched.
//
// If ctx is abandoned while a computation is in flight, the
// computation still completes and commits; only the waiting caller
// returns early with ctx.Err().
func (s *Store) Analyze(ctx context.Context, id string) (ResultDocument, error) {
	st, err := s.lookup(id)
	if err != nil {
		return ResultDocument{}, err
	}

	st.mu.Lock()
	if fl := st.inflight; fl != nil {
		st.mu.Unlock()
		select {
		case <-fl.done:
			return fl.doc, fl.err
		case <-ctx.Done():
			return ResultDocument{}, ctx.Err()
		}
	}
	if st.ref == nil || st.cmp == nil {
		st.mu.Unlock()
		return ResultDocument{}, wrapSession(ErrSequencesNotReady, id, "analyze")
	}
	fl := &inflightRun{done: make(chan struct{})}
	st.inflight = fl
	info := st.info
	ref, cmp := *st.ref, *st.cmp
	st.mu.Unlock()

	fl.doc, fl.err = s.runAnalysis(st, info, ref, cmp)

	st.mu.Lock()
	st.inflight = nil
	st.mu.Unlock()
	close(fl.done)

	return fl.doc, fl.err
}

// runAnalysis performs the pure computation and commits on success.
func (s *Store) runAnalysis(st *sessionState, info Session, ref, cmp landmark.Sequence) (ResultDocument, error) {
	opts := dtw.DefaultOptions()
	opts.Metric = s.metric
	opts.Window = s.window
	opts.ReturnStepCosts = true

	started := s.now()
	res, err := dtw.Align(ref, cmp, opts)
	if err != nil {
		s.log.WithField("session_id", info.ID).WithError(err).Warn("alignment failed")
		return ResultDocument{}, fmt.Errorf("session %s: align: %w", info.ID, err)
	}

	pathLen := len(res.Path)
	if pathLen == 0 {
		pathLen = 1
	}
	sim, err := score.Similarity(res.TotalDistance, pathLen)
	if err != nil {
		return ResultDocument{}, fmt.Errorf("session %s: score: %w", info.ID, err)
	}

	doc := Assemble(info, res, sim, s.now())
	if err := s.commit(st, doc); err != nil {
		return ResultDocument{}, err
	}

	s.log.WithFields(logrus.Fields{
		"session_id": info.ID,
		"distance":   res.TotalDistance,
		"similarity": sim,
		"degraded":   res.DegradedSteps,
		"elapsed":    s.now().Sub(started),
	}).Info("analysis committed")
	return doc, nil
}

// commit installs doc as the session's latest result, durably first and
// in memory second, under the completion-order guard: a document older
// than the current latest is rejected with ErrStaleResult.
//
// Durable-step ordering: the index row is touched before results.json
// is replaced. The row's updated_at is advisory metadata, while
// results.json is what a reopened store serves — so a failure at any
// point leaves the previous document in place, in memory and across
// restart.
func (s *Store) commit(st *sessionState, doc ResultDocument) error {
	st.mu.Lock()
	defer st.mu.Unlock()
	if st.latest != nil && doc.UpdatedAt.Before(st.latest.UpdatedAt) {
		return wrapSession(ErrStaleResult, doc.SessionID, "commit")
	}
	if err := touchUpdatedRow(s.db, doc.SessionID, doc.UpdatedAt); err != nil {
		return err
	}
	if err := writeResult(st.info, doc); err != nil {
		return err
	}
	st.latest = &doc
	return nil
}

// LatestResult returns the most recently committed result document for
// the session. It never blocks on an in-flight analysis — of this
// session or any other — and never observes a partially written
// document: commits replace the document wholesale.
func (s *Store) LatestResult(id string) (ResultDocument, error) {
	st, err := s.lookup(id)
	if err != nil {
		return ResultDocument{}, err
	}
	st.mu.Lock()
	defer st.mu.Unlock()
	if st.latest == nil {
		return ResultDocument{}, wrapSession(ErrNotFound, id, "results")
	}
	return *st.latest, nil
}

// lookup resolves a session id to its state.
func (s *Store) lookup(id string) (*sessionState, error) {
	s.mu.RLock()
	st, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		return nil, wrapSession(ErrSessionNotFound, id, "lookup")
	}
	return st, nil
}

// videoExt returns the artifact extension for an upload name,
// defaulting to .mp4.
func videoExt(name string) string {
	if ext := filepath.Ext(name); ext != "" {
		return ext
	}
	return ".mp4"
}

// storeArtifact streams an upload into its artifact path.
func storeArtifact(path string, r io.Reader) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
