package session

// Test-only exports: the completion-ordering guard is private, but its
// contract (an older completion never overwrites a newer result) must
// be testable without racing real computations.

// CommitForTest drives the commit path directly with a prepared
// document.
func (s *Store) CommitForTest(id string, doc ResultDocument) error {
	st, err := s.lookup(id)
	if err != nil {
		return err
	}
	return s.commit(st, doc)
}
