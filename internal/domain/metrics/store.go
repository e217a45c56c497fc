package metrics

// Store keeps the current snapshot and the one it replaced. Only one step of
// history is retained.
//
// Store is not safe for concurrent use; callers serialize Update.
type Store struct {
	current  Snapshot
	previous Snapshot
	updates  int
}

// NewStore returns a store with both slots set to the zero snapshot.
func NewStore() *Store {
	return &Store{}
}

// Update shifts current into previous and installs next.
func (s *Store) Update(next Snapshot) {
	s.previous = s.current
	s.current = next
	s.updates++
}

// Current returns the latest snapshot.
func (s *Store) Current() Snapshot {
	return s.current
}

// Previous returns the snapshot that was current before the latest update.
func (s *Store) Previous() Snapshot {
	return s.previous
}

// Updates counts applied updates. Zero means nothing has been predicted yet,
// even if a real prediction later comes back as all zeros.
func (s *Store) Updates() int {
	return s.updates
}

// Restore replaces the whole state, e.g. after loading it from persistence.
func (s *Store) Restore(previous, current Snapshot, updates int) {
	if updates < 0 {
		updates = 0
	}
	s.previous = previous
	s.current = current
	s.updates = updates
}
