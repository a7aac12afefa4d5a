package store

// RegisterUser returns the singleton user record. There is exactly one user;
// it is never created twice and never deleted.
func (s *Store) RegisterUser() User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snap.User
}

// CheckSubscription is a static stub: it always reports an active paid plan
// and reads no state.
func (s *Store) CheckSubscription() SubscriptionStatus {
	return SubscriptionStatus{HasSubscription: true, Plan: "pro", Type: "paid"}
}

// GetSettings returns a copy of the opaque settings map.
func (s *Store) GetSettings() map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := cloneMap(s.snap.Settings)
	if out == nil {
		out = map[string]any{}
	}
	return out
}

// SetSetting stores one settings key and schedules a save.
func (s *Store) SetSetting(key string, value any) {
	s.mu.Lock()
	if s.snap.Settings == nil {
		s.snap.Settings = make(map[string]any)
	}
	s.snap.Settings[key] = value
	s.mu.Unlock()

	s.scheduleSave()
}

// AddNote appends an opaque note. Notes are pass-through records the engine
// never interprets.
func (s *Store) AddNote(note map[string]any) {
	s.mu.Lock()
	s.snap.Notes = append(s.snap.Notes, cloneMap(note))
	s.mu.Unlock()

	s.scheduleSave()
}
