package store

import "github.com/google/uuid"

// GetPrompts returns a copy of the full prompt sequence.
func (s *Store) GetPrompts() []Prompt {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Prompt, 0, len(s.snap.Prompts))
	for _, p := range s.snap.Prompts {
		out = append(out, p.clone())
	}
	return out
}

// SavePrompt upserts a prompt. The input is copied, so the caller's value is
// never mutated; a missing id gets a fresh one. An existing id is replaced
// in place, anything else is appended. Returns the stored copy.
func (s *Store) SavePrompt(p Prompt) Prompt {
	stored := p.clone()
	if stored.ID == "" {
		stored.ID = uuid.NewString()
	}

	s.mu.Lock()
	replaced := false
	for i := range s.snap.Prompts {
		if s.snap.Prompts[i].ID == stored.ID {
			s.snap.Prompts[i] = stored
			replaced = true
			break
		}
	}
	if !replaced {
		s.snap.Prompts = append(s.snap.Prompts, stored)
	}
	s.mu.Unlock()

	s.scheduleSave()
	return stored.clone()
}

// DeletePrompt removes every prompt matching id. It always succeeds, and
// always schedules a save, even when nothing matched.
func (s *Store) DeletePrompt(id string) {
	s.mu.Lock()
	kept := s.snap.Prompts[:0]
	for _, p := range s.snap.Prompts {
		if p.ID != id {
			kept = append(kept, p)
		}
	}
	s.snap.Prompts = kept
	s.mu.Unlock()

	s.scheduleSave()
}

// GetFolders returns a copy of the folder sequence.
func (s *Store) GetFolders() []Folder {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Folder, 0, len(s.snap.Folders))
	for _, f := range s.snap.Folders {
		out = append(out, f.clone())
	}
	return out
}

// SaveFolder upserts a folder by id, assigning one when absent. Same
// copy-in/copy-out discipline as SavePrompt.
func (s *Store) SaveFolder(f Folder) Folder {
	stored := f.clone()
	if stored.ID == "" {
		stored.ID = uuid.NewString()
	}

	s.mu.Lock()
	replaced := false
	for i := range s.snap.Folders {
		if s.snap.Folders[i].ID == stored.ID {
			s.snap.Folders[i] = stored
			replaced = true
			break
		}
	}
	if !replaced {
		s.snap.Folders = append(s.snap.Folders, stored)
	}
	s.mu.Unlock()

	s.scheduleSave()
	return stored.clone()
}
