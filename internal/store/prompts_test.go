package store_test

import (
	"testing"
	"time"

	"github.com/anuj1535-hue/superpower-gpt/internal/store"
)

// ─── Prompts ────────────────────────────────────────────────────────────────

func TestSavePrompt_AssignsFreshID(t *testing.T) {
	s, _ := newTestStore(t)
	s.SavePrompt(store.Prompt{Extra: map[string]any{"title": "existing"}})

	saved := s.SavePrompt(store.Prompt{Extra: map[string]any{"title": "new"}})
	if saved.ID == "" {
		t.Fatal("SavePrompt did not assign an id")
	}
	for _, p := range s.GetPrompts() {
		if p.ID == saved.ID && p.Extra["title"] != "new" {
			t.Errorf("id %s collides with another prompt", saved.ID)
		}
	}
	if len(s.GetPrompts()) != 2 {
		t.Errorf("prompts = %d, want 2", len(s.GetPrompts()))
	}
}

func TestSavePrompt_UpdatesInPlace(t *testing.T) {
	s, _ := newTestStore(t)
	first := s.SavePrompt(store.Prompt{Extra: map[string]any{"title": "a"}})
	s.SavePrompt(store.Prompt{Extra: map[string]any{"title": "b"}})

	updated := s.SavePrompt(store.Prompt{ID: first.ID, Extra: map[string]any{"title": "a2"}})
	if updated.ID != first.ID {
		t.Errorf("ID = %s, want %s", updated.ID, first.ID)
	}

	prompts := s.GetPrompts()
	if len(prompts) != 2 {
		t.Fatalf("prompts = %d, want 2 (update must not grow the collection)", len(prompts))
	}
	// Position is preserved: the updated prompt is still first.
	if prompts[0].ID != first.ID || prompts[0].Extra["title"] != "a2" {
		t.Errorf("prompts[0] = %+v, want updated prompt in place", prompts[0])
	}
}

func TestSavePrompt_DoesNotMutateInput(t *testing.T) {
	s, _ := newTestStore(t)
	input := store.Prompt{Extra: map[string]any{"title": "mine"}}
	saved := s.SavePrompt(input)

	if input.ID != "" {
		t.Errorf("caller's prompt was mutated: ID = %q", input.ID)
	}
	input.Extra["title"] = "hacked"
	for _, p := range s.GetPrompts() {
		if p.ID == saved.ID && p.Extra["title"] != "mine" {
			t.Error("store state changed through the caller's map")
		}
	}
}

func TestDeletePrompt_AlwaysSucceeds(t *testing.T) {
	s, mem := newTestStore(t)
	saved := s.SavePrompt(store.Prompt{Extra: map[string]any{"title": "bye"}})

	s.DeletePrompt(saved.ID)
	if len(s.GetPrompts()) != 0 {
		t.Errorf("prompts = %d, want 0", len(s.GetPrompts()))
	}

	// Deleting a missing id is not an error and still schedules a save.
	before := mem.Saves()
	s.DeletePrompt("no-such-prompt")
	select {
	case <-s.SaveResults():
	case <-time.After(2 * time.Second):
		t.Fatal("no save observed after delete")
	}
	if mem.Saves() <= before {
		t.Error("delete of a missing id must still persist")
	}
}

// ─── Folders ────────────────────────────────────────────────────────────────

func TestSaveFolder_UpsertByID(t *testing.T) {
	s, _ := newTestStore(t)
	created := s.SaveFolder(store.Folder{Name: "Work", ConversationIDs: []string{"a"}})
	if created.ID == "" {
		t.Fatal("SaveFolder did not assign an id")
	}

	s.SaveFolder(store.Folder{ID: created.ID, Name: "Work v2", ConversationIDs: []string{"a", "b"}})

	folders := s.GetFolders()
	if len(folders) != 1 {
		t.Fatalf("folders = %d, want 1", len(folders))
	}
	if folders[0].Name != "Work v2" || len(folders[0].ConversationIDs) != 2 {
		t.Errorf("folders[0] = %+v, want updated folder", folders[0])
	}
}

// ─── User & subscription ────────────────────────────────────────────────────

func TestRegisterUser_Singleton(t *testing.T) {
	s, _ := newTestStore(t)
	u1 := s.RegisterUser()
	u2 := s.RegisterUser()
	if u1 != u2 {
		t.Errorf("RegisterUser returned different records: %+v vs %+v", u1, u2)
	}
	if u1.ID == "" {
		t.Error("singleton user has no id")
	}
}

func TestCheckSubscription_StaticStub(t *testing.T) {
	s, _ := newTestStore(t)
	sub := s.CheckSubscription()
	if !sub.HasSubscription || sub.Plan != "pro" || sub.Type != "paid" {
		t.Errorf("subscription = %+v, want active pro/paid", sub)
	}
}

// ─── Settings & notes ───────────────────────────────────────────────────────

func TestSettings_CopyOut(t *testing.T) {
	s, _ := newTestStore(t)
	s.SetSetting("lang", "en")

	got := s.GetSettings()
	got["lang"] = "tampered"
	if s.GetSettings()["lang"] != "en" {
		t.Error("settings mutated through a returned copy")
	}
}

func TestAddNote_Persists(t *testing.T) {
	s, mem := newTestStore(t)
	s.AddNote(map[string]any{"text": "remember this"})

	select {
	case res := <-s.SaveResults():
		if res.Err != nil {
			t.Fatalf("save error: %v", res.Err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no save observed after AddNote")
	}

	var snap struct {
		Notes []map[string]any `json:"notes"`
	}
	mustUnmarshal(t, mem.Blob(), &snap)
	if len(snap.Notes) != 1 || snap.Notes[0]["text"] != "remember this" {
		t.Errorf("persisted notes = %+v", snap.Notes)
	}
}
