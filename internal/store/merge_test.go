package store_test

import (
	"reflect"
	"testing"
	"time"

	"github.com/anuj1535-hue/superpower-gpt/internal/store"
)

// ─── Upsert semantics ───────────────────────────────────────────────────────

func TestAddConversations_InsertAndCount(t *testing.T) {
	s, _ := newTestStore(t)

	count := s.AddConversations([]store.Conversation{conv("a", "one", 1), conv("b", "two", 2)})
	if count != 2 {
		t.Errorf("count = %d, want 2", count)
	}

	count = s.AddConversations([]store.Conversation{conv("c", "three", 3)})
	if count != 3 {
		t.Errorf("count = %d, want 3", count)
	}
}

func TestAddConversations_IncomingFieldsWin(t *testing.T) {
	s, _ := newTestStore(t)
	existing := store.Conversation{
		ID:    "1",
		Title: str("A"),
		Extra: map[string]any{"x": float64(1)},
	}
	s.AddConversations([]store.Conversation{existing})

	s.AddConversations([]store.Conversation{{ID: "1", Title: str("B")}})

	page := s.GetConversations(1, 10, "", "")
	got := page.Items[0]
	if *got.Title != "B" {
		t.Errorf("Title = %q, want %q", *got.Title, "B")
	}
	if got.Extra["x"] != float64(1) {
		t.Errorf("Extra[x] = %v, want 1 (absent incoming field preserved)", got.Extra["x"])
	}
}

func TestAddConversations_AbsentTrashFlagPreserved(t *testing.T) {
	s, _ := newTestStore(t)
	trashed := conv("1", "gone", 1)
	trashed.IsTrashed = boolPtr(true)
	s.AddConversations([]store.Conversation{trashed})

	// A re-scrape without the flag must not resurrect the conversation.
	s.AddConversations([]store.Conversation{conv("1", "gone", 2)})

	page := s.GetConversations(1, 10, "", "trash")
	if page.Total != 1 {
		t.Errorf("trashed total = %d, want 1", page.Total)
	}
}

func TestAddConversations_Idempotent(t *testing.T) {
	s, _ := newTestStore(t)
	batch := []store.Conversation{
		conv("a", "one", 1),
		conv("b", "two", 2),
	}

	s.AddConversations(batch)
	first := s.GetConversations(1, 10, "", "")

	s.AddConversations(batch)
	second := s.GetConversations(1, 10, "", "")

	if !reflect.DeepEqual(first, second) {
		t.Errorf("applying the same batch twice changed state:\nfirst:  %+v\nsecond: %+v", first, second)
	}
}

func TestAddConversations_LaterDuplicateWinsWithinBatch(t *testing.T) {
	s, _ := newTestStore(t)

	count := s.AddConversations([]store.Conversation{
		conv("a", "early", 1),
		conv("a", "late", 2),
	})
	if count != 1 {
		t.Fatalf("count = %d, want 1", count)
	}

	page := s.GetConversations(1, 10, "", "")
	if *page.Items[0].Title != "late" {
		t.Errorf("Title = %q, want %q", *page.Items[0].Title, "late")
	}
}

func TestAddConversations_EmptyBatchDoesNotSave(t *testing.T) {
	s, mem := newTestStore(t)

	if count := s.AddConversations(nil); count != 0 {
		t.Errorf("count = %d, want 0", count)
	}
	time.Sleep(60 * time.Millisecond)
	if mem.Saves() != 0 {
		t.Errorf("saves = %d, want 0 for an empty batch", mem.Saves())
	}
}

// ─── Debounce coalescing ────────────────────────────────────────────────────

func TestAddConversations_BurstCoalescesToOneSave(t *testing.T) {
	s, mem := newTestStore(t)

	for i := 0; i < 5; i++ {
		s.AddConversations([]store.Conversation{conv(string(rune('a'+i)), "burst", float64(i))})
	}

	select {
	case res := <-s.SaveResults():
		if res.Err != nil {
			t.Fatalf("save error: %v", res.Err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no save observed after burst")
	}

	if saves := mem.Saves(); saves != 1 {
		t.Errorf("saves = %d, want 1 (burst must coalesce)", saves)
	}

	// The durable blob must carry the state after the final mutation.
	var snap struct {
		Conversations []store.Conversation `json:"conversations"`
	}
	mustUnmarshal(t, mem.Blob(), &snap)
	if len(snap.Conversations) != 5 {
		t.Errorf("persisted conversations = %d, want 5", len(snap.Conversations))
	}
}
