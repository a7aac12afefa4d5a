package store

import (
	"sort"
	"strings"

	"go.uber.org/zap"
)

// Sentinel folder ids understood by GetConversations.
const (
	// FolderAll disables folder filtering.
	FolderAll = "all"
	// FolderTrash selects trashed conversations regardless of any stored
	// folder that happens to be named "trash".
	FolderTrash = "trash"
)

// DefaultPageLimit is the page size used when a caller passes no limit.
const DefaultPageLimit = 20

// Page is one page of query results. Total counts matches before
// pagination.
type Page struct {
	Items []Conversation `json:"conversations"`
	Total int            `json:"total"`
	Page  int            `json:"page"`
	Limit int            `json:"limit"`
}

// GetConversations runs the fixed query pipeline: title filter, folder
// filter, sort by effective timestamp descending, then 1-indexed
// pagination. Pure read; returned items are copies.
func (s *Store) GetConversations(page, limit int, searchTerm, folderID string) Page {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = DefaultPageLimit
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	matched := s.filterByTitle(s.snap.Conversations, searchTerm)
	matched = s.filterByFolder(matched, folderID)

	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].EffectiveTime() > matched[j].EffectiveTime()
	})

	total := len(matched)
	start := (page - 1) * limit
	items := []Conversation{}
	if start < total {
		end := start + limit
		if end > total {
			end = total
		}
		for _, c := range matched[start:end] {
			items = append(items, c.clone())
		}
	}

	return Page{Items: items, Total: total, Page: page, Limit: limit}
}

// filterByTitle keeps conversations whose title contains term
// case-insensitively. With a non-empty term, titleless conversations are
// excluded.
func (s *Store) filterByTitle(convs []Conversation, term string) []Conversation {
	if term == "" {
		return append([]Conversation(nil), convs...)
	}
	needle := strings.ToLower(term)
	out := make([]Conversation, 0, len(convs))
	for _, c := range convs {
		if c.Title == nil {
			continue
		}
		if strings.Contains(strings.ToLower(*c.Title), needle) {
			out = append(out, c)
		}
	}
	return out
}

// filterByFolder applies the relationship filter. The "trash" sentinel
// selects by the trashed flag. A folderID that matches no stored folder
// passes the input through unfiltered; callers depend on that fallthrough,
// so it is kept rather than turned into an empty result or an error.
func (s *Store) filterByFolder(convs []Conversation, folderID string) []Conversation {
	if folderID == "" || folderID == FolderAll {
		return convs
	}
	if folderID == FolderTrash {
		out := make([]Conversation, 0, len(convs))
		for _, c := range convs {
			if c.Trashed() {
				out = append(out, c)
			}
		}
		return out
	}

	var folder *Folder
	for i := range s.snap.Folders {
		if s.snap.Folders[i].ID == folderID {
			folder = &s.snap.Folders[i]
			break
		}
	}
	if folder == nil {
		s.log.Debug("folder not found, returning unfiltered results",
			zap.String("folderId", folderID))
		return convs
	}

	members := make(map[string]struct{}, len(folder.ConversationIDs))
	for _, id := range folder.ConversationIDs {
		members[id] = struct{}{}
	}
	out := make([]Conversation, 0, len(convs))
	for _, c := range convs {
		if _, ok := members[c.ID]; ok {
			out = append(out, c)
		}
	}
	return out
}
