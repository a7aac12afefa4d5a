package store

// AddConversations reconciles a batch of scraped conversations into the
// store. Records are processed in input order: a known id is replaced by a
// field-level union where incoming fields win and absent fields keep their
// stored value; an unknown id is inserted. Later entries for the same id in
// one batch therefore win over earlier ones. Applying the same batch twice
// yields the same state.
//
// Any non-empty batch schedules exactly one durable write. Returns the total
// conversation count after the merge.
func (s *Store) AddConversations(incoming []Conversation) int {
	s.mu.Lock()

	index := make(map[string]int, len(s.snap.Conversations))
	for i, c := range s.snap.Conversations {
		index[c.ID] = i
	}

	for _, in := range incoming {
		if i, ok := index[in.ID]; ok {
			s.snap.Conversations[i] = mergeConversation(s.snap.Conversations[i], in)
			continue
		}
		index[in.ID] = len(s.snap.Conversations)
		s.snap.Conversations = append(s.snap.Conversations, in.clone())
	}

	changed := len(incoming) > 0
	count := len(s.snap.Conversations)
	s.mu.Unlock()

	if changed {
		s.scheduleSave()
	}
	return count
}

// mergeConversation returns the shallow union of existing and incoming,
// incoming winning on every field it actually carries.
func mergeConversation(existing, incoming Conversation) Conversation {
	out := existing.clone()
	if incoming.Title != nil {
		t := *incoming.Title
		out.Title = &t
	}
	if incoming.CreateTime != nil {
		v := *incoming.CreateTime
		out.CreateTime = &v
	}
	if incoming.UpdateTime != nil {
		v := *incoming.UpdateTime
		out.UpdateTime = &v
	}
	if incoming.IsTrashed != nil {
		v := *incoming.IsTrashed
		out.IsTrashed = &v
	}
	if len(incoming.Extra) > 0 && out.Extra == nil {
		out.Extra = make(map[string]any, len(incoming.Extra))
	}
	for k, v := range incoming.Extra {
		out.Extra[k] = v
	}
	return out
}
