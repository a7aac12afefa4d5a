// Package store implements the in-memory data engine: the canonical
// snapshot of all domain collections, the query and merge pipelines over
// conversations, and the record controllers for prompts, folders, settings
// and the singleton user. Durability is delegated to a storage.Adapter and
// scheduled through a debounced saver.
package store

import "encoding/json"

// Conversation is one chat record. Only the fields the engine inspects are
// typed; everything else a scraper delivers rides along in Extra untouched.
// Optional fields are pointers so an absent field is distinguishable from a
// zero value during merges.
type Conversation struct {
	ID         string
	Title      *string
	CreateTime *float64
	UpdateTime *float64
	IsTrashed  *bool
	Extra      map[string]any
}

// EffectiveTime returns the timestamp conversations sort by: update time if
// present, else create time, else epoch zero.
func (c Conversation) EffectiveTime() float64 {
	if c.UpdateTime != nil {
		return *c.UpdateTime
	}
	if c.CreateTime != nil {
		return *c.CreateTime
	}
	return 0
}

// Trashed reports whether the conversation is flagged as trashed.
func (c Conversation) Trashed() bool {
	return c.IsTrashed != nil && *c.IsTrashed
}

func (c Conversation) clone() Conversation {
	out := c
	if c.Title != nil {
		t := *c.Title
		out.Title = &t
	}
	if c.CreateTime != nil {
		v := *c.CreateTime
		out.CreateTime = &v
	}
	if c.UpdateTime != nil {
		v := *c.UpdateTime
		out.UpdateTime = &v
	}
	if c.IsTrashed != nil {
		v := *c.IsTrashed
		out.IsTrashed = &v
	}
	out.Extra = cloneMap(c.Extra)
	return out
}

// UnmarshalJSON pulls the typed fields out of the object and keeps every
// other key in Extra. A known key with an unexpected type stays in Extra so
// nothing is lost on re-marshal.
func (c *Conversation) UnmarshalJSON(data []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*c = Conversation{}
	for key, val := range raw {
		switch key {
		case "id":
			if s, ok := val.(string); ok {
				c.ID = s
				continue
			}
		case "title":
			if s, ok := val.(string); ok {
				c.Title = &s
				continue
			}
		case "create_time":
			if f, ok := val.(float64); ok {
				c.CreateTime = &f
				continue
			}
		case "update_time":
			if f, ok := val.(float64); ok {
				c.UpdateTime = &f
				continue
			}
		case "isTrashed":
			if b, ok := val.(bool); ok {
				c.IsTrashed = &b
				continue
			}
		}
		if c.Extra == nil {
			c.Extra = make(map[string]any)
		}
		c.Extra[key] = val
	}
	return nil
}

// MarshalJSON flattens Extra and the typed fields back into one object.
func (c Conversation) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(c.Extra)+5)
	for k, v := range c.Extra {
		out[k] = v
	}
	// A non-string id lives in Extra; the empty typed field must not
	// clobber it.
	if _, inExtra := c.Extra["id"]; !inExtra || c.ID != "" {
		out["id"] = c.ID
	}
	if c.Title != nil {
		out["title"] = *c.Title
	}
	if c.CreateTime != nil {
		out["create_time"] = *c.CreateTime
	}
	if c.UpdateTime != nil {
		out["update_time"] = *c.UpdateTime
	}
	if c.IsTrashed != nil {
		out["isTrashed"] = *c.IsTrashed
	}
	return json.Marshal(out)
}

// Folder groups conversations by reference. Dangling ConversationIDs are
// tolerated: deleting a conversation does not rewrite folders.
type Folder struct {
	ID              string   `json:"id"`
	Name            string   `json:"name,omitempty"`
	ConversationIDs []string `json:"conversationIds"`
}

func (f Folder) clone() Folder {
	out := f
	out.ConversationIDs = append([]string(nil), f.ConversationIDs...)
	return out
}

// Prompt is a saved user prompt: a stable identity plus opaque content.
type Prompt struct {
	ID    string
	Extra map[string]any
}

func (p Prompt) clone() Prompt {
	return Prompt{ID: p.ID, Extra: cloneMap(p.Extra)}
}

// UnmarshalJSON keeps every key except id in Extra.
func (p *Prompt) UnmarshalJSON(data []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*p = Prompt{}
	for key, val := range raw {
		if key == "id" {
			if s, ok := val.(string); ok {
				p.ID = s
				continue
			}
		}
		if p.Extra == nil {
			p.Extra = make(map[string]any)
		}
		p.Extra[key] = val
	}
	return nil
}

// MarshalJSON flattens Extra and id back into one object.
func (p Prompt) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(p.Extra)+1)
	for k, v := range p.Extra {
		out[k] = v
	}
	out["id"] = p.ID
	return json.Marshal(out)
}

// User is the singleton account record. It is never deleted and never
// duplicated; defaults mark an active pro plan.
type User struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	Email           string `json:"email"`
	Avatar          string `json:"avatar,omitempty"`
	Plan            string `json:"plan"`
	HasSubscription bool   `json:"hasSubscription"`
}

// SubscriptionStatus is the static answer of the subscription stub.
type SubscriptionStatus struct {
	HasSubscription bool   `json:"hasSubscription"`
	Plan            string `json:"plan"`
	Type            string `json:"type"`
}

// Snapshot is the aggregate root: everything the process persists, as one
// serialized unit.
type Snapshot struct {
	Conversations []Conversation   `json:"conversations"`
	Folders       []Folder         `json:"folders"`
	Prompts       []Prompt         `json:"prompts"`
	Settings      map[string]any   `json:"settings"`
	Notes         []map[string]any `json:"notes"`
	User          User             `json:"user"`
}

// defaultSnapshot returns the hard-coded starting state: empty collections
// and a pre-seeded local user on an active pro plan.
func defaultSnapshot() Snapshot {
	return Snapshot{
		Conversations: []Conversation{},
		Folders:       []Folder{},
		Prompts:       []Prompt{},
		Settings:      map[string]any{},
		Notes:         []map[string]any{},
		User: User{
			ID:              "local-user",
			Name:            "Local User",
			Email:           "local@superpower.gpt",
			Plan:            "pro",
			HasSubscription: true,
		},
	}
}

func cloneMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
