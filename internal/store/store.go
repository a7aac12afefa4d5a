package store

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/anuj1535-hue/superpower-gpt/internal/storage"
)

// Config holds store configuration.
type Config struct {
	// Adapter is the durable persistence layer. Required.
	Adapter storage.Adapter
	// Logger defaults to a no-op logger.
	Logger *zap.Logger
	// DebounceInterval is the quiet period before a mutated snapshot is
	// written. Defaults to 500ms.
	DebounceInterval time.Duration
	// SaveBuffer is the capacity of the save-result channel. Defaults to 16.
	SaveBuffer int
}

// SaveResult reports the outcome of one durable write. Results are published
// on a buffered channel so persistence failures are observable instead of
// log-only; when nobody is draining the channel, results are dropped.
type SaveResult struct {
	Err   error
	Bytes int
	At    time.Time
}

// Store owns the canonical in-memory snapshot. All reads return copies;
// callers never hold references into the container. Mutations schedule a
// debounced durable write, so the in-memory state stays authoritative and
// mutation callers never wait on I/O.
type Store struct {
	mu   sync.Mutex
	snap Snapshot

	adapter storage.Adapter
	log     *zap.Logger
	saver   *saveScheduler
	results chan SaveResult

	ready     chan struct{}
	readyOnce sync.Once
}

// New constructs a Store from the hard-coded defaults. Call Hydrate to
// overlay the persisted snapshot and mark the store ready.
func New(cfg Config) *Store {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.DebounceInterval <= 0 {
		cfg.DebounceInterval = 500 * time.Millisecond
	}
	if cfg.SaveBuffer <= 0 {
		cfg.SaveBuffer = 16
	}

	s := &Store{
		snap:    defaultSnapshot(),
		adapter: cfg.Adapter,
		log:     cfg.Logger,
		results: make(chan SaveResult, cfg.SaveBuffer),
		ready:   make(chan struct{}),
	}
	s.saver = newSaveScheduler(cfg.DebounceInterval, s.persist)
	return s
}

// Hydrate loads the persisted snapshot and shallow-merges it over the
// defaults: every top-level key present in the snapshot replaces the default
// wholesale. The store is marked ready afterward, including when the load
// fails — initialization degrades to defaults rather than blocking forever.
// Typically called in its own goroutine at startup.
func (s *Store) Hydrate(ctx context.Context) {
	defer s.markReady()

	blob, err := s.adapter.Load(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			s.log.Info("no persisted snapshot, starting from defaults")
		} else {
			s.log.Warn("snapshot load failed, starting from defaults", zap.Error(err))
		}
		return
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(blob, &raw); err != nil {
		s.log.Warn("persisted snapshot unreadable, starting from defaults", zap.Error(err))
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	overlay(s, raw, "conversations", &s.snap.Conversations)
	overlay(s, raw, "folders", &s.snap.Folders)
	overlay(s, raw, "prompts", &s.snap.Prompts)
	overlay(s, raw, "settings", &s.snap.Settings)
	overlay(s, raw, "notes", &s.snap.Notes)
	overlay(s, raw, "user", &s.snap.User)
	s.log.Info("snapshot hydrated",
		zap.Int("conversations", len(s.snap.Conversations)),
		zap.Int("folders", len(s.snap.Folders)),
		zap.Int("prompts", len(s.snap.Prompts)),
	)
}

// overlay replaces *dst with the snapshot's value when the key is present.
// A present key always wins, so a persisted empty collection replaces a
// non-empty default. The snapshot value is decoded into a fresh zero value
// before the assignment; decoding in place would field-merge struct-valued
// keys and let default fields survive a present key.
func overlay[T any](s *Store, raw map[string]json.RawMessage, key string, dst *T) {
	r, ok := raw[key]
	if !ok {
		return
	}
	var v T
	if err := json.Unmarshal(r, &v); err != nil {
		s.log.Warn("snapshot field unreadable, keeping default",
			zap.String("field", key), zap.Error(err))
		return
	}
	*dst = v
}

func (s *Store) markReady() {
	s.readyOnce.Do(func() { close(s.ready) })
}

// Ready returns a channel closed once hydration has completed.
func (s *Store) Ready() <-chan struct{} {
	return s.ready
}

// IsReady reports whether hydration has completed.
func (s *Store) IsReady() bool {
	select {
	case <-s.ready:
		return true
	default:
		return false
	}
}

// SaveResults exposes the outcome of durable writes for observers.
func (s *Store) SaveResults() <-chan SaveResult {
	return s.results
}

// scheduleSave arms (or re-arms) the debounced durable write. Bursts of
// mutations coalesce into a single write of the final state.
func (s *Store) scheduleSave() {
	s.saver.Schedule()
}

// Flush cancels any pending debounce timer and writes the current snapshot
// immediately. Used at shutdown.
func (s *Store) Flush() {
	s.saver.Stop()
	s.persist()
}

// persist serializes the current snapshot and hands it to the adapter.
// Errors are reported on the result channel and logged, never returned to
// mutation callers: the in-memory state remains authoritative and the next
// successful save carries everything since the last durable write.
func (s *Store) persist() {
	s.mu.Lock()
	blob, err := json.Marshal(s.snap)
	s.mu.Unlock()
	if err == nil {
		err = s.adapter.Save(context.Background(), blob)
	}

	if err != nil {
		s.log.Error("snapshot save failed", zap.Error(err))
	} else {
		s.log.Debug("snapshot saved", zap.Int("bytes", len(blob)))
	}
	select {
	case s.results <- SaveResult{Err: err, Bytes: len(blob), At: time.Now()}:
	default:
	}
}

// CountConversations returns the number of stored conversations.
func (s *Store) CountConversations() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.snap.Conversations)
}
