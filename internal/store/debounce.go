package store

import (
	"sync"
	"time"
)

// saveScheduler is a single-slot debouncer: at most one timer is outstanding,
// and each Schedule cancels and replaces the previous one. Only the last
// state within a burst reaches durable storage.
type saveScheduler struct {
	mu       sync.Mutex
	timer    *time.Timer
	interval time.Duration
	fire     func()
}

func newSaveScheduler(interval time.Duration, fire func()) *saveScheduler {
	return &saveScheduler{interval: interval, fire: fire}
}

// Schedule resets the quiet-period timer.
func (d *saveScheduler) Schedule() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.interval, d.fire)
}

// Stop cancels any pending timer without firing it.
func (d *saveScheduler) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
