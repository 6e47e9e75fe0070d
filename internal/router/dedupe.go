package router

import (
	"sync"
	"time"
)

// dedupeSet remembers recently seen delivery keys so a redelivered webhook is
// acknowledged without re-running the pipeline. Entries expire after the TTL;
// state is in-process only and resets on restart.
type dedupeSet struct {
	entries map[string]time.Time
	stopCh  chan struct{}
	ttl     time.Duration
	mu      sync.Mutex
}

// newDedupeSet creates a dedupe set with the specified TTL.
func newDedupeSet(ttl time.Duration) *dedupeSet {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}

	d := &dedupeSet{
		entries: make(map[string]time.Time),
		ttl:     ttl,
		stopCh:  make(chan struct{}),
	}

	go d.cleanup()

	return d
}

// seen reports whether the key was already marked within the TTL, and marks
// it either way. Check and mark are a single step so two concurrent
// deliveries of the same event cannot both pass.
func (d *dedupeSet) seen(key string) bool {
	now := time.Now()

	d.mu.Lock()
	defer d.mu.Unlock()

	expiry, exists := d.entries[key]
	d.entries[key] = now.Add(d.ttl)

	return exists && now.Before(expiry)
}

// cleanup periodically removes expired entries.
func (d *dedupeSet) cleanup() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-d.stopCh:
			return
		case <-ticker.C:
			now := time.Now()
			d.mu.Lock()
			for key, expiry := range d.entries {
				if now.After(expiry) {
					delete(d.entries, key)
				}
			}
			d.mu.Unlock()
		}
	}
}

// stop terminates the cleanup goroutine.
func (d *dedupeSet) stop() {
	close(d.stopCh)
}
