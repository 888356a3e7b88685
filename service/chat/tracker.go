package chat

import (
	"sync"

	"WeGap/logger"
)

// Tracker keeps per-connection delivery cursors: the highest message id
// pushed to a connection per conversation. Cursors are in-memory only;
// losing them on restart just means a redundant replay, never a lost
// message, because the store remains the source of truth.
type Tracker struct {
	mu      sync.Mutex
	cursors map[string]map[string]int64 // connID -> convID -> last delivered id
}

func NewTracker() *Tracker {
	return &Tracker{cursors: make(map[string]map[string]int64)}
}

// CursorFor returns the last delivered id, 0 if nothing was delivered yet.
func (t *Tracker) CursorFor(connID, convID string) int64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.cursors[connID][convID]
}

// Advance moves the cursor forward. Cursors never move backward; a
// stale advance is logged and ignored.
func (t *Tracker) Advance(connID, convID string, id int64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	mm := t.cursors[connID]
	if mm == nil {
		mm = make(map[string]int64)
		t.cursors[connID] = mm
	}
	if id <= mm[convID] {
		if id < mm[convID] {
			logger.Debugf("conn %s conv %s: ignoring backward cursor %d < %d", connID, convID, id, mm[convID])
		}
		return
	}
	mm[convID] = id
}

// Deliver atomically gates one frame for a connection: the enqueue runs
// only when id is ahead of the cursor, and the cursor advances only when
// the enqueue succeeds. Live push and replay both deliver through this
// gate, so a connection never sees an id twice or out of order, and a
// full queue leaves the cursor behind the undelivered id for replay to
// cover.
func (t *Tracker) Deliver(connID, convID string, id int64, enqueue func() bool) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	mm := t.cursors[connID]
	if mm == nil {
		mm = make(map[string]int64)
		t.cursors[connID] = mm
	}
	if id <= mm[convID] {
		return false
	}
	if !enqueue() {
		return false
	}
	mm[convID] = id
	return true
}

// Drop discards all cursors of a connection. Called on disconnect.
func (t *Tracker) Drop(connID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.cursors, connID)
}
