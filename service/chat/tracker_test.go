package chat

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTrackerCursorStartsAtZero(t *testing.T) {
	tr := NewTracker()
	assert.EqualValues(t, 0, tr.CursorFor("conn-1", "conv-1"))
}

func TestTrackerAdvance(t *testing.T) {
	tr := NewTracker()
	tr.Advance("conn-1", "conv-1", 3)
	assert.EqualValues(t, 3, tr.CursorFor("conn-1", "conv-1"))

	tr.Advance("conn-1", "conv-1", 7)
	assert.EqualValues(t, 7, tr.CursorFor("conn-1", "conv-1"))
}

func TestTrackerAdvanceNeverMovesBackward(t *testing.T) {
	tr := NewTracker()
	tr.Advance("conn-1", "conv-1", 10)

	tr.Advance("conn-1", "conv-1", 4)
	assert.EqualValues(t, 10, tr.CursorFor("conn-1", "conv-1"))

	tr.Advance("conn-1", "conv-1", 10)
	assert.EqualValues(t, 10, tr.CursorFor("conn-1", "conv-1"))
}

func TestTrackerCursorsAreIndependent(t *testing.T) {
	tr := NewTracker()
	tr.Advance("conn-1", "conv-1", 5)
	tr.Advance("conn-1", "conv-2", 2)
	tr.Advance("conn-2", "conv-1", 9)

	assert.EqualValues(t, 5, tr.CursorFor("conn-1", "conv-1"))
	assert.EqualValues(t, 2, tr.CursorFor("conn-1", "conv-2"))
	assert.EqualValues(t, 9, tr.CursorFor("conn-2", "conv-1"))
}

func TestTrackerDeliverGatesStaleIds(t *testing.T) {
	tr := NewTracker()
	enqueued := 0
	accept := func() bool { enqueued++; return true }

	assert.True(t, tr.Deliver("conn-1", "conv-1", 4, accept))
	assert.EqualValues(t, 4, tr.CursorFor("conn-1", "conv-1"))

	// An id at or behind the cursor never reaches the queue: a late
	// push and a replay of the same id are both suppressed.
	assert.False(t, tr.Deliver("conn-1", "conv-1", 4, accept))
	assert.False(t, tr.Deliver("conn-1", "conv-1", 2, accept))
	assert.Equal(t, 1, enqueued)
	assert.EqualValues(t, 4, tr.CursorFor("conn-1", "conv-1"))
}

func TestTrackerDeliverHoldsCursorOnFullQueue(t *testing.T) {
	tr := NewTracker()
	reject := func() bool { return false }

	assert.False(t, tr.Deliver("conn-1", "conv-1", 1, reject))
	assert.EqualValues(t, 0, tr.CursorFor("conn-1", "conv-1"),
		"an undelivered id must stay ahead of the cursor so replay can recover it")

	assert.True(t, tr.Deliver("conn-1", "conv-1", 1, func() bool { return true }))
	assert.EqualValues(t, 1, tr.CursorFor("conn-1", "conv-1"))
}

func TestTrackerDrop(t *testing.T) {
	tr := NewTracker()
	tr.Advance("conn-1", "conv-1", 5)
	tr.Advance("conn-2", "conv-1", 3)

	tr.Drop("conn-1")

	assert.EqualValues(t, 0, tr.CursorFor("conn-1", "conv-1"))
	assert.EqualValues(t, 3, tr.CursorFor("conn-2", "conv-1"))
}
