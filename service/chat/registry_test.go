package chat

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(connID, userID string) *Client {
	c := NewClient(connID, nil, 8)
	c.UserID = userID
	c.SetState(StateAuthenticated)
	c.SetState(StateActive)
	return c
}

func TestRegistryRegisterAndLookup(t *testing.T) {
	r := NewRegistry()
	c := newTestClient("conn-1", "alice")

	r.Register(c)

	got, ok := r.Get("conn-1")
	require.True(t, ok)
	assert.Same(t, c, got)
	assert.True(t, r.IsOnline("alice"))
	assert.Equal(t, 1, r.CountFor("alice"))
	assert.Equal(t, 1, r.Count())
}

func TestRegistryRegisterIdempotent(t *testing.T) {
	r := NewRegistry()
	c := newTestClient("conn-1", "alice")

	r.Register(c)
	r.Register(c)

	assert.Equal(t, 1, r.Count())
	assert.Equal(t, 1, r.CountFor("alice"))
}

func TestRegistryMultipleConnectionsPerUser(t *testing.T) {
	r := NewRegistry()
	r.Register(newTestClient("conn-1", "alice"))
	r.Register(newTestClient("conn-2", "alice"))
	r.Register(newTestClient("conn-3", "bob"))

	assert.Equal(t, 2, r.CountFor("alice"))
	assert.Len(t, r.ConnectionsFor("alice"), 2)
	assert.Len(t, r.ConnectionsFor("bob"), 1)
	assert.Empty(t, r.ConnectionsFor("carol"))
}

func TestRegistryDeregister(t *testing.T) {
	r := NewRegistry()
	c := newTestClient("conn-1", "alice")
	r.Register(c)

	removed := r.Deregister("conn-1")
	require.Same(t, c, removed)
	assert.False(t, r.IsOnline("alice"))

	// Second deregister for the same conn id is a no-op.
	assert.Nil(t, r.Deregister("conn-1"))
	assert.Nil(t, r.Deregister("never-registered"))
}

func TestRegistryDeregisterKeepsOtherDevices(t *testing.T) {
	r := NewRegistry()
	r.Register(newTestClient("conn-1", "alice"))
	r.Register(newTestClient("conn-2", "alice"))

	r.Deregister("conn-1")

	assert.True(t, r.IsOnline("alice"))
	assert.Equal(t, 1, r.CountFor("alice"))
}

func TestRegistryCloseAll(t *testing.T) {
	r := NewRegistry()
	c1 := newTestClient("conn-1", "alice")
	c2 := newTestClient("conn-2", "bob")
	r.Register(c1)
	r.Register(c2)

	r.CloseAll()

	assert.Equal(t, 0, r.Count())
	assert.Equal(t, StateClosed, c1.State())
	assert.Equal(t, StateClosed, c2.State())
}
