package natsx

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"WeGap/logger"
)

const (
	SubjectConnected    = "wegap.chat.connected"
	SubjectDisconnected = "wegap.chat.disconnected"
)

// LifecycleEvent announces a user attaching to or leaving a gateway node.
// Downstream consumers (notification fanout, analytics) key on EventID
// for dedup across reconnect storms.
type LifecycleEvent struct {
	EventID string    `json:"event_id"`
	UserID  string    `json:"user_id"`
	ConnID  string    `json:"conn_id"`
	NodeID  string    `json:"node_id"`
	At      time.Time `json:"at"`
}

// Emitter publishes gateway lifecycle events. Best effort: a publish
// failure is logged, never surfaced to the connection path.
type Emitter struct {
	client *Client
	nodeID string
}

func NewEmitter(client *Client, nodeID string) *Emitter {
	return &Emitter{client: client, nodeID: nodeID}
}

func (e *Emitter) Connected(userID, connID string) {
	e.emit(SubjectConnected, userID, connID)
}

func (e *Emitter) Disconnected(userID, connID string) {
	e.emit(SubjectDisconnected, userID, connID)
}

func (e *Emitter) emit(subject, userID, connID string) {
	if e == nil || e.client == nil {
		return
	}
	ev := LifecycleEvent{
		EventID: uuid.NewString(),
		UserID:  userID,
		ConnID:  connID,
		NodeID:  e.nodeID,
		At:      time.Now().UTC(),
	}
	data, err := json.Marshal(ev)
	if err != nil {
		logger.Errorf("marshal lifecycle event: %v", err)
		return
	}
	if err := e.client.Publish(subject, data); err != nil {
		logger.Warnf("publish %s for user %s: %v", subject, userID, err)
	}
}
