package chat

import (
	"context"
	"strings"
	"time"

	"WeGap/logger"
	"WeGap/service/storage"
	"WeGap/tools/errs"
)

// Authenticator resolves an opaque credential to a user id. The hub
// never looks inside the credential.
type Authenticator interface {
	Authenticate(ctx context.Context, credential string) (string, error)
}

// PresenceStore mirrors liveness into shared storage. Optional.
type PresenceStore interface {
	Online(ctx context.Context, userID, nodeID string) error
	Offline(ctx context.Context, userID string) error
	Renew(ctx context.Context, userID string) error
}

// EventSink receives connection lifecycle notifications. Optional.
type EventSink interface {
	Connected(userID, connID string)
	Disconnected(userID, connID string)
}

// HubConfig carries the hub's runtime knobs.
type HubConfig struct {
	NodeID          string
	MaxBodyBytes    int
	PersistTimeout  time.Duration
	ReplayOnConnect bool
}

func (c *HubConfig) norm() {
	if c.MaxBodyBytes <= 0 {
		c.MaxBodyBytes = 4096
	}
	if c.PersistTimeout <= 0 {
		c.PersistTimeout = 5 * time.Second
	}
}

// Hub owns the message path: authenticate connections, persist sends,
// push to live recipients, replay history. Persistence always comes
// first; live push is best effort on top of it.
type Hub struct {
	cfg      HubConfig
	registry *Registry
	tracker  *Tracker
	router   *Router
	store    storage.MessageStore
	fanout   *Fanout
	auth     Authenticator
	presence PresenceStore
	events   EventSink
}

func NewHub(cfg HubConfig, reg *Registry, tr *Tracker, rt *Router, store storage.MessageStore, fo *Fanout, auth Authenticator) *Hub {
	cfg.norm()
	return &Hub{
		cfg:      cfg,
		registry: reg,
		tracker:  tr,
		router:   rt,
		store:    store,
		fanout:   fo,
		auth:     auth,
	}
}

// WithPresence attaches an optional presence mirror.
func (h *Hub) WithPresence(p PresenceStore) *Hub { h.presence = p; return h }

// WithEvents attaches an optional lifecycle event sink.
func (h *Hub) WithEvents(s EventSink) *Hub { h.events = s; return h }

func (h *Hub) Registry() *Registry { return h.registry }

// OnConnect authenticates the credential and activates the connection.
// On failure the caller sends the error frame and closes the socket.
func (h *Hub) OnConnect(ctx context.Context, c *Client, credential string) error {
	if c.State() != StateConnecting {
		return errs.ErrProtocolViolation.WithDetail("connect on an established connection")
	}
	userID, err := h.auth.Authenticate(ctx, credential)
	if err != nil {
		return err
	}
	c.UserID = userID
	c.SetState(StateAuthenticated)
	h.registry.Register(c)
	c.SetState(StateActive)

	if h.presence != nil {
		if err := h.presence.Online(ctx, userID, h.cfg.NodeID); err != nil {
			logger.Warnf("presence online for %s: %v", userID, err)
		}
	}
	if h.events != nil {
		h.events.Connected(userID, c.ConnID)
	}
	c.Enqueue(BuildConnected(c.ConnID, userID))

	if h.cfg.ReplayOnConnect {
		h.replayAll(ctx, c)
	}
	return nil
}

// SendMessage validates, persists and fans out one message, returning
// the assigned message id. The returned error is already classified for
// the wire.
func (h *Hub) SendMessage(ctx context.Context, c *Client, f *Frame) (int64, error) {
	if c.State() != StateActive {
		return 0, errs.ErrNotConnected
	}
	body := f.Body
	if strings.TrimSpace(body) == "" {
		return 0, errs.ErrEmptyBody
	}
	if len(body) > h.cfg.MaxBodyBytes {
		return 0, errs.ErrMessageTooLarge.WithDetail("body exceeds limit")
	}
	if f.RecipientID == "" {
		return 0, errs.ErrProtocolViolation.WithDetail("send frame missing recipient_id")
	}
	if f.RecipientID == c.UserID {
		return 0, errs.ErrUnknownRecipient.WithDetail("cannot message yourself")
	}

	pctx, cancel := context.WithTimeout(ctx, h.cfg.PersistTimeout)
	defer cancel()

	convID, err := h.router.EnsureConversation(pctx, c.UserID, f.RecipientID)
	if err != nil {
		return 0, classifyStoreErr(err)
	}

	now := time.Now().UTC()
	id, err := h.store.Append(pctx, convID, c.UserID, f.RecipientID, body, now)
	if err != nil {
		return 0, classifyStoreErr(err)
	}

	// Persisted: from here on everything is best effort.
	c.Enqueue(BuildAck(convID, id, f.ClientTag))
	h.tracker.Advance(c.ConnID, convID, id)

	msg := storage.Message{
		ID:             id,
		ConversationID: convID,
		SenderID:       c.UserID,
		RecipientID:    f.RecipientID,
		Body:           body,
		CreatedAt:      now,
	}
	h.push(msg, c.ConnID)
	return id, nil
}

// push delivers a live message to every recipient connection plus the
// sender's other devices, advancing cursors for queues that accepted it.
func (h *Hub) push(m storage.Message, excludeConnID string) {
	targets := h.registry.ConnectionsFor(m.RecipientID)
	for _, sc := range h.registry.ConnectionsFor(m.SenderID) {
		if sc.ConnID != excludeConnID {
			targets = append(targets, sc)
		}
	}
	if len(targets) == 0 {
		return
	}
	payload := BuildMessage(m)
	h.fanout.Broadcast(targets, func(c *Client) {
		h.tracker.Deliver(c.ConnID, m.ConversationID, m.ID, func() bool {
			return c.Enqueue(payload)
		})
	})
}

// Replay streams conversation history past the connection's cursor.
// Delivery goes straight onto the connection's queue, in id order,
// ending with a replay_end marker.
func (h *Hub) Replay(ctx context.Context, c *Client, convID string, requested int64) error {
	if c.State() != StateActive {
		return errs.ErrNotConnected
	}
	if convID == "" {
		return errs.ErrProtocolViolation.WithDetail("replay frame missing conversation_id")
	}
	ok, err := h.router.IsParticipant(ctx, convID, c.UserID)
	if err != nil {
		return classifyStoreErr(err)
	}
	if !ok {
		return errs.ErrUnknownConversation.WithDetail(convID)
	}

	cursor := h.tracker.CursorFor(c.ConnID, convID)
	if requested > cursor {
		cursor = requested
	}

	pctx, cancel := context.WithTimeout(ctx, h.cfg.PersistTimeout)
	defer cancel()
	msgs, err := h.store.ListSince(pctx, convID, cursor)
	if err != nil {
		return classifyStoreErr(err)
	}

	for _, m := range msgs {
		if h.tracker.Deliver(c.ConnID, convID, m.ID, func() bool {
			return c.Enqueue(BuildMessage(m))
		}) {
			continue
		}
		if h.tracker.CursorFor(c.ConnID, convID) >= m.ID {
			// A live push delivered this id while the replay ran.
			continue
		}
		// Queue full: stop here, the cursor marks what actually made
		// it out, the client can replay again.
		break
	}
	end := h.tracker.CursorFor(c.ConnID, convID)
	if cursor > end {
		end = cursor
	}
	c.Enqueue(BuildReplayEnd(convID, end))
	return nil
}

// replayAll runs an implicit replay over every conversation the user
// participates in. Connect-time convenience, failures are logged only.
func (h *Hub) replayAll(ctx context.Context, c *Client) {
	convs, err := h.store.ConversationsFor(ctx, c.UserID)
	if err != nil {
		logger.Warnf("list conversations for %s: %v", c.UserID, err)
		return
	}
	for _, convID := range convs {
		if err := h.Replay(ctx, c, convID, 0); err != nil {
			logger.Warnf("replay %s for conn %s: %v", convID, c.ConnID, err)
		}
	}
}

// Touch renews the presence TTL on client activity.
func (h *Hub) Touch(ctx context.Context, c *Client) {
	if h.presence != nil && c.UserID != "" {
		if err := h.presence.Renew(ctx, c.UserID); err != nil {
			logger.Debugf("presence renew for %s: %v", c.UserID, err)
		}
	}
}

// OnDisconnect tears the connection down. Idempotent: a second call for
// the same conn id is a no-op.
func (h *Hub) OnDisconnect(ctx context.Context, connID string) {
	c := h.registry.Deregister(connID)
	if c == nil {
		return
	}
	h.tracker.Drop(connID)
	c.Close()

	if c.UserID == "" {
		return
	}
	if h.presence != nil && !h.registry.IsOnline(c.UserID) {
		if err := h.presence.Offline(ctx, c.UserID); err != nil {
			logger.Warnf("presence offline for %s: %v", c.UserID, err)
		}
	}
	if h.events != nil {
		h.events.Disconnected(c.UserID, connID)
	}
}

// Shutdown closes every connection and stops the fanout workers.
func (h *Hub) Shutdown(ctx context.Context) {
	h.registry.CloseAll()
	h.fanout.Close()
}

// classifyStoreErr maps storage failures into the wire taxonomy.
// Taxonomy errors pass through untouched.
func classifyStoreErr(err error) error {
	if ce := errs.AsCodeError(err); ce != nil {
		return ce
	}
	if errs.IsDeadline(err) {
		return errs.ErrPersistenceTimeout
	}
	return errs.ErrPersistenceFailure.WithDetail(err.Error())
}
