package chat

import (
	"context"
)

// PingHandler answers application-level pings. The transport ping/pong
// runs separately in the write pump; this one exists for clients that
// cannot observe websocket control frames.
type PingHandler struct{ hub *Hub }

func NewPingHandler(hub *Hub) Handler { return &PingHandler{hub: hub} }

func (h *PingHandler) Type() string { return FramePing }

func (h *PingHandler) Handle(ctx context.Context, c *Client, _ *Frame) error {
	h.hub.Touch(ctx, c)
	c.Enqueue(BuildPong())
	return nil
}
