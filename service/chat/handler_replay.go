package chat

import (
	"context"
)

type ReplayHandler struct{ hub *Hub }

func NewReplayHandler(hub *Hub) Handler { return &ReplayHandler{hub: hub} }

func (h *ReplayHandler) Type() string { return FrameReplay }

func (h *ReplayHandler) Handle(ctx context.Context, c *Client, f *Frame) error {
	return h.hub.Replay(ctx, c, f.ConversationID, f.Cursor)
}
