package chat

import (
	"context"
)

type SendHandler struct{ hub *Hub }

func NewSendHandler(hub *Hub) Handler { return &SendHandler{hub: hub} }

func (h *SendHandler) Type() string { return FrameSend }

func (h *SendHandler) Handle(ctx context.Context, c *Client, f *Frame) error {
	_, err := h.hub.SendMessage(ctx, c, f)
	return err
}
