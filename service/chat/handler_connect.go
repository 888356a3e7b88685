package chat

import (
	"context"
)

type ConnectHandler struct{ hub *Hub }

func NewConnectHandler(hub *Hub) Handler { return &ConnectHandler{hub: hub} }

func (h *ConnectHandler) Type() string { return FrameConnect }

func (h *ConnectHandler) Handle(ctx context.Context, c *Client, f *Frame) error {
	return h.hub.OnConnect(ctx, c, f.Token)
}
