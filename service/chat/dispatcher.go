package chat

import (
	"context"

	"WeGap/tools/errs"
)

// Handler processes one frame type.
type Handler interface {
	Type() string
	Handle(ctx context.Context, c *Client, f *Frame) error
}

// Dispatcher routes inbound frames to their handlers.
type Dispatcher struct {
	handlers map[string]Handler
}

func NewDispatcher() *Dispatcher {
	return &Dispatcher{handlers: make(map[string]Handler)}
}

func (d *Dispatcher) Register(h Handler) {
	d.handlers[h.Type()] = h
}

// Dispatch parses and routes one raw frame. An unknown frame type is a
// protocol violation.
func (d *Dispatcher) Dispatch(ctx context.Context, c *Client, raw []byte) error {
	f, err := ParseFrame(raw)
	if err != nil {
		return err
	}
	h, ok := d.handlers[f.Type]
	if !ok {
		return errs.ErrProtocolViolation.WithDetail("unknown frame type: " + f.Type)
	}
	return h.Handle(ctx, c, f)
}

// NewDefaultDispatcher wires the standard frame handlers onto the hub.
func NewDefaultDispatcher(hub *Hub) *Dispatcher {
	d := NewDispatcher()
	d.Register(NewConnectHandler(hub))
	d.Register(NewSendHandler(hub))
	d.Register(NewReplayHandler(hub))
	d.Register(NewPingHandler(hub))
	return d
}
