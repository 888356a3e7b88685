package chat

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"WeGap/logger"
	"WeGap/tools/safe"
)

// Connection states. Transitions only move forward: Connecting ->
// Authenticated -> Active -> Closed. Closed is terminal.
const (
	StateConnecting int32 = iota
	StateAuthenticated
	StateActive
	StateClosed
)

const (
	writeWait  = 5 * time.Second
	pingPeriod = 25 * time.Second
)

// Client is one websocket connection. UserID is set when authentication
// succeeds and never changes afterwards. The Send channel is the only
// path to the socket; the write pump owns all writes.
type Client struct {
	ConnID string
	UserID string

	ws    *websocket.Conn
	state atomic.Int32

	Send      chan []byte
	closeOnce sync.Once
	done      chan struct{}
}

func NewClient(connID string, ws *websocket.Conn, queueSize int) *Client {
	if queueSize <= 0 {
		queueSize = 256
	}
	c := &Client{
		ConnID: connID,
		ws:     ws,
		Send:   make(chan []byte, queueSize),
		done:   make(chan struct{}),
	}
	c.state.Store(StateConnecting)
	return c
}

func (c *Client) State() int32 { return c.state.Load() }

// SetState moves the connection forward. Backward transitions and
// transitions out of Closed are ignored.
func (c *Client) SetState(next int32) bool {
	for {
		cur := c.state.Load()
		if cur == StateClosed || next < cur {
			return false
		}
		if c.state.CompareAndSwap(cur, next) {
			return true
		}
	}
}

// Enqueue hands a frame to the write pump without blocking. A full
// queue means the peer is not draining; the frame is dropped and the
// caller decides whether that matters.
func (c *Client) Enqueue(frame []byte) bool {
	if c.State() == StateClosed {
		return false
	}
	select {
	case c.Send <- frame:
		return true
	default:
		logger.Warnf("conn %s send queue full, dropping frame", c.ConnID)
		return false
	}
}

// Close marks the client closed and tears the socket down. Idempotent.
func (c *Client) Close() {
	c.closeOnce.Do(func() {
		c.state.Store(StateClosed)
		close(c.done)
		if c.ws != nil {
			_ = c.ws.Close()
		}
	})
}

// StartWritePump drains Send onto the socket and keeps the peer alive
// with pings. Runs until Close or a write error.
func (c *Client) StartWritePump() {
	safe.Go("write-pump-"+c.ConnID, func() {
		ticker := time.NewTicker(pingPeriod)
		defer ticker.Stop()
		for {
			select {
			case <-c.done:
				return
			case frame := <-c.Send:
				if err := c.write(websocket.TextMessage, frame); err != nil {
					logger.Debugf("conn %s write: %v", c.ConnID, err)
					c.Close()
					return
				}
			case <-ticker.C:
				if err := c.write(websocket.PingMessage, nil); err != nil {
					c.Close()
					return
				}
			}
		}
	})
}

func (c *Client) write(messageType int, data []byte) error {
	if err := c.ws.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return c.ws.WriteMessage(messageType, data)
}
