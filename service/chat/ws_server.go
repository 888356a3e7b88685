package chat

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"WeGap/logger"
	"WeGap/tools/errs"
	"WeGap/tools/ids"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// WsServer accepts websocket connections and runs the read loop.
type WsServer struct {
	hub         *Hub
	dispatcher  *Dispatcher
	idleTimeout time.Duration
	queueSize   int
	maxFrame    int64
}

func NewWsServer(hub *Hub, d *Dispatcher, idleTimeout time.Duration, queueSize int, maxBodyBytes int) *WsServer {
	if idleTimeout <= 0 {
		idleTimeout = 75 * time.Second
	}
	// Envelope overhead on top of the body limit.
	maxFrame := int64(maxBodyBytes) + 1024
	return &WsServer{
		hub:         hub,
		dispatcher:  d,
		idleTimeout: idleTimeout,
		queueSize:   queueSize,
		maxFrame:    maxFrame,
	}
}

// HandleWS is the gin endpoint upgrading to websocket.
func (s *WsServer) HandleWS(gc *gin.Context) {
	ws, err := upgrader.Upgrade(gc.Writer, gc.Request, nil)
	if err != nil {
		// Upgrade already wrote the response; just log and return.
		logger.Warnf("ws upgrade: %v", err)
		return
	}

	c := NewClient(ids.GenerateString(), ws, s.queueSize)
	c.StartWritePump()
	s.readLoop(gc, c, ws)
}

// readLoop owns all reads on the socket. Each accepted frame pushes the
// idle deadline forward; an expired deadline means the peer went away.
func (s *WsServer) readLoop(gc *gin.Context, c *Client, ws *websocket.Conn) {
	ctx := gc.Request.Context()
	defer s.hub.OnDisconnect(ctx, c.ConnID)
	defer c.Close()

	ws.SetReadLimit(s.maxFrame)
	resetDeadline := func() {
		_ = ws.SetReadDeadline(time.Now().Add(s.idleTimeout))
	}
	resetDeadline()
	ws.SetPongHandler(func(string) error {
		resetDeadline()
		s.hub.Touch(ctx, c)
		return nil
	})

	for {
		_, raw, err := ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logger.Debugf("conn %s read: %v", c.ConnID, err)
			}
			return
		}
		resetDeadline()

		if err := s.dispatcher.Dispatch(ctx, c, raw); err != nil {
			c.Enqueue(BuildError(err))
			if fatalWireErr(err) {
				return
			}
		}
	}
}

// fatalWireErr decides whether an error ends the connection or only
// fails the frame that caused it.
func fatalWireErr(err error) bool {
	ce := errs.AsCodeError(err)
	if ce == nil {
		return false
	}
	switch ce.Code {
	case errs.CodeUnauthorized, errs.CodeProtocolViolation, errs.CodeNotConnected:
		return true
	}
	return false
}
