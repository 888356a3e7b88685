package chat

import (
	"encoding/json"
	"time"

	"WeGap/service/storage"
	"WeGap/tools/errs"
)

// Frame types understood by the gateway.
const (
	// client -> server
	FrameConnect = "connect"
	FrameSend    = "send"
	FrameReplay  = "replay"
	FramePing    = "ping"

	// server -> client
	FrameConnected = "connected"
	FrameAck       = "ack"
	FrameMessage   = "message"
	FrameReplayEnd = "replay_end"
	FramePong      = "pong"
	FrameError     = "error"
)

// Frame is the wire envelope. Fields are populated per type; json
// omitempty keeps frames small.
type Frame struct {
	Type string `json:"type"`

	// connect
	Token string `json:"token,omitempty"`

	// send / replay
	RecipientID    string `json:"recipient_id,omitempty"`
	Body           string `json:"body,omitempty"`
	ClientTag      string `json:"client_tag,omitempty"`
	ConversationID string `json:"conversation_id,omitempty"`
	Cursor         int64  `json:"cursor,omitempty"`

	// server-assigned
	MessageID int64     `json:"message_id,omitempty"`
	SenderID  string    `json:"sender_id,omitempty"`
	ConnID    string    `json:"conn_id,omitempty"`
	UserID    string    `json:"user_id,omitempty"`
	SentAt    time.Time `json:"sent_at,omitempty"`

	// error
	Code   int    `json:"code,omitempty"`
	Reason string `json:"reason,omitempty"`
	Detail string `json:"detail,omitempty"`
}

// ParseFrame decodes a single inbound frame.
func ParseFrame(data []byte) (*Frame, error) {
	var f Frame
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, errs.ErrProtocolViolation.WithDetail("malformed frame: " + err.Error())
	}
	if f.Type == "" {
		return nil, errs.ErrProtocolViolation.WithDetail("frame missing type")
	}
	return &f, nil
}

func marshalFrame(f Frame) []byte {
	data, _ := json.Marshal(f)
	return data
}

func BuildConnected(connID, userID string) []byte {
	return marshalFrame(Frame{Type: FrameConnected, ConnID: connID, UserID: userID})
}

// BuildAck confirms persistence of a sent message back to its author.
// ClientTag echoes the client's own correlation tag, if any.
func BuildAck(convID string, messageID int64, clientTag string) []byte {
	return marshalFrame(Frame{
		Type:           FrameAck,
		ConversationID: convID,
		MessageID:      messageID,
		ClientTag:      clientTag,
	})
}

func BuildMessage(m storage.Message) []byte {
	return marshalFrame(Frame{
		Type:           FrameMessage,
		ConversationID: m.ConversationID,
		MessageID:      m.ID,
		SenderID:       m.SenderID,
		RecipientID:    m.RecipientID,
		Body:           m.Body,
		SentAt:         m.CreatedAt,
	})
}

// BuildReplayEnd marks the end of a replay batch; Cursor is the highest
// id delivered, so the client can persist its own resume point.
func BuildReplayEnd(convID string, cursor int64) []byte {
	return marshalFrame(Frame{Type: FrameReplayEnd, ConversationID: convID, Cursor: cursor})
}

func BuildPong() []byte {
	return marshalFrame(Frame{Type: FramePong})
}

// BuildError renders a taxonomy error for the wire. Unclassified errors
// surface as persistence failures rather than leaking internals.
func BuildError(err error) []byte {
	ce := errs.AsCodeError(err)
	if ce == nil {
		ce = errs.ErrPersistenceFailure
	}
	return marshalFrame(Frame{
		Type:   FrameError,
		Code:   ce.Code,
		Reason: ce.Kind,
		Detail: ce.Detail,
	})
}
