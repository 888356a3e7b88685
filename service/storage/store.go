package storage

import (
	"context"
	"time"
)

// Message is an immutable entry in a conversation. ID is assigned by the
// store and is strictly increasing within one conversation; it is the
// authoritative delivery and replay order. CreatedAt is advisory only.
type Message struct {
	ID             int64     `json:"id"`
	ConversationID string    `json:"conversation_id"`
	SenderID       string    `json:"sender_id"`
	RecipientID    string    `json:"recipient_id"`
	Body           string    `json:"body"`
	CreatedAt      time.Time `json:"created_at"`
}

// MessageStore is the persistence boundary of the hub. The store is the
// only assignor of message ids; id assignment for one conversation must
// be serialized by the implementation.
type MessageStore interface {
	// EnsureConversation returns the conversation id for the unordered
	// user pair, creating the durable record if absent. Must be a
	// compare-and-create: at most one record per pair even under
	// concurrent first-contact attempts.
	EnsureConversation(ctx context.Context, userA, userB string) (string, error)

	// Append persists a message and returns its id within the
	// conversation.
	Append(ctx context.Context, conversationID, senderID, recipientID, body string, at time.Time) (int64, error)

	// ListSince returns all messages of the conversation with id greater
	// than cursor, in id order.
	ListSince(ctx context.Context, conversationID string, cursor int64) ([]Message, error)

	// Participants returns the user ids taking part in the conversation.
	Participants(ctx context.Context, conversationID string) ([]string, error)

	// ConversationsFor lists the conversation ids the user participates in.
	ConversationsFor(ctx context.Context, userID string) ([]string, error)
}

// UserDirectory answers whether a user id is a valid, active account.
type UserDirectory interface {
	Exists(ctx context.Context, userID string) (bool, error)
}

// Account is the slice of the user record the login flow needs.
type Account struct {
	ID           string
	Email        string
	PasswordHash string
	DisplayName  string
	Active       bool
}

// AccountStore looks accounts up for the login endpoint.
type AccountStore interface {
	FindByEmail(ctx context.Context, email string) (*Account, error)
}
