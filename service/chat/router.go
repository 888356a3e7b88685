package chat

import (
	"context"

	"WeGap/service/storage"
	"WeGap/tools/errs"
)

// Router resolves conversations: it validates recipients against the
// user directory and maps user pairs to durable conversation records.
type Router struct {
	store     storage.MessageStore
	directory storage.UserDirectory
}

func NewRouter(store storage.MessageStore, directory storage.UserDirectory) *Router {
	return &Router{store: store, directory: directory}
}

// EnsureConversation returns the conversation id for sender and
// recipient, creating the record on first contact. The recipient must
// be a known account; senders arrive pre-authenticated.
func (r *Router) EnsureConversation(ctx context.Context, senderID, recipientID string) (string, error) {
	ok, err := r.directory.Exists(ctx, recipientID)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", errs.ErrUnknownRecipient.WithDetail(recipientID)
	}
	return r.store.EnsureConversation(ctx, senderID, recipientID)
}

// ResolveRecipients returns the conversation participants except the
// sender. Errors with ErrUnknownConversation when the id does not exist.
func (r *Router) ResolveRecipients(ctx context.Context, convID, senderID string) ([]string, error) {
	parts, err := r.store.Participants(ctx, convID)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != senderID {
			out = append(out, p)
		}
	}
	return out, nil
}

// IsParticipant reports whether userID belongs to the conversation.
func (r *Router) IsParticipant(ctx context.Context, convID, userID string) (bool, error) {
	parts, err := r.store.Participants(ctx, convID)
	if err != nil {
		return false, err
	}
	for _, p := range parts {
		if p == userID {
			return true, nil
		}
	}
	return false, nil
}
