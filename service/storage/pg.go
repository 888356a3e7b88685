package storage

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"

	"WeGap/tools/errs"
)

// PgStore persists conversations, messages and accounts in PostgreSQL.
// Message ids come from chat_conversation.last_seq: the append transaction
// bumps the counter with a row lock, so ids within one conversation are
// strictly increasing no matter how many gateway nodes write concurrently.
type PgStore struct {
	pool *pgxpool.Pool
}

func NewPgStore(pool *pgxpool.Pool) *PgStore {
	return &PgStore{pool: pool}
}

// Connect builds a pgx pool and pings it.
func Connect(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, errors.Wrap(err, "pgx pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, errors.Wrap(err, "pgx ping")
	}
	return pool, nil
}

// conversationKey normalizes the unordered pair so (a,b) and (b,a) hit
// the same unique index.
func conversationKey(userA, userB string) (low, high string) {
	if userA <= userB {
		return userA, userB
	}
	return userB, userA
}

func (s *PgStore) EnsureConversation(ctx context.Context, userA, userB string) (string, error) {
	low, high := conversationKey(userA, userB)

	// Insert-if-absent first, then read back. ON CONFLICT DO NOTHING makes
	// the race between two first messages harmless: exactly one row wins.
	_, err := s.pool.Exec(ctx, `
		INSERT INTO chat_conversation (id, user_low, user_high, last_seq, created_at)
		VALUES ('c_' || $1 || ':' || $2, $1, $2, 0, now())
		ON CONFLICT (user_low, user_high) DO NOTHING`,
		low, high)
	if err != nil {
		return "", errors.Wrap(err, "ensure conversation")
	}

	var id string
	err = s.pool.QueryRow(ctx, `
		SELECT id FROM chat_conversation WHERE user_low = $1 AND user_high = $2`,
		low, high).Scan(&id)
	if err != nil {
		return "", errors.Wrap(err, "lookup conversation")
	}
	return id, nil
}

func (s *PgStore) Append(ctx context.Context, conversationID, senderID, recipientID, body string, at time.Time) (int64, error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return 0, errors.Wrap(err, "begin append tx")
	}
	defer tx.Rollback(ctx)

	// The UPDATE takes the row lock; concurrent appends to the same
	// conversation queue behind it, which is what serializes id assignment.
	var seq int64
	err = tx.QueryRow(ctx, `
		UPDATE chat_conversation SET last_seq = last_seq + 1
		WHERE id = $1
		RETURNING last_seq`,
		conversationID).Scan(&seq)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, errs.ErrUnknownConversation.WithDetail(conversationID)
		}
		return 0, errors.Wrap(err, "advance conversation seq")
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO chat_message (conversation_id, seq, sender_id, recipient_id, body, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		conversationID, seq, senderID, recipientID, body, at.UTC())
	if err != nil {
		return 0, errors.Wrap(err, "insert message")
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, errors.Wrap(err, "commit append tx")
	}
	return seq, nil
}

func (s *PgStore) ListSince(ctx context.Context, conversationID string, cursor int64) ([]Message, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT conversation_id, seq, sender_id, recipient_id, body, created_at
		FROM chat_message
		WHERE conversation_id = $1 AND seq > $2
		ORDER BY seq`,
		conversationID, cursor)
	if err != nil {
		return nil, errors.Wrap(err, "list messages")
	}
	defer rows.Close()

	var out []Message
	for rows.Next() {
		var m Message
		if err := rows.Scan(&m.ConversationID, &m.ID, &m.SenderID, &m.RecipientID, &m.Body, &m.CreatedAt); err != nil {
			return nil, errors.Wrap(err, "scan message")
		}
		out = append(out, m)
	}
	return out, errors.Wrap(rows.Err(), "iterate messages")
}

func (s *PgStore) Participants(ctx context.Context, conversationID string) ([]string, error) {
	var low, high string
	err := s.pool.QueryRow(ctx, `
		SELECT user_low, user_high FROM chat_conversation WHERE id = $1`,
		conversationID).Scan(&low, &high)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errs.ErrUnknownConversation.WithDetail(conversationID)
		}
		return nil, errors.Wrap(err, "lookup participants")
	}
	return []string{low, high}, nil
}

func (s *PgStore) ConversationsFor(ctx context.Context, userID string) ([]string, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id FROM chat_conversation
		WHERE user_low = $1 OR user_high = $1
		ORDER BY created_at`,
		userID)
	if err != nil {
		return nil, errors.Wrap(err, "list conversations")
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, errors.Wrap(err, "scan conversation id")
		}
		out = append(out, id)
	}
	return out, errors.Wrap(rows.Err(), "iterate conversations")
}

func (s *PgStore) Exists(ctx context.Context, userID string) (bool, error) {
	var ok bool
	err := s.pool.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM app_user WHERE id = $1 AND active)`,
		userID).Scan(&ok)
	if err != nil {
		return false, errors.Wrap(err, "user exists")
	}
	return ok, nil
}

func (s *PgStore) FindByEmail(ctx context.Context, email string) (*Account, error) {
	var a Account
	err := s.pool.QueryRow(ctx, `
		SELECT id, email, password_hash, display_name, active
		FROM app_user WHERE email = $1`,
		email).Scan(&a.ID, &a.Email, &a.PasswordHash, &a.DisplayName, &a.Active)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "find account")
	}
	return &a, nil
}
