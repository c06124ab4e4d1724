package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
)

const messageColumns = `id::text, sender_id::text, receiver_id::text, text, image, seen, created_at`

func scanMessage(row pgx.Row) (Message, error) {
	var m Message
	err := row.Scan(&m.ID, &m.SenderID, &m.ReceiverID, &m.Text, &m.Image, &m.Seen, &m.CreatedAt)
	return m, err
}

// CreateMessage persists a new message with seen=false. Delivery over a live
// channel is the caller's concern; the row is the durability guarantee.
func (s *Store) CreateMessage(ctx context.Context, senderID, receiverID, text, image string) (Message, error) {
	row := s.pool.QueryRow(ctx, `
		INSERT INTO messages (sender_id, receiver_id, text, image)
		VALUES ($1::uuid, $2::uuid, $3, $4)
		RETURNING `+messageColumns,
		senderID, receiverID, text, image)

	m, err := scanMessage(row)
	if err != nil {
		return Message{}, fmt.Errorf("create message: %w", err)
	}
	return m, nil
}

// ListConversation returns all messages between the two users ordered by
// creation time ascending.
func (s *Store) ListConversation(ctx context.Context, userA, userB string) ([]Message, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+messageColumns+`
		FROM messages
		WHERE (sender_id = $1::uuid AND receiver_id = $2::uuid)
		   OR (sender_id = $2::uuid AND receiver_id = $1::uuid)
		ORDER BY created_at ASC`,
		userA, userB)
	if err != nil {
		return nil, fmt.Errorf("list conversation: %w", err)
	}
	defer rows.Close()

	messages := []Message{}
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, fmt.Errorf("list conversation: %w", err)
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}

// MarkConversationSeen flips every unseen message from senderID to
// receiverID to seen. It runs as a separate statement from the conversation
// read; a message landing between the two is picked up by the next fetch.
func (s *Store) MarkConversationSeen(ctx context.Context, senderID, receiverID string) error {
	_, err := s.pool.Exec(ctx, `
		UPDATE messages
		SET seen = TRUE
		WHERE sender_id = $1::uuid AND receiver_id = $2::uuid AND NOT seen`,
		senderID, receiverID)
	if err != nil {
		return fmt.Errorf("mark conversation seen: %w", err)
	}
	return nil
}

// MarkMessageSeen sets seen=true on a single message and returns the updated
// row. The update is idempotent; an unknown id returns ErrNotFound.
func (s *Store) MarkMessageSeen(ctx context.Context, id string) (Message, error) {
	row := s.pool.QueryRow(ctx, `
		UPDATE messages
		SET seen = TRUE
		WHERE id = $1::uuid
		RETURNING `+messageColumns,
		id)

	m, err := scanMessage(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Message{}, ErrNotFound
	}
	if err != nil {
		return Message{}, fmt.Errorf("mark message seen: %w", err)
	}
	return m, nil
}

// CountUnseenBySender returns, per sender, the number of unseen messages
// addressed to the given user. Senders with zero unseen messages are absent.
func (s *Store) CountUnseenBySender(ctx context.Context, receiverID string) (map[string]int, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT sender_id::text, COUNT(*)
		FROM messages
		WHERE receiver_id = $1::uuid AND NOT seen
		GROUP BY sender_id`,
		receiverID)
	if err != nil {
		return nil, fmt.Errorf("count unseen: %w", err)
	}
	defer rows.Close()

	counts := map[string]int{}
	for rows.Next() {
		var senderID string
		var count int
		if err := rows.Scan(&senderID, &count); err != nil {
			return nil, fmt.Errorf("count unseen: %w", err)
		}
		counts[senderID] = count
	}
	return counts, rows.Err()
}
