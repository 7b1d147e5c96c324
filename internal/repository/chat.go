package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/BerylCAtieno/document-metadata-api/internal/models"
	"github.com/jmoiron/sqlx"
)

// ChatRepository keeps the chat transcript between sessions.
type ChatRepository interface {
	Append(ctx context.Context, msgs ...models.ChatMessage) error
	List(ctx context.Context) ([]models.ChatMessage, error)
	Clear(ctx context.Context) error
}

type chatRepository struct {
	db *sqlx.DB
}

func NewChatRepository(db *sqlx.DB) ChatRepository {
	return &chatRepository{db: db}
}

type chatRow struct {
	ID        int64  `db:"id"`
	Text      string `db:"text"`
	Sender    string `db:"sender"`
	CreatedAt int64  `db:"created_at"`
}

func (r *chatRepository) Append(ctx context.Context, msgs ...models.ChatMessage) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, msg := range msgs {
		createdAt := msg.CreatedAt
		if createdAt.IsZero() {
			createdAt = time.Now()
		}
		_, err := tx.ExecContext(ctx,
			`INSERT INTO chat_messages (text, sender, created_at) VALUES (?, ?, ?)`,
			msg.Text, string(msg.Sender), createdAt.UnixNano())
		if err != nil {
			return fmt.Errorf("failed to append chat message: %w", err)
		}
	}

	return tx.Commit()
}

func (r *chatRepository) List(ctx context.Context) ([]models.ChatMessage, error) {
	var rows []chatRow
	err := r.db.SelectContext(ctx, &rows, `SELECT id, text, sender, created_at FROM chat_messages ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list chat messages: %w", err)
	}

	msgs := make([]models.ChatMessage, 0, len(rows))
	for _, row := range rows {
		msgs = append(msgs, models.ChatMessage{
			ID:        row.ID,
			Text:      row.Text,
			Sender:    models.Sender(row.Sender),
			CreatedAt: time.Unix(0, row.CreatedAt).UTC(),
		})
	}
	return msgs, nil
}

func (r *chatRepository) Clear(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM chat_messages`); err != nil {
		return fmt.Errorf("failed to clear chat messages: %w", err)
	}
	return nil
}
