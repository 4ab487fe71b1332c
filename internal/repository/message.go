package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/mizuki/heatboard/internal/domain"
)

// MessageRepository handles message data access operations.
type MessageRepository struct {
	db *sqlx.DB
}

// NewMessageRepository creates a new MessageRepository.
func NewMessageRepository(db *sqlx.DB) *MessageRepository {
	return &MessageRepository{db: db}
}

// Create inserts a new message row.
func (r *MessageRepository) Create(ctx context.Context, msg domain.Message) (*domain.Message, error) {
	var result domain.Message
	err := r.db.QueryRowxContext(ctx,
		`INSERT INTO messages (id, user_id, text)
		 VALUES ($1, $2, $3)
		 RETURNING id, user_id, text, created_at`,
		msg.ID, msg.UserID, msg.Text,
	).StructScan(&result)
	if err != nil {
		return nil, fmt.Errorf("create message: %w", err)
	}
	return &result, nil
}

// FindLast3 retrieves the three most recent messages, newest first, with
// their authors joined in.
func (r *MessageRepository) FindLast3(ctx context.Context) ([]domain.MessageWithAuthor, error) {
	messages := []domain.MessageWithAuthor{}
	err := r.db.SelectContext(ctx, &messages,
		`SELECT m.id, m.user_id, m.text, m.created_at,
		        u.id AS "user.id", u.github_id AS "user.github_id",
		        u.login AS "user.login", u.avatar_url AS "user.avatar_url",
		        u.name AS "user.name", u.created_at AS "user.created_at"
		 FROM messages m
		 JOIN users u ON u.id = m.user_id
		 ORDER BY m.created_at DESC
		 LIMIT 3`)
	if err != nil {
		return nil, fmt.Errorf("find last 3 messages: %w", err)
	}
	return messages, nil
}
