package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"warbler/internal/model"
)

const messageColumns = `id, text, timestamp, user_id`

const messageSelect = `SELECT m.id, m.text, m.timestamp, m.user_id FROM messages m`

// MessageRepository 消息仓储接口
type MessageRepository interface {
	Create(ctx context.Context, q Querier, msg *model.Message) error
	GetByID(ctx context.Context, q Querier, id uint64) (*model.Message, error)
	Delete(ctx context.Context, q Querier, id uint64) error

	// ListByUser 某个用户的消息，按时间倒序
	ListByUser(ctx context.Context, q Querier, userID uint64, limit int) ([]model.Message, error)

	// ListTimeline 用户本人及其关注对象的消息，按时间倒序
	ListTimeline(ctx context.Context, q Querier, userID uint64, limit int) ([]model.Message, error)

	CountByUser(ctx context.Context, q Querier, userID uint64) (int, error)
}

type messageRepository struct{}

// NewMessageRepository 创建消息仓储
func NewMessageRepository() MessageRepository {
	return &messageRepository{}
}

func (r *messageRepository) Create(ctx context.Context, q Querier, msg *model.Message) error {
	query := q.Rebind(`INSERT INTO messages (` + messageColumns + `) VALUES (?, ?, ?, ?)`)

	if _, err := q.ExecContext(ctx, query, msg.ID, msg.Text, msg.Timestamp, msg.UserID); err != nil {
		return fmt.Errorf("failed to create message: %w", err)
	}
	return nil
}

func (r *messageRepository) GetByID(ctx context.Context, q Querier, id uint64) (*model.Message, error) {
	var msg model.Message
	query := q.Rebind(messageSelect + ` WHERE m.id = ?`)

	if err := sqlx.GetContext(ctx, q, &msg, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("message %d: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get message: %w", err)
	}
	return &msg, nil
}

func (r *messageRepository) Delete(ctx context.Context, q Querier, id uint64) error {
	result, err := q.ExecContext(ctx, q.Rebind(`DELETE FROM messages WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("failed to delete message: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("message %d: %w", id, ErrNotFound)
	}
	return nil
}

func (r *messageRepository) ListByUser(ctx context.Context, q Querier, userID uint64, limit int) ([]model.Message, error) {
	query := q.Rebind(messageSelect + `
              WHERE m.user_id = ?
              ORDER BY m.timestamp DESC, m.id DESC
              LIMIT ?`)

	messages := []model.Message{}
	if err := sqlx.SelectContext(ctx, q, &messages, query, userID, limit); err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	return messages, nil
}

func (r *messageRepository) ListTimeline(ctx context.Context, q Querier, userID uint64, limit int) ([]model.Message, error) {
	query := q.Rebind(messageSelect + `
              WHERE m.user_id = ?
                 OR m.user_id IN (SELECT f.followed_id FROM follows f WHERE f.follower_id = ?)
              ORDER BY m.timestamp DESC, m.id DESC
              LIMIT ?`)

	messages := []model.Message{}
	if err := sqlx.SelectContext(ctx, q, &messages, query, userID, userID, limit); err != nil {
		return nil, fmt.Errorf("failed to list timeline: %w", err)
	}
	return messages, nil
}

func (r *messageRepository) CountByUser(ctx context.Context, q Querier, userID uint64) (int, error) {
	var n int
	if err := sqlx.GetContext(ctx, q, &n, q.Rebind(`SELECT COUNT(*) FROM messages WHERE user_id = ?`), userID); err != nil {
		return 0, fmt.Errorf("failed to count messages: %w", err)
	}
	return n, nil
}
