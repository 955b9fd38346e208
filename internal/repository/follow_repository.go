package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"warbler/internal/model"
)

// FollowRepository 关注关系仓储：一张有向边表，两个查询方向
type FollowRepository interface {
	// Create 新增边 follower -> followed，边已存在时返回 ErrUniqueViolation
	Create(ctx context.Context, q Querier, followerID, followedID uint64) error

	// Delete 删除边，返回是否真的删除了
	Delete(ctx context.Context, q Querier, followerID, followedID uint64) (bool, error)

	// Exists 边是否存在
	Exists(ctx context.Context, q Querier, followerID, followedID uint64) (bool, error)

	// ListFollowing 出边：userID 关注的用户
	ListFollowing(ctx context.Context, q Querier, userID uint64) ([]model.User, error)

	// ListFollowers 入边：关注 userID 的用户
	ListFollowers(ctx context.Context, q Querier, userID uint64) ([]model.User, error)

	// CountFollowers 入边数量
	CountFollowers(ctx context.Context, q Querier, userID uint64) (int, error)

	// CountFollowing 出边数量
	CountFollowing(ctx context.Context, q Querier, userID uint64) (int, error)
}

type followRepository struct{}

// NewFollowRepository 创建关注关系仓储
func NewFollowRepository() FollowRepository {
	return &followRepository{}
}

func (r *followRepository) Create(ctx context.Context, q Querier, followerID, followedID uint64) error {
	query := q.Rebind(`INSERT INTO follows (follower_id, followed_id, created_at) VALUES (?, ?, ?)`)

	_, err := q.ExecContext(ctx, query, followerID, followedID, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to create follow: %w", wrapUnique(err))
	}
	return nil
}

func (r *followRepository) Delete(ctx context.Context, q Querier, followerID, followedID uint64) (bool, error) {
	query := q.Rebind(`DELETE FROM follows WHERE follower_id = ? AND followed_id = ?`)

	result, err := q.ExecContext(ctx, query, followerID, followedID)
	if err != nil {
		return false, fmt.Errorf("failed to delete follow: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rowsAffected > 0, nil
}

func (r *followRepository) Exists(ctx context.Context, q Querier, followerID, followedID uint64) (bool, error) {
	query := q.Rebind(`SELECT COUNT(*) FROM follows WHERE follower_id = ? AND followed_id = ?`)

	var count int
	if err := sqlx.GetContext(ctx, q, &count, query, followerID, followedID); err != nil {
		return false, fmt.Errorf("failed to check follow: %w", err)
	}
	return count > 0, nil
}

func (r *followRepository) ListFollowing(ctx context.Context, q Querier, userID uint64) ([]model.User, error) {
	return r.listUsers(ctx, q, `f.followed_id`, `f.follower_id`, userID)
}

func (r *followRepository) ListFollowers(ctx context.Context, q Querier, userID uint64) ([]model.User, error) {
	return r.listUsers(ctx, q, `f.follower_id`, `f.followed_id`, userID)
}

// listUsers 沿一个方向遍历边：joinCol 连接到 users，whereCol 过滤 userID
func (r *followRepository) listUsers(ctx context.Context, q Querier, joinCol, whereCol string, userID uint64) ([]model.User, error) {
	query := q.Rebind(`SELECT u.id, u.username, u.email, u.password_hash, u.image_url, u.header_image_url,
                     u.bio, u.location, u.created_at, u.updated_at
              FROM follows f
              JOIN users u ON u.id = ` + joinCol + `
              WHERE ` + whereCol + ` = ?
              ORDER BY f.created_at DESC, u.id`)

	users := []model.User{}
	if err := sqlx.SelectContext(ctx, q, &users, query, userID); err != nil {
		return nil, fmt.Errorf("failed to list follows: %w", err)
	}
	return users, nil
}

func (r *followRepository) CountFollowers(ctx context.Context, q Querier, userID uint64) (int, error) {
	return r.count(ctx, q, `SELECT COUNT(*) FROM follows WHERE followed_id = ?`, userID)
}

func (r *followRepository) CountFollowing(ctx context.Context, q Querier, userID uint64) (int, error) {
	return r.count(ctx, q, `SELECT COUNT(*) FROM follows WHERE follower_id = ?`, userID)
}

func (r *followRepository) count(ctx context.Context, q Querier, query string, userID uint64) (int, error) {
	var n int
	if err := sqlx.GetContext(ctx, q, &n, q.Rebind(query), userID); err != nil {
		return 0, fmt.Errorf("failed to count follows: %w", err)
	}
	return n, nil
}
