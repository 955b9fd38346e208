package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"warbler/internal/model"
)

const userColumns = `id, username, email, password_hash, image_url, header_image_url, bio, location, created_at, updated_at`

// UserRepository 用户仓储接口
type UserRepository interface {
	// Create 创建用户，用户名/邮箱重复时返回 *UniqueViolationError
	Create(ctx context.Context, q Querier, user *model.User) error

	// GetByID 根据ID查询用户
	GetByID(ctx context.Context, q Querier, id uint64) (*model.User, error)

	// GetByUsername 根据用户名查询用户（用于登录）
	GetByUsername(ctx context.Context, q Querier, username string) (*model.User, error)

	// UpdateProfile 更新可选资料字段
	UpdateProfile(ctx context.Context, q Querier, user *model.User) error

	// Delete 删除用户，关注边和消息由外键级联删除
	Delete(ctx context.Context, q Querier, id uint64) error
}

// userRepository 用户仓储实现
type userRepository struct{}

// NewUserRepository 创建用户仓储实例
func NewUserRepository() UserRepository {
	return &userRepository{}
}

// Create 创建用户
func (r *userRepository) Create(ctx context.Context, q Querier, user *model.User) error {
	query := q.Rebind(`INSERT INTO users (` + userColumns + `)
              VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)

	_, err := q.ExecContext(ctx, query,
		user.ID, user.Username, user.Email, user.PasswordHash,
		user.ImageURL, user.HeaderImageURL, user.Bio, user.Location,
		user.CreatedAt, user.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", wrapUnique(err, "username", "email"))
	}

	return nil
}

// GetByID 根据ID查询用户
func (r *userRepository) GetByID(ctx context.Context, q Querier, id uint64) (*model.User, error) {
	var user model.User
	query := q.Rebind(`SELECT ` + userColumns + ` FROM users WHERE id = ?`)

	if err := sqlx.GetContext(ctx, q, &user, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("user %d: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get user by id: %w", err)
	}

	return &user, nil
}

// GetByUsername 根据用户名查询用户
func (r *userRepository) GetByUsername(ctx context.Context, q Querier, username string) (*model.User, error) {
	var user model.User
	query := q.Rebind(`SELECT ` + userColumns + ` FROM users WHERE username = ?`)

	if err := sqlx.GetContext(ctx, q, &user, query, username); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("user %s: %w", username, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get user by username: %w", err)
	}

	return &user, nil
}

// UpdateProfile 更新用户资料
func (r *userRepository) UpdateProfile(ctx context.Context, q Querier, user *model.User) error {
	query := q.Rebind(`UPDATE users
              SET image_url = ?, header_image_url = ?, bio = ?, location = ?, updated_at = ?
              WHERE id = ?`)

	result, err := q.ExecContext(ctx, query,
		user.ImageURL, user.HeaderImageURL, user.Bio, user.Location, user.UpdatedAt, user.ID)
	if err != nil {
		return fmt.Errorf("failed to update profile: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("user %d: %w", user.ID, ErrNotFound)
	}

	return nil
}

// Delete 删除用户
func (r *userRepository) Delete(ctx context.Context, q Querier, id uint64) error {
	result, err := q.ExecContext(ctx, q.Rebind(`DELETE FROM users WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("user %d: %w", id, ErrNotFound)
	}

	return nil
}
