package repository

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"warbler/config"
	"warbler/internal/model"
	"warbler/pkg/db"
)

// openTestDB 在临时目录中打开一个已建表的 sqlite 数据库
func openTestDB(t *testing.T) *sqlx.DB {
	t.Helper()

	cfg := &config.Config{Database: config.DatabaseConfig{
		Driver:   "sqlite",
		Database: filepath.Join(t.TempDir(), "warbler.db"),
	}}
	conn, err := db.InitDB(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	require.NoError(t, db.CreateSchema(context.Background(), conn))
	return conn
}

var baseTime = time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)

// newUser 构造测试用户（不落库）
func newUser(id uint64, username string) *model.User {
	return &model.User{
		ID:           id,
		Username:     username,
		Email:        username + "@test.com",
		PasswordHash: "HASHED_PASSWORD",
		CreatedAt:    baseTime,
		UpdatedAt:    baseTime,
	}
}

// mustCreateUsers 批量创建测试用户
func mustCreateUsers(t *testing.T, q Querier, users ...*model.User) {
	t.Helper()
	repo := NewUserRepository()
	for _, u := range users {
		require.NoError(t, repo.Create(context.Background(), q, u))
	}
}
