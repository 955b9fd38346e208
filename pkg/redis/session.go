package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	log "warbler/pkg/logger"
)

const (
	// SessionTTL Session过期时间，每次通过认证时顺延
	SessionTTL = 2 * time.Hour

	// SessionKeyPrefix 键示例：sess:<uuid>
	SessionKeyPrefix = "sess:"
)

// ErrSessionNotFound token 不存在或已过期
var ErrSessionNotFound = errors.New("session not found or expired")

// SessionManager 登录会话管理（token -> user_id）
type SessionManager interface {
	// CreateSession 生成token并保存
	CreateSession(ctx context.Context, userID uint64) (string, error)

	// ValidateSession 返回token对应的userID，并顺延有效期
	ValidateSession(ctx context.Context, token string) (uint64, error)

	// DestroySession 登出
	DestroySession(ctx context.Context, token string) error
}

type sessionManager struct {
	client Client
	ttl    time.Duration
}

// NewSessionManager 创建Session管理器
func NewSessionManager(client Client) SessionManager {
	return &sessionManager{client: client, ttl: SessionTTL}
}

func (sm *sessionManager) CreateSession(ctx context.Context, userID uint64) (string, error) {
	token := uuid.NewString()

	if err := sm.client.Set(ctx, SessionKeyPrefix+token, userID, sm.ttl); err != nil {
		log.Error("创建Session失败", zap.Error(err), zap.Uint64("user_id", userID))
		return "", fmt.Errorf("创建Session失败: %w", err)
	}

	log.Debug("创建Session成功", zap.Uint64("user_id", userID))
	return token, nil
}

func (sm *sessionManager) ValidateSession(ctx context.Context, token string) (uint64, error) {
	if token == "" {
		return 0, ErrSessionNotFound
	}

	key := SessionKeyPrefix + token
	userID, err := sm.client.GetUint64(ctx, key)
	if err != nil {
		if IsNil(err) {
			return 0, ErrSessionNotFound
		}
		return 0, fmt.Errorf("读取Session失败: %w", err)
	}

	if err := sm.client.Expire(ctx, key, sm.ttl); err != nil {
		log.Warn("刷新Session有效期失败", zap.Error(err), zap.Uint64("user_id", userID))
	}
	return userID, nil
}

func (sm *sessionManager) DestroySession(ctx context.Context, token string) error {
	if err := sm.client.Del(ctx, SessionKeyPrefix+token); err != nil {
		log.Error("销毁Session失败", zap.Error(err))
		return err
	}
	return nil
}
