package redis

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	log "warbler/pkg/logger"
)

const (
	// LoginFailKeyPrefix 键示例：login_fail:testuser
	LoginFailKeyPrefix = "login_fail:"

	// LoginFailTTL 失败计数窗口（从第一次失败开始计时）
	LoginFailTTL = 15 * time.Minute

	// MaxLoginAttempts 窗口内允许的最大失败次数
	MaxLoginAttempts = 5
)

// LoginLimiter 登录失败限流
type LoginLimiter interface {
	// RecordLoginFail 失败计数+1，返回当前计数
	RecordLoginFail(ctx context.Context, username string) (int64, error)

	// IsLoginAllowed 失败次数未达到上限时返回 true
	IsLoginAllowed(ctx context.Context, username string) (bool, error)

	// ResetLoginFail 登录成功后清零
	ResetLoginFail(ctx context.Context, username string) error
}

type loginLimiter struct {
	client Client
}

// NewLoginLimiter 创建登录限制器
func NewLoginLimiter(client Client) LoginLimiter {
	return &loginLimiter{client: client}
}

func (ll *loginLimiter) RecordLoginFail(ctx context.Context, username string) (int64, error) {
	key := LoginFailKeyPrefix + username

	count, err := ll.client.Incr(ctx, key)
	if err != nil {
		log.Error("记录登录失败次数失败", zap.Error(err), zap.String("username", username))
		return 0, err
	}

	if count == 1 {
		if err := ll.client.Expire(ctx, key, LoginFailTTL); err != nil {
			// 计数已写入，过期时间失败只记录日志
			log.Error("设置登录失败计数过期时间失败", zap.Error(err), zap.String("key", key))
		}
	}

	log.Warn("记录登录失败", zap.String("username", username), zap.Int64("fail_count", count))
	return count, nil
}

func (ll *loginLimiter) IsLoginAllowed(ctx context.Context, username string) (bool, error) {
	countStr, err := ll.client.Get(ctx, LoginFailKeyPrefix+username)
	if err != nil {
		if IsNil(err) {
			return true, nil
		}
		return false, err
	}

	count, err := strconv.ParseInt(countStr, 10, 64)
	if err != nil {
		return false, fmt.Errorf("解析登录失败计数失败: %w", err)
	}

	if count >= MaxLoginAttempts {
		log.Warn("登录尝试次数过多", zap.String("username", username), zap.Int64("fail_count", count))
		return false, nil
	}
	return true, nil
}

func (ll *loginLimiter) ResetLoginFail(ctx context.Context, username string) error {
	if err := ll.client.Del(ctx, LoginFailKeyPrefix+username); err != nil {
		log.Error("重置登录失败计数失败", zap.Error(err), zap.String("username", username))
		return err
	}
	return nil
}
