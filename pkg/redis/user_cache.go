package redis

import (
	"context"
	"strconv"
	"time"

	"go.uber.org/zap"

	"warbler/internal/dto"
	log "warbler/pkg/logger"
)

const (
	// UserCacheKeyPrefix 键示例：user:123
	UserCacheKeyPrefix = "user:"

	// UserCacheTTL 用户资料缓存时间
	UserCacheTTL = 30 * time.Minute

	// NullCacheTTL 用户不存在时的负缓存时间
	NullCacheTTL = 5 * time.Minute
)

// cachedProfile 缓存内容，Missing 为 true 表示负缓存
type cachedProfile struct {
	Profile *dto.UserProfileDTO `json:"profile,omitempty"`
	Missing bool                `json:"missing,omitempty"`
}

// UserCache 用户公开资料缓存，不缓存密码哈希
type UserCache interface {
	// GetProfile 返回 (资料, 是否命中)。命中负缓存时返回 (nil, true)
	GetProfile(ctx context.Context, userID uint64) (*dto.UserProfileDTO, bool, error)

	SetProfile(ctx context.Context, profile *dto.UserProfileDTO) error

	// SetMissing 写入负缓存，防止不存在的ID反复穿透到数据库
	SetMissing(ctx context.Context, userID uint64) error

	// Invalidate 资料修改或用户删除后调用
	Invalidate(ctx context.Context, userID uint64) error
}

type userCache struct {
	client Client
}

// NewUserCache 创建用户缓存
func NewUserCache(client Client) UserCache {
	return &userCache{client: client}
}

func userCacheKey(userID uint64) string {
	return UserCacheKeyPrefix + strconv.FormatUint(userID, 10)
}

func (uc *userCache) GetProfile(ctx context.Context, userID uint64) (*dto.UserProfileDTO, bool, error) {
	var cached cachedProfile
	if err := uc.client.GetJSON(ctx, userCacheKey(userID), &cached); err != nil {
		if IsNil(err) {
			return nil, false, nil
		}
		return nil, false, err
	}

	if cached.Missing {
		log.Debug("命中负缓存", zap.Uint64("user_id", userID))
		return nil, true, nil
	}

	log.Debug("命中用户缓存", zap.Uint64("user_id", userID))
	return cached.Profile, true, nil
}

func (uc *userCache) SetProfile(ctx context.Context, profile *dto.UserProfileDTO) error {
	err := uc.client.SetJSON(ctx, userCacheKey(profile.ID), &cachedProfile{Profile: profile}, UserCacheTTL)
	if err != nil {
		log.Error("设置用户缓存失败", zap.Error(err), zap.Uint64("user_id", profile.ID))
	}
	return err
}

func (uc *userCache) SetMissing(ctx context.Context, userID uint64) error {
	err := uc.client.SetJSON(ctx, userCacheKey(userID), &cachedProfile{Missing: true}, NullCacheTTL)
	if err != nil {
		log.Error("设置负缓存失败", zap.Error(err), zap.Uint64("user_id", userID))
	}
	return err
}

func (uc *userCache) Invalidate(ctx context.Context, userID uint64) error {
	err := uc.client.Del(ctx, userCacheKey(userID))
	if err != nil {
		log.Error("删除用户缓存失败", zap.Error(err), zap.Uint64("user_id", userID))
	}
	return err
}
