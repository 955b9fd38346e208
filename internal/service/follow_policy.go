package service

import (
	"golang.org/x/crypto/bcrypt"

	"warbler/config"
)

// SelfFollowMode 关注自己时的处理方式
type SelfFollowMode string

const (
	SelfFollowAllow  SelfFollowMode = "allow"  // 正常建立边
	SelfFollowIgnore SelfFollowMode = "ignore" // 静默忽略
	SelfFollowReject SelfFollowMode = "reject" // 返回 ErrSelfFollow
)

// DuplicateMode 重复关注/取消不存在的关注时的处理方式
type DuplicateMode string

const (
	DuplicateIgnore DuplicateMode = "ignore" // 幂等，不报错
	DuplicateReject DuplicateMode = "reject" // 返回 ErrAlreadyFollowing / ErrNotFollowing
)

// FollowPolicy 关注关系策略
type FollowPolicy struct {
	SelfFollow SelfFollowMode
	Duplicate  DuplicateMode
}

// DefaultFollowPolicy 允许关注自己，重复操作幂等
func DefaultFollowPolicy() FollowPolicy {
	return FollowPolicy{SelfFollow: SelfFollowAllow, Duplicate: DuplicateIgnore}
}

// Options UserService 的可配置项
type Options struct {
	BcryptCost int
	Policy     FollowPolicy
}

// NewOptions 从配置构造 Options，未配置的项使用默认值
func NewOptions(cfg *config.Config) Options {
	opts := Options{
		BcryptCost: cfg.Security.BcryptCost,
		Policy:     DefaultFollowPolicy(),
	}
	if opts.BcryptCost == 0 {
		opts.BcryptCost = bcrypt.DefaultCost
	}
	if cfg.Follow.SelfFollow != "" {
		opts.Policy.SelfFollow = SelfFollowMode(cfg.Follow.SelfFollow)
	}
	if cfg.Follow.Duplicate != "" {
		opts.Policy.Duplicate = DuplicateMode(cfg.Follow.Duplicate)
	}
	return opts
}
