package service

import "errors"

// ============================================================================
// 业务错误定义
// ============================================================================

var (
	ErrInvalidCredentials = errors.New("用户名或密码错误")
	ErrUserNotFound       = errors.New("用户不存在")
	ErrPasswordHashFailed = errors.New("密码哈希失败")
	ErrIDGenerateFailed   = errors.New("生成ID失败")

	ErrSelfFollow       = errors.New("不能关注自己")
	ErrAlreadyFollowing = errors.New("已经关注该用户")
	ErrNotFollowing     = errors.New("尚未关注该用户")

	ErrMessageTooLong  = errors.New("消息长度不能超过140个字符")
	ErrMessageNotFound = errors.New("消息不存在")
	ErrNotMessageOwner = errors.New("只能删除自己的消息")
)
