package dto

import "time"

// ============================================================================
// 用户信息 DTO
// ============================================================================

// UserProfileDTO 用户公开信息（用于响应，不含密码哈希和邮箱以外的敏感字段）
type UserProfileDTO struct {
	ID             uint64    `json:"id,string"`
	Username       string    `json:"username"`
	Email          string    `json:"email"`
	ImageURL       string    `json:"image_url"`
	HeaderImageURL string    `json:"header_image_url"`
	Bio            string    `json:"bio"`
	Location       string    `json:"location"`
	CreatedAt      time.Time `json:"created_at"`
}

// ============================================================================
// 操作 DTO
// ============================================================================

// SignupDTO 注册
type SignupDTO struct {
	Username       string
	Email          string
	Password       string // 明文密码，只在 service 内做哈希
	ImageURL       string
	HeaderImageURL string
	Bio            string
	Location       string
}

// UpdateProfileDTO 修改资料，空字段表示保持原值
type UpdateProfileDTO struct {
	Password       string // 用于重新认证
	ImageURL       string
	HeaderImageURL string
	Bio            string
	Location       string
}
