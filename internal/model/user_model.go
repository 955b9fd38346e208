package model

import "time"

const (
	// DefaultImageURL 未设置头像时使用的默认头像
	DefaultImageURL = "/static/images/default-pic.png"

	// DefaultHeaderImageURL 未设置背景图时使用的默认背景图
	DefaultHeaderImageURL = "/static/images/warbler-hero.jpg"
)

// User 用户表记录，password_hash 只保存 bcrypt 哈希
type User struct {
	ID             uint64    `db:"id"`
	Username       string    `db:"username"`
	Email          string    `db:"email"`
	PasswordHash   string    `db:"password_hash"`
	ImageURL       string    `db:"image_url"`
	HeaderImageURL string    `db:"header_image_url"`
	Bio            string    `db:"bio"`
	Location       string    `db:"location"`
	CreatedAt      time.Time `db:"created_at"`
	UpdatedAt      time.Time `db:"updated_at"`
}
