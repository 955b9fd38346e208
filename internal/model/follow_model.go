package model

import "time"

// Follow 有向关注边 follower -> followed，(follower_id, followed_id) 为联合主键
type Follow struct {
	FollowerID uint64    `db:"follower_id"`
	FollowedID uint64    `db:"followed_id"`
	CreatedAt  time.Time `db:"created_at"`
}
