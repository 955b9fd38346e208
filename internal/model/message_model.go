package model

import "time"

// MaxMessageLength 消息正文最大字符数
const MaxMessageLength = 140

// Message 消息表记录，由作者独占
type Message struct {
	ID        uint64    `db:"id"`
	Text      string    `db:"text"`
	Timestamp time.Time `db:"timestamp"`
	UserID    uint64    `db:"user_id"`
}
