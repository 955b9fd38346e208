package dto

import "time"

// MessageDTO 消息（用于响应）
type MessageDTO struct {
	ID        uint64    `json:"id,string"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
	UserID    uint64    `json:"user_id,string"`
}
