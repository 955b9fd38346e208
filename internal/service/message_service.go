package service

import (
	"context"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"warbler/internal/form"
	"warbler/internal/model"
	"warbler/internal/repository"
	"warbler/pkg/db"
	log "warbler/pkg/logger"
)

const (
	// DefaultListLimit 列表默认条数
	DefaultListLimit = 100

	// MaxListLimit 列表最大条数
	MaxListLimit = 100
)

// MessageService 消息
type MessageService interface {
	// Create 发布消息，作者为 userID
	Create(ctx context.Context, q repository.Querier, userID uint64, messageForm *form.MessageForm) (*model.Message, error)

	// Delete 删除消息，只有作者可以删除
	Delete(ctx context.Context, q repository.Querier, userID, messageID uint64) error

	// ListByUser 用户自己的消息，新的在前
	ListByUser(ctx context.Context, q repository.Querier, userID uint64, limit int) ([]model.Message, error)

	// Timeline 用户及其关注者的消息，新的在前
	Timeline(ctx context.Context, q repository.Querier, userID uint64, limit int) ([]model.Message, error)

	// Count 用户的消息数
	Count(ctx context.Context, q repository.Querier, userID uint64) (int, error)
}

type messageService struct {
	messageRepo repository.MessageRepository
	userRepo    repository.UserRepository
	idGen       db.IDGenerator
	now         func() time.Time
}

// NewMessageService 创建MessageService实例
func NewMessageService(messageRepo repository.MessageRepository, userRepo repository.UserRepository, idGen db.IDGenerator) MessageService {
	return &messageService{
		messageRepo: messageRepo,
		userRepo:    userRepo,
		idGen:       idGen,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

func (s *messageService) Create(ctx context.Context, q repository.Querier, userID uint64, messageForm *form.MessageForm) (*model.Message, error) {
	// 1. 校验表单和长度
	if fieldErrs := form.Validate(messageForm); fieldErrs != nil {
		return nil, fieldErrs
	}
	if utf8.RuneCountInString(messageForm.Text) > model.MaxMessageLength {
		return nil, ErrMessageTooLong
	}

	// 2. 作者必须存在
	if _, err := s.userRepo.GetByID(ctx, q, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	// 3. 写入
	id, err := s.idGen.NextID()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrIDGenerateFailed, err)
	}
	msg := &model.Message{
		ID:        id,
		Text:      messageForm.Text,
		Timestamp: s.now(),
		UserID:    userID,
	}
	if err := s.messageRepo.Create(ctx, q, msg); err != nil {
		log.Error("发布消息失败", zap.Error(err), zap.Uint64("user_id", userID))
		return nil, err
	}

	log.Info("发布消息成功", zap.Uint64("user_id", userID), zap.Uint64("message_id", msg.ID))
	return msg, nil
}

func (s *messageService) Delete(ctx context.Context, q repository.Querier, userID, messageID uint64) error {
	msg, err := s.messageRepo.GetByID(ctx, q, messageID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrMessageNotFound
		}
		return err
	}

	if msg.UserID != userID {
		log.Warn("删除他人消息被拒绝", zap.Uint64("user_id", userID), zap.Uint64("message_id", messageID))
		return ErrNotMessageOwner
	}

	if err := s.messageRepo.Delete(ctx, q, messageID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrMessageNotFound
		}
		return err
	}

	log.Info("删除消息成功", zap.Uint64("user_id", userID), zap.Uint64("message_id", messageID))
	return nil
}

func (s *messageService) ListByUser(ctx context.Context, q repository.Querier, userID uint64, limit int) ([]model.Message, error) {
	return s.messageRepo.ListByUser(ctx, q, userID, normalizeLimit(limit))
}

func (s *messageService) Timeline(ctx context.Context, q repository.Querier, userID uint64, limit int) ([]model.Message, error) {
	return s.messageRepo.ListTimeline(ctx, q, userID, normalizeLimit(limit))
}

func (s *messageService) Count(ctx context.Context, q repository.Querier, userID uint64) (int, error) {
	return s.messageRepo.CountByUser(ctx, q, userID)
}

func normalizeLimit(limit int) int {
	if limit <= 0 {
		return DefaultListLimit
	}
	if limit > MaxListLimit {
		return MaxListLimit
	}
	return limit
}
