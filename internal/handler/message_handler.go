package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"

	"warbler/internal/dto"
	"warbler/internal/form"
	"warbler/internal/model"
	"warbler/internal/service"
	"warbler/pkg/db"
	"warbler/pkg/metrics"
	"warbler/pkg/response"
)

// MessageHandler 消息
type MessageHandler struct {
	db             *sqlx.DB
	userService    service.UserService
	messageService service.MessageService
	metrics        *metrics.Metrics
}

// NewMessageHandler 创建 MessageHandler 实例
func NewMessageHandler(conn *sqlx.DB, userService service.UserService, messageService service.MessageService, m *metrics.Metrics) *MessageHandler {
	return &MessageHandler{
		db:             conn,
		userService:    userService,
		messageService: messageService,
		metrics:        m,
	}
}

// Create 发布消息
func (h *MessageHandler) Create(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	var f form.MessageForm
	if !bindForm(c, &f) {
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	var msg *model.Message
	err := db.Transact(ctx, h.db, func(tx *sqlx.Tx) error {
		var err error
		msg, err = h.messageService.Create(ctx, tx, userID, &f)
		return err
	})
	if err != nil {
		writeError(c, err)
		return
	}

	h.metrics.MessagesPosted.Inc()
	response.Success(c, dto.FromMessage(msg))
}

// Delete 删除自己的消息
func (h *MessageHandler) Delete(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	messageID, ok := idParam(c, "id")
	if !ok {
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	err := db.Transact(ctx, h.db, func(tx *sqlx.Tx) error {
		return h.messageService.Delete(ctx, tx, userID, messageID)
	})
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, nil)
}

// ListByUser 某个用户的消息
func (h *MessageHandler) ListByUser(c *gin.Context) {
	userID, ok := idParam(c, "id")
	if !ok {
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	if _, err := h.userService.GetByID(ctx, h.db, userID); err != nil {
		writeError(c, err)
		return
	}
	messages, err := h.messageService.ListByUser(ctx, h.db, userID, limitQuery(c))
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, dto.FromMessages(messages))
}

// Timeline 当前用户及其关注的人的消息
func (h *MessageHandler) Timeline(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	messages, err := h.messageService.Timeline(ctx, h.db, userID, limitQuery(c))
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, dto.FromMessages(messages))
}
