package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"warbler/config"
	"warbler/internal/dto"
	"warbler/internal/form"
	"warbler/internal/middleware"
	"warbler/internal/model"
	"warbler/internal/repository"
	"warbler/internal/service"
	"warbler/pkg/db"
	log "warbler/pkg/logger"
	"warbler/pkg/metrics"
	"warbler/pkg/redis"
	"warbler/pkg/response"
)

// UserHandler 用户资料与关注关系
type UserHandler struct {
	db             *sqlx.DB
	userService    service.UserService
	messageService service.MessageService
	redisManager   redis.Manager
	metrics        *metrics.Metrics
	secureCookie   bool
}

// NewUserHandler 创建 UserHandler 实例
func NewUserHandler(
	conn *sqlx.DB,
	userService service.UserService,
	messageService service.MessageService,
	redisManager redis.Manager,
	m *metrics.Metrics,
	cfg *config.Config,
) *UserHandler {
	return &UserHandler{
		db:             conn,
		userService:    userService,
		messageService: messageService,
		redisManager:   redisManager,
		metrics:        m,
		secureCookie:   cfg.Server.CookieSecure,
	}
}

// userDetail 用户主页数据
type userDetail struct {
	Profile     *dto.UserProfileDTO `json:"profile"`
	Messages    int                 `json:"messages"`
	Followers   int                 `json:"followers"`
	Following   int                 `json:"following"`
	IsFollowing *bool               `json:"is_following,omitempty"` // 仅登录时返回
}

// GetUser 用户主页
func (h *UserHandler) GetUser(c *gin.Context) {
	userID, ok := idParam(c, "id")
	if !ok {
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	profile, err := h.userService.GetByID(ctx, h.db, userID)
	if err != nil {
		writeError(c, err)
		return
	}

	detail := &userDetail{Profile: profile}
	if detail.Messages, err = h.messageService.Count(ctx, h.db, userID); err != nil {
		writeError(c, err)
		return
	}
	if detail.Followers, err = h.userService.CountFollowers(ctx, h.db, userID); err != nil {
		writeError(c, err)
		return
	}
	if detail.Following, err = h.userService.CountFollowing(ctx, h.db, userID); err != nil {
		writeError(c, err)
		return
	}

	if viewerID, ok := middleware.CurrentUserID(c); ok && viewerID != userID {
		following, err := h.userService.IsFollowing(ctx, h.db, viewerID, userID)
		if err != nil {
			writeError(c, err)
			return
		}
		detail.IsFollowing = &following
	}

	response.Success(c, detail)
}

// ListFollowing 用户关注的人
func (h *UserHandler) ListFollowing(c *gin.Context) {
	h.listEdges(c, h.userService.Following)
}

// ListFollowers 用户的粉丝
func (h *UserHandler) ListFollowers(c *gin.Context) {
	h.listEdges(c, h.userService.Followers)
}

type edgeLister func(ctx context.Context, q repository.Querier, userID uint64) ([]*dto.UserProfileDTO, error)

func (h *UserHandler) listEdges(c *gin.Context, list edgeLister) {
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
	users, err := list(ctx, h.db, userID)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, users)
}

// UpdateProfile 修改资料（需要当前密码）
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	var f form.UserEditForm
	if !bindForm(c, &f) {
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	var user *model.User
	err := db.Transact(ctx, h.db, func(tx *sqlx.Tx) error {
		var err error
		user, err = h.userService.UpdateProfile(ctx, tx, userID, dto.FromUserEditForm(&f))
		return err
	})
	if err != nil {
		writeError(c, err)
		return
	}
	h.userService.InvalidateProfile(ctx, userID)

	response.Success(c, dto.FromModel(user))
}

// DeleteProfile 注销账号并登出
func (h *UserHandler) DeleteProfile(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	err := db.Transact(ctx, h.db, func(tx *sqlx.Tx) error {
		return h.userService.Delete(ctx, tx, userID)
	})
	if err != nil {
		writeError(c, err)
		return
	}
	h.userService.InvalidateProfile(ctx, userID)

	if err := h.redisManager.GetSession().DestroySession(ctx, middleware.CurrentToken(c)); err != nil {
		// 账号已删除，残留的会话在 TTL 后过期
		log.Warn("注销后销毁Session失败", zap.Error(err), zap.Uint64("user_id", userID))
	}
	c.SetCookie(middleware.TokenCookieName, "", -1, "/", "", h.secureCookie, true)
	response.Success(c, nil)
}

// Follow 关注用户
func (h *UserHandler) Follow(c *gin.Context) {
	h.changeFollow(c, "follow", h.userService.Follow)
}

// Unfollow 取消关注
func (h *UserHandler) Unfollow(c *gin.Context) {
	h.changeFollow(c, "unfollow", h.userService.Unfollow)
}

type followChanger func(ctx context.Context, q repository.Querier, userID, otherID uint64) error

func (h *UserHandler) changeFollow(c *gin.Context, action string, change followChanger) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	otherID, ok := idParam(c, "id")
	if !ok {
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	err := db.Transact(ctx, h.db, func(tx *sqlx.Tx) error {
		return change(ctx, tx, userID, otherID)
	})
	if err != nil {
		writeError(c, err)
		return
	}

	h.metrics.FollowChanges.WithLabelValues(action).Inc()
	response.Success(c, nil)
}
