package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"warbler/config"
	"warbler/internal/dto"
	"warbler/internal/form"
	"warbler/internal/middleware"
	"warbler/internal/model"
	"warbler/internal/service"
	"warbler/pkg/db"
	log "warbler/pkg/logger"
	"warbler/pkg/metrics"
	"warbler/pkg/redis"
	"warbler/pkg/response"
)

// AuthHandler 注册、登录、登出
type AuthHandler struct {
	db           *sqlx.DB
	userService  service.UserService
	redisManager redis.Manager
	metrics      *metrics.Metrics
	secureCookie bool
}

// NewAuthHandler 创建 AuthHandler 实例
func NewAuthHandler(
	conn *sqlx.DB,
	userService service.UserService,
	redisManager redis.Manager,
	m *metrics.Metrics,
	cfg *config.Config,
) *AuthHandler {
	return &AuthHandler{
		db:           conn,
		userService:  userService,
		redisManager: redisManager,
		metrics:      m,
		secureCookie: cfg.Server.CookieSecure,
	}
}

// Signup 注册并直接登录
func (h *AuthHandler) Signup(c *gin.Context) {
	var f form.UserAddForm
	if !bindForm(c, &f) {
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	var user *model.User
	err := db.Transact(ctx, h.db, func(tx *sqlx.Tx) error {
		var err error
		user, err = h.userService.Signup(ctx, tx, dto.FromUserAddForm(&f))
		return err
	})
	if err != nil {
		writeError(c, err)
		return
	}
	h.metrics.Signups.Inc()

	if !h.startSession(c, user.ID) {
		return
	}
	response.Success(c, dto.FromModel(user))
}

// Login 登录
func (h *AuthHandler) Login(c *gin.Context) {
	var f form.LoginForm
	if !bindForm(c, &f) {
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()
	limiter := h.redisManager.GetLoginLimiter()

	// 1. 失败次数限制，Redis 故障时不阻止登录
	allowed, err := limiter.IsLoginAllowed(ctx, f.Username)
	if err != nil {
		log.Error("获取登录失败次数失败", zap.Error(err), zap.String("username", f.Username))
		allowed = true
	}
	if !allowed {
		h.metrics.Logins.WithLabelValues("limited").Inc()
		response.Error(c, response.CodeLoginLimited, "")
		return
	}

	// 2. 认证，失败原因不对外区分
	user, err := h.userService.Authenticate(ctx, h.db, f.Username, f.Password)
	if err != nil {
		writeError(c, err)
		return
	}
	if user == nil {
		h.metrics.Logins.WithLabelValues("failure").Inc()
		if _, err := limiter.RecordLoginFail(ctx, f.Username); err != nil {
			log.Error("记录登录失败次数失败", zap.Error(err))
		}
		response.Error(c, response.CodeInvalidCredentials, "")
		return
	}

	// 3. 清零失败次数，创建会话
	if err := limiter.ResetLoginFail(ctx, f.Username); err != nil {
		log.Error("重置登录失败次数失败", zap.Error(err))
	}
	if !h.startSession(c, user.ID) {
		return
	}

	h.metrics.Logins.WithLabelValues("success").Inc()
	log.Info("用户登录成功", zap.String("username", user.Username), zap.Uint64("user_id", user.ID))
	response.Success(c, dto.FromModel(user))
}

// Logout 登出
func (h *AuthHandler) Logout(c *gin.Context) {
	if token := middleware.ExtractToken(c); token != "" {
		ctx, cancel := requestContext(c)
		defer cancel()
		if err := h.redisManager.GetSession().DestroySession(ctx, token); err != nil {
			response.Error(c, response.CodeRedisError, "")
			return
		}
	}

	h.clearCookie(c)
	response.Success(c, nil)
}

func (h *AuthHandler) startSession(c *gin.Context, userID uint64) bool {
	token, err := h.redisManager.GetSession().CreateSession(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, response.CodeRedisError, "创建会话失败")
		return false
	}
	c.SetCookie(middleware.TokenCookieName, token, sessionMaxAge, "/", "", h.secureCookie, true)
	return true
}

func (h *AuthHandler) clearCookie(c *gin.Context) {
	c.SetCookie(middleware.TokenCookieName, "", -1, "/", "", h.secureCookie, true)
}
