package middleware

import (
	"errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	log "warbler/pkg/logger"
	"warbler/pkg/redis"
	"warbler/pkg/response"
)

const (
	// TokenCookieName 登录态 Cookie 名
	TokenCookieName = "auth_token"

	contextUserIDKey = "user_id"
	contextTokenKey  = "auth_token"
)

// ExtractToken 优先取 Cookie，其次取 Authorization 头
func ExtractToken(c *gin.Context) string {
	if token, err := c.Cookie(TokenCookieName); err == nil && token != "" {
		return token
	}
	return bearerToken(c.GetHeader("Authorization"))
}

// AuthMiddleware 校验登录态。required 为 false 时未登录也放行，只是不设置用户ID
func AuthMiddleware(sessions redis.SessionManager, required bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := ExtractToken(c)
		if token == "" {
			if required {
				response.Error(c, response.CodeUnauthorized, "")
				return
			}
			c.Next()
			return
		}

		userID, err := sessions.ValidateSession(c.Request.Context(), token)
		if err != nil {
			if !errors.Is(err, redis.ErrSessionNotFound) {
				log.Error("校验Session失败", zap.Error(err))
				if required {
					response.Error(c, response.CodeRedisError, "")
					return
				}
			} else if required {
				response.Error(c, response.CodeInvalidToken, "")
				return
			}
			c.Next()
			return
		}

		c.Set(contextUserIDKey, userID)
		c.Set(contextTokenKey, token)
		c.Next()
	}
}

// CurrentUserID 当前登录用户
func CurrentUserID(c *gin.Context) (uint64, bool) {
	v, ok := c.Get(contextUserIDKey)
	if !ok {
		return 0, false
	}
	userID, ok := v.(uint64)
	return userID, ok
}

// CurrentToken 当前请求使用的 token
func CurrentToken(c *gin.Context) string {
	return c.GetString(contextTokenKey)
}
