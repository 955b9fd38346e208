package router

import (
	"github.com/gin-gonic/gin"

	"warbler/config"
	"warbler/internal/handler"
	"warbler/internal/middleware"
	"warbler/pkg/metrics"
	"warbler/pkg/redis"
)

// SetupRouter 设置路由
func SetupRouter(
	cfg *config.Config,
	authHandler *handler.AuthHandler,
	userHandler *handler.UserHandler,
	messageHandler *handler.MessageHandler,
	redisManager redis.Manager,
	m *metrics.Metrics,
) *gin.Engine {
	if cfg.Server.Mode == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// 不使用 gin.Default 的默认中间件
	r := gin.New()

	r.Use(middleware.RecoveryMiddleware())
	r.Use(middleware.CORSMiddleware(cfg.Server.AllowedOrigins))
	r.Use(middleware.MetricsMiddleware(m))
	r.Use(middleware.LoggerMiddleware())

	r.GET("/metrics", gin.WrapH(m.Handler()))

	sessions := redisManager.GetSession()
	optionalAuth := middleware.AuthMiddleware(sessions, false)
	requireAuth := middleware.AuthMiddleware(sessions, true)

	api := r.Group("/api/v1")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/signup", authHandler.Signup)
			auth.POST("/login", authHandler.Login)
			auth.POST("/logout", authHandler.Logout)
		}

		users := api.Group("/users", optionalAuth)
		{
			users.GET("/:id", userHandler.GetUser)
			users.GET("/:id/following", userHandler.ListFollowing)
			users.GET("/:id/followers", userHandler.ListFollowers)
			users.GET("/:id/messages", messageHandler.ListByUser)
		}

		profile := api.Group("/profile", requireAuth)
		{
			profile.PATCH("", userHandler.UpdateProfile)
			profile.DELETE("", userHandler.DeleteProfile)
		}

		follows := api.Group("/follows", requireAuth)
		{
			follows.POST("/:id", userHandler.Follow)
			follows.DELETE("/:id", userHandler.Unfollow)
		}

		messages := api.Group("/messages", requireAuth)
		{
			messages.POST("", messageHandler.Create)
			messages.DELETE("/:id", messageHandler.Delete)
		}

		api.GET("/timeline", requireAuth, messageHandler.Timeline)
	}

	return r
}
