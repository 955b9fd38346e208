package container

import (
	"github.com/jmoiron/sqlx"
	"go.uber.org/dig"

	"warbler/config"
	"warbler/internal/handler"
	"warbler/internal/repository"
	"warbler/internal/router"
	"warbler/internal/service"
	"warbler/pkg/db"
	"warbler/pkg/metrics"
	"warbler/pkg/redis"
)

// Container 全局依赖注入容器
var Container *dig.Container

// Init 初始化依赖注入容器
func Init(cfg *config.Config) error {
	c := dig.New()

	if err := c.Provide(func() *config.Config { return cfg }); err != nil {
		return err
	}
	if err := provideInfra(c); err != nil {
		return err
	}
	if err := provideApp(c); err != nil {
		return err
	}

	Container = c
	return nil
}

// provideInfra 外部连接：数据库、Redis
func provideInfra(c *dig.Container) error {
	providers := []interface{}{
		db.InitDB,
		redis.InitRedis,
	}
	for _, p := range providers {
		if err := c.Provide(p); err != nil {
			return err
		}
	}
	return nil
}

// provideApp 业务组件，只依赖 *config.Config、*sqlx.DB 和 redis.Client
func provideApp(c *dig.Container) error {
	providers := []interface{}{
		func(cfg *config.Config) (db.IDGenerator, error) {
			return db.NewSnowflake(cfg.Snowflake.MachineID)
		},
		redis.NewManager,
		func(m redis.Manager) redis.UserCache { return m.GetUserCache() },
		func(conn *sqlx.DB) (*metrics.Metrics, error) {
			m := metrics.New()
			if err := m.RegisterDB(conn.DB); err != nil {
				return nil, err
			}
			return m, nil
		},

		// Repository
		repository.NewUserRepository,
		repository.NewFollowRepository,
		repository.NewMessageRepository,

		// Service
		service.NewOptions,
		service.NewUserService,
		service.NewMessageService,

		// Handler
		handler.NewAuthHandler,
		handler.NewUserHandler,
		handler.NewMessageHandler,

		router.SetupRouter,
	}
	for _, p := range providers {
		if err := c.Provide(p); err != nil {
			return err
		}
	}
	return nil
}

// Invoke 调用函数，自动注入依赖
func Invoke(function interface{}) error {
	return Container.Invoke(function)
}
