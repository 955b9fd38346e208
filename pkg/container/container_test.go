package container

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/dig"

	"warbler/config"
	"warbler/internal/service"
	"warbler/pkg/db"
	"warbler/pkg/redis"
)

// nopClient 不连接真实 Redis 的客户端，构造阶段不会被调用
type nopClient struct{}

func (nopClient) Set(context.Context, string, interface{}, time.Duration) error { return nil }
func (nopClient) Get(context.Context, string) (string, error)                 { return "", redis.ErrNil }
func (nopClient) GetUint64(context.Context, string) (uint64, error)           { return 0, redis.ErrNil }
func (nopClient) Del(context.Context, ...string) error                        { return nil }
func (nopClient) Expire(context.Context, string, time.Duration) error         { return nil }
func (nopClient) Incr(context.Context, string) (int64, error)                 { return 1, nil }
func (nopClient) SetJSON(context.Context, string, interface{}, time.Duration) error {
	return nil
}
func (nopClient) GetJSON(context.Context, string, interface{}) error { return redis.ErrNil }
func (nopClient) Ping(context.Context) error                         { return nil }
func (nopClient) Close() error                                       { return nil }

func TestProvideApp_ResolvesRouter(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cfg := &config.Config{
		Database:  config.DatabaseConfig{Driver: "sqlite", Database: filepath.Join(t.TempDir(), "warbler.db")},
		Snowflake: config.SnowflakeConfig{MachineID: 1},
		Follow:    config.FollowConfig{SelfFollow: "reject", Duplicate: "reject"},
	}

	c := dig.New()
	require.NoError(t, c.Provide(func() *config.Config { return cfg }))
	require.NoError(t, c.Provide(func() (*sqlx.DB, error) { return db.InitDB(cfg) }))
	require.NoError(t, c.Provide(func() redis.Client { return nopClient{} }))
	require.NoError(t, provideApp(c))

	err := c.Invoke(func(r *gin.Engine, opts service.Options, conn *sqlx.DB) {
		defer conn.Close()
		assert.NotNil(t, r)
		assert.Equal(t, service.SelfFollowReject, opts.Policy.SelfFollow)
		assert.Equal(t, service.DuplicateReject, opts.Policy.Duplicate)
	})
	require.NoError(t, err)
}
