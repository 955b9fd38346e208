package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"warbler/config"
	log "warbler/pkg/logger"
)

// ErrNil 键不存在
var ErrNil = redis.Nil

// IsNil 判断错误是否为键不存在
func IsNil(err error) bool {
	return errors.Is(err, redis.Nil)
}

// Client Redis客户端接口，只暴露会话、限流和缓存需要的命令
type Client interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	GetUint64(ctx context.Context, key string) (uint64, error)
	Del(ctx context.Context, keys ...string) error
	Expire(ctx context.Context, key string, expiration time.Duration) error
	Incr(ctx context.Context, key string) (int64, error)

	// SetJSON 序列化为JSON后写入
	SetJSON(ctx context.Context, key string, value interface{}, expiration time.Duration) error

	// GetJSON 读取并反序列化，键不存在时返回 ErrNil
	GetJSON(ctx context.Context, key string, dest interface{}) error

	Ping(ctx context.Context) error
	Close() error
}

type redisClient struct {
	rdb *redis.Client
}

// NewClient 包装已有的 go-redis 客户端
func NewClient(rdb *redis.Client) Client {
	return &redisClient{rdb: rdb}
}

// InitRedis 初始化Redis连接
func InitRedis(cfg *config.Config) (Client, error) {
	log.Info("开始初始化Redis连接",
		zap.String("addr", cfg.Redis.GetAddr()),
		zap.Int("db", cfg.Redis.DB),
	)

	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Redis.GetAddr(),
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.DB,
		PoolSize:     cfg.Redis.PoolSize,
		MinIdleConns: cfg.Redis.MinIdleConns,
		MaxRetries:   cfg.Redis.MaxRetries,
		DialTimeout:  cfg.Redis.GetDialTimeout(),
		ReadTimeout:  cfg.Redis.GetReadTimeout(),
		WriteTimeout: cfg.Redis.GetWriteTimeout(),
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Error("Redis连接测试失败", zap.Error(err))
		_ = rdb.Close()
		return nil, fmt.Errorf("Redis连接失败: %w", err)
	}

	log.Info("Redis连接成功", zap.String("addr", cfg.Redis.GetAddr()))
	return NewClient(rdb), nil
}

func (r *redisClient) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	return r.rdb.Set(ctx, key, value, expiration).Err()
}

func (r *redisClient) Get(ctx context.Context, key string) (string, error) {
	return r.rdb.Get(ctx, key).Result()
}

func (r *redisClient) GetUint64(ctx context.Context, key string) (uint64, error) {
	return r.rdb.Get(ctx, key).Uint64()
}

func (r *redisClient) Del(ctx context.Context, keys ...string) error {
	return r.rdb.Del(ctx, keys...).Err()
}

func (r *redisClient) Expire(ctx context.Context, key string, expiration time.Duration) error {
	return r.rdb.Expire(ctx, key, expiration).Err()
}

func (r *redisClient) Incr(ctx context.Context, key string) (int64, error) {
	return r.rdb.Incr(ctx, key).Result()
}

func (r *redisClient) SetJSON(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("JSON序列化失败: %w", err)
	}
	return r.Set(ctx, key, data, expiration)
}

func (r *redisClient) GetJSON(ctx context.Context, key string, dest interface{}) error {
	data, err := r.rdb.Get(ctx, key).Bytes()
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("JSON反序列化失败: %w", err)
	}
	return nil
}

func (r *redisClient) Ping(ctx context.Context) error {
	return r.rdb.Ping(ctx).Err()
}

func (r *redisClient) Close() error {
	return r.rdb.Close()
}
