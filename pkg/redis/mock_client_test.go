package redis

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"
)

// MockClient Client 的 testify mock
type MockClient struct {
	mock.Mock
}

func (m *MockClient) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	return m.Called(ctx, key, value, expiration).Error(0)
}

func (m *MockClient) Get(ctx context.Context, key string) (string, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Error(1)
}

func (m *MockClient) GetUint64(ctx context.Context, key string) (uint64, error) {
	args := m.Called(ctx, key)
	return args.Get(0).(uint64), args.Error(1)
}

func (m *MockClient) Del(ctx context.Context, keys ...string) error {
	return m.Called(ctx, keys).Error(0)
}

func (m *MockClient) Expire(ctx context.Context, key string, expiration time.Duration) error {
	return m.Called(ctx, key, expiration).Error(0)
}

func (m *MockClient) Incr(ctx context.Context, key string) (int64, error) {
	args := m.Called(ctx, key)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockClient) SetJSON(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	return m.Called(ctx, key, value, expiration).Error(0)
}

func (m *MockClient) GetJSON(ctx context.Context, key string, dest interface{}) error {
	args := m.Called(ctx, key, dest)
	if fn, ok := args.Get(0).(func(dest interface{}) error); ok {
		return fn(dest)
	}
	return args.Error(0)
}

func (m *MockClient) Ping(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *MockClient) Close() error {
	return m.Called().Error(0)
}
