package seed

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"warbler/internal/dto"
	"warbler/internal/form"
	"warbler/internal/model"
	"warbler/internal/service"
	"warbler/pkg/db"
	log "warbler/pkg/logger"
)

// DefaultPassword 演示账号统一使用的密码
const DefaultPassword = "P@ssw0rd!"

// Config 生成数据的规模
type Config struct {
	Users           int
	FollowsPerUser  int // 每个用户关注其后的 N 个用户
	MessagesPerUser int
	Workers         int
	BatchSize       int // 每个事务内处理的用户数
	Password        string
}

// DefaultConfig 本地开发用的默认规模
func DefaultConfig() Config {
	return Config{
		Users:           100,
		FollowsPerUser:  5,
		MessagesPerUser: 3,
		Workers:         4,
		BatchSize:       20,
		Password:        DefaultPassword,
	}
}

// Result 生成结果统计
type Result struct {
	Users    int
	Follows  int
	Messages int
	Elapsed  time.Duration
}

// Seeder 通过 service 层批量写入演示数据，所有约束和策略与线上请求一致
type Seeder struct {
	conn     *sqlx.DB
	users    service.UserService
	messages service.MessageService
}

// NewSeeder 创建 Seeder
func NewSeeder(conn *sqlx.DB, users service.UserService, messages service.MessageService) *Seeder {
	return &Seeder{conn: conn, users: users, messages: messages}
}

// Username 第 i 个演示账号的用户名
func Username(i int) string {
	return fmt.Sprintf("user%06d", i+1)
}

// Run 依次生成用户、关注关系和消息
func (s *Seeder) Run(ctx context.Context, cfg Config) (*Result, error) {
	if cfg.Users <= 0 {
		return nil, errors.New("seed: user count must be positive")
	}
	// sqlite 同一时刻只允许一个写事务
	if cfg.Workers <= 0 || s.conn.DriverName() == "sqlite" {
		cfg.Workers = 1
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = cfg.Users
	}
	if cfg.Password == "" {
		cfg.Password = DefaultPassword
	}

	start := time.Now()
	ids := make([]uint64, cfg.Users)
	progress := newProgressTracker("用户", cfg.Users)

	// 1. 用户
	err := s.forEachBatch(ctx, cfg, func(ctx context.Context, tx *sqlx.Tx, i int) error {
		user, err := s.users.Signup(ctx, tx, &dto.SignupDTO{
			Username: Username(i),
			Email:    Username(i) + "@example.com",
			Password: cfg.Password,
			Bio:      fmt.Sprintf("Demo account #%d", i+1),
		})
		if err != nil {
			return fmt.Errorf("create %s: %w", Username(i), err)
		}
		ids[i] = user.ID
		return nil
	}, progress)
	if err != nil {
		return nil, err
	}
	progress.finish()

	// 2. 关注关系：环形关注其后的 FollowsPerUser 个用户
	follows := min(cfg.FollowsPerUser, cfg.Users-1)
	if follows > 0 {
		progress = newProgressTracker("关注", cfg.Users)
		err = s.forEachBatch(ctx, cfg, func(ctx context.Context, tx *sqlx.Tx, i int) error {
			for k := 1; k <= follows; k++ {
				if err := s.users.Follow(ctx, tx, ids[i], ids[(i+k)%cfg.Users]); err != nil {
					return fmt.Errorf("follow from %s: %w", Username(i), err)
				}
			}
			return nil
		}, progress)
		if err != nil {
			return nil, err
		}
		progress.finish()
	}

	// 3. 消息
	if cfg.MessagesPerUser > 0 {
		progress = newProgressTracker("消息", cfg.Users)
		err = s.forEachBatch(ctx, cfg, func(ctx context.Context, tx *sqlx.Tx, i int) error {
			for k := 0; k < cfg.MessagesPerUser; k++ {
				text := fmt.Sprintf("Hello from %s, message %d", Username(i), k+1)
				if _, err := s.messages.Create(ctx, tx, ids[i], &form.MessageForm{Text: text}); err != nil {
					return fmt.Errorf("post as %s: %w", Username(i), err)
				}
			}
			return nil
		}, progress)
		if err != nil {
			return nil, err
		}
		progress.finish()
	}

	return &Result{
		Users:    cfg.Users,
		Follows:  cfg.Users * max(follows, 0),
		Messages: cfg.Users * max(cfg.MessagesPerUser, 0),
		Elapsed:  time.Since(start),
	}, nil
}

// forEachBatch 按批切分 [0, Users)，每批一个事务，最多 Workers 个批次并发
func (s *Seeder) forEachBatch(ctx context.Context, cfg Config, fn func(context.Context, *sqlx.Tx, int) error, progress *progressTracker) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Workers)

	for lo := 0; lo < cfg.Users; lo += cfg.BatchSize {
		hi := min(lo+cfg.BatchSize, cfg.Users)
		g.Go(func() error {
			err := db.Transact(ctx, s.conn, func(tx *sqlx.Tx) error {
				for i := lo; i < hi; i++ {
					if err := fn(ctx, tx, i); err != nil {
						return err
					}
				}
				return nil
			})
			if err != nil {
				return err
			}
			progress.add(hi - lo)
			return nil
		})
	}
	return g.Wait()
}

// ============================================================================
// 进度显示
// ============================================================================

type progressTracker struct {
	mu        sync.Mutex
	stage     string
	total     int
	current   int
	startTime time.Time
}

func newProgressTracker(stage string, total int) *progressTracker {
	return &progressTracker{stage: stage, total: total, startTime: time.Now()}
}

func (p *progressTracker) add(n int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.current += n
	log.Debug("生成进度",
		zap.String("stage", p.stage),
		zap.Int("current", p.current),
		zap.Int("total", p.total),
		zap.Float64("percent", float64(p.current)/float64(p.total)*100))
}

func (p *progressTracker) finish() {
	p.mu.Lock()
	defer p.mu.Unlock()

	log.Info("阶段完成",
		zap.String("stage", p.stage),
		zap.Int("total", p.total),
		zap.Duration("elapsed", time.Since(p.startTime)))
}

// Users 返回演示账号（按用户名顺序）
func (s *Seeder) Users(ctx context.Context, n int) ([]*model.User, error) {
	users := make([]*model.User, 0, n)
	for i := 0; i < n; i++ {
		user, err := s.users.GetByUsername(ctx, s.conn, Username(i))
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, nil
}
