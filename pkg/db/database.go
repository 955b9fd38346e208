package db

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq" // PostgreSQL 驱动
	"go.uber.org/zap"
	_ "modernc.org/sqlite" // SQLite 驱动（纯 Go）

	"warbler/config"
	log "warbler/pkg/logger"
)

// DriverName 将配置中的驱动别名转换为 database/sql 注册的驱动名
func DriverName(driver string) (string, error) {
	switch driver {
	case "mysql":
		return "mysql", nil
	case "postgres", "pgsql":
		return "postgres", nil
	case "sqlite", "sqlite3":
		return "sqlite", nil
	default:
		return "", fmt.Errorf("不支持的数据库驱动: %s", driver)
	}
}

// InitDB 初始化数据库连接（使用 sqlx）
func InitDB(cfg *config.Config) (*sqlx.DB, error) {
	log.Info("开始初始化数据库连接",
		zap.String("driver", cfg.Database.Driver),
		zap.String("host", cfg.Database.Host),
		zap.String("database", cfg.Database.Database),
	)

	driverName, err := DriverName(cfg.Database.Driver)
	if err != nil {
		log.Error("不支持的数据库驱动", zap.String("driver", cfg.Database.Driver))
		return nil, err
	}

	if driverName == "sqlite" && cfg.Database.URL == "" {
		if err := ensureDir(cfg.Database.Database); err != nil {
			return nil, fmt.Errorf("创建数据库目录失败: %w", err)
		}
	}

	db, err := sqlx.Connect(driverName, cfg.Database.GetDSN())
	if err != nil {
		log.Error("连接数据库失败",
			zap.Error(err),
			zap.String("driver", cfg.Database.Driver),
			zap.String("host", cfg.Database.Host),
		)
		return nil, fmt.Errorf("连接数据库失败: %w", err)
	}

	log.Debug("配置数据库连接池",
		zap.Int("max_open_conns", cfg.Database.MaxOpenConns),
		zap.Int("max_idle_conns", cfg.Database.MaxIdleConns),
		zap.Int("conn_max_lifetime", cfg.Database.ConnMaxLifetime),
	)
	if cfg.Database.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	}
	if cfg.Database.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	}
	if cfg.Database.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(time.Duration(cfg.Database.ConnMaxLifetime) * time.Second)
	}

	log.Info("数据库连接成功",
		zap.String("driver", driverName),
		zap.String("database", cfg.Database.Database),
	)

	return db, nil
}

// ensureDir 确保 sqlite 文件所在目录存在
func ensureDir(path string) error {
	path = strings.TrimPrefix(path, "file:")
	if path == "" || path == ":memory:" {
		return nil
	}
	dir := filepath.Dir(path)
	if dir == "." {
		return nil
	}
	return os.MkdirAll(dir, 0755)
}
