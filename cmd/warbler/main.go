package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"warbler/config"
	"warbler/pkg/container"
	"warbler/pkg/db"
	log "warbler/pkg/logger"
	"warbler/pkg/redis"
)

var (
	configPath = flag.String("config", "config/config.yaml", "配置文件路径")
)

func main() {
	// 解析命令行参数
	flag.Parse()

	// 1. 加载配置
	cfg, err := config.Load(*configPath)
	if err != nil {
		panic("加载配置失败: " + err.Error())
	}

	// 2. 初始化日志
	logConfig := &log.Config{
		Level:    cfg.Log.Level,
		Output:   cfg.Log.Output,
		FilePath: cfg.Log.FilePath,
	}
	if err := log.Init(logConfig); err != nil {
		panic("初始化日志失败: " + err.Error())
	}
	defer log.Sync()

	log.Info("Warbler 启动中...", zap.String("config_path", *configPath))

	// 3. 初始化依赖注入容器
	if err := container.Init(cfg); err != nil {
		log.Fatal("初始化容器失败", zap.Error(err))
	}

	// 4. 建表（已存在时跳过）
	err = container.Invoke(func(conn *sqlx.DB) error {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return db.CreateSchema(ctx, conn)
	})
	if err != nil {
		log.Fatal("初始化数据库表失败", zap.Error(err))
	}

	// 5. 启动 HTTP Server 并等待退出信号
	err = container.Invoke(func(r *gin.Engine, conn *sqlx.DB, rdb redis.Client) {
		defer conn.Close()
		defer rdb.Close()
		serve(cfg, r)
	})
	if err != nil {
		log.Fatal("启动失败", zap.Error(err))
	}
}

// serve 运行 HTTP Server，收到 SIGINT/SIGTERM 后优雅关闭
func serve(cfg *config.Config, r *gin.Engine) {
	srv := &http.Server{
		Addr:              cfg.Server.GetHTTPAddr(),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Info("HTTP Server 启动成功",
			zap.String("addr", srv.Addr),
			zap.String("mode", cfg.Server.Mode))

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("启动 HTTP Server 失败", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("收到退出信号，开始优雅关闭...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("HTTP Server 关闭超时", zap.Error(err))
	}

	log.Info("HTTP Server 已关闭")
}
