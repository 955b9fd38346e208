package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"warbler/config"
	"warbler/internal/repository"
	"warbler/internal/seed"
	"warbler/internal/service"
	"warbler/pkg/db"
	log "warbler/pkg/logger"
)

func main() {
	defaults := seed.DefaultConfig()

	configPath := flag.String("config", "config/config.yaml", "配置文件路径")
	users := flag.Int("users", defaults.Users, "用户数量")
	follows := flag.Int("follows", defaults.FollowsPerUser, "每个用户关注的人数")
	messages := flag.Int("messages", defaults.MessagesPerUser, "每个用户发布的消息数")
	workers := flag.Int("workers", defaults.Workers, "并发 worker 数量")
	batchSize := flag.Int("batch", defaults.BatchSize, "每个事务处理的用户数")
	password := flag.String("password", defaults.Password, "演示账号密码")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		os.Exit(1)
	}
	if err := log.Init(&log.Config{Level: cfg.Log.Level, Output: "stdout"}); err != nil {
		fmt.Fprintf(os.Stderr, "初始化日志失败: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	conn, err := db.InitDB(cfg)
	if err != nil {
		log.Fatal("连接数据库失败", zap.Error(err))
	}
	defer conn.Close()

	ctx := context.Background()
	if err := db.CreateSchema(ctx, conn); err != nil {
		log.Fatal("初始化数据库表失败", zap.Error(err))
	}

	idGen, err := db.NewSnowflake(cfg.Snowflake.MachineID)
	if err != nil {
		log.Fatal("初始化ID生成器失败", zap.Error(err))
	}

	// 不经过 Redis，生成数据时不需要缓存
	userRepo := repository.NewUserRepository()
	userService := service.NewUserService(userRepo, repository.NewFollowRepository(), idGen, nil, service.NewOptions(cfg))
	messageService := service.NewMessageService(repository.NewMessageRepository(), userRepo, idGen)

	result, err := seed.NewSeeder(conn, userService, messageService).Run(ctx, seed.Config{
		Users:           *users,
		FollowsPerUser:  *follows,
		MessagesPerUser: *messages,
		Workers:         *workers,
		BatchSize:       *batchSize,
		Password:        *password,
	})
	if err != nil {
		log.Fatal("生成演示数据失败", zap.Error(err))
	}

	log.Info("演示数据生成完成",
		zap.Int("users", result.Users),
		zap.Int("follows", result.Follows),
		zap.Int("messages", result.Messages),
		zap.Duration("elapsed", result.Elapsed),
		zap.String("first_user", seed.Username(0)),
	)
}
