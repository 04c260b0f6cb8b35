package main

import (
	"context"
	"os/signal"
	"syscall"

	"yatube/internal/config"
	"yatube/internal/model"
	"yatube/internal/pkg"
	"yatube/internal/pkg/storage"
	"yatube/internal/repository/mysql"
	"yatube/internal/repository/redis"
	"yatube/internal/router"
	"yatube/internal/service"
)

func main() {
	cfg := config.Load()
	pkg.InitLogger(cfg.LogLevel, false)

	if err := mysql.InitDB(cfg.MySQLDSN); err != nil {
		panic(err)
	}

	if err := redis.Init(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB); err != nil {
		panic(err)
	}

	// 自动建表（开发阶段 OK）
	if err := mysql.DB.AutoMigrate(
		&model.User{},
		&model.Group{},
		&model.Post{},
		&model.Comment{},
		&model.Follow{},
		&model.FollowOutbox{},
	); err != nil {
		panic(err)
	}

	var media storage.Storage
	switch cfg.MediaDriver {
	case "s3":
		media = storage.NewS3Storage(storage.S3Config{
			Endpoint:  cfg.S3Endpoint,
			Region:    cfg.S3Region,
			Bucket:    cfg.S3Bucket,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
			PublicURL: cfg.S3PublicURL,
		})
	default:
		media = storage.NewLocalStorage(cfg.MediaDir, cfg.MediaURLPrefix)
	}

	// 关注事件投递：配置了 kafka 就发 kafka，否则只落日志
	sender := service.LogSender
	if len(cfg.KafkaBrokers) > 0 {
		producer := pkg.NewFollowEventProducer(cfg.KafkaBrokers, cfg.KafkaTopic)
		defer producer.Close()
		sender = service.KafkaSender(producer)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	relayer := service.NewOutboxRelayer(mysql.DB, sender)
	go relayer.Run(ctx)

	r := router.InitRouter(cfg, mysql.DB, media)

	pkg.Logger.Info().Str("addr", cfg.HTTPAddr).Msg("starting server")
	if err := r.Run(cfg.HTTPAddr); err != nil {
		panic(err)
	}
}
