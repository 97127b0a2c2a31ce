package main

import (
	"context"

	"github.com/sirupsen/logrus"

	"plume/internal/graph"
	"plume/internal/model"
	"plume/internal/pkg"
	"plume/internal/repository/mysql"
	"plume/internal/repository/redis"
	"plume/internal/router"
	"plume/internal/service"
)

func main() {
	cfg := pkg.LoadConfig()

	if err := mysql.InitDB(cfg.MySQLDSN); err != nil {
		logrus.Fatal("mysql init: ", err)
	}

	if err := redis.Init(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB); err != nil {
		logrus.Fatal("redis init: ", err)
	}
	defer redis.Close()

	// 自动建表（开发阶段 OK）
	if err := mysql.DB.AutoMigrate(
		&model.User{},
		&model.Post{},
		&model.Vote{},
		&model.EventOutbox{},
	); err != nil {
		logrus.Fatal("migrate: ", err)
	}

	users := service.NewUserService(mysql.DB, cfg.SMTP, cfg.WebOrigin, []byte(cfg.ResetSecret))
	posts := service.NewPostService(mysql.DB)
	votes := service.NewVoteService(mysql.DB)

	schema, err := graph.NewSchema(users, posts, votes)
	if err != nil {
		logrus.Fatal("schema: ", err)
	}

	// outbox 投递：配了 broker 走 Kafka，否则落日志
	sender := service.LogSender
	if len(cfg.KafkaBrokers) > 0 {
		producer := pkg.NewEventProducer(cfg.KafkaBrokers, cfg.KafkaTopic)
		defer producer.Close()
		sender = producer.Publish
	}
	relayCtx, cancelRelay := context.WithCancel(context.Background())
	defer cancelRelay()
	go service.NewOutboxRelayer(mysql.DB, sender).Run(relayCtx)

	sessions := &redis.SessionRepository{}
	r := router.InitRouter(schema, sessions, cfg.WebOrigin)
	if err := r.Run(cfg.ServerAddr); err != nil {
		logrus.Fatal("server: ", err)
	}
}
