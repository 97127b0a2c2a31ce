package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// Client 全局客户端。库里只放会话 token 这一类小键，
// 每个请求一次点查，超时收紧到 1s，断连时快速重试两次。
var Client *redis.Client

const pingTimeout = 3 * time.Second

func Init(addr, password string, db int) error {
	Client = redis.NewClient(&redis.Options{
		Addr:            addr,
		Password:        password,
		DB:              db,
		DialTimeout:     5 * time.Second,
		ReadTimeout:     time.Second,
		WriteTimeout:    time.Second,
		PoolSize:        20,
		MinIdleConns:    4,
		MaxRetries:      2,
		MinRetryBackoff: 8 * time.Millisecond,
	})

	// 起服即探活，会话存储不可用时直接拒绝启动
	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	return Client.Ping(ctx).Err()
}

// Close 程序退出时调用
func Close() error {
	if Client == nil {
		return nil
	}
	return Client.Close()
}
