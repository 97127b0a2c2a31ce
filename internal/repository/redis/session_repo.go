package redis

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	ErrSessionNotFound  = errors.New("session not found")
	ErrRedisUnavailable = errors.New("redis unavailable")
)

const (
	SessionKeyPrefix = "session:sid"
	SessionTTL       = 7 * 24 * time.Hour
)

// SessionRepository 会话存储：不透明 token -> userID。
// token 按会话而不是按用户做 key，同一用户可以同时保有多个登录态。
type SessionRepository struct{}

func sessionKey(token string) string {
	return fmt.Sprintf("%s:%s", SessionKeyPrefix, token)
}

// Create 生成随机 token 并写入映射
func (r *SessionRepository) Create(ctx context.Context, userID uint64) (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	token := hex.EncodeToString(buf)
	if err := Client.Set(ctx, sessionKey(token), userID, SessionTTL).Err(); err != nil {
		return "", ErrRedisUnavailable
	}
	return token, nil
}

func (r *SessionRepository) Get(ctx context.Context, token string) (uint64, error) {
	val, err := Client.Get(ctx, sessionKey(token)).Result()
	if errors.Is(err, redis.Nil) {
		return 0, ErrSessionNotFound
	}
	if err != nil {
		return 0, ErrRedisUnavailable
	}
	userID, err := strconv.ParseUint(val, 10, 64)
	if err != nil {
		return 0, ErrSessionNotFound
	}
	return userID, nil
}

// Extend 滑动续期：每次校验通过后重置过期时间
func (r *SessionRepository) Extend(ctx context.Context, token string) error {
	return Client.Expire(ctx, sessionKey(token), SessionTTL).Err()
}

func (r *SessionRepository) Delete(ctx context.Context, token string) error {
	return Client.Del(ctx, sessionKey(token)).Err()
}
