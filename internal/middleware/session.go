package middleware

import (
	"github.com/gin-gonic/gin"

	"plume/internal/repository/redis"
)

const (
	ContextUserIDKey = "user_id"
	SessionCookie    = "sid"
)

// SessionMiddleware 解析会话 cookie 并把 userID 放进请求上下文。
// 未登录请求照常放行，是否要求登录由 resolver 决定。
func SessionMiddleware(sessions *redis.SessionRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(SessionCookie)
		if err == nil && token != "" {
			if userID, err := sessions.Get(c.Request.Context(), token); err == nil {
				// 滑动续期
				_ = sessions.Extend(c.Request.Context(), token)
				c.Set(ContextUserIDKey, userID)
			}
		}
		c.Next()
	}
}
