package router

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/graphql-go/graphql"
	"golang.org/x/time/rate"

	"plume/internal/handler"
	"plume/internal/middleware"
	"plume/internal/repository/redis"
)

func InitRouter(schema graphql.Schema, sessions *redis.SessionRepository, webOrigin string) *gin.Engine {
	r := gin.Default()

	// 浏览器端带 cookie 跨域访问，必须 AllowCredentials + 指定来源
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{webOrigin},
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type"},
		AllowCredentials: true,
	}))

	gql := handler.NewGraphQLHandler(schema, sessions)
	r.POST("/graphql",
		middleware.RateLimitMiddleware(rate.Limit(20), 40),
		middleware.SessionMiddleware(sessions),
		gql.Handle,
	)

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"msg": "ok"})
	})

	return r
}
