package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/graphql-go/graphql"

	"plume/internal/graph"
	"plume/internal/middleware"
	"plume/internal/repository/redis"
)

type GraphQLHandler struct {
	schema   graphql.Schema
	sessions *redis.SessionRepository
}

func NewGraphQLHandler(schema graphql.Schema, sessions *redis.SessionRepository) *GraphQLHandler {
	return &GraphQLHandler{schema: schema, sessions: sessions}
}

type graphQLRequest struct {
	Query         string         `json:"query"`
	OperationName string         `json:"operationName"`
	Variables     map[string]any `json:"variables"`
}

// Handle 单一 GraphQL 入口。每个请求构造一份 Identity 挂进 context，
// resolver 通过它读登录态、建立或销毁会话。
func (h *GraphQLHandler) Handle(c *gin.Context) {
	var req graphQLRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"msg": "invalid params"})
		return
	}

	identity := &sessionIdentity{gin: c, sessions: h.sessions}
	if v, ok := c.Get(middleware.ContextUserIDKey); ok {
		identity.userID = v.(uint64)
	}

	result := graphql.Do(graphql.Params{
		Schema:         h.schema,
		RequestString:  req.Query,
		OperationName:  req.OperationName,
		VariableValues: req.Variables,
		Context:        graph.WithIdentity(c.Request.Context(), identity),
	})
	c.JSON(http.StatusOK, result)
}

// sessionIdentity graph.Identity 的 cookie + redis 实现，生命周期 = 一次请求
type sessionIdentity struct {
	gin      *gin.Context
	sessions *redis.SessionRepository
	userID   uint64
}

func (s *sessionIdentity) UserID() uint64 { return s.userID }

func (s *sessionIdentity) Login(ctx context.Context, userID uint64) error {
	token, err := s.sessions.Create(ctx, userID)
	if err != nil {
		return err
	}
	s.gin.SetSameSite(http.SameSiteLaxMode)
	s.gin.SetCookie(middleware.SessionCookie, token,
		int(redis.SessionTTL.Seconds()), "/", "", false, true)
	s.userID = userID
	return nil
}

func (s *sessionIdentity) Logout(ctx context.Context) error {
	if token, err := s.gin.Cookie(middleware.SessionCookie); err == nil && token != "" {
		if err := s.sessions.Delete(ctx, token); err != nil {
			return err
		}
	}
	s.gin.SetSameSite(http.SameSiteLaxMode)
	s.gin.SetCookie(middleware.SessionCookie, "", -1, "/", "", false, true)
	s.userID = 0
	return nil
}
