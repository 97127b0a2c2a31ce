package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"time"

	"plume/internal/client/cache"
	"plume/internal/pkg"
)

// ErrNotAuthenticated 服务端抛出的认证错误，调用方据此跳转登录页
var ErrNotAuthenticated = errors.New("not authenticated")

// FieldError mutation 响应里的表单错误
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Client GraphQL 客户端：带 cookie 会话 + 规格化缓存。
// 查询先问缓存，缺页才回网络；mutation 成功后打补丁而不是重拉。
type Client struct {
	url   string
	http  *http.Client
	cache *cache.Store
}

func New(url string) (*Client, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	return &Client{
		url:   url,
		http:  &http.Client{Jar: jar, Timeout: 10 * time.Second},
		cache: cache.New(),
	}, nil
}

// Cache 暴露给测试和上层 UI 直读
func (c *Client) Cache() *cache.Store { return c.cache }

type gqlRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

type gqlError struct {
	Message string `json:"message"`
}

type gqlResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []gqlError      `json:"errors"`
}

func (c *Client) do(ctx context.Context, query string, vars map[string]any, out any) error {
	body, err := json.Marshal(gqlRequest{Query: query, Variables: vars})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	var envelope gqlResponse
	if err = json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return err
	}
	if len(envelope.Errors) > 0 {
		// 认证错误单独成一类，上层据此跳登录页
		if strings.Contains(envelope.Errors[0].Message, "not authenticated") {
			return ErrNotAuthenticated
		}
		return fmt.Errorf("graphql: %s", envelope.Errors[0].Message)
	}
	if out != nil {
		return json.Unmarshal(envelope.Data, out)
	}
	return nil
}

// ---- 线格式 ----

type wireUser struct {
	ID       uint64 `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

type wirePost struct {
	ID          uint64   `json:"id"`
	Title       string   `json:"title"`
	TextSnippet string   `json:"textSnippet"`
	Points      int64    `json:"points"`
	VoteStatus  *int     `json:"voteStatus"`
	Creator     wireUser `json:"creator"`
	CreatedAt   string   `json:"createdAt"`
}

func (w *wirePost) toCache() cache.Post {
	createdAt, _ := time.Parse(time.RFC3339Nano, w.CreatedAt)
	return cache.Post{
		ID:          w.ID,
		Title:       w.Title,
		TextSnippet: w.TextSnippet,
		Points:      w.Points,
		VoteStatus:  w.VoteStatus,
		CreatorID:   w.Creator.ID,
		Creator:     w.Creator.Username,
		CreatedAt:   createdAt,
	}
}

func toCacheUser(w *wireUser) *cache.User {
	if w == nil {
		return nil
	}
	return &cache.User{ID: w.ID, Username: w.Username, Email: w.Email}
}

// ---- 查询 ----

const postsQuery = `
query Posts($limit: Int!, $cursor: String) {
  posts(limit: $limit, cursor: $cursor) {
    hasMore
    posts {
      id
      title
      textSnippet
      points
      voteStatus
      createdAt
      creator { id username email }
    }
  }
}`

// PostsPage 合并后的一页（可能由多页缓存拼出）
type PostsPage struct {
	Posts   []cache.Post
	HasMore bool
}

// Posts 读时间流。命中完整缓存直接返回；缺页回网络并写回缓存。
func (c *Client) Posts(ctx context.Context, limit int, cursor string) (*PostsPage, error) {
	if cached := c.cache.ResolvePosts(limit, cursor); cached != nil && !cached.Partial {
		return &PostsPage{Posts: cached.Posts, HasMore: cached.HasMore}, nil
	}

	vars := map[string]any{"limit": limit}
	if cursor != "" {
		vars["cursor"] = cursor
	}
	var data struct {
		Posts struct {
			HasMore bool       `json:"hasMore"`
			Posts   []wirePost `json:"posts"`
		} `json:"posts"`
	}
	if err := c.do(ctx, postsQuery, vars, &data); err != nil {
		return nil, err
	}

	posts := make([]cache.Post, len(data.Posts.Posts))
	for i := range data.Posts.Posts {
		posts[i] = data.Posts.Posts[i].toCache()
	}
	c.cache.WritePage(limit, cursor, posts, data.Posts.HasMore)

	merged := c.cache.ResolvePosts(limit, cursor)
	return &PostsPage{Posts: merged.Posts, HasMore: merged.HasMore}, nil
}

// NextCursor 从当前最后一条帖子算下一页游标；没有更多时返回空串
func (p *PostsPage) NextCursor() string {
	if !p.HasMore || len(p.Posts) == 0 {
		return ""
	}
	last := p.Posts[len(p.Posts)-1]
	return pkg.EncodeCursor(last.CreatedAt, last.ID)
}

const meQuery = `
query Me {
  me { id username email }
}`

// Me 当前登录用户；nil 表示未登录。结果缓存，登录/登出补丁直接改写。
func (c *Client) Me(ctx context.Context) (*cache.User, error) {
	if user, ok := c.cache.ReadMe(); ok {
		return user, nil
	}

	var data struct {
		Me *wireUser `json:"me"`
	}
	if err := c.do(ctx, meQuery, nil, &data); err != nil {
		return nil, err
	}
	user := toCacheUser(data.Me)
	if user != nil {
		c.cache.Apply(cache.Patch{Kind: cache.PatchSetViewer, Viewer: user})
	} else {
		c.cache.Apply(cache.Patch{Kind: cache.PatchClearViewer})
	}
	return user, nil
}
