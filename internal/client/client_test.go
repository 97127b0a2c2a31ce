package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"plume/internal/pkg"
)

// stubServer 假 GraphQL 服务端：按操作名回放固定响应并统计网络请求数
type stubServer struct {
	*httptest.Server
	calls     map[string]int
	responses map[string]string
}

func newStubServer(t *testing.T) *stubServer {
	t.Helper()
	s := &stubServer{
		calls:     make(map[string]int),
		responses: make(map[string]string),
	}
	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Query string `json:"query"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		for op, body := range s.responses {
			if strings.Contains(req.Query, op) {
				s.calls[op]++
				w.Header().Set("Content-Type", "application/json")
				fmt.Fprint(w, body)
				return
			}
		}
		t.Errorf("unexpected query: %s", req.Query)
		http.Error(w, "unexpected query", http.StatusBadRequest)
	}))
	t.Cleanup(s.Close)
	return s
}

func wirePostJSON(id uint64, points int64, createdAt time.Time) string {
	return fmt.Sprintf(`{
		"id": %d, "title": "post-%d", "textSnippet": "snippet", "points": %d,
		"voteStatus": null, "createdAt": %q,
		"creator": {"id": 1, "username": "alice", "email": "alice@test.local"}
	}`, id, id, points, createdAt.Format(time.RFC3339Nano))
}

func postsResponse(hasMore bool, posts ...string) string {
	return fmt.Sprintf(`{"data": {"posts": {"hasMore": %t, "posts": [%s]}}}`,
		hasMore, strings.Join(posts, ","))
}

func TestPostsCacheHit(t *testing.T) {
	srv := newStubServer(t)
	at := time.UnixMilli(1_700_000_000_000)
	srv.responses["query Posts"] = postsResponse(false, wirePostJSON(2, 0, at.Add(time.Millisecond)), wirePostJSON(1, 0, at))

	c, err := New(srv.URL)
	require.NoError(t, err)
	ctx := context.Background()

	page, err := c.Posts(ctx, 10, "")
	require.NoError(t, err)
	require.Len(t, page.Posts, 2)
	assert.Equal(t, 1, srv.calls["query Posts"])

	// 第二次读同一页走缓存，不再碰网络
	page, err = c.Posts(ctx, 10, "")
	require.NoError(t, err)
	assert.Len(t, page.Posts, 2)
	assert.Equal(t, 1, srv.calls["query Posts"])
	assert.False(t, page.HasMore)
	assert.Empty(t, page.NextCursor())
}

func TestPostsPaginationMerge(t *testing.T) {
	srv := newStubServer(t)
	at := time.UnixMilli(1_700_000_000_000)
	srv.responses["query Posts"] = postsResponse(true, wirePostJSON(4, 0, at.Add(3*time.Millisecond)), wirePostJSON(3, 0, at.Add(2*time.Millisecond)))

	c, err := New(srv.URL)
	require.NoError(t, err)
	ctx := context.Background()

	page, err := c.Posts(ctx, 2, "")
	require.NoError(t, err)
	require.Len(t, page.Posts, 2)
	assert.True(t, page.HasMore)

	cursor := page.NextCursor()
	require.NotEmpty(t, cursor)
	gotAt, gotID, err := pkg.DecodeCursor(cursor)
	require.NoError(t, err)
	assert.Equal(t, uint64(3), gotID)
	assert.True(t, gotAt.Equal(at.Add(2*time.Millisecond)))

	// 翻下一页：两页在缓存里拼成一个列表
	srv.responses["query Posts"] = postsResponse(false, wirePostJSON(2, 0, at.Add(time.Millisecond)), wirePostJSON(1, 0, at))
	page, err = c.Posts(ctx, 2, cursor)
	require.NoError(t, err)
	assert.Equal(t, 2, srv.calls["query Posts"])

	ids := make([]uint64, len(page.Posts))
	for i, p := range page.Posts {
		ids[i] = p.ID
	}
	assert.Equal(t, []uint64{4, 3, 2, 1}, ids)
	assert.False(t, page.HasMore)
}

func TestVotePatchesCachedPost(t *testing.T) {
	srv := newStubServer(t)
	at := time.UnixMilli(1_700_000_000_000)
	srv.responses["query Posts"] = postsResponse(false, wirePostJSON(1, 0, at))
	srv.responses["mutation Vote"] = `{"data": {"vote": true}}`

	c, err := New(srv.URL)
	require.NoError(t, err)
	ctx := context.Background()

	_, err = c.Posts(ctx, 10, "")
	require.NoError(t, err)

	ok, err := c.Vote(ctx, 1, 1)
	require.NoError(t, err)
	assert.True(t, ok)

	// 缓存里的帖子被就地改写，重读不回源
	page, err := c.Posts(ctx, 10, "")
	require.NoError(t, err)
	require.Len(t, page.Posts, 1)
	assert.Equal(t, int64(1), page.Posts[0].Points)
	require.NotNil(t, page.Posts[0].VoteStatus)
	assert.Equal(t, 1, *page.Posts[0].VoteStatus)
	assert.Equal(t, 1, srv.calls["query Posts"])
}

func TestCreatePostInvalidatesCachedFeed(t *testing.T) {
	srv := newStubServer(t)
	at := time.UnixMilli(1_700_000_000_000)
	srv.responses["query Posts"] = postsResponse(false, wirePostJSON(1, 0, at))
	srv.responses["mutation CreatePost"] = fmt.Sprintf(
		`{"data": {"createPost": {"errors": null, "post": %s}}}`,
		wirePostJSON(2, 0, at.Add(time.Millisecond)))

	c, err := New(srv.URL)
	require.NoError(t, err)
	ctx := context.Background()

	_, err = c.Posts(ctx, 10, "")
	require.NoError(t, err)
	assert.Equal(t, 1, srv.calls["query Posts"])

	post, fieldErrs, err := c.CreatePost(ctx, "title", "text")
	require.NoError(t, err)
	require.Empty(t, fieldErrs)
	assert.Equal(t, uint64(2), post.ID)

	// 建帖作废列表缓存，下一次读必须回源
	srv.responses["query Posts"] = postsResponse(false, wirePostJSON(2, 0, at.Add(time.Millisecond)), wirePostJSON(1, 0, at))
	page, err := c.Posts(ctx, 10, "")
	require.NoError(t, err)
	assert.Equal(t, 2, srv.calls["query Posts"])
	assert.Len(t, page.Posts, 2)
}

func TestCreatePostFieldErrors(t *testing.T) {
	srv := newStubServer(t)
	srv.responses["mutation CreatePost"] = `{"data": {"createPost": {
		"errors": [{"field": "title", "message": "title cannot be empty"}], "post": null}}}`

	c, err := New(srv.URL)
	require.NoError(t, err)

	post, fieldErrs, err := c.CreatePost(context.Background(), "", "text")
	require.NoError(t, err)
	assert.Nil(t, post)
	require.Len(t, fieldErrs, 1)
	assert.Equal(t, "title", fieldErrs[0].Field)
}

func TestDeletePostEvictsFromCache(t *testing.T) {
	srv := newStubServer(t)
	at := time.UnixMilli(1_700_000_000_000)
	srv.responses["query Posts"] = postsResponse(false, wirePostJSON(2, 0, at.Add(time.Millisecond)), wirePostJSON(1, 0, at))
	srv.responses["mutation DeletePost"] = `{"data": {"deletePost": true}}`

	c, err := New(srv.URL)
	require.NoError(t, err)
	ctx := context.Background()

	_, err = c.Posts(ctx, 10, "")
	require.NoError(t, err)

	ok, err := c.DeletePost(ctx, 2)
	require.NoError(t, err)
	assert.True(t, ok)

	page, err := c.Posts(ctx, 10, "")
	require.NoError(t, err)
	require.Len(t, page.Posts, 1)
	assert.Equal(t, uint64(1), page.Posts[0].ID)
	assert.Equal(t, 1, srv.calls["query Posts"])
}

func TestMeCachesViewer(t *testing.T) {
	srv := newStubServer(t)
	srv.responses["query Me"] = `{"data": {"me": {"id": 7, "username": "alice", "email": "alice@test.local"}}}`

	c, err := New(srv.URL)
	require.NoError(t, err)
	ctx := context.Background()

	me, err := c.Me(ctx)
	require.NoError(t, err)
	require.NotNil(t, me)
	assert.Equal(t, "alice", me.Username)
	assert.Equal(t, 1, srv.calls["query Me"])

	_, err = c.Me(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, srv.calls["query Me"])
}

// 未登录的 me 也要缓存，不能每次都回源确认一遍
func TestMeCachesAnonymous(t *testing.T) {
	srv := newStubServer(t)
	srv.responses["query Me"] = `{"data": {"me": null}}`

	c, err := New(srv.URL)
	require.NoError(t, err)
	ctx := context.Background()

	me, err := c.Me(ctx)
	require.NoError(t, err)
	assert.Nil(t, me)

	_, err = c.Me(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, srv.calls["query Me"])
}

func TestLoginUpdatesViewer(t *testing.T) {
	srv := newStubServer(t)
	srv.responses["mutation Login"] = `{"data": {"login": {
		"errors": [{"field": "password", "message": "incorrect password"}], "user": null}}}`
	srv.responses["query Me"] = `{"data": {"me": null}}`

	c, err := New(srv.URL)
	require.NoError(t, err)
	ctx := context.Background()

	_, fieldErrs, err := c.Login(ctx, "alice", "wrong")
	require.NoError(t, err)
	require.Len(t, fieldErrs, 1)
	assert.Equal(t, "password", fieldErrs[0].Field)

	// 失败的登录不动 viewer 缓存
	me, err := c.Me(ctx)
	require.NoError(t, err)
	assert.Nil(t, me)

	srv.responses["mutation Login"] = `{"data": {"login": {"errors": null,
		"user": {"id": 7, "username": "alice", "email": "alice@test.local"}}}}`
	user, fieldErrs, err := c.Login(ctx, "alice", "secret")
	require.NoError(t, err)
	require.Empty(t, fieldErrs)
	require.NotNil(t, user)

	// 成功登录直接改写缓存的 me，不回源
	me, err = c.Me(ctx)
	require.NoError(t, err)
	require.NotNil(t, me)
	assert.Equal(t, uint64(7), me.ID)
	assert.Equal(t, 1, srv.calls["query Me"])
}

func TestLogoutClearsViewer(t *testing.T) {
	srv := newStubServer(t)
	srv.responses["mutation Logout"] = `{"data": {"logout": true}}`
	srv.responses["query Me"] = `{"data": {"me": {"id": 7, "username": "alice", "email": "alice@test.local"}}}`

	c, err := New(srv.URL)
	require.NoError(t, err)
	ctx := context.Background()

	_, err = c.Me(ctx)
	require.NoError(t, err)

	require.NoError(t, c.Logout(ctx))

	me, err := c.Me(ctx)
	require.NoError(t, err)
	assert.Nil(t, me)
	assert.Equal(t, 1, srv.calls["query Me"])
}

func TestNotAuthenticatedError(t *testing.T) {
	srv := newStubServer(t)
	srv.responses["mutation CreatePost"] = `{"data": null, "errors": [{"message": "not authenticated"}]}`

	c, err := New(srv.URL)
	require.NoError(t, err)

	_, _, err = c.CreatePost(context.Background(), "title", "text")
	assert.True(t, errors.Is(err, ErrNotAuthenticated))
}
