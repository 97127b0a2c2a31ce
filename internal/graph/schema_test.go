package graph

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/graphql-go/graphql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"plume/internal/model"
	"plume/internal/pkg"
	"plume/internal/service"
)

// testIdentity 测试用请求身份：记录 Login/Logout 调用，不碰真会话
type testIdentity struct {
	userID    uint64
	loggedIn  []uint64
	loggedOut bool
}

func (t *testIdentity) UserID() uint64 { return t.userID }

func (t *testIdentity) Login(_ context.Context, userID uint64) error {
	t.userID = userID
	t.loggedIn = append(t.loggedIn, userID)
	return nil
}

func (t *testIdentity) Logout(context.Context) error {
	t.userID = 0
	t.loggedOut = true
	return nil
}

type testEnv struct {
	schema graphql.Schema
	db     *gorm.DB
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	dsn := fmt.Sprintf("file:graph_%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&model.User{}, &model.Post{}, &model.Vote{}, &model.EventOutbox{},
	))

	users := service.NewUserService(db, pkg.SMTPConfig{}, "http://localhost:3000", []byte("test-secret"))
	schema, err := NewSchema(users, service.NewPostService(db), service.NewVoteService(db))
	require.NoError(t, err)
	return &testEnv{schema: schema, db: db}
}

// exec 以给定身份执行一次 GraphQL 请求
func (e *testEnv) exec(t *testing.T, id Identity, query string, vars map[string]any) *graphql.Result {
	t.Helper()
	if id == nil {
		id = &testIdentity{}
	}
	return graphql.Do(graphql.Params{
		Schema:         e.schema,
		RequestString:  query,
		VariableValues: vars,
		Context:        WithIdentity(context.Background(), id),
	})
}

const registerMutation = `
mutation($options: UsernamePasswordInput!) {
  register(options: $options) {
    errors { field message }
    user { id username email }
  }
}`

func registerVars(username string) map[string]any {
	return map[string]any{"options": map[string]any{
		"username": username,
		"email":    username + "@test.local",
		"password": "secret",
	}}
}

func TestRegisterAndMe(t *testing.T) {
	env := newTestEnv(t)
	id := &testIdentity{}

	res := env.exec(t, id, registerMutation, registerVars("alice"))
	require.Empty(t, res.Errors)

	payload := res.Data.(map[string]any)["register"].(map[string]any)
	assert.Nil(t, payload["errors"])
	user := payload["user"].(map[string]any)
	assert.Equal(t, "alice", user["username"])

	// 注册即登录
	require.Len(t, id.loggedIn, 1)
	assert.NotZero(t, id.userID)

	res = env.exec(t, id, `{ me { id username } }`, nil)
	require.Empty(t, res.Errors)
	me := res.Data.(map[string]any)["me"].(map[string]any)
	assert.Equal(t, "alice", me["username"])
}

func TestMeAnonymous(t *testing.T) {
	env := newTestEnv(t)
	res := env.exec(t, nil, `{ me { id } }`, nil)
	require.Empty(t, res.Errors)
	assert.Nil(t, res.Data.(map[string]any)["me"])
}

// 校验失败走 errors 字段，不进 GraphQL 错误列表
func TestRegisterFieldErrors(t *testing.T) {
	env := newTestEnv(t)
	id := &testIdentity{}

	res := env.exec(t, id, registerMutation, map[string]any{"options": map[string]any{
		"username": "bob", "email": "bob@test.local", "password": "secret",
	}})
	require.Empty(t, res.Errors)

	payload := res.Data.(map[string]any)["register"].(map[string]any)
	assert.Nil(t, payload["user"])
	errs := payload["errors"].([]any)
	require.Len(t, errs, 1)
	fe := errs[0].(map[string]any)
	assert.Equal(t, "username", fe["field"])
	assert.Equal(t, "length must be greater than 4 characters", fe["message"])
	assert.Empty(t, id.loggedIn, "failed register must not log the viewer in")
}

func TestLoginLogout(t *testing.T) {
	env := newTestEnv(t)
	reg := &testIdentity{}
	env.exec(t, reg, registerMutation, registerVars("alice"))

	id := &testIdentity{}
	res := env.exec(t, id, `
		mutation { login(usernameOrEmail: "alice", password: "wrong") {
			errors { field message } user { id }
		} }`, nil)
	require.Empty(t, res.Errors)
	payload := res.Data.(map[string]any)["login"].(map[string]any)
	assert.Nil(t, payload["user"])
	fe := payload["errors"].([]any)[0].(map[string]any)
	assert.Equal(t, "password", fe["field"])

	res = env.exec(t, id, `
		mutation { login(usernameOrEmail: "alice", password: "secret") {
			errors { field message } user { username }
		} }`, nil)
	require.Empty(t, res.Errors)
	payload = res.Data.(map[string]any)["login"].(map[string]any)
	assert.Nil(t, payload["errors"])
	require.Len(t, id.loggedIn, 1)

	res = env.exec(t, id, `mutation { logout }`, nil)
	require.Empty(t, res.Errors)
	assert.Equal(t, true, res.Data.(map[string]any)["logout"])
	assert.True(t, id.loggedOut)
}

func TestCreatePostRequiresAuth(t *testing.T) {
	env := newTestEnv(t)

	res := env.exec(t, nil, `
		mutation { createPost(input: {title: "t", text: "x"}) {
			post { id }
		} }`, nil)
	require.NotEmpty(t, res.Errors)
	assert.True(t, strings.Contains(res.Errors[0].Message, "not authenticated"))
}

func TestCreatePostAndFeed(t *testing.T) {
	env := newTestEnv(t)
	id := &testIdentity{}
	env.exec(t, id, registerMutation, registerVars("alice"))

	res := env.exec(t, id, `
		mutation { createPost(input: {title: "hello", text: "first post body"}) {
			errors { field message }
			post { id title textSnippet points creator { username } }
		} }`, nil)
	require.Empty(t, res.Errors)
	payload := res.Data.(map[string]any)["createPost"].(map[string]any)
	assert.Nil(t, payload["errors"])
	post := payload["post"].(map[string]any)
	assert.Equal(t, "hello", post["title"])
	assert.Equal(t, "first post body", post["textSnippet"])
	assert.Equal(t, 0, post["points"])
	assert.Equal(t, "alice", post["creator"].(map[string]any)["username"])

	res = env.exec(t, id, `{ posts(limit: 10) {
		hasMore posts { id title voteStatus creator { username } }
	} }`, nil)
	require.Empty(t, res.Errors)
	feed := res.Data.(map[string]any)["posts"].(map[string]any)
	assert.Equal(t, false, feed["hasMore"])
	rows := feed["posts"].([]any)
	require.Len(t, rows, 1)
	assert.Nil(t, rows[0].(map[string]any)["voteStatus"])
}

func TestVoteReflectedInFeed(t *testing.T) {
	env := newTestEnv(t)
	author := &testIdentity{}
	env.exec(t, author, registerMutation, registerVars("alice"))
	res := env.exec(t, author, `
		mutation { createPost(input: {title: "t", text: "x"}) { post { id } } }`, nil)
	require.Empty(t, res.Errors)
	postID := res.Data.(map[string]any)["createPost"].(map[string]any)["post"].(map[string]any)["id"].(int)

	voter := &testIdentity{}
	env.exec(t, voter, registerMutation, registerVars("bobby"))
	res = env.exec(t, voter, fmt.Sprintf(`mutation { vote(postId: %d, value: 1) }`, postID), nil)
	require.Empty(t, res.Errors)
	assert.Equal(t, true, res.Data.(map[string]any)["vote"])

	// voteStatus 只对投了票的 viewer 可见
	res = env.exec(t, voter, fmt.Sprintf(`{ post(id: %d) { points voteStatus } }`, postID), nil)
	require.Empty(t, res.Errors)
	got := res.Data.(map[string]any)["post"].(map[string]any)
	assert.Equal(t, 1, got["points"])
	assert.Equal(t, 1, got["voteStatus"])

	res = env.exec(t, author, fmt.Sprintf(`{ post(id: %d) { points voteStatus } }`, postID), nil)
	require.Empty(t, res.Errors)
	got = res.Data.(map[string]any)["post"].(map[string]any)
	assert.Equal(t, 1, got["points"])
	assert.Nil(t, got["voteStatus"])
}

func TestVoteRejectsOtherValues(t *testing.T) {
	env := newTestEnv(t)
	id := &testIdentity{}
	env.exec(t, id, registerMutation, registerVars("alice"))

	res := env.exec(t, id, `mutation { vote(postId: 1, value: 5) }`, nil)
	require.NotEmpty(t, res.Errors)
	assert.Contains(t, res.Errors[0].Message, "vote value must be 1 or -1")
}

func TestDeletePostForeignOwner(t *testing.T) {
	env := newTestEnv(t)
	author := &testIdentity{}
	env.exec(t, author, registerMutation, registerVars("alice"))
	res := env.exec(t, author, `
		mutation { createPost(input: {title: "t", text: "x"}) { post { id } } }`, nil)
	require.Empty(t, res.Errors)
	postID := res.Data.(map[string]any)["createPost"].(map[string]any)["post"].(map[string]any)["id"].(int)

	intruder := &testIdentity{}
	env.exec(t, intruder, registerMutation, registerVars("bobby"))
	res = env.exec(t, intruder, fmt.Sprintf(`mutation { deletePost(id: %d) }`, postID), nil)
	require.NotEmpty(t, res.Errors)
	assert.Contains(t, res.Errors[0].Message, "not authorised")

	// 不存在的帖子静默 false
	res = env.exec(t, author, `mutation { deletePost(id: 9999) }`, nil)
	require.Empty(t, res.Errors)
	assert.Equal(t, false, res.Data.(map[string]any)["deletePost"])
}

func TestPostMissingIsNull(t *testing.T) {
	env := newTestEnv(t)
	res := env.exec(t, nil, `{ post(id: 123) { id } }`, nil)
	require.Empty(t, res.Errors)
	assert.Nil(t, res.Data.(map[string]any)["post"])
}
