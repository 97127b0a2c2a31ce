package client

import (
	"context"

	"plume/internal/client/cache"
)

const voteMutation = `
mutation Vote($postId: Int!, $value: Int!) {
  vote(postId: $postId, value: $value)
}`

// Vote 投票成功后只给缓存打补丁，不回源
func (c *Client) Vote(ctx context.Context, postID uint64, value int) (bool, error) {
	var data struct {
		Vote bool `json:"vote"`
	}
	err := c.do(ctx, voteMutation, map[string]any{"postId": postID, "value": value}, &data)
	if err != nil {
		return false, err
	}
	if data.Vote {
		c.cache.Apply(cache.Patch{Kind: cache.PatchVote, PostID: postID, Value: value})
	}
	return data.Vote, nil
}

const createPostMutation = `
mutation CreatePost($input: PostInput!) {
  createPost(input: $input) {
    errors { field message }
    post {
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

// CreatePost 成功后作废所有缓存列表页，下次浏览回源拿含新帖的第一页
func (c *Client) CreatePost(ctx context.Context, title, text string) (*cache.Post, []FieldError, error) {
	var data struct {
		CreatePost struct {
			Errors []FieldError `json:"errors"`
			Post   *wirePost    `json:"post"`
		} `json:"createPost"`
	}
	err := c.do(ctx, createPostMutation,
		map[string]any{"input": map[string]any{"title": title, "text": text}}, &data)
	if err != nil {
		return nil, nil, err
	}
	if len(data.CreatePost.Errors) > 0 {
		return nil, data.CreatePost.Errors, nil
	}

	post := data.CreatePost.Post.toCache()
	c.cache.Apply(cache.Patch{Kind: cache.PatchCreatePost})
	return &post, nil, nil
}

const deletePostMutation = `
mutation DeletePost($id: Int!) {
  deletePost(id: $id)
}`

func (c *Client) DeletePost(ctx context.Context, id uint64) (bool, error) {
	var data struct {
		DeletePost bool `json:"deletePost"`
	}
	if err := c.do(ctx, deletePostMutation, map[string]any{"id": id}, &data); err != nil {
		return false, err
	}
	if data.DeletePost {
		c.cache.Apply(cache.Patch{Kind: cache.PatchDeletePost, PostID: id})
	}
	return data.DeletePost, nil
}

const loginMutation = `
mutation Login($usernameOrEmail: String!, $password: String!) {
  login(usernameOrEmail: $usernameOrEmail, password: $password) {
    errors { field message }
    user { id username email }
  }
}`

func (c *Client) Login(ctx context.Context, usernameOrEmail, password string) (*cache.User, []FieldError, error) {
	var data struct {
		Login struct {
			Errors []FieldError `json:"errors"`
			User   *wireUser    `json:"user"`
		} `json:"login"`
	}
	err := c.do(ctx, loginMutation,
		map[string]any{"usernameOrEmail": usernameOrEmail, "password": password}, &data)
	if err != nil {
		return nil, nil, err
	}
	// 校验失败时不动缓存，和成功路径的 me 改写形成对照
	if len(data.Login.Errors) > 0 {
		return nil, data.Login.Errors, nil
	}

	user := toCacheUser(data.Login.User)
	c.cache.Apply(cache.Patch{Kind: cache.PatchSetViewer, Viewer: user})
	return user, nil, nil
}

const registerMutation = `
mutation Register($options: UsernamePasswordInput!) {
  register(options: $options) {
    errors { field message }
    user { id username email }
  }
}`

func (c *Client) Register(ctx context.Context, username, email, password string) (*cache.User, []FieldError, error) {
	var data struct {
		Register struct {
			Errors []FieldError `json:"errors"`
			User   *wireUser    `json:"user"`
		} `json:"register"`
	}
	err := c.do(ctx, registerMutation,
		map[string]any{"options": map[string]any{
			"username": username, "email": email, "password": password,
		}}, &data)
	if err != nil {
		return nil, nil, err
	}
	if len(data.Register.Errors) > 0 {
		return nil, data.Register.Errors, nil
	}

	user := toCacheUser(data.Register.User)
	c.cache.Apply(cache.Patch{Kind: cache.PatchSetViewer, Viewer: user})
	return user, nil, nil
}

const logoutMutation = `
mutation Logout {
  logout
}`

func (c *Client) Logout(ctx context.Context) error {
	var data struct {
		Logout bool `json:"logout"`
	}
	if err := c.do(ctx, logoutMutation, nil, &data); err != nil {
		return err
	}
	c.cache.Apply(cache.Patch{Kind: cache.PatchClearViewer})
	return nil
}
