package graph

import (
	"time"

	"github.com/graphql-go/graphql"

	"plume/internal/model"
	"plume/internal/service"
)

// PostView 挂上 viewer 投票状态的帖子视图，作为 postType 的 Source
type PostView struct {
	Post       model.Post
	VoteStatus *int
}

// PaginatedPosts posts 查询的返回壳
type PaginatedPosts struct {
	Posts   []*PostView
	HasMore bool
}

// UserResponse / PostResponse 校验失败时带 FieldError，成功时带实体
type UserResponse struct {
	Errors []service.FieldError
	User   *model.User
}

type PostResponse struct {
	Errors []service.FieldError
	Post   *PostView
}

const snippetLen = 50

var userType = graphql.NewObject(graphql.ObjectConfig{
	Name: "User",
	Fields: graphql.Fields{
		"id": &graphql.Field{
			Type: graphql.NewNonNull(graphql.Int),
			Resolve: func(p graphql.ResolveParams) (any, error) {
				return int(p.Source.(*model.User).ID), nil
			},
		},
		"username": &graphql.Field{
			Type: graphql.NewNonNull(graphql.String),
			Resolve: func(p graphql.ResolveParams) (any, error) {
				return p.Source.(*model.User).Username, nil
			},
		},
		"email": &graphql.Field{
			Type: graphql.NewNonNull(graphql.String),
			Resolve: func(p graphql.ResolveParams) (any, error) {
				return p.Source.(*model.User).Email, nil
			},
		},
		"createdAt": &graphql.Field{
			Type: graphql.NewNonNull(graphql.String),
			Resolve: func(p graphql.ResolveParams) (any, error) {
				return p.Source.(*model.User).CreatedAt.Format(time.RFC3339Nano), nil
			},
		},
		"updatedAt": &graphql.Field{
			Type: graphql.NewNonNull(graphql.String),
			Resolve: func(p graphql.ResolveParams) (any, error) {
				return p.Source.(*model.User).UpdatedAt.Format(time.RFC3339Nano), nil
			},
		},
	},
})

var postType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Post",
	Fields: graphql.Fields{
		"id": &graphql.Field{
			Type: graphql.NewNonNull(graphql.Int),
			Resolve: func(p graphql.ResolveParams) (any, error) {
				return int(p.Source.(*PostView).Post.ID), nil
			},
		},
		"title": &graphql.Field{
			Type: graphql.NewNonNull(graphql.String),
			Resolve: func(p graphql.ResolveParams) (any, error) {
				return p.Source.(*PostView).Post.Title, nil
			},
		},
		"text": &graphql.Field{
			Type: graphql.NewNonNull(graphql.String),
			Resolve: func(p graphql.ResolveParams) (any, error) {
				return p.Source.(*PostView).Post.Text, nil
			},
		},
		// textSnippet 列表页用的正文截断，免得整篇下发
		"textSnippet": &graphql.Field{
			Type: graphql.NewNonNull(graphql.String),
			Resolve: func(p graphql.ResolveParams) (any, error) {
				runes := []rune(p.Source.(*PostView).Post.Text)
				if len(runes) > snippetLen {
					runes = runes[:snippetLen]
				}
				return string(runes), nil
			},
		},
		"points": &graphql.Field{
			Type: graphql.NewNonNull(graphql.Int),
			Resolve: func(p graphql.ResolveParams) (any, error) {
				return int(p.Source.(*PostView).Post.Points), nil
			},
		},
		// voteStatus 未登录或未投票时为 null
		"voteStatus": &graphql.Field{
			Type: graphql.Int,
			Resolve: func(p graphql.ResolveParams) (any, error) {
				if v := p.Source.(*PostView).VoteStatus; v != nil {
					return *v, nil
				}
				return nil, nil
			},
		},
		"creator": &graphql.Field{
			Type: graphql.NewNonNull(userType),
			Resolve: func(p graphql.ResolveParams) (any, error) {
				return p.Source.(*PostView).Post.Creator, nil
			},
		},
		"createdAt": &graphql.Field{
			Type: graphql.NewNonNull(graphql.String),
			Resolve: func(p graphql.ResolveParams) (any, error) {
				return p.Source.(*PostView).Post.CreatedAt.Format(time.RFC3339Nano), nil
			},
		},
		"updatedAt": &graphql.Field{
			Type: graphql.NewNonNull(graphql.String),
			Resolve: func(p graphql.ResolveParams) (any, error) {
				return p.Source.(*PostView).Post.UpdatedAt.Format(time.RFC3339Nano), nil
			},
		},
	},
})

var paginatedPostsType = graphql.NewObject(graphql.ObjectConfig{
	Name: "PaginatedPosts",
	Fields: graphql.Fields{
		"posts": &graphql.Field{
			Type: graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(postType))),
			Resolve: func(p graphql.ResolveParams) (any, error) {
				return p.Source.(*PaginatedPosts).Posts, nil
			},
		},
		"hasMore": &graphql.Field{
			Type: graphql.NewNonNull(graphql.Boolean),
			Resolve: func(p graphql.ResolveParams) (any, error) {
				return p.Source.(*PaginatedPosts).HasMore, nil
			},
		},
	},
})

var fieldErrorType = graphql.NewObject(graphql.ObjectConfig{
	Name: "FieldError",
	Fields: graphql.Fields{
		"field": &graphql.Field{
			Type: graphql.NewNonNull(graphql.String),
			Resolve: func(p graphql.ResolveParams) (any, error) {
				return p.Source.(service.FieldError).Field, nil
			},
		},
		"message": &graphql.Field{
			Type: graphql.NewNonNull(graphql.String),
			Resolve: func(p graphql.ResolveParams) (any, error) {
				return p.Source.(service.FieldError).Message, nil
			},
		},
	},
})

var userResponseType = graphql.NewObject(graphql.ObjectConfig{
	Name: "UserResponse",
	Fields: graphql.Fields{
		"errors": &graphql.Field{
			Type: graphql.NewList(graphql.NewNonNull(fieldErrorType)),
			Resolve: func(p graphql.ResolveParams) (any, error) {
				if errs := p.Source.(*UserResponse).Errors; len(errs) > 0 {
					return errs, nil
				}
				return nil, nil
			},
		},
		"user": &graphql.Field{
			Type: userType,
			Resolve: func(p graphql.ResolveParams) (any, error) {
				if u := p.Source.(*UserResponse).User; u != nil {
					return u, nil
				}
				return nil, nil
			},
		},
	},
})

var postResponseType = graphql.NewObject(graphql.ObjectConfig{
	Name: "PostResponse",
	Fields: graphql.Fields{
		"errors": &graphql.Field{
			Type: graphql.NewList(graphql.NewNonNull(fieldErrorType)),
			Resolve: func(p graphql.ResolveParams) (any, error) {
				if errs := p.Source.(*PostResponse).Errors; len(errs) > 0 {
					return errs, nil
				}
				return nil, nil
			},
		},
		"post": &graphql.Field{
			Type: postType,
			Resolve: func(p graphql.ResolveParams) (any, error) {
				if v := p.Source.(*PostResponse).Post; v != nil {
					return v, nil
				}
				return nil, nil
			},
		},
	},
})

var usernamePasswordInput = graphql.NewInputObject(graphql.InputObjectConfig{
	Name: "UsernamePasswordInput",
	Fields: graphql.InputObjectConfigFieldMap{
		"username": &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
		"email":    &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
		"password": &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
	},
})

var postInput = graphql.NewInputObject(graphql.InputObjectConfig{
	Name: "PostInput",
	Fields: graphql.InputObjectConfigFieldMap{
		"title": &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
		"text":  &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
	},
})
