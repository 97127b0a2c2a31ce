package graph

import (
	"github.com/graphql-go/graphql"

	"plume/internal/service"
)

// Resolver GraphQL 入口，只做参数搬运和身份检查，业务都在 service 层
type Resolver struct {
	users *service.UserService
	posts *service.PostService
	votes *service.VoteService
}

func NewSchema(users *service.UserService, posts *service.PostService, votes *service.VoteService) (graphql.Schema, error) {
	r := &Resolver{users: users, posts: posts, votes: votes}

	query := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"me":    r.meField(),
			"post":  r.postField(),
			"posts": r.postsField(),
		},
	})

	mutation := graphql.NewObject(graphql.ObjectConfig{
		Name: "Mutation",
		Fields: graphql.Fields{
			"register":       r.registerField(),
			"login":          r.loginField(),
			"logout":         r.logoutField(),
			"forgotPassword": r.forgotPasswordField(),
			"changePassword": r.changePasswordField(),
			"createPost":     r.createPostField(),
			"updatePost":     r.updatePostField(),
			"deletePost":     r.deletePostField(),
			"vote":           r.voteField(),
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{Query: query, Mutation: mutation})
}

func (r *Resolver) meField() *graphql.Field {
	return &graphql.Field{
		Type: userType,
		Resolve: func(p graphql.ResolveParams) (any, error) {
			viewer := IdentityFrom(p.Context)
			if viewer.UserID() == 0 {
				return nil, nil
			}
			user, err := r.users.FindByID(p.Context, viewer.UserID())
			if err != nil {
				return nil, nil
			}
			return user, nil
		},
	}
}

func (r *Resolver) postField() *graphql.Field {
	return &graphql.Field{
		Type: postType,
		Args: graphql.FieldConfigArgument{
			"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Int)},
		},
		Resolve: func(p graphql.ResolveParams) (any, error) {
			id := uint64(p.Args["id"].(int))
			viewer := IdentityFrom(p.Context)
			post, status, err := r.posts.GetPost(p.Context, id, viewer.UserID())
			if err != nil {
				return nil, err
			}
			if post == nil {
				return nil, nil
			}
			return &PostView{Post: *post, VoteStatus: status}, nil
		},
	}
}

func (r *Resolver) postsField() *graphql.Field {
	return &graphql.Field{
		Type: graphql.NewNonNull(paginatedPostsType),
		Args: graphql.FieldConfigArgument{
			"limit":  &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Int)},
			"cursor": &graphql.ArgumentConfig{Type: graphql.String},
		},
		Resolve: func(p graphql.ResolveParams) (any, error) {
			limit := p.Args["limit"].(int)
			cursor, _ := p.Args["cursor"].(string)
			viewer := IdentityFrom(p.Context)

			page, err := r.posts.Feed(p.Context, limit, cursor, viewer.UserID())
			if err != nil {
				return nil, err
			}
			return toPaginated(page), nil
		},
	}
}

func (r *Resolver) registerField() *graphql.Field {
	return &graphql.Field{
		Type: graphql.NewNonNull(userResponseType),
		Args: graphql.FieldConfigArgument{
			"options": &graphql.ArgumentConfig{Type: graphql.NewNonNull(usernamePasswordInput)},
		},
		Resolve: func(p graphql.ResolveParams) (any, error) {
			opts := p.Args["options"].(map[string]any)
			user, fieldErrs, err := r.users.Register(p.Context,
				opts["username"].(string), opts["email"].(string), opts["password"].(string))
			if err != nil {
				return nil, err
			}
			if fieldErrs != nil {
				return &UserResponse{Errors: fieldErrs}, nil
			}
			// 注册即登录
			if err = IdentityFrom(p.Context).Login(p.Context, user.ID); err != nil {
				return nil, err
			}
			return &UserResponse{User: user}, nil
		},
	}
}

func (r *Resolver) loginField() *graphql.Field {
	return &graphql.Field{
		Type: graphql.NewNonNull(userResponseType),
		Args: graphql.FieldConfigArgument{
			"usernameOrEmail": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
			"password":        &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
		},
		Resolve: func(p graphql.ResolveParams) (any, error) {
			user, fieldErrs, err := r.users.Login(p.Context,
				p.Args["usernameOrEmail"].(string), p.Args["password"].(string))
			if err != nil {
				return nil, err
			}
			if fieldErrs != nil {
				return &UserResponse{Errors: fieldErrs}, nil
			}
			if err = IdentityFrom(p.Context).Login(p.Context, user.ID); err != nil {
				return nil, err
			}
			return &UserResponse{User: user}, nil
		},
	}
}

func (r *Resolver) logoutField() *graphql.Field {
	return &graphql.Field{
		Type: graphql.NewNonNull(graphql.Boolean),
		Resolve: func(p graphql.ResolveParams) (any, error) {
			if err := IdentityFrom(p.Context).Logout(p.Context); err != nil {
				return false, nil
			}
			return true, nil
		},
	}
}

func (r *Resolver) forgotPasswordField() *graphql.Field {
	return &graphql.Field{
		Type: graphql.NewNonNull(graphql.Boolean),
		Args: graphql.FieldConfigArgument{
			"email": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
		},
		Resolve: func(p graphql.ResolveParams) (any, error) {
			if err := r.users.ForgotPassword(p.Context, p.Args["email"].(string)); err != nil {
				return nil, err
			}
			return true, nil
		},
	}
}

func (r *Resolver) changePasswordField() *graphql.Field {
	return &graphql.Field{
		Type: graphql.NewNonNull(userResponseType),
		Args: graphql.FieldConfigArgument{
			"token":       &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
			"newPassword": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
		},
		Resolve: func(p graphql.ResolveParams) (any, error) {
			user, fieldErrs, err := r.users.ChangePassword(p.Context,
				p.Args["token"].(string), p.Args["newPassword"].(string))
			if err != nil {
				return nil, err
			}
			if fieldErrs != nil {
				return &UserResponse{Errors: fieldErrs}, nil
			}
			if err = IdentityFrom(p.Context).Login(p.Context, user.ID); err != nil {
				return nil, err
			}
			return &UserResponse{User: user}, nil
		},
	}
}

func (r *Resolver) createPostField() *graphql.Field {
	return &graphql.Field{
		Type: graphql.NewNonNull(postResponseType),
		Args: graphql.FieldConfigArgument{
			"input": &graphql.ArgumentConfig{Type: graphql.NewNonNull(postInput)},
		},
		Resolve: func(p graphql.ResolveParams) (any, error) {
			input := p.Args["input"].(map[string]any)
			viewer := IdentityFrom(p.Context)

			post, fieldErrs, err := r.posts.CreatePost(p.Context, viewer.UserID(),
				input["title"].(string), input["text"].(string))
			if err != nil {
				return nil, err
			}
			if fieldErrs != nil {
				return &PostResponse{Errors: fieldErrs}, nil
			}
			// 刚插入的行没带 creator，补上
			if post.Creator == nil {
				if creator, err := r.users.FindByID(p.Context, viewer.UserID()); err == nil {
					post.Creator = creator
				}
			}
			return &PostResponse{Post: &PostView{Post: *post}}, nil
		},
	}
}

func (r *Resolver) updatePostField() *graphql.Field {
	return &graphql.Field{
		Type: postType,
		Args: graphql.FieldConfigArgument{
			"id":    &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Int)},
			"title": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
			"text":  &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
		},
		Resolve: func(p graphql.ResolveParams) (any, error) {
			viewer := IdentityFrom(p.Context)
			post, err := r.posts.UpdatePost(p.Context, viewer.UserID(), uint64(p.Args["id"].(int)),
				p.Args["title"].(string), p.Args["text"].(string))
			if err != nil {
				return nil, err
			}
			if post == nil {
				return nil, nil
			}
			return &PostView{Post: *post}, nil
		},
	}
}

func (r *Resolver) deletePostField() *graphql.Field {
	return &graphql.Field{
		Type: graphql.NewNonNull(graphql.Boolean),
		Args: graphql.FieldConfigArgument{
			"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Int)},
		},
		Resolve: func(p graphql.ResolveParams) (any, error) {
			viewer := IdentityFrom(p.Context)
			return r.posts.DeletePost(p.Context, viewer.UserID(), uint64(p.Args["id"].(int)))
		},
	}
}

func (r *Resolver) voteField() *graphql.Field {
	return &graphql.Field{
		Type: graphql.NewNonNull(graphql.Boolean),
		Args: graphql.FieldConfigArgument{
			"postId": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Int)},
			"value":  &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Int)},
		},
		Resolve: func(p graphql.ResolveParams) (any, error) {
			viewer := IdentityFrom(p.Context)
			return r.votes.Vote(p.Context, viewer.UserID(),
				uint64(p.Args["postId"].(int)), p.Args["value"].(int))
		},
	}
}

func toPaginated(page *service.FeedPage) *PaginatedPosts {
	views := make([]*PostView, len(page.Posts))
	for i := range page.Posts {
		views[i] = &PostView{Post: page.Posts[i]}
		if v, ok := page.VoteStatus[page.Posts[i].ID]; ok {
			status := v
			views[i].VoteStatus = &status
		}
	}
	return &PaginatedPosts{Posts: views, HasMore: page.HasMore}
}
