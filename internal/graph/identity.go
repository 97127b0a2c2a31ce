package graph

import "context"

// Identity 一次请求内的登录态。由 HTTP 层在每个请求开始时构造，
// 随 context 传进 resolver，请求结束即丢弃，不存在任何全局会话对象。
type Identity interface {
	// UserID 当前登录用户，未登录为 0
	UserID() uint64
	// Login 建立会话并写响应 cookie
	Login(ctx context.Context, userID uint64) error
	// Logout 销毁会话并清 cookie
	Logout(ctx context.Context) error
}

type identityKey struct{}

func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// IdentityFrom 取出请求身份；拿不到时退回匿名身份
func IdentityFrom(ctx context.Context) Identity {
	if id, ok := ctx.Value(identityKey{}).(Identity); ok {
		return id
	}
	return anonymous{}
}

type anonymous struct{}

func (anonymous) UserID() uint64                        { return 0 }
func (anonymous) Login(context.Context, uint64) error   { return nil }
func (anonymous) Logout(context.Context) error          { return nil }
