package service

import "errors"

var (
	ErrNotAuthenticated = errors.New("not authenticated")
	ErrNotAuthorised    = errors.New("not authorised")
	ErrInvalidVote      = errors.New("vote value must be 1 or -1")
)

// FieldError 表单级校验错误，随 mutation 响应返回而不是抛错，
// 客户端按 field 映射到具体输入框
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func fieldErr(field, message string) []FieldError {
	return []FieldError{{Field: field, Message: message}}
}
