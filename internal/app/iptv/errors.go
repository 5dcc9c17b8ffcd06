package iptv

import (
	"errors"
	"fmt"
)

// 错误类型，可通过errors.Is判断
var (
	ErrTransport      = errors.New("transport failure")
	ErrUpstreamStatus = errors.New("unexpected upstream status")
	ErrDecode         = errors.New("malformed upstream response")
	ErrCrypto         = errors.New("cipher setup failure")
	ErrParse          = errors.New("parse failure")
	ErrNotFound       = errors.New("not found")

	ErrLogin = errors.New("login failed")
)

// Error 携带上下文信息的错误，同时包装错误类型和底层错误
type Error struct {
	Kind   error  // 上面定义的错误类型之一
	Op     string // 出错的操作，例如：authorize
	Status int    // HTTP状态码，没有则为0
	Err    error  // 底层错误
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("%s: %v", e.Op, e.Kind)
	if e.Status > 0 {
		msg = fmt.Sprintf("%s (http status code: %d)", msg, e.Status)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// NewError 创建错误
func NewError(kind error, op string, err error) error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// NewStatusError 创建非2xx响应的错误
func NewStatusError(op string, status int) error {
	return &Error{Kind: ErrUpstreamStatus, Op: op, Status: status}
}
