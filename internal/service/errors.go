package service

import (
	"errors"
)

const (
	BadRequest          = 400
	Unauthorized        = 401
	NotFound            = 404
	Conflict            = 409
	InternalServerError = 500
	ServiceUnavailable  = 503
)

var (
	ErrParamInvalid         = errors.New("参数错误")
	ErrInvalidOperation     = errors.New("非法操作")
	ErrNotFound             = errors.New("用户不存在")
	ErrConflict             = errors.New("关系已存在")
	ErrPasswordIncorrect    = errors.New("密码错误")
	ErrConsistencyViolation = errors.New("数据一致性异常")
	ErrTransactionAborted   = errors.New("操作失败，事务已回滚")
	UnauthorizedError       = errors.New("权限不足")
	UnExpectedError         = errors.New("系统异常，请稍后重试")
)

// ErrorCode 业务错误与返回码
type ErrorCode struct {
	Err  error
	Code int
}

// ErrorCodes 按顺序匹配，包装了多个哨兵错误时取第一个命中的
var ErrorCodes = []ErrorCode{
	{ErrConsistencyViolation, InternalServerError},
	{ErrTransactionAborted, ServiceUnavailable},
	{ErrParamInvalid, BadRequest},
	{ErrInvalidOperation, BadRequest},
	{ErrNotFound, NotFound},
	{ErrConflict, Conflict},
	{ErrPasswordIncorrect, Unauthorized},
	{UnauthorizedError, Unauthorized},
	{UnExpectedError, InternalServerError},
}

// CodeOf 返回 err 对应的哨兵错误与业务码，未登记的错误返回 false
func CodeOf(err error) (ErrorCode, bool) {
	for _, ec := range ErrorCodes {
		if errors.Is(err, ec.Err) {
			return ec, true
		}
	}
	return ErrorCode{}, false
}
