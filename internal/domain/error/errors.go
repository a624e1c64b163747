package error

import "errors"

// 领域层错误定义，API 中间件据此映射 HTTP 状态码

var (
	// Script相关错误
	ErrScriptNotFound      = errors.New("脚本不存在或已禁用")
	ErrScriptFileMissing   = errors.New("脚本文件不存在")
	ErrScriptInfoRequired  = errors.New("必须提供script_id、script_name或script_path")
	ErrScriptAlreadyExists = errors.New("同名脚本已存在")

	// Execution相关错误
	ErrExecutionNotFound      = errors.New("任务不存在")
	ErrExecutionNotCancelable = errors.New("任务无法取消")

	// 通用错误
	ErrInvalidInput  = errors.New("输入参数无效")
	ErrInternalError = errors.New("内部错误")
)

// DomainError 领域错误接口
type DomainError interface {
	error
	Code() string
	Message() string
}

// BusinessError 业务错误
type BusinessError struct {
	code    string
	message string
	cause   error
}

func NewBusinessError(code, message string, cause error) *BusinessError {
	return &BusinessError{
		code:    code,
		message: message,
		cause:   cause,
	}
}

func (e *BusinessError) Error() string {
	if e.cause != nil {
		return e.message + ": " + e.cause.Error()
	}
	return e.message
}

func (e *BusinessError) Code() string {
	return e.code
}

func (e *BusinessError) Message() string {
	return e.message
}

func (e *BusinessError) Unwrap() error {
	return e.cause
}
