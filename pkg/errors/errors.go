package errors

import (
	"errors"
	"fmt"
)

// Kind 错误类别，接口层据此映射HTTP状态码
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindNotFound
	KindNotModified
	KindPersistence
	KindUnauthorized
	KindForbidden
	KindConflict
	KindRateLimited
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindNotModified:
		return "not_modified"
	case KindPersistence:
		return "persistence"
	case KindUnauthorized:
		return "unauthorized"
	case KindForbidden:
		return "forbidden"
	case KindConflict:
		return "conflict"
	case KindRateLimited:
		return "rate_limited"
	default:
		return "internal"
	}
}

// AppError 应用错误
// Err只进日志，不返回给客户端
type AppError struct {
	Kind    Kind   `json:"-"`
	Code    int    `json:"code"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%d] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%d] %s", e.Code, e.Message)
}

// Unwrap 支持errors.Is和errors.As
func (e *AppError) Unwrap() error {
	return e.Err
}

// Is 同一错误码视为同一错误，预定义错误被WithMessage复制后仍可匹配
func (e *AppError) Is(target error) bool {
	var t *AppError
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

// WithMessage 复制错误并替换提示信息
func (e *AppError) WithMessage(message string) *AppError {
	cp := *e
	cp.Message = message
	return &cp
}

// WithErr 复制错误并附加内部错误
func (e *AppError) WithErr(err error) *AppError {
	cp := *e
	cp.Err = err
	return &cp
}

// New 创建新的AppError，类别由错误码推断
func New(code int, message string) *AppError {
	return &AppError{
		Kind:    kindOf(code),
		Code:    code,
		Message: message,
	}
}

// Wrap 包装系统错误
func Wrap(err error, message string) *AppError {
	return &AppError{
		Kind:    KindInternal,
		Code:    ErrCodeInternal,
		Message: message,
		Err:     err,
	}
}

// Wrapf 格式化包装错误
func Wrapf(err error, format string, args ...interface{}) *AppError {
	return Wrap(err, fmt.Sprintf(format, args...))
}

// Persistence 包装存储层错误
func Persistence(err error, message string) *AppError {
	return &AppError{
		Kind:    KindPersistence,
		Code:    ErrCodeDatabaseError,
		Message: message,
		Err:     err,
	}
}

// Validation 参数校验错误
func Validation(message string) *AppError {
	return New(ErrCodeInvalidParams, message)
}

// =========================================
// 错误码定义
// =========================================
// - 4xxxx: 客户端错误
// - 5xxxx: 服务端错误

const (
	// 系统级错误码（50000-50099）
	ErrCodeInternal      = 50000
	ErrCodeDatabaseError = 50001
	ErrCodeRedisError    = 50002

	// 认证授权错误（40100-40199）
	ErrCodeUnauthorized    = 40100
	ErrCodeInvalidToken    = 40101
	ErrCodeTokenExpired    = 40102
	ErrCodeInvalidPassword = 40103
	ErrCodeForbidden       = 40104

	// 资源错误（40400-40499）
	ErrCodeNotFound     = 40400
	ErrCodeUserNotFound = 40401
	ErrCodeBookNotFound = 40402

	// 业务规则错误（40000-40099）
	ErrCodeBusinessError  = 40000
	ErrCodeNotModified    = 40006
	ErrCodeEmailDuplicate = 40003
	ErrCodeWeakPassword   = 40005

	// 参数错误（40900-40999）
	ErrCodeInvalidParams = 40900
	ErrCodeBindError     = 40901
	ErrCodeInvalidISBN   = 40910
	ErrCodeInvalidGenre  = 40911
	ErrCodeInvalidYear   = 40912
	ErrCodeInvalidPrice  = 40913
	ErrCodeEmptyField    = 40914

	// 限流（42900）
	ErrCodeTooManyRequests = 42900
)

func kindOf(code int) Kind {
	switch {
	case code == ErrCodeDatabaseError:
		return KindPersistence
	case code >= 50000:
		return KindInternal
	case code == ErrCodeTooManyRequests:
		return KindRateLimited
	case code == ErrCodeForbidden:
		return KindForbidden
	case code >= 40100 && code < 40200:
		return KindUnauthorized
	case code >= 40400 && code < 40500:
		return KindNotFound
	case code == ErrCodeNotModified:
		return KindNotModified
	case code == ErrCodeEmailDuplicate:
		return KindConflict
	default:
		return KindValidation
	}
}

// =========================================
// 预定义错误
// =========================================

var (
	ErrInternal      = New(ErrCodeInternal, "internal server error")
	ErrDatabaseError = New(ErrCodeDatabaseError, "database error")
	ErrRedisError    = New(ErrCodeRedisError, "cache error")

	ErrUnauthorized    = New(ErrCodeUnauthorized, "please log in")
	ErrInvalidToken    = New(ErrCodeInvalidToken, "invalid token")
	ErrTokenExpired    = New(ErrCodeTokenExpired, "token expired")
	ErrInvalidPassword = New(ErrCodeInvalidPassword, "invalid email or password")
	ErrForbidden       = New(ErrCodeForbidden, "permission denied")

	ErrNotFound     = New(ErrCodeNotFound, "resource not found")
	ErrUserNotFound = New(ErrCodeUserNotFound, "user not found")
	ErrBookNotFound = New(ErrCodeBookNotFound, "book not found")

	ErrNotModified    = New(ErrCodeNotModified, "not modified")
	ErrEmailDuplicate = New(ErrCodeEmailDuplicate, "email already registered")
	ErrWeakPassword   = New(ErrCodeWeakPassword, "password must be 8-20 characters with letters and digits")

	ErrInvalidParams   = New(ErrCodeInvalidParams, "invalid parameters")
	ErrBindError       = New(ErrCodeBindError, "malformed request body")
	ErrTooManyRequests = New(ErrCodeTooManyRequests, "too many requests")
)

// =========================================
// 辅助函数
// =========================================

// IsAppError 判断是否为AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// GetAppError 提取AppError（如果不是AppError则包装成Internal错误）
func GetAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return Wrap(err, "internal server error")
}

// KindOf 返回错误类别，非AppError视为内部错误
func KindOf(err error) Kind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}
