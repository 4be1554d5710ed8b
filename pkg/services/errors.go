package services

import (
	"errors"
	"fmt"
)

// 服务层统一错误分类，HTTP 边界用 errors.Is 映射状态码
var (
	// ErrNotFound 记录不存在，或 token 无法解析（不区分两者）
	ErrNotFound = errors.New("resource not found")
	// ErrExpired token 已过期
	ErrExpired = errors.New("token expired")
	// ErrConflict 当前状态不允许此操作
	ErrConflict = errors.New("operation conflicts with current state")
	// ErrForbidden 跨组织访问或权限不足
	ErrForbidden = errors.New("access denied")
	// ErrValidation 请求数据校验失败
	ErrValidation = errors.New("validation failed")
	// ErrDependency 依赖的其他实体状态不满足
	ErrDependency = errors.New("dependency not satisfied")
)

// wrapErr 附加上下文并保留哨兵错误链
func wrapErr(sentinel error, format string, args ...interface{}) error {
	return fmt.Errorf("%w: "+format, append([]interface{}{sentinel}, args...)...)
}
