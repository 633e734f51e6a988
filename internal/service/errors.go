package service

import "errors"

// 哨兵错误，Handler 据此映射 HTTP 状态码
var (
	// 记录不存在，或 id/owner 不匹配 (对外统一表现为 404)
	ErrNotFound = errors.New("记录不存在")

	// 请求在当前状态下不合法 (例如对 processing 中的来源再次 reprocess)
	ErrConflict = errors.New("状态冲突")

	// 业务校验失败
	ErrInvalid = errors.New("参数不合法")
)
