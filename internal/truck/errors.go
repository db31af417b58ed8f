package truck

import "errors"

// 领域错误分类。全部直接上抛给变更操作的调用方，内部不做重试。
var (
	// ErrNotFound 卡车 ID 不存在。
	ErrNotFound = errors.New("truck not found")
	// ErrForbidden 当前角色无权执行所请求的流转/操作。
	ErrForbidden = errors.New("role not permitted")
	// ErrInvalidStatus 目标状态不在可识别集合内。
	ErrInvalidStatus = errors.New("invalid truck status")
	// ErrInvalidInput 创建/更新入参缺失或非法。
	ErrInvalidInput = errors.New("invalid input")
	// ErrPersistenceFailed 持久化协作方写入失败。
	// 注意：内存中的变更此时已生效，调用方应视为“本地已应用、落盘未确认”，
	// 重试应发生在持久化层而不是重发流转（避免重复的历史记录）。
	ErrPersistenceFailed = errors.New("persistence failed")
)
