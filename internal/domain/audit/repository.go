package audit

import "context"

// Log 只追加的审计日志
type Log interface {
	// Record 追加一条事件，不覆盖、不删除已有事件
	Record(ctx context.Context, e *Event) error
}
