package audit

import (
	"sync"
	"time"
)

// Operation 写操作类型
type Operation string

const (
	OpCreate Operation = "create"
	OpUpdate Operation = "update"
	OpDelete Operation = "delete"
)

// CollectionBook 图书集合名
const CollectionBook = "Book"

// Actor 执行操作的身份，取自认证上下文
type Actor struct {
	UserID string   `json:"user_id"`
	Email  string   `json:"email,omitempty"`
	Roles  []string `json:"roles,omitempty"`
}

// Event 审计事件，写入后不可修改
type Event struct {
	ID         string    `json:"id"`
	Timestamp  time.Time `json:"timestamp"`
	Op         Operation `json:"op"`
	Collection string    `json:"collection"`
	TargetID   string    `json:"target_id"`
	Actor      Actor     `json:"actor"`
}

// Clock 单调不减的时间源
// 系统时间回拨时沿用上一次的时间
type Clock struct {
	mu   sync.Mutex
	last time.Time
	now  func() time.Time
}

// NewClock 创建时钟
func NewClock() *Clock {
	return &Clock{now: time.Now}
}

// Now 返回不早于上一次结果的时间
func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	t := c.now().UTC()
	if t.Before(c.last) {
		t = c.last
	}
	c.last = t
	return t
}

// NewEvent 用clock的时间创建事件
func (c *Clock) NewEvent(op Operation, collection, targetID string, actor Actor) *Event {
	return &Event{
		Timestamp:  c.Now(),
		Op:         op,
		Collection: collection,
		TargetID:   targetID,
		Actor:      actor,
	}
}
