package event

import (
	"github.com/google/uuid"

	"github.com/opdss/vent/contracts/event"
)

var _ event.Handle = (*Observation)(nil)

// Observation 订阅句柄, 由 Subscribe 系列函数返回
type Observation struct {
	id       uuid.UUID
	identity event.Identity
	callback event.Callback
	registry *Registry

	// 实例级订阅时为发布者的 weak.Pointer, 只用于取消时比较
	sender any
}

// Cancel 取消订阅. 可在任意 goroutine, 任意时刻重复调用.
func (o *Observation) Cancel() {
	if o == nil || o.registry == nil {
		return
	}
	o.registry.remove(o)
}

func (o *Observation) ID() uuid.UUID {
	return o.id
}

func (o *Observation) Identity() event.Identity {
	return o.identity
}

func (o *Observation) equal(other *Observation) bool {
	return o.id == other.id && o.sender == other.sender
}

// CancelAll 批量取消订阅, 顺序无关
func CancelAll(handles ...event.Handle) {
	event.Handles(handles).CancelAll()
}
