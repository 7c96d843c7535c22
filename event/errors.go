package event

import "github.com/zeebo/errs"

// Error 事件机制的通用错误
var Error = errs.Class("event")

// ErrDefect 内部缺陷, 例如回调收到了与声明不一致的载荷类型
var ErrDefect = errs.Class("event defect")
