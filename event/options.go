package event

import (
	"go.uber.org/zap"

	"github.com/opdss/vent/contracts/event"
)

type Config struct {
	Strict bool `help:"载荷类型不一致等内部缺陷直接panic,用于调试" releaseDefault:"false" default:"true"`
}

type Option func(r *Registry)

// WithLogger 设置日志, 默认使用 zap.L()
func WithLogger(logger *zap.Logger) Option {
	return func(r *Registry) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithStrict 内部缺陷时 panic 而不是仅记录日志
func WithStrict(strict bool) Option {
	return func(r *Registry) {
		r.strict = strict
	}
}

// WithPanicHandler 回调 panic 被恢复后调用 fn
func WithPanicHandler(fn func(id event.Identity, v any)) Option {
	return func(r *Registry) {
		r.onPanic = fn
	}
}
