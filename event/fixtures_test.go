package event

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type counter struct {
	Source
}

var (
	counterChanged = Declare[counter, int]("Changed")
	counterReset   = Declare[counter, int]("Reset")
	counterTicked  = Declare[counter, Void]("Ticked")
	counterFailed  = Declare[counter, error]("Failed")
)

type namespace struct {
	Source
}

var (
	namespaceEvent   = DeclareStatic[namespace, string]("NamespaceEvent")
	namespaceStarted = DeclareStatic[namespace, Void]("Started")
)

// profile 带指针字段, 避免被分配到 tiny 块中影响回收
type profile struct {
	Source
	name *string
}

var profileRenamed = Declare[profile, *string]("Renamed")

func newObservedRegistry(t *testing.T, opts ...Option) (*Registry, *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	opts = append([]Option{WithLogger(zap.New(core))}, opts...)
	return NewRegistry(opts...), logs
}
