package event

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func useRegistry(t *testing.T) *Registry {
	t.Helper()
	r := NewRegistry(WithLogger(zaptest.NewLogger(t)), WithStrict(true))
	t.Cleanup(ReplaceDefault(r))
	return r
}

func TestDefaultRegistry(t *testing.T) {
	r := Default()
	require.NotNil(t, r)
	require.Same(t, r, Default())

	replaced := NewRegistry()
	restore := ReplaceDefault(replaced)
	require.Same(t, replaced, Default())
	restore()
	require.Same(t, r, Default())
}

func TestInstanceCapability(t *testing.T) {
	r := useRegistry(t)
	c := &counter{}

	var got []int
	h := Subscribe(c, counterChanged, func(v int) { got = append(got, v) })
	Send(c, counterChanged, 5)
	require.Equal(t, []int{5}, got)
	require.Equal(t, 1, r.Len(counterChanged.Identity()))

	ticks := 0
	t2 := Subscribe(c, counterTicked, func(Void) { ticks++ })
	Signal(c, counterTicked)
	require.Equal(t, 1, ticks)

	CancelAll(h, t2)
	Send(c, counterChanged, 6)
	Signal(c, counterTicked)
	require.Equal(t, []int{5}, got)
	require.Equal(t, 1, ticks)
}

// 实例级事件按标识路由, 与发送者实例无关
func TestInstanceSendRoutesByIdentity(t *testing.T) {
	useRegistry(t)
	a, b := &counter{}, &counter{}

	var got []int
	Subscribe(a, counterChanged, func(v int) { got = append(got, v) })
	Send(b, counterChanged, 7)
	require.Equal(t, []int{7}, got)
}

func TestStaticCapability(t *testing.T) {
	useRegistry(t)

	var got []string
	h := SubscribeStatic(namespaceEvent, func(s string) { got = append(got, s) })
	SendStatic(namespaceEvent, "hello")
	require.Equal(t, []string{"hello"}, got)

	started := 0
	SubscribeStatic(namespaceStarted, func(Void) { started++ })
	SignalStatic(namespaceStarted)
	require.Equal(t, 1, started)

	h.Cancel()
	SendStatic(namespaceEvent, "again")
	require.Equal(t, []string{"hello"}, got)
}

func TestPackageReset(t *testing.T) {
	r := useRegistry(t)
	c := &counter{}

	Subscribe(c, counterChanged, func(int) { t.Fatal("reset registry must not deliver") })
	SubscribeStatic(namespaceEvent, func(string) { t.Fatal("reset registry must not deliver") })
	Reset()

	Send(c, counterChanged, 1)
	SendStatic(namespaceEvent, "x")
	require.False(t, r.Inspect().Next())
}
