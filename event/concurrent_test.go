package event

import (
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"golang.org/x/sync/errgroup"
)

func TestConcurrentRegisterDispatchCancel(t *testing.T) {
	r := NewRegistry(WithLogger(zaptest.NewLogger(t)), WithStrict(true))
	c := &counter{}

	const (
		workers = 16
		rounds  = 200
	)

	var stable atomic.Int64
	counterChanged.Bind(r, c, func(int) { stable.Add(1) })

	cancelled := make([]*atomic.Int64, workers)
	handles := make([]*Observation, workers)

	var g errgroup.Group
	for i := 0; i < workers; i++ {
		cancelled[i] = new(atomic.Int64)
		g.Go(func() error {
			for j := 0; j < rounds; j++ {
				h := counterChanged.Bind(r, c, func(int) {})
				counterChanged.Fire(r, j)
				h.Cancel()
				h.Cancel()
			}
			handles[i] = counterChanged.Bind(r, c, func(int) { cancelled[i].Add(1) })
			handles[i].Cancel()
			return nil
		})
	}
	require.NoError(t, g.Wait())

	require.Equal(t, int64(workers*rounds), stable.Load())
	require.Equal(t, 1, r.Len(counterChanged.Identity()))

	before := make([]int64, workers)
	for i := range cancelled {
		before[i] = cancelled[i].Load()
	}
	counterChanged.Fire(r, -1)
	for i := range cancelled {
		require.Equal(t, before[i], cancelled[i].Load())
	}
	require.Equal(t, int64(workers*rounds+1), stable.Load())
}

func TestConcurrentRecursiveDispatch(t *testing.T) {
	r := NewRegistry(WithLogger(zaptest.NewLogger(t)), WithStrict(true))
	c := &counter{}

	var resets, changes atomic.Int64
	counterReset.Bind(r, c, func(int) { resets.Add(1) })
	counterChanged.Bind(r, c, func(v int) {
		changes.Add(1)
		h := counterReset.Bind(r, c, func(int) {})
		counterReset.Fire(r, v)
		h.Cancel()
	})

	const workers, rounds = 8, 100
	var g errgroup.Group
	for i := 0; i < workers; i++ {
		g.Go(func() error {
			for j := 0; j < rounds; j++ {
				counterChanged.Fire(r, j)
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())

	require.Equal(t, int64(workers*rounds), changes.Load())
	require.Equal(t, int64(workers*rounds), resets.Load())
	require.Equal(t, 1, r.Len(counterReset.Identity()))
}

func TestConcurrentStaticEvents(t *testing.T) {
	r := NewRegistry(WithLogger(zaptest.NewLogger(t)), WithStrict(true))

	var received atomic.Int64
	var g errgroup.Group
	for i := 0; i < 8; i++ {
		g.Go(func() error {
			h := namespaceEvent.Bind(r, func(string) { received.Add(1) })
			defer h.Cancel()
			for j := 0; j < 50; j++ {
				namespaceEvent.Fire(r, "tick")
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())

	// 每个订阅者至少收到自己发出的全部事件
	require.GreaterOrEqual(t, received.Load(), int64(8*50))
	require.Zero(t, r.Len(namespaceEvent.Identity()))
}
