package event

import (
	"fmt"
	"reflect"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"github.com/opdss/vent/contracts/event"
	contract "github.com/opdss/vent/contracts/iterator"
	"github.com/opdss/vent/iterator"
)

var _ event.Registry = (*Registry)(nil)

// Registry 事件标识到订阅列表的映射, 负责订阅登记, 分发和取消
//
// 所有对映射的读写都在 mu 保护下进行, 分发时先复制订阅列表再释放锁,
// 回调执行期间不持有锁, 因此回调内可以安全地订阅, 取消或再次分发.
type Registry struct {
	mu   sync.Mutex
	subs map[event.Identity][]*Observation

	logger  *zap.Logger
	strict  bool
	onPanic func(id event.Identity, v any)
}

// Info 单个事件的订阅概况
type Info struct {
	Identity    event.Identity `json:"identity"`
	Subscribers int            `json:"subscribers"`
}

func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		subs:   make(map[event.Identity][]*Observation),
		logger: zap.L().Named("event"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// New 按配置创建注册中心
func New(logger *zap.Logger, conf Config) *Registry {
	return NewRegistry(WithLogger(logger), WithStrict(conf.Strict))
}

// Register 登记一个类型擦除的订阅. 一般通过 Key.Bind 或 Subscribe 间接调用.
// sender 必须是可比较的值, 类型级事件传 nil.
func (r *Registry) Register(id event.Identity, sender any, cb event.Callback) event.Handle {
	if sender != nil && !reflect.TypeOf(sender).Comparable() {
		panic(Error.New("sender %T is not comparable", sender))
	}
	return r.register(id, sender, cb)
}

func (r *Registry) register(id event.Identity, sender any, cb event.Callback) *Observation {
	o := &Observation{
		id:       uuid.New(),
		identity: id,
		sender:   sender,
		callback: cb,
		registry: r,
	}

	r.mu.Lock()
	r.subs[id] = append(r.subs[id], o)
	r.mu.Unlock()

	return o
}

// Dispatch 把 payload 同步分发给调用时刻 id 下的全部订阅
//
// 快照中的每个订阅都会被调用一次, 即使它在本次分发过程中被取消;
// 分发过程中新增的订阅不会收到本次事件. 单个回调 panic 会被恢复并记录,
// 不影响后续回调.
func (r *Registry) Dispatch(id event.Identity, payload any) {
	r.mu.Lock()
	snapshot := slices.Clone(r.subs[id])
	r.mu.Unlock()

	for _, o := range snapshot {
		r.invoke(o, payload)
	}
}

func (r *Registry) invoke(o *Observation, payload any) {
	defer func() {
		v := recover()
		if v == nil {
			return
		}
		if err, ok := v.(error); ok && ErrDefect.Has(err) {
			panic(v)
		}
		r.logger.Error("event callback panicked",
			zap.Stringer("identity", o.identity),
			zap.Stringer("subscription", o.id),
			zap.Any("panic", v),
			zap.Stack("stack"))
		if r.onPanic != nil {
			r.onPanic(o.identity, v)
		}
	}()
	o.callback(payload)
}

// defect 载荷类型与订阅声明不一致, 只可能由绕过类型化接口的调用引起
func (r *Registry) defect(id event.Identity, want reflect.Type, got any) {
	r.logger.Error("event payload type mismatch",
		zap.Stringer("identity", id),
		zap.Stringer("want", want),
		zap.String("got", fmt.Sprintf("%T", got)))
	if r.strict {
		panic(ErrDefect.New("%s: payload %T delivered to callback expecting %s", id, got, want))
	}
}

// Cancel 取消订阅, 已取消或未知的句柄直接忽略
func (r *Registry) Cancel(h event.Handle) {
	if o, ok := h.(*Observation); ok && o != nil && o.registry == r {
		r.remove(o)
		return
	}
	if h != nil {
		h.Cancel()
	}
}

// CancelAll 依次取消 handles
func (r *Registry) CancelAll(handles ...event.Handle) {
	for _, h := range handles {
		r.Cancel(h)
	}
}

func (r *Registry) remove(o *Observation) {
	r.mu.Lock()
	defer r.mu.Unlock()

	list, ok := r.subs[o.identity]
	if !ok {
		return
	}
	i := slices.IndexFunc(list, o.equal)
	if i < 0 {
		return
	}
	copy(list[i:], list[i+1:])
	list[len(list)-1] = nil
	list = list[:len(list)-1]

	if len(list) == 0 {
		delete(r.subs, o.identity)
		return
	}
	r.subs[o.identity] = list
}

// Len id 当前的订阅数
func (r *Registry) Len(id event.Identity) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.subs[id])
}

// Inspect 按标识排序返回所有存在订阅的事件
func (r *Registry) Inspect() contract.Iterator[Info] {
	r.mu.Lock()
	ids := maps.Keys(r.subs)
	infos := make([]Info, 0, len(ids))
	slices.Sort(ids)
	for _, id := range ids {
		infos = append(infos, Info{Identity: id, Subscribers: len(r.subs[id])})
	}
	r.mu.Unlock()

	return iterator.NewSliceIterator(infos)
}

// Reset 清空所有订阅, 供测试隔离使用. 之前返回的句柄取消时不再有任何效果.
func (r *Registry) Reset() {
	r.mu.Lock()
	r.subs = make(map[event.Identity][]*Observation)
	r.mu.Unlock()
}

var (
	defaultOnce     sync.Once
	defaultRegistry atomic.Pointer[Registry]
)

// Default 进程级注册中心, 首次使用时创建
func Default() *Registry {
	if r := defaultRegistry.Load(); r != nil {
		return r
	}
	defaultOnce.Do(func() {
		defaultRegistry.CompareAndSwap(nil, NewRegistry())
	})
	return defaultRegistry.Load()
}

// ReplaceDefault 替换进程级注册中心, 返回恢复函数
//
//	defer event.ReplaceDefault(event.NewRegistry(event.WithStrict(true)))()
func ReplaceDefault(r *Registry) func() {
	if r == nil {
		r = NewRegistry()
	}
	prev := Default()
	defaultRegistry.Store(r)
	return func() { ReplaceDefault(prev) }
}

// Reset 清空进程级注册中心的全部订阅
func Reset() {
	Default().Reset()
}
