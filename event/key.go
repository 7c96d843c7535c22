package event

import (
	"reflect"
	"strings"
	"sync"
	"weak"

	"github.com/opdss/vent/contracts/event"
)

// Void 无数据事件的载荷类型
type Void = struct{}

// Scope 事件作用域
type Scope uint8

const (
	// ScopeInstance 绑定到发布者实例
	ScopeInstance Scope = iota + 1
	// ScopeStatic 绑定到发布者类型本身
	ScopeStatic
)

func (s Scope) String() string {
	switch s {
	case ScopeInstance:
		return "instance"
	case ScopeStatic:
		return "static"
	}
	return "unknown"
}

// Key 实例级事件, 由发布者类型 S, 载荷类型 D 和声明标记共同确定
type Key[S Venter, D any] struct {
	identity event.Identity
	token    string
}

// Declare 声明一个实例级事件. token 通常取声明处的变量名,
// 同一发布者类型和载荷类型下的不同事件必须使用不同的 token.
func Declare[S Venter, D any](token string) Key[S, D] {
	return Key[S, D]{
		identity: compose("Key", reflect.TypeFor[S](), reflect.TypeFor[D](), token, ""),
		token:    token,
	}
}

func (k Key[S, D]) Identity() event.Identity { return k.identity }
func (k Key[S, D]) Token() string { return k.token }
func (k Key[S, D]) Scope() Scope { return ScopeInstance }
func (k Key[S, D]) String() string { return string(k.identity) }

// Fire 通过 r 分发 data
func (k Key[S, D]) Fire(r *Registry, data D) {
	r.Dispatch(k.identity, data)
}

// Bind 在 r 上订阅 sender 的该事件. r 只持有 sender 的弱引用.
func (k Key[S, D]) Bind(r *Registry, sender *S, fn func(D)) *Observation {
	var ref any
	if sender != nil {
		ref = weak.Make(sender)
	}
	return r.register(k.identity, ref, erase(r, k.identity, fn))
}

// StaticKey 类型级事件, 不需要发布者实例
type StaticKey[S Venter, D any] struct {
	identity event.Identity
	token    string
}

// DeclareStatic 声明一个类型级事件
func DeclareStatic[S Venter, D any](token string) StaticKey[S, D] {
	return StaticKey[S, D]{
		identity: compose("StaticKey", reflect.TypeFor[S](), reflect.TypeFor[D](), token, "--static"),
		token:    token,
	}
}

func (k StaticKey[S, D]) Identity() event.Identity { return k.identity }
func (k StaticKey[S, D]) Token() string { return k.token }
func (k StaticKey[S, D]) Scope() Scope { return ScopeStatic }
func (k StaticKey[S, D]) String() string { return string(k.identity) }

// Fire 通过 r 分发 data
func (k StaticKey[S, D]) Fire(r *Registry, data D) {
	r.Dispatch(k.identity, data)
}

// Bind 在 r 上订阅该类型级事件
func (k StaticKey[S, D]) Bind(r *Registry, fn func(D)) *Observation {
	return r.register(k.identity, nil, erase(r, k.identity, fn))
}

// Lazy 把事件声明包装成只在首次调用时求值的访问器
//
//	var LoggedOut = event.Lazy(func() event.Key[User, event.Void] {
//	    return event.Declare[User, event.Void]("LoggedOut")
//	})
func Lazy[K any](declare func() K) func() K {
	return sync.OnceValue(declare)
}

// compose 生成 "<kind>|<sender>-<payload>|<token><suffix>" 形式的标识
func compose(kind string, sender, payload reflect.Type, token, suffix string) event.Identity {
	if token == "" {
		panic(Error.New("empty declaration token for %s<%s, %s>", kind, sender, payload))
	}
	var b strings.Builder
	b.WriteString(kind)
	b.WriteByte('|')
	b.WriteString(typeName(sender))
	b.WriteByte('-')
	b.WriteString(typeName(payload))
	b.WriteByte('|')
	b.WriteString(token)
	b.WriteString(suffix)
	return event.Identity(b.String())
}

// typeName 带完整包路径的类型名, 避免不同包的同名类型冲突
func typeName(t reflect.Type) string {
	switch t.Kind() {
	case reflect.Pointer:
		return "*" + typeName(t.Elem())
	case reflect.Slice:
		if t.Name() == "" {
			return "[]" + typeName(t.Elem())
		}
	}
	if t.Name() != "" && t.PkgPath() != "" {
		return t.PkgPath() + "." + t.Name()
	}
	return t.String()
}

// erase 把类型化回调转换成注册中心保存的擦除形式
func erase[D any](r *Registry, id event.Identity, fn func(D)) event.Callback {
	want := reflect.TypeFor[D]()
	nilable := want.Kind() == reflect.Interface
	return func(payload any) {
		data, ok := payload.(D)
		if !ok && (payload != nil || !nilable) {
			r.defect(id, want, payload)
			return
		}
		fn(data)
	}
}
