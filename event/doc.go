// Package event 实现进程内、编译期类型安全的事件发布/订阅
//
// 发布者类型嵌入 Source 获得事件能力, 并为每个事件声明一个 Key (实例级)
// 或 StaticKey (类型级), 载荷类型由 Key 的类型参数固定:
//
//	type User struct {
//	    event.Source
//	    Nickname *string
//	}
//
//	var NicknameChanged = event.Declare[User, *string]("NicknameChanged")
//
//	h := event.Subscribe(u, NicknameChanged, func(name *string) { ... })
//	defer h.Cancel()
//
//	event.Send(u, NicknameChanged, u.Nickname)
//
// 分发是同步的: Send 在调用方的 goroutine 上按订阅顺序依次执行回调,
// 全部返回后才返回. 分发前会对订阅列表做快照, 回调中订阅/取消订阅/再次发送
// 都不会影响本次分发.
//
// 实例级订阅只保存发布者的弱引用, 不会延长发布者的生命周期.
// 弱引用要求发布者分配在堆上 (new 或 &T{}).
//
// 所有订阅保存在进程级的 Registry 中, 首次使用时创建, 测试中可用 Reset 清空,
// 或用 ReplaceDefault 替换.
package event
