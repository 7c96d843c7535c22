package event

// Registry 进程内事件注册中心
type Registry interface {
	//Register 登记订阅, sender 为发布者的非持有引用, 类型级事件传 nil
	Register(id Identity, sender any, cb Callback) Handle
	//Dispatch 同步分发到当前所有订阅
	Dispatch(id Identity, payload any)
	//Cancel 取消订阅, 重复取消无副作用
	Cancel(Handle)
	CancelAll(...Handle)
}

// Handle 订阅句柄
type Handle interface {
	// Cancel 取消订阅, 可重复调用
	Cancel()
}

type Handles []Handle

// CancelAll 批量取消
func (hs Handles) CancelAll() {
	for _, h := range hs {
		if h != nil {
			h.Cancel()
		}
	}
}
