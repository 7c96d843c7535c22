package event

// Venter 可以发布事件的类型. 通过嵌入 Source 实现, 不要自行实现.
type Venter interface {
	venter()
}

// Source 嵌入到发布者类型中即可获得事件能力
//
//	type GlobalEvents struct{ event.Source }
type Source struct {
	// 保证发布者实例非零大小, 每个实例拥有独立地址
	_ byte
}

func (Source) venter() {}

// Send 从 sender 发布携带 data 的实例级事件
func Send[S Venter, D any](sender *S, key Key[S, D], data D) {
	key.Fire(Default(), data)
}

// Signal 从 sender 发布无数据的实例级事件
func Signal[S Venter](sender *S, key Key[S, Void]) {
	key.Fire(Default(), Void{})
}

// Subscribe 订阅 sender 的实例级事件, 不会延长 sender 的生命周期
func Subscribe[S Venter, D any](sender *S, key Key[S, D], fn func(D)) *Observation {
	return key.Bind(Default(), sender, fn)
}

// SendStatic 从类型 S 发布携带 data 的类型级事件
func SendStatic[S Venter, D any](key StaticKey[S, D], data D) {
	key.Fire(Default(), data)
}

// SignalStatic 从类型 S 发布无数据的类型级事件
func SignalStatic[S Venter](key StaticKey[S, Void]) {
	key.Fire(Default(), Void{})
}

// SubscribeStatic 订阅类型 S 的类型级事件
func SubscribeStatic[S Venter, D any](key StaticKey[S, D], fn func(D)) *Observation {
	return key.Bind(Default(), fn)
}
