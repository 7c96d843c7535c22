package event

// Identity 事件唯一标识，由发布者类型、数据类型和声明标记组合而成
type Identity string

func (id Identity) String() string {
	return string(id)
}

// Callback 类型擦除后的订阅回调
type Callback func(payload any)
