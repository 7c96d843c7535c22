package iterator

type Iterator[T any] interface {
	//Next 是否有下一条数据
	Next() bool
	//Value 获取下一条数据
	Value() T
}

// Sized 可预知数据总量的迭代器
type Sized[T any] interface {
	Iterator[T]
	//Len 数据总量
	Len() int
}
