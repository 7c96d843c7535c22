package iterator

import "github.com/opdss/vent/contracts/iterator"

var _ iterator.Sized[any] = (*SliceIterator[any])(nil)

// SliceIterator 数组数据迭代器
type SliceIterator[T any] struct {
	index int
	data  []T
}

// NewSliceIterator 基于已有数组创建迭代器, 不复制数据
func NewSliceIterator[T any](data []T) *SliceIterator[T] {
	return &SliceIterator[T]{data: data}
}

func (it *SliceIterator[T]) Next() bool {
	return it.index < len(it.data)
}

func (it *SliceIterator[T]) Value() T {
	if it.index >= len(it.data) {
		var v T
		return v
	}
	v := it.data[it.index]
	it.index++
	return v
}

func (it *SliceIterator[T]) Len() int {
	return len(it.data)
}

// Collect 读取迭代器剩余的全部数据
func Collect[T any](it iterator.Iterator[T]) []T {
	var out []T
	if s, ok := it.(iterator.Sized[T]); ok {
		out = make([]T, 0, s.Len())
	}
	for it.Next() {
		out = append(out, it.Value())
	}
	return out
}
