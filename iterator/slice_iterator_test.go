package iterator

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSliceIterator(t *testing.T) {
	it := NewSliceIterator([]string{"a", "b", "c"})
	require.Equal(t, 3, it.Len())

	var got []string
	for it.Next() {
		got = append(got, it.Value())
	}
	require.Equal(t, []string{"a", "b", "c"}, got)
	require.False(t, it.Next())
	require.Equal(t, "", it.Value())
}

func TestCollect(t *testing.T) {
	require.Empty(t, Collect[int](NewSliceIterator[int](nil)))

	it := NewSliceIterator([]int{1, 2, 3})
	it.Value()
	require.Equal(t, []int{2, 3}, Collect[int](it))
}
