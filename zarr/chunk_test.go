package zarr

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestChunkKey(t *testing.T) {
	tests := []struct {
		indices   []int
		separator string
		expected  string
	}{
		{[]int{1, 4}, ".", "1.4"},
		{[]int{0, 0, 0}, ".", "0.0.0"},
		{[]int{10}, ".", "10"},
		{[]int{1, 2}, "/", "1/2"},
		{[]int{0, 3, 0, 1}, "/", "0/3/0/1"},
		{[]int{}, ".", "0"},
	}

	for _, tt := range tests {
		got := ChunkKey(tt.indices, tt.separator)
		if got != tt.expected {
			t.Errorf("ChunkKey(%v, %q) = %q, want %q", tt.indices, tt.separator, got, tt.expected)
		}
	}
}

func TestGridShape(t *testing.T) {
	require.Equal(t, []int{1, 3, 2, 2}, GridShape([]int{1, 6, 4, 4}, []int{1, 2, 2, 2}))
	require.Equal(t, []int{1, 2, 1, 1}, GridShape([]int{1, 5, 4, 4}, []int{1, 4, 4, 4}))
	require.Equal(t, []int{}, GridShape(nil, nil))
}

func TestIterateGrid(t *testing.T) {
	var got [][]int
	err := iterateGrid([]int{0, 1}, []int{2, 3}, func(idx []int) error {
		got = append(got, append([]int(nil), idx...))
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, [][]int{{0, 1}, {0, 2}, {1, 1}, {1, 2}}, got)

	calls := 0
	require.NoError(t, iterateGrid([]int{0, 2}, []int{2, 2}, func([]int) error {
		calls++
		return nil
	}))
	require.Zero(t, calls)
}

func TestStrides(t *testing.T) {
	require.Equal(t, []int{96, 16, 4, 1}, strides([]int{2, 6, 4, 4}))
	require.Equal(t, []int{}, strides(nil))
}
