package divide

import (
	"fmt"

	"github.com/gomlx/gomlx/pkg/core/tensors"
)

// PartitionTensor is Partition for a rank-4 gomlx tensor. The tensor's
// flat data is read once; results are new tensors of the same dtype.
func PartitionTensor(t *tensors.Tensor, splits []int, includeBoundaries bool) ([]*tensors.Tensor, error) {
	dims := append([]int(nil), t.Shape().Dimensions...)
	if len(dims) != Rank {
		return nil, &ShapeError{Shape: dims, Reason: fmt.Sprintf("expected %d dimensions (T, Z, Y, X), got %d", Rank, len(dims))}
	}

	var (
		out []*tensors.Tensor
		err error
	)
	t.ConstFlatData(func(flat any) {
		switch v := flat.(type) {
		case []float32:
			out, err = partitionTensor(v, dims, splits, includeBoundaries, tensors.FromFlatDataAndDimensions[float32])
		case []float64:
			out, err = partitionTensor(v, dims, splits, includeBoundaries, tensors.FromFlatDataAndDimensions[float64])
		case []int8:
			out, err = partitionTensor(v, dims, splits, includeBoundaries, tensors.FromFlatDataAndDimensions[int8])
		case []int16:
			out, err = partitionTensor(v, dims, splits, includeBoundaries, tensors.FromFlatDataAndDimensions[int16])
		case []int32:
			out, err = partitionTensor(v, dims, splits, includeBoundaries, tensors.FromFlatDataAndDimensions[int32])
		case []int64:
			out, err = partitionTensor(v, dims, splits, includeBoundaries, tensors.FromFlatDataAndDimensions[int64])
		case []uint8:
			out, err = partitionTensor(v, dims, splits, includeBoundaries, tensors.FromFlatDataAndDimensions[uint8])
		case []uint16:
			out, err = partitionTensor(v, dims, splits, includeBoundaries, tensors.FromFlatDataAndDimensions[uint16])
		case []uint32:
			out, err = partitionTensor(v, dims, splits, includeBoundaries, tensors.FromFlatDataAndDimensions[uint32])
		case []uint64:
			out, err = partitionTensor(v, dims, splits, includeBoundaries, tensors.FromFlatDataAndDimensions[uint64])
		default:
			err = fmt.Errorf("unsupported tensor data type %T", flat)
		}
	})
	return out, err
}

func partitionTensor[T Number](flat []T, dims []int, splits []int, includeBoundaries bool, build func([]T, ...int) *tensors.Tensor) ([]*tensors.Tensor, error) {
	parts, err := PartitionSlice(flat, dims, splits, includeBoundaries)
	if err != nil {
		return nil, err
	}
	out := make([]*tensors.Tensor, len(parts))
	for i, p := range parts {
		out[i] = build(p, dims...)
	}
	return out, nil
}
