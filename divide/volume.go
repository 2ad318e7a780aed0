package divide

import (
	"fmt"

	"github.com/TuSKan/zarr-divider/zarr"
)

// Rank is the number of axes of a volume: T, Z, Y, X.
const Rank = 4

// DepthAxis is the axis that gets partitioned.
const DepthAxis = 1

// Volume is a dense C-order array with little-endian elements described
// by a numpy-style dtype such as "<f4" or "|u1".
type Volume struct {
	Shape []int
	DType string
	Data  []byte
}

// NewVolume checks shape and dtype and wraps data as a volume. A nil data
// allocates a zero-filled one.
func NewVolume(shape []int, dtype string, data []byte) (*Volume, error) {
	_, itemSize, err := zarr.ParseDType(dtype)
	if err != nil {
		return nil, fmt.Errorf("invalid dtype: %w", err)
	}
	if data == nil {
		if err := checkShape(shape, -1, itemSize); err != nil {
			return nil, err
		}
		data = make([]byte, elements(shape)*itemSize)
	} else if err := checkShape(shape, len(data), itemSize); err != nil {
		return nil, err
	}
	return &Volume{
		Shape: append([]int(nil), shape...),
		DType: dtype,
		Data:  data,
	}, nil
}

// ItemSize returns the byte size of one element.
func (v *Volume) ItemSize() (int, error) {
	_, size, err := zarr.ParseDType(v.DType)
	return size, err
}

// Depth returns the size of the depth axis, or 0 for a malformed volume.
func (v *Volume) Depth() int {
	if len(v.Shape) <= DepthAxis {
		return 0
	}
	return v.Shape[DepthAxis]
}

// Validate reports whether v is a well-formed 4D volume.
func (v *Volume) Validate() error {
	itemSize, err := v.ItemSize()
	if err != nil {
		return fmt.Errorf("invalid dtype: %w", err)
	}
	return checkShape(v.Shape, len(v.Data), itemSize)
}

// checkShape validates rank and extents. When length is non-negative it
// must equal the element count times unit.
func checkShape(shape []int, length, unit int) error {
	if len(shape) != Rank {
		return &ShapeError{Shape: shape, Reason: fmt.Sprintf("expected %d dimensions (T, Z, Y, X), got %d", Rank, len(shape))}
	}
	for i, d := range shape {
		if d < 0 {
			return &ShapeError{Shape: shape, Reason: fmt.Sprintf("negative extent on axis %d", i)}
		}
	}
	if length >= 0 && elements(shape)*unit != length {
		return &ShapeError{Shape: shape, Reason: fmt.Sprintf("data holds %d values, shape needs %d", length/unit, elements(shape))}
	}
	return nil
}

func elements(shape []int) int {
	n := 1
	for _, d := range shape {
		n *= d
	}
	return n
}
