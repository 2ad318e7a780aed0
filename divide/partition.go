package divide

import (
	"fmt"
	"slices"

	"golang.org/x/exp/constraints"
)

// Number is the element type accepted by PartitionSlice.
type Number interface {
	constraints.Integer | constraints.Float | constraints.Complex
}

// Range is a half-open depth interval [Start, End).
type Range struct {
	Start int
	End   int
}

// Len returns the number of depth slices in r.
func (r Range) Len() int {
	return max(r.End-r.Start, 0)
}

// Empty reports whether r holds no slice.
func (r Range) Empty() bool {
	return r.Len() == 0
}

// Contains reports whether depth index z lies in r.
func (r Range) Contains(z int) bool {
	return z >= r.Start && z < r.End
}

func (r Range) String() string {
	return fmt.Sprintf("[%d, %d)", r.Start, r.End)
}

// Normalize returns the split positions sorted ascending without duplicates.
// The input is left untouched.
func Normalize(splits []int) []int {
	out := slices.Clone(splits)
	slices.Sort(out)
	return slices.Compact(out)
}

// ValidateSplits checks every split against a depth axis of the given size.
func ValidateSplits(splits []int, depth int) error {
	for _, s := range splits {
		if s < 0 || s >= depth {
			return &RangeError{Index: s, Depth: depth}
		}
	}
	return nil
}

// Ranges computes the depth ranges produced by cutting [0, depth) at splits.
//
// Without boundary inclusion the ranges tile the axis exactly, one more
// range than there are distinct splits. With boundary inclusion each range
// but the last is extended by one slice (clipped to depth) and ranges that
// end up empty are dropped.
func Ranges(depth int, splits []int, includeBoundaries bool) ([]Range, error) {
	if depth < 0 {
		return nil, fmt.Errorf("negative depth %d", depth)
	}
	if err := ValidateSplits(splits, depth); err != nil {
		return nil, err
	}

	cuts := make([]int, 0, len(splits)+2)
	cuts = append(cuts, 0)
	cuts = append(cuts, Normalize(splits)...)
	cuts = append(cuts, depth)

	ranges := make([]Range, 0, len(cuts)-1)
	last := len(cuts) - 2
	for i := 0; i <= last; i++ {
		r := Range{Start: cuts[i], End: cuts[i+1]}
		if includeBoundaries {
			if i < last {
				r.End = min(r.End+1, depth)
			}
			// a lone range is the full copy and is kept even when depth is 0
			if r.Empty() && last > 0 {
				continue
			}
		}
		ranges = append(ranges, r)
	}
	return ranges, nil
}

// Partition splits a 4D volume along its depth axis. Each returned volume
// has the shape and dtype of v, holds v's values inside its range and zero
// bytes elsewhere. Outputs are ordered by ascending depth.
func Partition(v *Volume, splits []int, includeBoundaries bool) ([]*Volume, error) {
	out, _, err := PartitionWithRanges(v, splits, includeBoundaries)
	return out, err
}

// PartitionWithRanges is Partition that also reports the depth range of
// every output.
func PartitionWithRanges(v *Volume, splits []int, includeBoundaries bool) ([]*Volume, []Range, error) {
	if err := v.Validate(); err != nil {
		return nil, nil, err
	}
	itemSize, _ := v.ItemSize()

	parts, ranges, err := partitionFlat(v.Data, v.Shape, itemSize, splits, includeBoundaries)
	if err != nil {
		return nil, nil, err
	}
	out := make([]*Volume, len(parts))
	for i, data := range parts {
		out[i] = &Volume{Shape: slices.Clone(v.Shape), DType: v.DType, Data: data}
	}
	return out, ranges, nil
}

// PartitionSlice is Partition for a typed flat C-order slice of the given
// 4D shape.
func PartitionSlice[T Number](data []T, shape []int, splits []int, includeBoundaries bool) ([][]T, error) {
	if err := checkShape(shape, len(data), 1); err != nil {
		return nil, err
	}
	parts, _, err := partitionFlat(data, shape, 1, splits, includeBoundaries)
	return parts, err
}

// partitionFlat works on any flat element buffer; unit is the number of
// buffer entries per array element.
func partitionFlat[E any](data []E, shape []int, unit int, splits []int, includeBoundaries bool) ([][]E, []Range, error) {
	ranges, err := Ranges(shape[DepthAxis], splits, includeBoundaries)
	if err != nil {
		return nil, nil, err
	}

	frames := shape[0]
	plane := shape[2] * shape[3] * unit
	frame := shape[DepthAxis] * plane

	parts := make([][]E, len(ranges))
	for i, r := range ranges {
		out := make([]E, len(data))
		for t := 0; t < frames; t++ {
			lo := t*frame + r.Start*plane
			hi := t*frame + r.End*plane
			copy(out[lo:hi], data[lo:hi])
		}
		parts[i] = out
	}
	return parts, ranges, nil
}
