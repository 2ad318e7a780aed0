package divide

import (
	"encoding/binary"
	"fmt"
	"math"
	"math/cmplx"

	"github.com/TuSKan/zarr-divider/zarr"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Stats summarizes the values of a volume.
type Stats struct {
	Min, Max  float64
	Mean, Sum float64
	// NonZeroDepths lists the depth indices holding at least one non-zero value.
	NonZeroDepths []int
}

// Describe computes value statistics for v.
func Describe(v *Volume) (Stats, error) {
	if err := v.Validate(); err != nil {
		return Stats{}, err
	}
	values, err := Float64s(v)
	if err != nil {
		return Stats{}, err
	}

	var s Stats
	if len(values) > 0 {
		s.Min = floats.Min(values)
		s.Max = floats.Max(values)
		s.Sum = floats.Sum(values)
		s.Mean = stat.Mean(values, nil)
	}

	plane := v.Shape[2] * v.Shape[3]
	depth := v.Depth()
	for z := 0; z < depth; z++ {
	frames:
		for t := 0; t < v.Shape[0]; t++ {
			base := (t*depth + z) * plane
			for _, x := range values[base : base+plane] {
				if x != 0 {
					s.NonZeroDepths = append(s.NonZeroDepths, z)
					break frames
				}
			}
		}
	}
	return s, nil
}

// Float64s decodes the elements of v as float64 values. Complex elements
// are reduced to their magnitude.
func Float64s(v *Volume) ([]float64, error) {
	name, itemSize, err := zarr.ParseDType(v.DType)
	if err != nil {
		return nil, err
	}
	n := len(v.Data) / itemSize
	out := make([]float64, n)
	raw := v.Data

	switch name {
	case "bool", "uint8":
		for i := range out {
			out[i] = float64(raw[i])
		}
	case "int8":
		for i := range out {
			out[i] = float64(int8(raw[i]))
		}
	case "uint16":
		for i := range out {
			out[i] = float64(binary.LittleEndian.Uint16(raw[i*2:]))
		}
	case "int16":
		for i := range out {
			out[i] = float64(int16(binary.LittleEndian.Uint16(raw[i*2:])))
		}
	case "uint32":
		for i := range out {
			out[i] = float64(binary.LittleEndian.Uint32(raw[i*4:]))
		}
	case "int32":
		for i := range out {
			out[i] = float64(int32(binary.LittleEndian.Uint32(raw[i*4:])))
		}
	case "uint64":
		for i := range out {
			out[i] = float64(binary.LittleEndian.Uint64(raw[i*8:]))
		}
	case "int64":
		for i := range out {
			out[i] = float64(int64(binary.LittleEndian.Uint64(raw[i*8:])))
		}
	case "float32":
		for i := range out {
			out[i] = float64(math.Float32frombits(binary.LittleEndian.Uint32(raw[i*4:])))
		}
	case "float64":
		for i := range out {
			out[i] = math.Float64frombits(binary.LittleEndian.Uint64(raw[i*8:]))
		}
	case "complex64":
		for i := range out {
			re := math.Float32frombits(binary.LittleEndian.Uint32(raw[i*8:]))
			im := math.Float32frombits(binary.LittleEndian.Uint32(raw[i*8+4:]))
			out[i] = cmplx.Abs(complex(float64(re), float64(im)))
		}
	case "complex128":
		for i := range out {
			re := math.Float64frombits(binary.LittleEndian.Uint64(raw[i*16:]))
			im := math.Float64frombits(binary.LittleEndian.Uint64(raw[i*16+8:]))
			out[i] = cmplx.Abs(complex(re, im))
		}
	default:
		return nil, fmt.Errorf("cannot summarize dtype %s", v.DType)
	}
	return out, nil
}
