package zarr

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/gomlx/gomlx/pkg/core/tensors"
)

// TensorSupported reports whether arrays of dtype can be decoded into tensors.
func TensorSupported(dtype string) bool {
	name, _, err := ParseDType(dtype)
	if err != nil {
		return false
	}
	switch name {
	case "float32", "float64", "int8", "uint8", "int16", "uint16", "int32", "uint32", "int64", "uint64":
		return true
	}
	return false
}

// DecodeTensor converts little-endian C-order element bytes into a tensor
// of the given shape.
func DecodeTensor(dtype string, shape []int, raw []byte) (*tensors.Tensor, error) {
	name, itemSize, err := ParseDType(dtype)
	if err != nil {
		return nil, err
	}
	n := product(shape)
	if len(raw) != n*itemSize {
		return nil, fmt.Errorf("buffer has %d bytes, shape %v of %s needs %d", len(raw), shape, dtype, n*itemSize)
	}

	switch name {
	case "float32":
		data := make([]float32, n)
		for i := range data {
			data[i] = math.Float32frombits(binary.LittleEndian.Uint32(raw[i*4:]))
		}
		return tensors.FromFlatDataAndDimensions(data, shape...), nil
	case "float64":
		data := make([]float64, n)
		for i := range data {
			data[i] = math.Float64frombits(binary.LittleEndian.Uint64(raw[i*8:]))
		}
		return tensors.FromFlatDataAndDimensions(data, shape...), nil
	case "int8":
		data := make([]int8, n)
		for i := range data {
			data[i] = int8(raw[i])
		}
		return tensors.FromFlatDataAndDimensions(data, shape...), nil
	case "uint8":
		data := make([]uint8, n)
		copy(data, raw)
		return tensors.FromFlatDataAndDimensions(data, shape...), nil
	case "int16":
		data := make([]int16, n)
		for i := range data {
			data[i] = int16(binary.LittleEndian.Uint16(raw[i*2:]))
		}
		return tensors.FromFlatDataAndDimensions(data, shape...), nil
	case "uint16":
		data := make([]uint16, n)
		for i := range data {
			data[i] = binary.LittleEndian.Uint16(raw[i*2:])
		}
		return tensors.FromFlatDataAndDimensions(data, shape...), nil
	case "int32":
		data := make([]int32, n)
		for i := range data {
			data[i] = int32(binary.LittleEndian.Uint32(raw[i*4:]))
		}
		return tensors.FromFlatDataAndDimensions(data, shape...), nil
	case "uint32":
		data := make([]uint32, n)
		for i := range data {
			data[i] = binary.LittleEndian.Uint32(raw[i*4:])
		}
		return tensors.FromFlatDataAndDimensions(data, shape...), nil
	case "int64":
		data := make([]int64, n)
		for i := range data {
			data[i] = int64(binary.LittleEndian.Uint64(raw[i*8:]))
		}
		return tensors.FromFlatDataAndDimensions(data, shape...), nil
	case "uint64":
		data := make([]uint64, n)
		for i := range data {
			data[i] = binary.LittleEndian.Uint64(raw[i*8:])
		}
		return tensors.FromFlatDataAndDimensions(data, shape...), nil
	default:
		return nil, fmt.Errorf("unsupported dtype for tensors: %s", dtype)
	}
}

// EncodeTensor flattens a tensor into little-endian C-order bytes and
// returns the matching numpy-style dtype.
func EncodeTensor(t *tensors.Tensor) (dtype string, shape []int, raw []byte, err error) {
	shape = append([]int(nil), t.Shape().Dimensions...)
	t.ConstFlatData(func(flat any) {
		switch v := flat.(type) {
		case []float32:
			dtype, raw = "<f4", make([]byte, len(v)*4)
			for i, x := range v {
				binary.LittleEndian.PutUint32(raw[i*4:], math.Float32bits(x))
			}
		case []float64:
			dtype, raw = "<f8", make([]byte, len(v)*8)
			for i, x := range v {
				binary.LittleEndian.PutUint64(raw[i*8:], math.Float64bits(x))
			}
		case []int8:
			dtype, raw = "|i1", make([]byte, len(v))
			for i, x := range v {
				raw[i] = byte(x)
			}
		case []uint8:
			dtype, raw = "|u1", append([]byte(nil), v...)
		case []int16:
			dtype, raw = "<i2", make([]byte, len(v)*2)
			for i, x := range v {
				binary.LittleEndian.PutUint16(raw[i*2:], uint16(x))
			}
		case []uint16:
			dtype, raw = "<u2", make([]byte, len(v)*2)
			for i, x := range v {
				binary.LittleEndian.PutUint16(raw[i*2:], x)
			}
		case []int32:
			dtype, raw = "<i4", make([]byte, len(v)*4)
			for i, x := range v {
				binary.LittleEndian.PutUint32(raw[i*4:], uint32(x))
			}
		case []uint32:
			dtype, raw = "<u4", make([]byte, len(v)*4)
			for i, x := range v {
				binary.LittleEndian.PutUint32(raw[i*4:], x)
			}
		case []int64:
			dtype, raw = "<i8", make([]byte, len(v)*8)
			for i, x := range v {
				binary.LittleEndian.PutUint64(raw[i*8:], uint64(x))
			}
		case []uint64:
			dtype, raw = "<u8", make([]byte, len(v)*8)
			for i, x := range v {
				binary.LittleEndian.PutUint64(raw[i*8:], x)
			}
		default:
			err = fmt.Errorf("unsupported tensor data type %T", flat)
		}
	})
	if err != nil {
		return "", nil, nil, err
	}
	return dtype, shape, raw, nil
}
