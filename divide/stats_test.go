package divide_test

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/TuSKan/zarr-divider/divide"
	"github.com/stretchr/testify/require"
)

func TestDescribe(t *testing.T) {
	vol := ramp(t, 1, 2, 1, 2)

	s, err := divide.Describe(vol)
	require.NoError(t, err)
	require.Equal(t, 1.0, s.Min)
	require.Equal(t, 4.0, s.Max)
	require.Equal(t, 10.0, s.Sum)
	require.InDelta(t, 2.5, s.Mean, 1e-9)
	require.Equal(t, []int{0, 1}, s.NonZeroDepths)
}

func TestDescribe_Signed(t *testing.T) {
	vol := &divide.Volume{Shape: []int{1, 3, 1, 1}, DType: "|i1", Data: []byte{0xfe, 0, 3}}
	s, err := divide.Describe(vol)
	require.NoError(t, err)
	require.Equal(t, -2.0, s.Min)
	require.Equal(t, 3.0, s.Max)
	require.Equal(t, []int{0, 2}, s.NonZeroDepths)
}

func TestDescribe_Empty(t *testing.T) {
	vol, err := divide.NewVolume([]int{1, 0, 4, 4}, "<f8", nil)
	require.NoError(t, err)
	s, err := divide.Describe(vol)
	require.NoError(t, err)
	require.Empty(t, s.NonZeroDepths)
	require.Zero(t, s.Sum)
}

func TestDescribe_Complex(t *testing.T) {
	// depth 0 holds 3+4i, depth 1 is zero
	data := make([]byte, 16)
	binary.LittleEndian.PutUint32(data[0:], math.Float32bits(3))
	binary.LittleEndian.PutUint32(data[4:], math.Float32bits(4))
	vol := &divide.Volume{Shape: []int{1, 2, 1, 1}, DType: "<c8", Data: data}

	s, err := divide.Describe(vol)
	require.NoError(t, err)
	require.Equal(t, 0.0, s.Min)
	require.Equal(t, 5.0, s.Max)
	require.Equal(t, []int{0}, s.NonZeroDepths)

	wide := &divide.Volume{Shape: []int{1, 1, 1, 1}, DType: "<c16", Data: make([]byte, 16)}
	binary.LittleEndian.PutUint64(wide.Data[8:], math.Float64bits(-2))
	values, err := divide.Float64s(wide)
	require.NoError(t, err)
	require.Equal(t, []float64{2}, values)
}

func TestDescribe_Unsupported(t *testing.T) {
	vol := &divide.Volume{Shape: []int{1, 1, 1, 1}, DType: "|V4", Data: make([]byte, 4)}
	_, err := divide.Describe(vol)
	require.Error(t, err)
}
