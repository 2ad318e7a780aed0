package viewer

import (
	"errors"
	"fmt"
	"testing"

	"github.com/TuSKan/zarr-divider/divide"
	"github.com/stretchr/testify/require"
)

func TestDivider_Choices(t *testing.T) {
	list := NewLayerList()
	d := NewDivider(list)
	defer d.Close()
	require.Empty(t, d.Choices())
	require.Equal(t, "", d.Selected())

	require.NoError(t, list.Add(&Layer{Name: "cells", Volume: volume(t, 1, 4, 2, 2), Visible: true}))
	require.NoError(t, list.Add(&Layer{Name: "labels", Volume: &divide.Volume{Shape: []int{4, 2, 2}, DType: "|u1", Data: make([]byte, 16)}}))
	require.NoError(t, list.Add(&Layer{Name: "nuclei", Volume: volume(t, 2, 3, 2, 2), Visible: true}))

	require.Equal(t, []string{"cells", "nuclei"}, d.Choices())
	require.Equal(t, "cells", d.Selected())

	require.NoError(t, d.Select("nuclei"))
	require.Error(t, d.Select("labels"))

	require.NoError(t, list.Remove("nuclei"))
	require.Equal(t, []string{"cells"}, d.Choices())
	require.Equal(t, "cells", d.Selected())
}

func TestDivider_Split(t *testing.T) {
	list := NewLayerList()
	src := &Layer{Name: "test_image", Volume: volume(t, 2, 8, 4, 4), Visible: true, Colormap: "magma", Opacity: 0.5}
	require.NoError(t, list.Add(src))

	d := NewDivider(list)
	defer d.Close()
	d.SetSplitText("3")

	created, err := d.Split()
	require.NoError(t, err)
	require.Len(t, created, 2)
	require.False(t, src.Visible)

	require.Equal(t, []string{"test_image", "test_image_part1", "test_image_part2"}, list.Names())
	require.Equal(t, divide.Range{Start: 0, End: 3}, created[0].Range)
	require.Equal(t, divide.Range{Start: 3, End: 8}, created[1].Range)
	for _, layer := range created {
		require.Equal(t, "test_image", layer.Source)
		require.True(t, layer.Visible)
		require.Equal(t, "magma", layer.Colormap)
		require.Equal(t, 0.5, layer.Opacity)
		require.Equal(t, src.Volume.Shape, layer.Volume.Shape)
	}

	// Produced layers become selectable.
	require.Equal(t, []string{"test_image", "test_image_part1", "test_image_part2"}, d.Choices())
}

func TestDivider_SplitWithBoundaries(t *testing.T) {
	list := NewLayerList()
	require.NoError(t, list.Add(&Layer{Name: "stack", Volume: volume(t, 1, 6, 4, 4), Visible: true}))

	d := NewDivider(list)
	defer d.Close()
	d.SetSplitText("[2]")
	d.SetIncludeBoundaries(true)
	d.HideSource = false
	d.Name = func(source string, n int, r divide.Range) string {
		return fmt.Sprintf("%s[%d:%d]", source, r.Start, r.End)
	}

	created, err := d.Split()
	require.NoError(t, err)
	require.Len(t, created, 2)
	require.Equal(t, "stack[0:3]", created[0].Name)
	require.Equal(t, "stack[2:6]", created[1].Name)

	src, _ := list.Get("stack")
	require.True(t, src.Visible)

	s, err := divide.Describe(created[1].Volume)
	require.NoError(t, err)
	require.Equal(t, []int{2, 3, 4, 5}, s.NonZeroDepths)
}

func TestDivider_ValidationLeavesListUntouched(t *testing.T) {
	tests := []struct {
		name string
		text string
		want error
	}{
		{"non-numeric", "3, x", &divide.ParseError{}},
		{"out of range", "2, 6", &divide.RangeError{}},
		{"negative", "-1", &divide.RangeError{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			list := NewLayerList()
			src := &Layer{Name: "stack", Volume: volume(t, 1, 6, 2, 2), Visible: true}
			require.NoError(t, list.Add(src))
			d := NewDivider(list)
			defer d.Close()
			d.SetSplitText(tt.text)

			_, err := d.Split()
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			switch tt.want.(type) {
			case *divide.ParseError:
				var target *divide.ParseError
				require.True(t, errors.As(err, &target))
			case *divide.RangeError:
				var target *divide.RangeError
				require.True(t, errors.As(err, &target))
			}
			require.Equal(t, []string{"stack"}, list.Names())
			require.True(t, src.Visible)
		})
	}
}

func TestDivider_NoSelection(t *testing.T) {
	d := NewDivider(NewLayerList())
	defer d.Close()
	_, err := d.Split()
	require.ErrorContains(t, err, "no image layer selected")
}

func TestDivider_NameCollision(t *testing.T) {
	list := NewLayerList()
	require.NoError(t, list.Add(&Layer{Name: "stack", Volume: volume(t, 1, 4, 1, 1), Visible: true}))
	require.NoError(t, list.Add(&Layer{Name: "stack_part2"}))

	d := NewDivider(list)
	defer d.Close()
	d.SetSplitText("1")

	_, err := d.Split()
	require.ErrorContains(t, err, "already exists")
	require.Equal(t, []string{"stack", "stack_part2"}, list.Names())
}

func TestDivider_EmptySplitTextCopiesLayer(t *testing.T) {
	list := NewLayerList()
	src := &Layer{Name: "stack", Volume: volume(t, 1, 4, 1, 1), Visible: true}
	require.NoError(t, list.Add(src))

	d := NewDivider(list)
	defer d.Close()

	created, err := d.Split()
	require.NoError(t, err)
	require.Len(t, created, 1)
	require.Equal(t, src.Volume, created[0].Volume)
}
