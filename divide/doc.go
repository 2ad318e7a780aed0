// Package divide splits 4D (T, Z, Y, X) volumes into sub-volumes along the
// depth axis.
//
// Every output keeps the shape and dtype of its source. Voxels inside the
// output's depth range are copied verbatim; everything else is zero. With
// boundary inclusion the slice at each interior split index appears in both
// neighbouring outputs.
//
//	parts, err := divide.Partition(vol, []int{2, 4}, false)
//
// The functions here are pure: they allocate fresh buffers and never modify
// their inputs.
package divide
