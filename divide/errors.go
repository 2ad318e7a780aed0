package divide

import "fmt"

// ShapeError reports a volume that is not a well-formed 4D array.
type ShapeError struct {
	Shape  []int
	Reason string
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("invalid volume shape %v: %s", e.Shape, e.Reason)
}

// RangeError reports a split index outside [0, Depth).
type RangeError struct {
	Index int
	Depth int
}

func (e *RangeError) Error() string {
	if e.Depth == 0 {
		return fmt.Sprintf("split index %d out of range: volume has no depth slices", e.Index)
	}
	return fmt.Sprintf("split index %d out of range: must be between 0 and %d", e.Index, e.Depth-1)
}

// ParseError reports a token of split text that is not an integer.
type ParseError struct {
	Token string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid split position %q: expected an integer", e.Token)
}
