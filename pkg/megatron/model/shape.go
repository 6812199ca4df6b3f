package model

import (
	"strconv"
	"strings"
)

// Shape describes the dimensions of a single record. The batch dimension is
// implicit and always comes first in a Tensor, so a 48x48 RGB image is
// Shape{48, 48, 3} and a scalar record is the empty shape.
type Shape []int

// Size returns the number of elements in one record.
func (s Shape) Size() int {
	size := 1
	for _, dim := range s {
		size *= dim
	}

	return size
}

// Equal reports whether two shapes have identical dimensions.
func (s Shape) Equal(other Shape) bool {
	if len(s) != len(other) {
		return false
	}
	for i := range s {
		if s[i] != other[i] {
			return false
		}
	}

	return true
}

// Clone returns an independent copy of the shape.
func (s Shape) Clone() Shape {
	if s == nil {
		return nil
	}
	out := make(Shape, len(s))
	copy(out, s)

	return out
}

func (s Shape) String() string {
	dims := make([]string, len(s))
	for i, dim := range s {
		dims[i] = strconv.Itoa(dim)
	}

	return "(" + strings.Join(dims, ",") + ")"
}
