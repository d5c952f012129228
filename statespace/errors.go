package statespace

import "errors"

var (
	// ErrNotRepresentable indicates a finite literal that overflows the element type.
	ErrNotRepresentable = errors.New("statespace: value not representable in element type")

	// ErrShape indicates a constructor received the wrong number of elements.
	ErrShape = errors.New("statespace: element count does not match dimensions")
)
