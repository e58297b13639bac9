// Package deepcopy copies configuration trees.
package deepcopy

import (
	"fmt"

	"github.com/mitchellh/copystructure"
)

// Copy returns a deep copy of v.
// Maps and slices in v are never shared with the copy.
func Copy[T any](v T) (T, error) {
	if any(v) == nil {
		return v, nil
	}
	x, err := copystructure.Copy(v)
	if err != nil {
		var zero T
		return zero, fmt.Errorf("deep copy failed: %w", err)
	}
	if x == nil {
		var zero T
		return zero, nil
	}
	return x.(T), nil
}

// MustCopy is like Copy but panics if v cannot be copied.
func MustCopy[T any](v T) T {
	x, err := Copy(v)
	if err != nil {
		panic(err)
	}
	return x
}
