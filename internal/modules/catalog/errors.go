package catalog

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyName      = errors.New("catalog place has empty name")
	ErrDuplicatePlace = errors.New("duplicate catalog place")
)

// PlaceError ties a validation failure to the offending place name.
type PlaceError struct {
	Name string
	Err  error
}

func (e *PlaceError) Error() string {
	return fmt.Sprintf("catalog place %q: %v", e.Name, e.Err)
}

func (e *PlaceError) Unwrap() error {
	return e.Err
}
