package request

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound             = errors.New("request not found")
	ErrMissingRequiredField = errors.New("missing required field")
	ErrAlreadyAssigned      = errors.New("request already assigned")
	ErrInvalidTransition    = errors.New("invalid state transition")
	ErrNotOwner             = errors.New("actor is not the assigned shopper")
	ErrInvalidRating        = errors.New("rating must be an integer between 1 and 5")
	ErrUnknownEvent         = errors.New("unknown lifecycle event")
	ErrConflict             = errors.New("request state conflict")
)

// MissingFieldError names the field that failed validation at creation.
type MissingFieldError struct {
	Field  string
	Reason string
}

func (e *MissingFieldError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("%s: %s", ErrMissingRequiredField, e.Field)
	}
	return fmt.Sprintf("%s: %s (%s)", ErrMissingRequiredField, e.Field, e.Reason)
}

func (e *MissingFieldError) Is(target error) bool {
	return target == ErrMissingRequiredField
}
