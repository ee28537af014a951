package domain

import (
	"errors"
	"fmt"
)

var (
	ErrValidation         = errors.New("validation failed")
	ErrNotFound           = errors.New("not found")
	ErrCapacity           = errors.New("insufficient seats")
	ErrSeatConflict       = errors.New("seat already taken")
	ErrForbidden          = errors.New("forbidden")
	ErrAlreadyCancelled   = errors.New("booking already cancelled")
	ErrReferenceCollision = errors.New("reference collision")
	ErrContention         = errors.New("booking contention")
)

type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

func NewValidationError(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

type NotFoundError struct {
	Entity string
	Key    string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Entity, e.Key)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

type CapacityError struct {
	Requested int
	Available int
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("requested %d seats but only %d available", e.Requested, e.Available)
}

func (e *CapacityError) Unwrap() error { return ErrCapacity }

// SeatConflictError carries the first seat found taken. Seat may be empty when
// the collision was reported by the storage layer without detail.
type SeatConflictError struct {
	Seat string
}

func (e *SeatConflictError) Error() string {
	if e.Seat == "" {
		return "seat already taken"
	}
	return fmt.Sprintf("seat %s already taken", e.Seat)
}

func (e *SeatConflictError) Unwrap() error { return ErrSeatConflict }
