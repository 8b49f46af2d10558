package domain

import (
	"errors"
	"fmt"
)

type NotFoundError struct {
	Resource string
	Err      error
}

func (e NotFoundError) Error() string {
	if e.Resource == "" {
		return "not found"
	}
	return fmt.Sprintf("%s not found", e.Resource)
}

func (e NotFoundError) Unwrap() error { return e.Err }

type ValidationError struct {
	Field string
	Msg   string
	Err   error
}

func (e ValidationError) Error() string {
	if e.Msg != "" && e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Msg)
	}
	if e.Msg != "" {
		return e.Msg
	}
	if e.Field != "" {
		return fmt.Sprintf("invalid %s", e.Field)
	}
	return "validation error"
}

func (e ValidationError) Unwrap() error { return e.Err }

type ConflictError struct {
	Resource string
	Msg      string
	Err      error
}

func (e ConflictError) Error() string {
	switch {
	case e.Msg != "" && e.Resource != "":
		return fmt.Sprintf("%s conflict: %s", e.Resource, e.Msg)
	case e.Msg != "":
		return e.Msg
	case e.Resource != "":
		return fmt.Sprintf("%s conflict", e.Resource)
	default:
		return "conflict"
	}
}

func (e ConflictError) Unwrap() error { return e.Err }

// CapacityError signals a seat request the ledger cannot satisfy. It is a
// legitimate race outcome, not a caller mistake, so it carries its own type
// instead of riding on ValidationError.
type CapacityError struct {
	Requested int
	Available int
}

func (e CapacityError) Error() string {
	return fmt.Sprintf("insufficient capacity: requested %d seat(s), %d available", e.Requested, e.Available)
}

// CorruptionError means a seat-count mutation would break the ledger
// invariant. It indicates a coordinator bug and must never be clamped away.
type CorruptionError struct {
	Msg string
	Err error
}

func (e CorruptionError) Error() string {
	if e.Msg != "" {
		return "ledger corruption: " + e.Msg
	}
	return "ledger corruption"
}

func (e CorruptionError) Unwrap() error { return e.Err }

// ReferenceExhaustedError reports that the bounded retry loop for booking
// reference generation ran out of attempts.
type ReferenceExhaustedError struct {
	Attempts int
}

func (e ReferenceExhaustedError) Error() string {
	return fmt.Sprintf("booking reference generation exhausted after %d attempts", e.Attempts)
}

// TimeoutError wraps a store deadline so callers can retry instead of hang.
type TimeoutError struct {
	Err error
}

func (e TimeoutError) Error() string { return "transaction timed out" }

func (e TimeoutError) Unwrap() error { return e.Err }

type InternalError struct {
	Msg string
	Err error
}

func (e InternalError) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	return "internal error"
}

func (e InternalError) Unwrap() error { return e.Err }

func IsNotFound(err error) bool {
	var target NotFoundError
	return errors.As(err, &target)
}

func IsValidation(err error) bool {
	var target ValidationError
	return errors.As(err, &target)
}

func IsConflict(err error) bool {
	var target ConflictError
	return errors.As(err, &target)
}

func IsCapacity(err error) bool {
	var target CapacityError
	return errors.As(err, &target)
}

func IsCorruption(err error) bool {
	var target CorruptionError
	return errors.As(err, &target)
}

func IsReferenceExhausted(err error) bool {
	var target ReferenceExhaustedError
	return errors.As(err, &target)
}

func IsTimeout(err error) bool {
	var target TimeoutError
	return errors.As(err, &target)
}

func IsInternal(err error) bool {
	var target InternalError
	return errors.As(err, &target)
}
