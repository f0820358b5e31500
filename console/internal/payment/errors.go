package payment

import (
	"errors"
	"fmt"
)

var (
	ErrNotOpen       = errors.New("payment flow is not open")
	ErrProcessing    = errors.New("payment is processing")
	ErrWrongStep     = errors.New("action not available on this step")
	ErrNotSelfServe  = errors.New("plan is not available for self-serve checkout")
	ErrUnknownMethod = errors.New("unknown payment method")
	ErrSuperseded    = errors.New("payment session closed before completion")
)

// Code classifies a gateway failure.
type Code string

const (
	CodeDeclined Code = "declined"
	CodeNetwork  Code = "network"
	CodeInvalid  Code = "invalid"
)

// Error is returned by a Gateway when a charge does not go through.
type Error struct {
	Code    Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("payment %s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("payment %s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// Retryable reports whether resubmitting may succeed.
func (e *Error) Retryable() bool { return e.Code == CodeNetwork }

// AsError extracts a *Error from err.
func AsError(err error) (*Error, bool) {
	var pe *Error
	ok := errors.As(err, &pe)
	return pe, ok
}
