package domain

import (
	"errors"
	"fmt"
)

type Kind int

const (
	KindValidation Kind = iota + 1
	KindNotFound
	KindConflict
	KindForbidden
	KindImmutableState
	KindTerminalState
	KindAlreadyCancelled
	KindNoRefundAvailable
	KindPaymentProvider
	KindInternal
)

// Sentinels for errors.Is. Any *Error matches the sentinel of its Kind.
var (
	ErrValidation        = &Error{Kind: KindValidation, Code: "VALIDATION_ERROR"}
	ErrNotFound          = &Error{Kind: KindNotFound, Code: "NOT_FOUND"}
	ErrConflict          = &Error{Kind: KindConflict, Code: "TIME_CONFLICT"}
	ErrForbidden         = &Error{Kind: KindForbidden, Code: "FORBIDDEN"}
	ErrImmutableState    = &Error{Kind: KindImmutableState, Code: "BOOKING_NOT_MODIFIABLE"}
	ErrTerminalState     = &Error{Kind: KindTerminalState, Code: "BOOKING_TERMINAL"}
	ErrAlreadyCancelled  = &Error{Kind: KindAlreadyCancelled, Code: "BOOKING_ALREADY_CANCELLED"}
	ErrNoRefundAvailable = &Error{Kind: KindNoRefundAvailable, Code: "NO_REFUND_AVAILABLE"}
	ErrPaymentProvider   = &Error{Kind: KindPaymentProvider, Code: "PAYMENT_PROVIDER_ERROR"}
	ErrInternal          = &Error{Kind: KindInternal, Code: "SERVER_ERROR"}
)

type Error struct {
	Kind    Kind
	Code    string
	Message string
	Fields  map[string]string
	Err     error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = e.Code
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// AsError extracts the *Error from err, if any.
func AsError(err error) (*Error, bool) {
	var de *Error
	if errors.As(err, &de) {
		return de, true
	}
	return nil, false
}

func Validation(message string, fields map[string]string) *Error {
	return &Error{Kind: KindValidation, Code: "VALIDATION_ERROR", Message: message, Fields: fields}
}

func NotFound(code, message string) *Error {
	return &Error{Kind: KindNotFound, Code: code, Message: message}
}

func Conflict(message string) *Error {
	return &Error{Kind: KindConflict, Code: "TIME_CONFLICT", Message: message}
}

func Forbidden(message string) *Error {
	return &Error{Kind: KindForbidden, Code: "FORBIDDEN", Message: message}
}

func ImmutableState(message string) *Error {
	return &Error{Kind: KindImmutableState, Code: "BOOKING_NOT_MODIFIABLE", Message: message}
}

func TerminalState(code, message string) *Error {
	return &Error{Kind: KindTerminalState, Code: code, Message: message}
}

func AlreadyCancelled(message string) *Error {
	return &Error{Kind: KindAlreadyCancelled, Code: "BOOKING_ALREADY_CANCELLED", Message: message}
}

func NoRefundAvailable(message string) *Error {
	return &Error{Kind: KindNoRefundAvailable, Code: "NO_REFUND_AVAILABLE", Message: message}
}

func PaymentProvider(message string, err error) *Error {
	return &Error{Kind: KindPaymentProvider, Code: "PAYMENT_PROVIDER_ERROR", Message: message, Err: err}
}

func Internal(message string, err error) *Error {
	return &Error{Kind: KindInternal, Code: "SERVER_ERROR", Message: message, Err: err}
}
