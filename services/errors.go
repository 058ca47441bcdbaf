package services

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a workflow failure so callers can map it to a response
type ErrorKind int

const (
	KindInternal ErrorKind = iota
	KindValidation
	KindState
	KindNotFound
	KindExhausted
	KindForbidden
)

func (k ErrorKind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindState:
		return "state"
	case KindNotFound:
		return "not_found"
	case KindExhausted:
		return "exhausted"
	case KindForbidden:
		return "forbidden"
	}
	return "internal"
}

// Error is returned by every workflow operation that rejects its input or
// finds an entity in the wrong state. Err, when set, is the sentinel the
// error was derived from so that errors.Is keeps working on detailed messages.
type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(kind ErrorKind, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

func validationf(format string, args ...interface{}) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

// detail returns a copy of sentinel carrying a more specific message
func detail(sentinel *Error, format string, args ...interface{}) *Error {
	return &Error{Kind: sentinel.Kind, Message: fmt.Sprintf(format, args...), Err: sentinel}
}

var (
	ErrOrderNotFound      = newError(KindNotFound, "order not found")
	ErrOrderNotInProgress = newError(KindState, "order is not in progress")
	ErrOrderTransition    = newError(KindState, "order status change not allowed")
	ErrOrderHasNoItems    = newError(KindValidation, "order has no items")

	ErrPackageNotFound    = newError(KindNotFound, "package purchase not found")
	ErrPackageExhausted   = newError(KindExhausted, "package has no remaining sessions")
	ErrPackageTerminal    = newError(KindState, "package is in a terminal state")
	ErrPackageNotOwned    = newError(KindValidation, "package does not belong to the order's customer")
	ErrInsufficientCount  = newError(KindExhausted, "requested count exceeds remaining sessions")
	ErrRestoreExceedTotal = newError(KindExhausted, "restore would exceed the package total")
	ErrInvalidAdjustment  = newError(KindValidation, "invalid package adjustment")
	ErrInvalidPackageType = newError(KindValidation, "invalid package type")

	ErrCustomerNotFound = newError(KindNotFound, "customer not found")
	ErrServiceNotFound  = newError(KindNotFound, "service not found")
	ErrCouponNotFound   = newError(KindNotFound, "coupon not found")
	ErrCouponInvalid    = newError(KindValidation, "coupon cannot be applied")
	ErrCouponCodeTaken  = newError(KindValidation, "coupon code already exists")

	ErrApprovalNotFound = newError(KindNotFound, "discount approval request not found")
	ErrApprovalResolved = newError(KindState, "discount approval request is already resolved")

	ErrBackfillRunning = newError(KindState, "package backfill is already running")

	// errConcurrentUpdate signals a lost conditional update; the operation is retried
	errConcurrentUpdate = errors.New("concurrent update detected")
)

// KindOf reports the classification of err. Errors that did not originate
// from this package are internal.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}
