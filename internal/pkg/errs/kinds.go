package errs

import (
	"errors"
	"fmt"
)

// Kind is a stable, machine-readable error classification that the transport
// layer can switch on without parsing messages.
type Kind string

const (
	KindNoSuchEdge            Kind = "NoSuchEdge"
	KindGuardFailed           Kind = "GuardFailed"
	KindNegativeStockRejected Kind = "NegativeStockRejected"
	KindPermissionDenied      Kind = "PermissionDenied"
)

var (
	ErrIllegalStateTransition = errors.New("illegal state transition")
	ErrInvalidTransition      = errors.New("invalid transition")
	ErrNegativeStock          = errors.New("negative stock rejected")
	ErrPermissionDenied       = errors.New("permission denied")
)

type kinded interface {
	Kind() Kind
}

// KindOf returns the Kind of the first classified error in err's chain.
func KindOf(err error) (Kind, bool) {
	var k kinded
	if errors.As(err, &k) {
		return k.Kind(), true
	}
	return "", false
}

// IllegalStateTransitionError is returned when no edge is declared between two states.
type IllegalStateTransitionError struct {
	From string
	To   string
}

func NewIllegalStateTransitionError(from, to string) *IllegalStateTransitionError {
	return &IllegalStateTransitionError{From: from, To: to}
}

func (e *IllegalStateTransitionError) Error() string {
	return fmt.Sprintf("Cannot transition Order from %q to %q", e.From, e.To)
}

func (e *IllegalStateTransitionError) Kind() Kind { return KindNoSuchEdge }

func (e *IllegalStateTransitionError) Unwrap() error { return ErrIllegalStateTransition }

// InvalidTransitionError is returned when an edge exists but its guard does not hold.
// Message is the human-readable unmet precondition.
type InvalidTransitionError struct {
	From    string
	To      string
	Message string
}

func NewInvalidTransitionError(from, to, message string) *InvalidTransitionError {
	return &InvalidTransitionError{From: from, To: to, Message: message}
}

func (e *InvalidTransitionError) Error() string { return e.Message }

func (e *InvalidTransitionError) Kind() Kind { return KindGuardFailed }

func (e *InvalidTransitionError) Unwrap() error { return ErrInvalidTransition }

// NegativeStockError is returned when stock on hand is administratively set below zero.
type NegativeStockError struct {
	Value int
}

func NewNegativeStockError(value int) *NegativeStockError {
	return &NegativeStockError{Value: value}
}

func (e *NegativeStockError) Error() string { return "stockOnHand cannot be a negative value" }

func (e *NegativeStockError) Kind() Kind { return KindNegativeStockRejected }

func (e *NegativeStockError) Unwrap() error { return ErrNegativeStock }

// PermissionDeniedError is returned when an actor lacks a required permission.
type PermissionDeniedError struct {
	Permission string
}

func NewPermissionDeniedError(permission string) *PermissionDeniedError {
	return &PermissionDeniedError{Permission: permission}
}

func (e *PermissionDeniedError) Error() string {
	return fmt.Sprintf("You are not currently authorized to perform this action: %s permission required", e.Permission)
}

func (e *PermissionDeniedError) Kind() Kind { return KindPermissionDenied }

func (e *PermissionDeniedError) Unwrap() error { return ErrPermissionDenied }
