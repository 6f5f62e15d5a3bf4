// Package errs defines the errors returned across the fulfillment core.
//
// Validation and lookup failures (ValueIsRequiredError, ValueIsInvalidError,
// ValueIsOutOfRangeError, ObjectNotFoundError) wrap a package sentinel, so
// callers test them with errors.Is. An optional Cause adds detail to the
// message without changing what the error matches.
//
// Lifecycle and ledger failures carry a Kind instead:
//
//	NoSuchEdge             IllegalStateTransitionError
//	GuardFailed            InvalidTransitionError
//	NegativeStockRejected  NegativeStockError
//	PermissionDenied       PermissionDeniedError
//
// KindOf finds the kind through any amount of wrapping. Their messages are
// meant to be shown to clients as is.
package errs
