package ports

import (
	"context"

	"fulfillment/internal/core/domain/model/order"
)

// PaymentAttempt is the result a payment method handler reports for one attempt.
type PaymentAttempt struct {
	State         order.PaymentState
	Amount        int64
	ErrorMessage  string
	TransactionID string
	Metadata      map[string]string
}

// PaymentMethodHandler talks to one payment provider. Attempt must not mutate the
// order; it may block on I/O and should honour ctx.
type PaymentMethodHandler interface {
	Code() string
	Attempt(ctx context.Context, o *order.Order, amount int64, metadata map[string]string) (PaymentAttempt, error)
}

// PaymentMethodRegistry resolves a payment method code to its handler.
type PaymentMethodRegistry interface {
	Get(code string) (PaymentMethodHandler, error)
}
