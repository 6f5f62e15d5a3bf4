package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/domain/services"
	"fulfillment/internal/core/ports"

	"go.opentelemetry.io/otel/attribute"
)

// DefaultPaymentAttemptTimeout bounds a payment handler call when no timeout is configured.
const DefaultPaymentAttemptTimeout = 10 * time.Second

// AddPaymentCommandHandler records a payment attempt and advances the order when
// payments cover its total.
//
// The payment method handler is called before the order lock is taken: a slow
// provider never blocks other requests for the same order. The attempt is bounded
// by the configured timeout; a timeout or handler error is recorded as a Declined
// payment carrying the error detail. Declined payments are returned, not raised.
// A payment that completes after the order left ArrangingPayment is still stored.
//
// Example:
//
//	cmd, _ := NewAddPaymentCommand(orderID, "card", map[string]string{"token": "tok_1"})
//	p, err := handler.Handle(ctx, cmd)
//	if err == nil && p.State() == order.PaymentStateDeclined {
//	    // offer another payment method
//	}
type AddPaymentCommandHandler struct {
	uowFactory     UoWFactory
	locker         ports.AggregateLocker
	registry       ports.PaymentMethodRegistry
	attemptTimeout time.Duration
	logger         *slog.Logger
}

func NewAddPaymentCommandHandler(
	uowFactory UoWFactory,
	locker ports.AggregateLocker,
	registry ports.PaymentMethodRegistry,
	attemptTimeout time.Duration,
	logger *slog.Logger,
) AddPaymentCommandHandler {
	if attemptTimeout <= 0 {
		attemptTimeout = DefaultPaymentAttemptTimeout
	}
	return AddPaymentCommandHandler{
		uowFactory:     uowFactory,
		locker:         locker,
		registry:       registry,
		attemptTimeout: attemptTimeout,
		logger:         logger.With("component", "AddPaymentCommandHandler"),
	}
}

func (h AddPaymentCommandHandler) Handle(ctx context.Context, command AddPaymentCommand) (_ *order.Payment, err error) {
	if err = command.Validate(); err != nil {
		return nil, err
	}

	ctx, span := tracer.Start(ctx, "AddPayment")
	span.SetAttributes(
		attribute.String("order.id", command.OrderID().String()),
		attribute.String("payment.method", command.MethodCode()),
	)
	defer func() { endSpan(span, err) }()

	method, err := h.registry.Get(command.MethodCode())
	if err != nil {
		return nil, err
	}

	current, err := h.uowFactory.Create().OrderRepository().Get(ctx, command.OrderID())
	if err != nil {
		return nil, err
	}
	if err = current.ValidateAddPayment(); err != nil {
		return nil, err
	}

	payment, err := h.attempt(ctx, method, current, command)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.String("payment.state", payment.State().String()))

	unlock, err := lockOrder(ctx, h.locker, command.OrderID())
	if err != nil {
		return nil, err
	}
	defer unlock()

	uow := h.uowFactory.Create()
	if err = uow.Begin(ctx); err != nil {
		return nil, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	orderRepo := uow.OrderRepository()
	variantRepo := uow.VariantRepository()

	o, err := orderRepo.GetForUpdate(ctx, command.OrderID())
	if err != nil {
		return nil, err
	}
	if err = o.AddPayment(payment); err != nil {
		return nil, err
	}

	// The order may have left ArrangingPayment while the provider was called.
	// The payment is kept, but only an order still awaiting payment advances.
	awaiting := o.State() == order.ArrangingPayment
	if !awaiting {
		h.logger.WarnContext(ctx, "payment completed after the order stopped awaiting payment",
			"orderId", o.ID().String(), "state", o.State().String(),
			"paymentId", payment.ID().String(), "paymentState", payment.State().String())
	}

	sm := services.NewOrderStateMachine()
	var ids []kernel.UUID
	if s := payment.State(); awaiting && (s == order.PaymentStateAuthorized || s == order.PaymentStateSettled) {
		ids = sm.StockAffected(o, order.PaymentAuthorized)
	}
	unlockVariants, err := lockVariants(ctx, h.locker, ids)
	if err != nil {
		return nil, err
	}
	defer unlockVariants()

	variants, err := loadVariants(ctx, variantRepo, ids)
	if err != nil {
		return nil, err
	}

	movements, advanced, err := sm.AdvanceAfterPayment(o, variants)
	if err != nil {
		return nil, err
	}

	if err = saveVariants(ctx, variantRepo, variants); err != nil {
		return nil, err
	}
	if err = orderRepo.Update(ctx, o); err != nil {
		return nil, err
	}
	if err = uow.Commit(ctx); err != nil {
		h.logger.ErrorContext(ctx, "failed to commit payment",
			"orderId", o.ID().String(), "paymentId", payment.ID().String(), "error", err)
		return nil, err
	}

	if payment.State() == order.PaymentStateDeclined {
		h.logger.InfoContext(ctx, "payment declined",
			"orderId", o.ID().String(), "method", payment.Method(), "reason", payment.ErrorMessage())
	}
	if advanced {
		warnOversold(ctx, h.logger, o.ID(), movements, variants)
	}
	return payment, nil
}

// attempt calls the payment method handler outside of any lock and turns its
// outcome into a Payment.
func (h AddPaymentCommandHandler) attempt(
	ctx context.Context,
	method ports.PaymentMethodHandler,
	o *order.Order,
	command AddPaymentCommand,
) (*order.Payment, error) {
	amount := o.OutstandingAmount()

	attemptCtx, cancel := context.WithTimeout(ctx, h.attemptTimeout)
	defer cancel()

	result, err := method.Attempt(attemptCtx, o, amount, command.Metadata())
	switch {
	case errors.Is(attemptCtx.Err(), context.DeadlineExceeded):
		result = ports.PaymentAttempt{
			State:        order.PaymentStateDeclined,
			ErrorMessage: fmt.Sprintf("payment attempt timed out after %s", h.attemptTimeout),
		}
	case err != nil:
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		result = ports.PaymentAttempt{
			State:        order.PaymentStateDeclined,
			ErrorMessage: err.Error(),
		}
	}

	if result.Amount == 0 {
		result.Amount = amount
	}
	return order.NewPayment(method.Code(), result.Amount, result.State, result.ErrorMessage, result.TransactionID, result.Metadata)
}
