package commands

import (
	"errors"
	"maps"
	"strings"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/errs"
	"fulfillment/internal/pkg/guard"
)

var ErrAddPaymentCommandIsNotConstructed = errors.New(
	"AddPaymentCommand must be created via NewAddPaymentCommand constructor",
)

// AddPaymentCommand submits a payment attempt for the outstanding amount of an
// order using the named payment method.
type AddPaymentCommand struct {
	orderID    kernel.UUID
	methodCode string
	metadata   map[string]string

	guard guard.ConstructorGuard
}

func NewAddPaymentCommand(orderID kernel.UUID, methodCode string, metadata map[string]string) (AddPaymentCommand, error) {
	var err error
	if vErr := orderID.Validate(); vErr != nil {
		err = errors.Join(err, vErr)
	}
	methodCode = strings.TrimSpace(methodCode)
	if methodCode == "" {
		err = errors.Join(err, errs.NewValueIsRequiredError("method"))
	}
	if err != nil {
		return AddPaymentCommand{}, err
	}

	return AddPaymentCommand{
		orderID:    orderID,
		methodCode: methodCode,
		metadata:   maps.Clone(metadata),
		guard:      guard.NewConstructorGuard(),
	}, nil
}

func (c AddPaymentCommand) OrderID() kernel.UUID { return c.orderID }
func (c AddPaymentCommand) MethodCode() string   { return c.methodCode }

func (c AddPaymentCommand) Metadata() map[string]string { return maps.Clone(c.metadata) }

func (c AddPaymentCommand) Validate() error {
	return c.guard.Validate(ErrAddPaymentCommandIsNotConstructed)
}
