package commands

import (
	"errors"
	"fmt"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/errs"
	"fulfillment/internal/pkg/guard"
)

var ErrRegisterVariantCommandIsNotConstructed = errors.New(
	"RegisterVariantCommand must be created via NewRegisterVariantCommand constructor",
)

// RegisterVariantCommand creates the stock record for a purchasable variant.
// Non-zero initial stock is recorded as an ADJUSTMENT so the ledger explains it.
type RegisterVariantCommand struct {
	variantID      kernel.UUID
	sku            string
	price          int64
	currency       kernel.CurrencyCode
	initialStock   int
	trackInventory bool

	guard guard.ConstructorGuard
}

func NewRegisterVariantCommand(
	variantID kernel.UUID,
	sku string,
	price int64,
	currency kernel.CurrencyCode,
	initialStock int,
	trackInventory bool,
) (RegisterVariantCommand, error) {
	var err error
	if vErr := variantID.Validate(); vErr != nil {
		err = errors.Join(err, vErr)
	}
	if vErr := currency.Validate(); vErr != nil {
		err = errors.Join(err, vErr)
	}
	if initialStock < 0 {
		err = errors.Join(err, errs.NewValueIsInvalidErrorWithCause(
			"initialStock", fmt.Errorf("%d is negative", initialStock)))
	}
	if err != nil {
		return RegisterVariantCommand{}, err
	}

	return RegisterVariantCommand{
		variantID:      variantID,
		sku:            sku,
		price:          price,
		currency:       currency,
		initialStock:   initialStock,
		trackInventory: trackInventory,
		guard:          guard.NewConstructorGuard(),
	}, nil
}

func (c RegisterVariantCommand) VariantID() kernel.UUID        { return c.variantID }
func (c RegisterVariantCommand) SKU() string                   { return c.sku }
func (c RegisterVariantCommand) Price() int64                  { return c.price }
func (c RegisterVariantCommand) Currency() kernel.CurrencyCode { return c.currency }
func (c RegisterVariantCommand) InitialStock() int             { return c.initialStock }
func (c RegisterVariantCommand) TrackInventory() bool          { return c.trackInventory }

func (c RegisterVariantCommand) Validate() error {
	return c.guard.Validate(ErrRegisterVariantCommandIsNotConstructed)
}
