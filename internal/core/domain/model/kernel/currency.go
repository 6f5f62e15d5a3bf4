package kernel

import (
	"fmt"

	"fulfillment/internal/pkg/errs"
)

// CurrencyCode is an ISO 4217 alphabetic code such as "USD". Monetary amounts
// throughout the core are int64 minor units in the order's currency.
type CurrencyCode string

func NewCurrencyCode(code string) (CurrencyCode, error) {
	c := CurrencyCode(code)
	if err := c.Validate(); err != nil {
		return "", err
	}
	return c, nil
}

func (c CurrencyCode) Validate() error {
	if len(c) != 3 {
		return errs.NewValueIsInvalidErrorWithCause("currency code", fmt.Errorf("%q is not a 3-letter code", string(c)))
	}
	for _, r := range c {
		if r < 'A' || r > 'Z' {
			return errs.NewValueIsInvalidErrorWithCause("currency code", fmt.Errorf("%q must be upper-case letters", string(c)))
		}
	}
	return nil
}

func (c CurrencyCode) String() string {
	return string(c)
}
