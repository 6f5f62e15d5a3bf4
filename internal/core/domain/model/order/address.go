package order

import (
	"errors"
	"fmt"
	"strings"

	"fulfillment/internal/pkg/errs"
	"fulfillment/internal/pkg/guard"
)

var (
	ErrAddressIsNotConstructed        = errors.New("Address must be created via NewAddress")
	ErrShippingMethodIsNotConstructed = errors.New("ShippingMethod must be created via NewShippingMethod")
)

// Address is the shipping destination of an order.
type Address struct {
	fullName    string
	streetLine1 string
	streetLine2 string
	city        string
	postalCode  string
	countryCode string

	guard guard.ConstructorGuard
}

// NewAddress validates and creates an Address. streetLine2 is optional;
// countryCode is an ISO 3166-1 alpha-2 code.
func NewAddress(fullName, streetLine1, streetLine2, city, postalCode, countryCode string) (Address, error) {
	a := Address{
		fullName:    strings.TrimSpace(fullName),
		streetLine1: strings.TrimSpace(streetLine1),
		streetLine2: strings.TrimSpace(streetLine2),
		city:        strings.TrimSpace(city),
		postalCode:  strings.TrimSpace(postalCode),
		countryCode: strings.ToUpper(strings.TrimSpace(countryCode)),
		guard:       guard.NewConstructorGuard(),
	}

	var err error
	if a.streetLine1 == "" {
		err = errors.Join(err, errs.NewValueIsRequiredError("streetLine1"))
	}
	if a.city == "" {
		err = errors.Join(err, errs.NewValueIsRequiredError("city"))
	}
	if len(a.countryCode) != 2 {
		err = errors.Join(err, errs.NewValueIsInvalidErrorWithCause(
			"countryCode", fmt.Errorf("%q is not a 2-letter code", countryCode)))
	}
	if err != nil {
		return Address{}, err
	}
	return a, nil
}

func (a Address) Validate() error {
	return a.guard.Validate(ErrAddressIsNotConstructed)
}

func (a Address) FullName() string    { return a.fullName }
func (a Address) StreetLine1() string { return a.streetLine1 }
func (a Address) StreetLine2() string { return a.streetLine2 }
func (a Address) City() string        { return a.city }
func (a Address) PostalCode() string  { return a.postalCode }
func (a Address) CountryCode() string { return a.countryCode }

// ShippingMethod is the shipping quote chosen for an order. The quote itself is
// computed outside the core; Price becomes the order's shippingTotal.
type ShippingMethod struct {
	code  string
	price int64

	guard guard.ConstructorGuard
}

func NewShippingMethod(code string, price int64) (ShippingMethod, error) {
	code = strings.TrimSpace(code)
	var err error
	if code == "" {
		err = errors.Join(err, errs.NewValueIsRequiredError("shipping method code"))
	}
	if price < 0 {
		err = errors.Join(err, errs.NewValueIsInvalidErrorWithCause(
			"shipping price", fmt.Errorf("%d is negative", price)))
	}
	if err != nil {
		return ShippingMethod{}, err
	}
	return ShippingMethod{code: code, price: price, guard: guard.NewConstructorGuard()}, nil
}

func (m ShippingMethod) Validate() error {
	return m.guard.Validate(ErrShippingMethodIsNotConstructed)
}

func (m ShippingMethod) Code() string { return m.code }
func (m ShippingMethod) Price() int64 { return m.price }
