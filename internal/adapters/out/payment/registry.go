// Package payment holds the payment-method registry and the built-in payment
// method handlers.
package payment

import (
	"errors"
	"sort"
	"sync"

	"fulfillment/internal/core/ports"
	"fulfillment/internal/pkg/errs"
)

var ErrDuplicatePaymentMethod = errors.New("payment method is already registered")

// Registry maps payment method codes to handlers. It is safe for concurrent use.
type Registry struct {
	mu       sync.RWMutex
	handlers map[string]ports.PaymentMethodHandler
}

func NewRegistry(handlers ...ports.PaymentMethodHandler) (*Registry, error) {
	r := &Registry{handlers: make(map[string]ports.PaymentMethodHandler, len(handlers))}
	for _, h := range handlers {
		if err := r.Register(h); err != nil {
			return nil, err
		}
	}
	return r, nil
}

func (r *Registry) Register(h ports.PaymentMethodHandler) error {
	if h == nil {
		return errs.NewValueIsRequiredError("handler")
	}
	code := h.Code()
	if code == "" {
		return errs.NewValueIsRequiredError("code")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.handlers[code]; ok {
		return errs.NewValueIsInvalidErrorWithCause("code", ErrDuplicatePaymentMethod)
	}
	r.handlers[code] = h
	return nil
}

// Get returns errs.ObjectNotFoundError for an unknown code.
func (r *Registry) Get(code string) (ports.PaymentMethodHandler, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.handlers[code]
	if !ok {
		return nil, errs.NewObjectNotFoundError("paymentMethod", code)
	}
	return h, nil
}

func (r *Registry) Codes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	codes := make([]string, 0, len(r.handlers))
	for code := range r.handlers {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}
