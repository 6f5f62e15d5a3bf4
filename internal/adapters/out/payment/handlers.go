package payment

import (
	"context"
	"maps"
	"time"

	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/ports"

	"github.com/google/uuid"
)

const (
	AuthorizeOnlyCode     = "authorize-only"
	InstantSettlementCode = "instant-settlement"

	// DeclineMetadataKey makes the built-in handlers decline the attempt with
	// the key's value as the error message. Used by tests and demos.
	DeclineMetadataKey = "decline"
)

// OfflineHandler is a provider-less handler: it approves every attempt for the
// requested amount in a fixed state, after an optional delay.
type OfflineHandler struct {
	code    string
	outcome order.PaymentState
	delay   time.Duration
}

// NewAuthorizeOnlyHandler authorizes payments; funds are settled later by the
// merchant.
func NewAuthorizeOnlyHandler() *OfflineHandler {
	return &OfflineHandler{code: AuthorizeOnlyCode, outcome: order.PaymentStateAuthorized}
}

func NewInstantSettlementHandler() *OfflineHandler {
	return &OfflineHandler{code: InstantSettlementCode, outcome: order.PaymentStateSettled}
}

// WithDelay returns a copy that waits d before answering, to simulate provider
// latency.
func (h *OfflineHandler) WithDelay(d time.Duration) *OfflineHandler {
	c := *h
	c.delay = d
	return &c
}

func (h *OfflineHandler) Code() string { return h.code }

func (h *OfflineHandler) Attempt(
	ctx context.Context,
	o *order.Order,
	amount int64,
	metadata map[string]string,
) (ports.PaymentAttempt, error) {
	if h.delay > 0 {
		t := time.NewTimer(h.delay)
		defer t.Stop()
		select {
		case <-ctx.Done():
			return ports.PaymentAttempt{}, ctx.Err()
		case <-t.C:
		}
	}
	if err := ctx.Err(); err != nil {
		return ports.PaymentAttempt{}, err
	}

	meta := maps.Clone(metadata)
	if meta == nil {
		meta = make(map[string]string)
	}
	meta["orderId"] = o.ID().String()

	if reason, ok := metadata[DeclineMetadataKey]; ok {
		if reason == "" {
			reason = "payment declined"
		}
		return ports.PaymentAttempt{
			State:        order.PaymentStateDeclined,
			Amount:       amount,
			ErrorMessage: reason,
			Metadata:     meta,
		}, nil
	}

	return ports.PaymentAttempt{
		State:         h.outcome,
		Amount:        amount,
		TransactionID: h.code + "_" + uuid.NewString(),
		Metadata:      meta,
	}, nil
}
