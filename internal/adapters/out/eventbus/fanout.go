// Package eventbus fans domain events out to several publishers.
package eventbus

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/ports"
)

// FanOut delivers every batch to each publisher in turn. A failing publisher
// does not stop the others; the failures are logged and returned joined.
type FanOut struct {
	publishers []ports.EventPublisher
	logger     *slog.Logger
}

func NewFanOut(logger *slog.Logger, publishers ...ports.EventPublisher) *FanOut {
	if logger == nil {
		logger = slog.Default()
	}
	return &FanOut{publishers: publishers, logger: logger.With("component", "EventFanOut")}
}

func (f *FanOut) Publish(ctx context.Context, events ...kernel.DomainEvent) error {
	if len(events) == 0 {
		return nil
	}

	var err error
	for _, p := range f.publishers {
		if pErr := p.Publish(ctx, events...); pErr != nil {
			f.logger.WarnContext(ctx, "event publisher failed",
				"publisher", fmt.Sprintf("%T", p), "count", len(events), "error", pErr)
			err = errors.Join(err, pErr)
		}
	}
	return err
}
