package ports

import (
	"context"

	"fulfillment/internal/core/domain/model/kernel"
)

// EventPublisher delivers domain events after the transaction that raised them
// has committed.
type EventPublisher interface {
	Publish(ctx context.Context, events ...kernel.DomainEvent) error
}
