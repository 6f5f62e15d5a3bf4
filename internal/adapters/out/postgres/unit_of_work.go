// Package postgres provides the GORM implementation of the Unit of Work pattern.
// A unit of work owns one database transaction and the repositories bound to it,
// and tracks the aggregates they write.
//
// After a successful commit the unit of work drains the domain events of the
// tracked aggregates, marks their uncommitted transitions and movements as
// persisted and hands the events to the configured ports.EventPublisher. A
// publication failure is logged; the transaction is already committed.
//
// Usage:
//
//	factory := NewGormUnitOfWorkFactory(db, publisher, logger)
//	uow := factory.Create()
//
//	if err := uow.Begin(ctx); err != nil {
//	    return err
//	}
//	defer func() {
//	    _ = uow.Rollback(ctx)
//	}()
//
//	if err := uow.OrderRepository().Update(ctx, o); err != nil {
//	    return err
//	}
//	return uow.Commit(ctx)
//
// Each UnitOfWork instance is used by one goroutine; concurrent operations
// create their own.
package postgres

import (
	"context"
	"log/slog"

	"fulfillment/internal/adapters/out/postgres/orderrepo"
	"fulfillment/internal/adapters/out/postgres/stockrepo"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/domain/model/stock"
	"fulfillment/internal/core/ports"

	"gorm.io/gorm"
)

// trackedAggregate is an aggregate written during the unit of work.
type trackedAggregate struct {
	ID        kernel.UUID
	Aggregate any
}

// eventSource is implemented by aggregates embedding kernel.EventRecorder.
type eventSource interface {
	DomainEvents() []kernel.DomainEvent
	ClearDomainEvents()
}

// GormUnitOfWorkFactory creates UnitOfWork instances sharing one connection pool.
type GormUnitOfWorkFactory struct {
	db        *gorm.DB
	publisher ports.EventPublisher
	logger    *slog.Logger
}

// NewGormUnitOfWorkFactory creates a factory. publisher may be nil, in which
// case events are dropped after commit.
func NewGormUnitOfWorkFactory(db *gorm.DB, publisher ports.EventPublisher, logger *slog.Logger) *GormUnitOfWorkFactory {
	if logger == nil {
		logger = slog.Default()
	}
	return &GormUnitOfWorkFactory{
		db:        db,
		publisher: publisher,
		logger:    logger.With("component", "GormUnitOfWork"),
	}
}

func (f *GormUnitOfWorkFactory) Create() ports.UnitOfWork {
	return f.CreateGorm()
}

// CreateGorm returns the concrete unit of work.
func (f *GormUnitOfWorkFactory) CreateGorm() *GormUnitOfWork {
	return &GormUnitOfWork{
		db:                f.db,
		publisher:         f.publisher,
		logger:            f.logger,
		trackedAggregates: make([]trackedAggregate, 0),
	}
}

// GormUnitOfWork coordinates one database transaction.
type GormUnitOfWork struct {
	db                *gorm.DB
	tx                *gorm.DB
	publisher         ports.EventPublisher
	logger            *slog.Logger
	trackedAggregates []trackedAggregate
}

// Begin starts the transaction. Calling it again while a transaction is open
// does nothing.
func (uow *GormUnitOfWork) Begin(ctx context.Context) error {
	if uow.tx != nil {
		return nil
	}

	uow.tx = uow.db.WithContext(ctx).Begin()
	if uow.tx.Error != nil {
		err := uow.tx.Error
		uow.tx = nil
		return err
	}

	return nil
}

// Commit finalizes the transaction and publishes the events of the tracked
// aggregates.
func (uow *GormUnitOfWork) Commit(ctx context.Context) error {
	if uow.tx == nil {
		return gorm.ErrInvalidTransaction
	}

	err := uow.tx.Commit().Error
	uow.tx = nil
	if err != nil {
		uow.trackedAggregates = uow.trackedAggregates[:0]
		return err
	}

	uow.afterCommit(ctx)
	return nil
}

// Rollback discards the transaction and forgets the tracked aggregates. It
// returns gorm.ErrInvalidTransaction when no transaction is open, which is the
// normal case for a deferred Rollback after Commit.
func (uow *GormUnitOfWork) Rollback(_ context.Context) error {
	if uow.tx == nil {
		return gorm.ErrInvalidTransaction
	}

	err := uow.tx.Rollback().Error
	uow.tx = nil
	uow.trackedAggregates = uow.trackedAggregates[:0]
	return err
}

func (uow *GormUnitOfWork) OrderRepository() ports.OrderRepository {
	return orderrepo.NewGormOrderRepository(uow.conn(), uow)
}

func (uow *GormUnitOfWork) VariantRepository() ports.VariantRepository {
	return stockrepo.NewGormVariantRepository(uow.conn(), uow)
}

// TrackAggregate registers an aggregate written by a repository of this unit of
// work. Tracking the same instance twice is harmless.
func (uow *GormUnitOfWork) TrackAggregate(id kernel.UUID, aggregate any) {
	for _, t := range uow.trackedAggregates {
		if t.Aggregate == aggregate {
			return
		}
	}
	uow.trackedAggregates = append(uow.trackedAggregates, trackedAggregate{
		ID:        id,
		Aggregate: aggregate,
	})
}

func (uow *GormUnitOfWork) conn() *gorm.DB {
	if uow.tx != nil {
		return uow.tx
	}
	return uow.db
}

func (uow *GormUnitOfWork) afterCommit(ctx context.Context) {
	var events []kernel.DomainEvent
	for _, t := range uow.trackedAggregates {
		switch a := t.Aggregate.(type) {
		case *order.Order:
			a.MarkTransitionsCommitted()
		case *stock.Variant:
			a.MarkMovementsCommitted()
		}
		if src, ok := t.Aggregate.(eventSource); ok {
			events = append(events, src.DomainEvents()...)
			src.ClearDomainEvents()
		}
	}
	uow.trackedAggregates = uow.trackedAggregates[:0]

	if uow.publisher == nil || len(events) == 0 {
		return
	}
	if err := uow.publisher.Publish(context.WithoutCancel(ctx), events...); err != nil {
		uow.logger.ErrorContext(ctx, "failed to publish domain events",
			"count", len(events), "error", err)
	}
}
