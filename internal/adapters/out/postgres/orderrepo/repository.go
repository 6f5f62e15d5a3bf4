package orderrepo

import (
	"context"
	"errors"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/pkg/errs"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormOrderRepository implements ports.OrderRepository using GORM.
//
// The aggregate is written as a whole: the orders row is updated, children are
// upserted by primary key and adjustments are replaced. Uncommitted state
// transitions are appended to order_state_transitions.
type GormOrderRepository struct {
	db      *gorm.DB
	tracker aggregateTracker
}

// aggregateTracker defines the interface for tracking aggregates.
type aggregateTracker interface {
	TrackAggregate(id kernel.UUID, aggregate any)
}

func NewGormOrderRepository(db *gorm.DB, tracker aggregateTracker) *GormOrderRepository {
	return &GormOrderRepository{
		db:      db,
		tracker: tracker,
	}
}

func (r *GormOrderRepository) Add(ctx context.Context, aggregate *order.Order) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	db := r.db.WithContext(ctx)
	if err := db.Omit(clause.Associations).Create(&dto).Error; err != nil {
		return err
	}
	if err := r.saveChildren(db, aggregate, dto); err != nil {
		return err
	}

	r.tracker.TrackAggregate(aggregate.ID(), aggregate)
	return nil
}

func (r *GormOrderRepository) Update(ctx context.Context, aggregate *order.Order) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	db := r.db.WithContext(ctx)
	result := db.Model(&OrderDTO{}).
		Where("id = ?", dto.ID).
		Select("*").
		Omit("id", "created_at", clause.Associations).
		Updates(&dto)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errs.NewObjectNotFoundError("order", aggregate.ID().String())
	}
	if err := r.saveChildren(db, aggregate, dto); err != nil {
		return err
	}

	r.tracker.TrackAggregate(aggregate.ID(), aggregate)
	return nil
}

func (r *GormOrderRepository) Get(ctx context.Context, id kernel.UUID) (*order.Order, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}
	return r.load(r.db.WithContext(ctx), id)
}

// GetForUpdate locks the orders row until the surrounding transaction ends.
func (r *GormOrderRepository) GetForUpdate(ctx context.Context, id kernel.UUID) (*order.Order, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	db := r.db.WithContext(ctx)
	var locked []string
	if err := db.Model(&OrderDTO{}).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id.Bytes()).
		Pluck("id", &locked).Error; err != nil {
		return nil, err
	}
	if len(locked) == 0 {
		return nil, errs.NewObjectNotFoundError("order", id.String())
	}
	return r.load(db, id)
}

func (r *GormOrderRepository) load(db *gorm.DB, id kernel.UUID) (*order.Order, error) {
	var dto OrderDTO
	err := db.
		Preload("Lines", byPosition).
		Preload("Lines.Items", byPosition).
		Preload("Payments", byPosition).
		Preload("Adjustments", byPosition).
		Preload("Fulfillments", byPosition).
		First(&dto, "id = ?", id.Bytes()).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("order", id.String())
		}
		return nil, err
	}

	return toDomain(dto)
}

func (r *GormOrderRepository) saveChildren(db *gorm.DB, aggregate *order.Order, dto OrderDTO) error {
	var items []ItemDTO
	for _, l := range dto.Lines {
		items = append(items, l.Items...)
	}

	if err := upsert(db, dto.Lines); err != nil {
		return err
	}
	if err := upsert(db, items); err != nil {
		return err
	}
	if err := upsert(db, dto.Payments); err != nil {
		return err
	}
	if err := upsert(db, dto.Fulfillments); err != nil {
		return err
	}

	if err := db.Where("order_id = ?", dto.ID).Delete(&AdjustmentDTO{}).Error; err != nil {
		return err
	}
	if len(dto.Adjustments) > 0 {
		if err := db.Create(&dto.Adjustments).Error; err != nil {
			return err
		}
	}

	if transitions := transitionsFromDomain(aggregate); len(transitions) > 0 {
		if err := db.Create(&transitions).Error; err != nil {
			return err
		}
	}
	return nil
}

// upsert writes rows by primary key without touching their associations.
func upsert[T any](db *gorm.DB, rows []T) error {
	if len(rows) == 0 {
		return nil
	}
	return db.Omit(clause.Associations).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(&rows).Error
}

func byPosition(db *gorm.DB) *gorm.DB {
	return db.Order("position")
}
