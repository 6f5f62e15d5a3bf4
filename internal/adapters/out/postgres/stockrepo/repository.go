package stockrepo

import (
	"context"
	"errors"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/stock"
	"fulfillment/internal/pkg/errs"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormVariantRepository implements ports.VariantRepository using GORM.
type GormVariantRepository struct {
	db      *gorm.DB
	tracker aggregateTracker
}

type aggregateTracker interface {
	TrackAggregate(id kernel.UUID, aggregate any)
}

func NewGormVariantRepository(db *gorm.DB, tracker aggregateTracker) *GormVariantRepository {
	return &GormVariantRepository{
		db:      db,
		tracker: tracker,
	}
}

func (r *GormVariantRepository) Add(ctx context.Context, aggregate *stock.Variant) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	db := r.db.WithContext(ctx)
	if err := db.Create(&dto).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return errs.NewValueIsInvalidErrorWithCause("variant", err)
		}
		return err
	}
	if err := r.appendMovements(db, aggregate); err != nil {
		return err
	}

	r.tracker.TrackAggregate(aggregate.ID(), aggregate)
	return nil
}

// Update writes the counter and appends the movements recorded since the
// variant was loaded.
func (r *GormVariantRepository) Update(ctx context.Context, aggregate *stock.Variant) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	db := r.db.WithContext(ctx)
	result := db.Model(&VariantDTO{}).
		Where("id = ?", dto.ID).
		Select("sku", "price", "currency", "stock_on_hand", "track_inventory").
		Updates(&dto)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errs.NewObjectNotFoundError("variant", aggregate.ID().String())
	}
	if err := r.appendMovements(db, aggregate); err != nil {
		return err
	}

	r.tracker.TrackAggregate(aggregate.ID(), aggregate)
	return nil
}

func (r *GormVariantRepository) Get(ctx context.Context, id kernel.UUID) (*stock.Variant, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	var dto VariantDTO
	if err := r.db.WithContext(ctx).First(&dto, "id = ?", id.Bytes()).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("variant", id.String())
		}
		return nil, err
	}

	return toDomain(dto)
}

// GetForUpdate row-locks the variants in id order and returns them in the order
// requested. Every id must exist.
func (r *GormVariantRepository) GetForUpdate(ctx context.Context, ids ...kernel.UUID) ([]*stock.Variant, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	raw := make([]any, 0, len(ids))
	for _, id := range ids {
		if err := id.Validate(); err != nil {
			return nil, err
		}
		raw = append(raw, id.Bytes())
	}

	var dtos []VariantDTO
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id IN ?", raw).
		Order("id").
		Find(&dtos).Error; err != nil {
		return nil, err
	}

	byID := make(map[kernel.UUID]*stock.Variant, len(dtos))
	for _, dto := range dtos {
		v, err := toDomain(dto)
		if err != nil {
			return nil, err
		}
		byID[v.ID()] = v
	}

	variants := make([]*stock.Variant, 0, len(ids))
	for _, id := range ids {
		v, ok := byID[id]
		if !ok {
			return nil, errs.NewObjectNotFoundError("variant", id.String())
		}
		variants = append(variants, v)
	}
	return variants, nil
}

func (r *GormVariantRepository) appendMovements(db *gorm.DB, aggregate *stock.Variant) error {
	movements := aggregate.UncommittedMovements()
	if len(movements) == 0 {
		return nil
	}

	dtos := make([]StockMovementDTO, 0, len(movements))
	for _, m := range movements {
		dtos = append(dtos, movementFromDomain(m))
	}
	if err := db.Create(&dtos).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return errs.NewValueIsInvalidErrorWithCause("idempotencyKey", err)
		}
		return err
	}
	return nil
}
