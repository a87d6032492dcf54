package persistence

import (
	"context"

	"github.com/calculation/backend/internal/domain/margin"
	"github.com/calculation/backend/internal/domain/shared"
	"github.com/calculation/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormGlobalMarginRepository implements GlobalMarginRepository using GORM
type GormGlobalMarginRepository struct {
	db *gorm.DB
}

// NewGormGlobalMarginRepository creates a new GormGlobalMarginRepository
func NewGormGlobalMarginRepository(db *gorm.DB) *GormGlobalMarginRepository {
	return &GormGlobalMarginRepository{db: db}
}

// FindByID finds a global margin by its ID
func (r *GormGlobalMarginRepository) FindByID(ctx context.Context, id uuid.UUID) (*margin.GlobalMargin, error) {
	var model models.GlobalMarginModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return model.ToDomain(), nil
}

// FindAll returns every global margin ordered by minimum
func (r *GormGlobalMarginRepository) FindAll(ctx context.Context) ([]margin.GlobalMargin, error) {
	var marginModels []models.GlobalMarginModel
	if err := r.db.WithContext(ctx).Order("minimum ASC").Find(&marginModels).Error; err != nil {
		return nil, err
	}
	margins := make([]margin.GlobalMargin, len(marginModels))
	for i := range marginModels {
		margins[i] = *marginModels[i].ToDomain()
	}
	return margins, nil
}

// FindByAmount returns the global margin whose half-open range contains amount
func (r *GormGlobalMarginRepository) FindByAmount(ctx context.Context, amount decimal.Decimal) (*margin.GlobalMargin, error) {
	var model models.GlobalMarginModel
	if err := r.db.WithContext(ctx).
		Where("minimum <= ? AND maximum > ?", amount, amount).
		Order("minimum ASC").
		First(&model).Error; err != nil {
		return nil, notFound(err)
	}
	return model.ToDomain(), nil
}

// Save creates or updates a global margin
func (r *GormGlobalMarginRepository) Save(ctx context.Context, gm *margin.GlobalMargin) error {
	model := models.GlobalMarginModelFromDomain(gm)
	return r.db.WithContext(ctx).Save(model).Error
}

// ReplaceAll deletes every global margin and stores the given ones in a single transaction
func (r *GormGlobalMarginRepository) ReplaceAll(ctx context.Context, margins []margin.GlobalMargin) error {
	marginModels := make([]*models.GlobalMarginModel, len(margins))
	for i := range margins {
		marginModels[i] = models.GlobalMarginModelFromDomain(&margins[i])
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&models.GlobalMarginModel{}).Error; err != nil {
			return err
		}
		if len(marginModels) == 0 {
			return nil
		}
		return tx.Create(marginModels).Error
	})
}

// Delete deletes a global margin
func (r *GormGlobalMarginRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.GlobalMarginModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Count counts global margins
func (r *GormGlobalMarginRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.GlobalMarginModel{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
