package persistence

import (
	"context"

	"github.com/calculation/backend/internal/domain/setting"
	"github.com/calculation/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormPropertyRepository implements PropertyRepository using GORM
type GormPropertyRepository struct {
	db *gorm.DB
}

// NewGormPropertyRepository creates a new GormPropertyRepository
func NewGormPropertyRepository(db *gorm.DB) *GormPropertyRepository {
	return &GormPropertyRepository{db: db}
}

// FindAll returns every stored property ordered by name
func (r *GormPropertyRepository) FindAll(ctx context.Context) ([]setting.Property, error) {
	var propertyModels []models.PropertyModel
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&propertyModels).Error; err != nil {
		return nil, err
	}
	props := make([]setting.Property, len(propertyModels))
	for i := range propertyModels {
		props[i] = propertyModels[i].ToDomain()
	}
	return props, nil
}

// SaveAll upserts the given properties in a single transaction
func (r *GormPropertyRepository) SaveAll(ctx context.Context, props []setting.Property) error {
	if len(props) == 0 {
		return nil
	}
	propertyModels := make([]*models.PropertyModel, len(props))
	for i, p := range props {
		propertyModels[i] = models.PropertyModelFromDomain(p)
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "name"}},
			DoUpdates: clause.AssignmentColumns([]string{"value"}),
		}).Create(propertyModels).Error
	})
}
