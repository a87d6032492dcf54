package persistence

import (
	"context"
	"strings"

	"github.com/calculation/backend/internal/domain/calculation"
	"github.com/calculation/backend/internal/domain/shared"
	"github.com/calculation/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormCalculationStateRepository implements CalculationStateRepository using GORM
type GormCalculationStateRepository struct {
	db *gorm.DB
}

// NewGormCalculationStateRepository creates a new GormCalculationStateRepository
func NewGormCalculationStateRepository(db *gorm.DB) *GormCalculationStateRepository {
	return &GormCalculationStateRepository{db: db}
}

// FindByID finds a state by its ID
func (r *GormCalculationStateRepository) FindByID(ctx context.Context, id uuid.UUID) (*calculation.CalculationState, error) {
	var model models.CalculationStateModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return model.ToDomain(), nil
}

// FindByCode finds a state by its code
func (r *GormCalculationStateRepository) FindByCode(ctx context.Context, code string) (*calculation.CalculationState, error) {
	var model models.CalculationStateModel
	if err := r.db.WithContext(ctx).
		Where("code = ?", strings.TrimSpace(code)).
		First(&model).Error; err != nil {
		return nil, notFound(err)
	}
	return model.ToDomain(), nil
}

// FindAll finds all states matching the filter
func (r *GormCalculationStateRepository) FindAll(ctx context.Context, filter shared.Filter) ([]calculation.CalculationState, error) {
	var stateModels []models.CalculationStateModel
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.CalculationStateModel{}), filter)
	if err := query.Find(&stateModels).Error; err != nil {
		return nil, err
	}
	return toStates(stateModels), nil
}

// FindEditable finds the states that allow modifications
func (r *GormCalculationStateRepository) FindEditable(ctx context.Context) ([]calculation.CalculationState, error) {
	var stateModels []models.CalculationStateModel
	if err := r.db.WithContext(ctx).
		Where("editable = ?", true).
		Order("code ASC").
		Find(&stateModels).Error; err != nil {
		return nil, err
	}
	return toStates(stateModels), nil
}

// Save creates or updates a state
func (r *GormCalculationStateRepository) Save(ctx context.Context, state *calculation.CalculationState) error {
	model := models.CalculationStateModelFromDomain(state)
	return r.db.WithContext(ctx).Save(model).Error
}

// Delete deletes a state
func (r *GormCalculationStateRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.CalculationStateModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Count counts states matching the filter
func (r *GormCalculationStateRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyFilterWithoutPagination(r.db.WithContext(ctx).Model(&models.CalculationStateModel{}), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// ExistsByCode checks if another state already uses the code
func (r *GormCalculationStateRepository) ExistsByCode(ctx context.Context, code string, excludeID *uuid.UUID) (bool, error) {
	var count int64
	query := r.db.WithContext(ctx).
		Model(&models.CalculationStateModel{}).
		Where("LOWER(code) = ?", strings.ToLower(strings.TrimSpace(code)))
	if excludeID != nil {
		query = query.Where("id <> ?", *excludeID)
	}
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// CountCalculations counts the calculations in a state
func (r *GormCalculationStateRepository) CountCalculations(ctx context.Context, stateID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.CalculationModel{}).
		Where("state_id = ?", stateID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *GormCalculationStateRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)
	query = paginate(query, filter)
	return orderBy(query, filter, CalculationStateSortFields, "code", "ASC")
}

func (r *GormCalculationStateRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = whereContains(query, filter.Search, "code", "description")
	if value, ok := filter.Filters["editable"]; ok {
		query = query.Where("editable = ?", value)
	}
	return query
}

func toStates(stateModels []models.CalculationStateModel) []calculation.CalculationState {
	states := make([]calculation.CalculationState, len(stateModels))
	for i := range stateModels {
		states[i] = *stateModels[i].ToDomain()
	}
	return states
}
