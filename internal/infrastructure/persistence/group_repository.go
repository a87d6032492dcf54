package persistence

import (
	"context"
	"strings"

	"github.com/calculation/backend/internal/domain/catalog"
	"github.com/calculation/backend/internal/domain/shared"
	"github.com/calculation/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormGroupRepository implements GroupRepository using GORM
type GormGroupRepository struct {
	db *gorm.DB
}

// NewGormGroupRepository creates a new GormGroupRepository
func NewGormGroupRepository(db *gorm.DB) *GormGroupRepository {
	return &GormGroupRepository{db: db}
}

func byMinimum(db *gorm.DB) *gorm.DB {
	return db.Order("minimum ASC")
}

// FindByID finds a group with its margins
func (r *GormGroupRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Group, error) {
	var model models.GroupModel
	if err := r.db.WithContext(ctx).
		Preload("Margins", byMinimum).
		First(&model, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return model.ToDomain(), nil
}

// FindByCode finds a group by its code
func (r *GormGroupRepository) FindByCode(ctx context.Context, code string) (*catalog.Group, error) {
	var model models.GroupModel
	if err := r.db.WithContext(ctx).
		Preload("Margins", byMinimum).
		Where("code = ?", strings.TrimSpace(code)).
		First(&model).Error; err != nil {
		return nil, notFound(err)
	}
	return model.ToDomain(), nil
}

// FindAll finds all groups matching the filter, with their margins
func (r *GormGroupRepository) FindAll(ctx context.Context, filter shared.Filter) ([]catalog.Group, error) {
	var groupModels []models.GroupModel
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.GroupModel{}).Preload("Margins", byMinimum), filter)
	if err := query.Find(&groupModels).Error; err != nil {
		return nil, err
	}
	return toGroups(groupModels), nil
}

// FindByIDs finds groups by their IDs, with their margins
func (r *GormGroupRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]catalog.Group, error) {
	if len(ids) == 0 {
		return []catalog.Group{}, nil
	}
	var groupModels []models.GroupModel
	if err := r.db.WithContext(ctx).
		Preload("Margins", byMinimum).
		Where("id IN ?", ids).
		Find(&groupModels).Error; err != nil {
		return nil, err
	}
	return toGroups(groupModels), nil
}

// Save creates or updates a group and replaces its margins
func (r *GormGroupRepository) Save(ctx context.Context, group *catalog.Group) error {
	model := models.GroupModelFromDomain(group)
	margins := model.Margins
	model.Margins = nil

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Save(model).Error; err != nil {
			return err
		}
		if err := tx.Where("group_id = ?", group.ID).Delete(&models.GroupMarginModel{}).Error; err != nil {
			return err
		}
		if len(margins) > 0 {
			return tx.Create(&margins).Error
		}
		return nil
	})
}

// Delete deletes a group and its margins
func (r *GormGroupRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("group_id = ?", id).Delete(&models.GroupMarginModel{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&models.GroupModel{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
}

// Count counts groups matching the filter
func (r *GormGroupRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := whereContains(r.db.WithContext(ctx).Model(&models.GroupModel{}), filter.Search, "code", "description")
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// ExistsByCode checks if a group with the given code exists
func (r *GormGroupRepository) ExistsByCode(ctx context.Context, code string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.GroupModel{}).
		Where("LOWER(code) = ?", strings.ToLower(strings.TrimSpace(code))).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// CountCategories counts the categories attached to a group
func (r *GormGroupRepository) CountCategories(ctx context.Context, groupID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.CategoryModel{}).
		Where("group_id = ?", groupID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *GormGroupRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = whereContains(query, filter.Search, "code", "description")
	query = paginate(query, filter)
	return orderBy(query, filter, GroupSortFields, "code", "ASC")
}

func toGroups(groupModels []models.GroupModel) []catalog.Group {
	groups := make([]catalog.Group, len(groupModels))
	for i := range groupModels {
		groups[i] = *groupModels[i].ToDomain()
	}
	return groups
}
