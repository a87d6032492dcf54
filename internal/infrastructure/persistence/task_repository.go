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

// GormTaskRepository implements TaskRepository using GORM
type GormTaskRepository struct {
	db *gorm.DB
}

// NewGormTaskRepository creates a new GormTaskRepository
func NewGormTaskRepository(db *gorm.DB) *GormTaskRepository {
	return &GormTaskRepository{db: db}
}

func withTaskItems(query *gorm.DB) *gorm.DB {
	return query.
		Preload("Category.Group").
		Preload("Items", byPosition).
		Preload("Items.Margins", byMinimum)
}

// FindByID finds a task with its items and margins
func (r *GormTaskRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Task, error) {
	var model models.TaskModel
	if err := withTaskItems(r.db.WithContext(ctx)).First(&model, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return model.ToDomain(), nil
}

// FindAll finds all tasks matching the filter, with their items and margins
func (r *GormTaskRepository) FindAll(ctx context.Context, filter shared.Filter) ([]catalog.Task, error) {
	var taskModels []models.TaskModel
	query := r.applyFilter(withTaskItems(r.db.WithContext(ctx).Model(&models.TaskModel{})), filter)
	if err := query.Find(&taskModels).Error; err != nil {
		return nil, err
	}
	tasks := make([]catalog.Task, len(taskModels))
	for i := range taskModels {
		tasks[i] = *taskModels[i].ToDomain()
	}
	return tasks, nil
}

// Save creates or updates a task and replaces its items
func (r *GormTaskRepository) Save(ctx context.Context, task *catalog.Task) error {
	model := models.TaskModelFromDomain(task)

	var (
		items   []models.TaskItemModel
		margins []models.TaskItemMarginModel
	)
	for _, item := range model.Items {
		margins = append(margins, item.Margins...)
		item.Margins = nil
		items = append(items, item)
	}
	model.Items = nil
	model.Category = nil

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Save(model).Error; err != nil {
			return err
		}
		if err := r.deleteItems(tx, task.ID); err != nil {
			return err
		}
		if len(items) > 0 {
			if err := tx.Omit(clause.Associations).Create(&items).Error; err != nil {
				return err
			}
		}
		if len(margins) > 0 {
			if err := tx.Create(&margins).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *GormTaskRepository) deleteItems(tx *gorm.DB, taskID uuid.UUID) error {
	if err := tx.Where("task_id = ?", taskID).Delete(&models.TaskItemMarginModel{}).Error; err != nil {
		return err
	}
	return tx.Where("task_id = ?", taskID).Delete(&models.TaskItemModel{}).Error
}

// Delete deletes a task with its items
func (r *GormTaskRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := r.deleteItems(tx, id); err != nil {
			return err
		}
		result := tx.Delete(&models.TaskModel{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
}

// Count counts tasks matching the filter
func (r *GormTaskRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyFilterWithoutPagination(r.db.WithContext(ctx).Model(&models.TaskModel{}), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// ExistsByName checks if another task already uses the name
func (r *GormTaskRepository) ExistsByName(ctx context.Context, name string, excludeID *uuid.UUID) (bool, error) {
	var count int64
	query := r.db.WithContext(ctx).
		Model(&models.TaskModel{}).
		Where("LOWER(name) = ?", strings.ToLower(strings.TrimSpace(name)))
	if excludeID != nil {
		query = query.Where("id <> ?", *excludeID)
	}
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *GormTaskRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)
	query = paginate(query, filter)
	return orderBy(query, filter, TaskSortFields, "name", "ASC")
}

func (r *GormTaskRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = whereContains(query, filter.Search, "name", "supplier")
	if value, ok := filter.Filters["category_id"]; ok {
		query = query.Where("category_id = ?", value)
	}
	return query
}
