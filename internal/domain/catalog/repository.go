package catalog

import (
	"context"

	"github.com/calculation/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// GroupRepository defines the interface for group persistence
type GroupRepository interface {
	// FindByID finds a group with its margins
	FindByID(ctx context.Context, id uuid.UUID) (*Group, error)

	// FindByCode finds a group by its code
	FindByCode(ctx context.Context, code string) (*Group, error)

	// FindAll finds all groups matching the filter, with their margins
	FindAll(ctx context.Context, filter shared.Filter) ([]Group, error)

	// FindByIDs finds groups by their IDs, with their margins
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]Group, error)

	// Save creates or updates a group and replaces its margins
	Save(ctx context.Context, group *Group) error

	Delete(ctx context.Context, id uuid.UUID) error

	Count(ctx context.Context, filter shared.Filter) (int64, error)

	ExistsByCode(ctx context.Context, code string) (bool, error)

	// CountCategories counts the categories attached to a group
	CountCategories(ctx context.Context, groupID uuid.UUID) (int64, error)
}

// CategoryRepository defines the interface for category persistence
type CategoryRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Category, error)

	FindByCode(ctx context.Context, code string) (*Category, error)

	FindAll(ctx context.Context, filter shared.Filter) ([]Category, error)

	// FindByGroup finds the categories of a group
	FindByGroup(ctx context.Context, groupID uuid.UUID) ([]Category, error)

	Save(ctx context.Context, category *Category) error

	Delete(ctx context.Context, id uuid.UUID) error

	Count(ctx context.Context, filter shared.Filter) (int64, error)

	ExistsByCode(ctx context.Context, code string) (bool, error)

	// CountReferences counts the products, tasks and calculation lines referencing a category
	CountReferences(ctx context.Context, categoryID uuid.UUID) (int64, error)
}

// ProductRepository defines the interface for product persistence
type ProductRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Product, error)

	FindAll(ctx context.Context, filter shared.Filter) ([]Product, error)

	// FindByCategory finds the products of a category
	FindByCategory(ctx context.Context, categoryID uuid.UUID) ([]Product, error)

	Save(ctx context.Context, product *Product) error

	Delete(ctx context.Context, id uuid.UUID) error

	Count(ctx context.Context, filter shared.Filter) (int64, error)

	ExistsByDescription(ctx context.Context, description string, excludeID *uuid.UUID) (bool, error)
}

// TaskRepository defines the interface for task persistence
type TaskRepository interface {
	// FindByID finds a task with its items and margins
	FindByID(ctx context.Context, id uuid.UUID) (*Task, error)

	FindAll(ctx context.Context, filter shared.Filter) ([]Task, error)

	// Save creates or updates a task and replaces its items
	Save(ctx context.Context, task *Task) error

	Delete(ctx context.Context, id uuid.UUID) error

	Count(ctx context.Context, filter shared.Filter) (int64, error)

	ExistsByName(ctx context.Context, name string, excludeID *uuid.UUID) (bool, error)
}
