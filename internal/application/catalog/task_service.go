package catalog

import (
	"context"

	"github.com/calculation/backend/internal/domain/catalog"
	"github.com/calculation/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// TaskService handles task-related business operations
type TaskService struct {
	taskRepo     catalog.TaskRepository
	categoryRepo catalog.CategoryRepository
}

// NewTaskService creates a new TaskService
func NewTaskService(
	taskRepo catalog.TaskRepository,
	categoryRepo catalog.CategoryRepository,
) *TaskService {
	return &TaskService{
		taskRepo:     taskRepo,
		categoryRepo: categoryRepo,
	}
}

// List retrieves tasks with their items
func (s *TaskService) List(ctx context.Context, filter ListFilter) ([]TaskResponse, int64, error) {
	domainFilter := filter.toDomainFilter("name")

	tasks, err := s.taskRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.taskRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]TaskResponse, len(tasks))
	for i := range tasks {
		responses[i] = ToTaskResponse(&tasks[i])
	}
	return responses, total, nil
}

// GetByID retrieves a task by ID
func (s *TaskService) GetByID(ctx context.Context, id uuid.UUID) (*TaskResponse, error) {
	task, err := s.taskRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	response := ToTaskResponse(task)
	return &response, nil
}

// Create creates a new task with its items
func (s *TaskService) Create(ctx context.Context, req TaskRequest) (*TaskResponse, error) {
	if err := s.ensureUniqueName(ctx, req.Name, nil); err != nil {
		return nil, err
	}
	category, err := findCategory(ctx, s.categoryRepo, req.CategoryID)
	if err != nil {
		return nil, err
	}

	task, err := catalog.NewTask(req.Name, req.Unit, category)
	if err != nil {
		return nil, err
	}
	if req.Supplier != "" {
		if err := task.Update(req.Name, req.Unit, req.Supplier); err != nil {
			return nil, err
		}
	}
	if err := s.setItems(task, req.Items); err != nil {
		return nil, err
	}
	if err := s.taskRepo.Save(ctx, task); err != nil {
		return nil, err
	}

	response := ToTaskResponse(task)
	return &response, nil
}

// Update updates a task and replaces its items
func (s *TaskService) Update(ctx context.Context, id uuid.UUID, req TaskRequest) (*TaskResponse, error) {
	task, err := s.taskRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.ensureUniqueName(ctx, req.Name, &id); err != nil {
		return nil, err
	}

	if err := task.Update(req.Name, req.Unit, req.Supplier); err != nil {
		return nil, err
	}
	if req.CategoryID != task.CategoryID {
		category, err := findCategory(ctx, s.categoryRepo, req.CategoryID)
		if err != nil {
			return nil, err
		}
		if err := task.MoveTo(category); err != nil {
			return nil, err
		}
	}
	if err := s.setItems(task, req.Items); err != nil {
		return nil, err
	}
	if err := s.taskRepo.Save(ctx, task); err != nil {
		return nil, err
	}

	response := ToTaskResponse(task)
	return &response, nil
}

// Delete deletes a task and its items
func (s *TaskService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.taskRepo.FindByID(ctx, id); err != nil {
		return err
	}
	return s.taskRepo.Delete(ctx, id)
}

// Compute prices the selected items of a task for a quantity
func (s *TaskService) Compute(ctx context.Context, id uuid.UUID, req TaskComputeRequest) (*TaskComputeResponse, error) {
	task, err := s.taskRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	result, err := task.Compute(req.Quantity, req.ItemIDs)
	if err != nil {
		return nil, err
	}
	response := ToTaskComputeResponse(task, result)
	return &response, nil
}

func (s *TaskService) setItems(task *catalog.Task, requests []TaskItemRequest) error {
	items := make([]catalog.TaskItem, 0, len(requests))
	for _, req := range requests {
		margins := make([]catalog.TaskItemMargin, 0, len(req.Margins))
		for _, m := range req.Margins {
			margin, err := catalog.NewTaskItemMargin(m.Minimum, m.Maximum, m.Value)
			if err != nil {
				return err
			}
			margins = append(margins, margin)
		}
		item, err := catalog.NewTaskItem(req.Name, margins)
		if err != nil {
			return err
		}
		items = append(items, item)
	}
	return task.SetItems(items)
}

func (s *TaskService) ensureUniqueName(ctx context.Context, name string, excludeID *uuid.UUID) error {
	exists, err := s.taskRepo.ExistsByName(ctx, name, excludeID)
	if err != nil {
		return err
	}
	if exists {
		return shared.NewDomainError("ALREADY_EXISTS", "Task with this name already exists")
	}
	return nil
}
