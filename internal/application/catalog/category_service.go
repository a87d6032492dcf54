package catalog

import (
	"context"
	"fmt"
	"strings"

	"github.com/calculation/backend/internal/domain/catalog"
	"github.com/calculation/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// CategoryService handles category-related business operations
type CategoryService struct {
	categoryRepo catalog.CategoryRepository
	groupRepo    catalog.GroupRepository
}

// NewCategoryService creates a new CategoryService
func NewCategoryService(
	categoryRepo catalog.CategoryRepository,
	groupRepo catalog.GroupRepository,
) *CategoryService {
	return &CategoryService{
		categoryRepo: categoryRepo,
		groupRepo:    groupRepo,
	}
}

// List retrieves the categories, optionally of a single group
func (s *CategoryService) List(ctx context.Context, filter ListFilter) ([]CategoryResponse, int64, error) {
	domainFilter := filter.toDomainFilter("code")

	categories, err := s.categoryRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.categoryRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]CategoryResponse, len(categories))
	for i := range categories {
		responses[i] = ToCategoryResponse(&categories[i])
	}
	return responses, total, nil
}

// GetByID retrieves a category with its number of references
func (s *CategoryService) GetByID(ctx context.Context, id uuid.UUID) (*CategoryResponse, error) {
	category, err := s.categoryRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	response := ToCategoryResponse(category)
	if response.References, err = s.categoryRepo.CountReferences(ctx, id); err != nil {
		return nil, err
	}
	return &response, nil
}

// Create creates a new category in a group
func (s *CategoryService) Create(ctx context.Context, req CategoryRequest) (*CategoryResponse, error) {
	if err := s.ensureUniqueCode(ctx, req.Code); err != nil {
		return nil, err
	}
	group, err := findGroup(ctx, s.groupRepo, req.GroupID)
	if err != nil {
		return nil, err
	}

	category, err := catalog.NewCategory(req.Code, req.Description, group)
	if err != nil {
		return nil, err
	}
	if err := s.categoryRepo.Save(ctx, category); err != nil {
		return nil, err
	}

	response := ToCategoryResponse(category)
	return &response, nil
}

// Update updates a category, moving it to another group if needed
func (s *CategoryService) Update(ctx context.Context, id uuid.UUID, req CategoryRequest) (*CategoryResponse, error) {
	category, err := s.categoryRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !strings.EqualFold(strings.TrimSpace(req.Code), category.Code) {
		if err := s.ensureUniqueCode(ctx, req.Code); err != nil {
			return nil, err
		}
	}

	if err := category.Update(req.Code, req.Description); err != nil {
		return nil, err
	}
	if req.GroupID != category.GroupID {
		group, err := findGroup(ctx, s.groupRepo, req.GroupID)
		if err != nil {
			return nil, err
		}
		if err := category.MoveTo(group); err != nil {
			return nil, err
		}
	}
	if err := s.categoryRepo.Save(ctx, category); err != nil {
		return nil, err
	}

	response := ToCategoryResponse(category)
	return &response, nil
}

// Delete deletes a category that no product, task or calculation references
func (s *CategoryService) Delete(ctx context.Context, id uuid.UUID) error {
	category, err := s.categoryRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	count, err := s.categoryRepo.CountReferences(ctx, id)
	if err != nil {
		return err
	}
	if count > 0 {
		return shared.NewDomainError("CATEGORY_IN_USE",
			fmt.Sprintf("Category %s is referenced %d time(s)", category.Code, count))
	}
	return s.categoryRepo.Delete(ctx, id)
}

func (s *CategoryService) ensureUniqueCode(ctx context.Context, code string) error {
	exists, err := s.categoryRepo.ExistsByCode(ctx, strings.ToUpper(strings.TrimSpace(code)))
	if err != nil {
		return err
	}
	if exists {
		return shared.NewDomainError("ALREADY_EXISTS", "Category with this code already exists")
	}
	return nil
}
