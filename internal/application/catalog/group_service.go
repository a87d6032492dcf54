package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/calculation/backend/internal/domain/catalog"
	"github.com/calculation/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// GroupService handles group-related business operations
type GroupService struct {
	groupRepo catalog.GroupRepository
}

// NewGroupService creates a new GroupService
func NewGroupService(groupRepo catalog.GroupRepository) *GroupService {
	return &GroupService{groupRepo: groupRepo}
}

// List retrieves the groups with their number of categories
func (s *GroupService) List(ctx context.Context, filter ListFilter) ([]GroupResponse, int64, error) {
	domainFilter := filter.toDomainFilter("code")

	groups, err := s.groupRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.groupRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]GroupResponse, len(groups))
	for i := range groups {
		responses[i] = ToGroupResponse(&groups[i])
		if responses[i].Categories, err = s.groupRepo.CountCategories(ctx, groups[i].ID); err != nil {
			return nil, 0, err
		}
	}
	return responses, total, nil
}

// GetByID retrieves a group by ID
func (s *GroupService) GetByID(ctx context.Context, id uuid.UUID) (*GroupResponse, error) {
	group, err := s.groupRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	response := ToGroupResponse(group)
	if response.Categories, err = s.groupRepo.CountCategories(ctx, id); err != nil {
		return nil, err
	}
	return &response, nil
}

// Create creates a new group with its margins
func (s *GroupService) Create(ctx context.Context, req GroupRequest) (*GroupResponse, error) {
	if err := s.ensureUniqueCode(ctx, req.Code); err != nil {
		return nil, err
	}

	group, err := catalog.NewGroup(req.Code, req.Description)
	if err != nil {
		return nil, err
	}
	if err := s.setMargins(group, req.Margins); err != nil {
		return nil, err
	}
	if err := s.groupRepo.Save(ctx, group); err != nil {
		return nil, err
	}

	response := ToGroupResponse(group)
	return &response, nil
}

// Update updates a group and replaces its margins
func (s *GroupService) Update(ctx context.Context, id uuid.UUID, req GroupRequest) (*GroupResponse, error) {
	group, err := s.groupRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !strings.EqualFold(strings.TrimSpace(req.Code), group.Code) {
		if err := s.ensureUniqueCode(ctx, req.Code); err != nil {
			return nil, err
		}
	}

	if err := group.Update(req.Code, req.Description); err != nil {
		return nil, err
	}
	if err := s.setMargins(group, req.Margins); err != nil {
		return nil, err
	}
	if err := s.groupRepo.Save(ctx, group); err != nil {
		return nil, err
	}

	response := ToGroupResponse(group)
	return &response, nil
}

// Delete deletes a group that has no category
func (s *GroupService) Delete(ctx context.Context, id uuid.UUID) error {
	group, err := s.groupRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	count, err := s.groupRepo.CountCategories(ctx, id)
	if err != nil {
		return err
	}
	if count > 0 {
		return shared.NewDomainError("GROUP_IN_USE",
			fmt.Sprintf("Group %s contains %d categorie(s)", group.Code, count))
	}
	return s.groupRepo.Delete(ctx, id)
}

func (s *GroupService) setMargins(group *catalog.Group, requests []MarginRequest) error {
	margins := make([]catalog.GroupMargin, 0, len(requests))
	for _, req := range requests {
		m, err := catalog.NewGroupMargin(req.Minimum, req.Maximum, req.Margin)
		if err != nil {
			return err
		}
		margins = append(margins, m)
	}
	return group.SetMargins(margins)
}

func (s *GroupService) ensureUniqueCode(ctx context.Context, code string) error {
	exists, err := s.groupRepo.ExistsByCode(ctx, strings.ToUpper(strings.TrimSpace(code)))
	if err != nil {
		return err
	}
	if exists {
		return shared.NewDomainError("ALREADY_EXISTS", "Group with this code already exists")
	}
	return nil
}

// findGroup loads a group, reporting a missing one as INVALID_GROUP
func findGroup(ctx context.Context, repo catalog.GroupRepository, id uuid.UUID) (*catalog.Group, error) {
	group, err := repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("INVALID_GROUP", "Group not found")
		}
		return nil, err
	}
	return group, nil
}

// findCategory loads a category, reporting a missing one as INVALID_CATEGORY
func findCategory(ctx context.Context, repo catalog.CategoryRepository, id uuid.UUID) (*catalog.Category, error) {
	category, err := repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("INVALID_CATEGORY", "Category not found")
		}
		return nil, err
	}
	return category, nil
}
