// Package setting manages the application parameters stored as properties.
package setting

import (
	"context"
	"errors"
	"fmt"

	"github.com/calculation/backend/internal/domain/calculation"
	"github.com/calculation/backend/internal/domain/catalog"
	"github.com/calculation/backend/internal/domain/setting"
	"github.com/calculation/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Service reads and updates the application parameters
type Service struct {
	propertyRepo setting.PropertyRepository
	stateRepo    calculation.CalculationStateRepository
	categoryRepo catalog.CategoryRepository
	minMargin    decimal.Decimal
	logger       *zap.Logger
}

// NewService creates a new Service. minMargin is used while no minimum margin is stored.
func NewService(
	propertyRepo setting.PropertyRepository,
	stateRepo calculation.CalculationStateRepository,
	categoryRepo catalog.CategoryRepository,
	minMargin decimal.Decimal,
	logger *zap.Logger,
) *Service {
	return &Service{
		propertyRepo: propertyRepo,
		stateRepo:    stateRepo,
		categoryRepo: categoryRepo,
		minMargin:    minMargin,
		logger:       logger,
	}
}

// Parameters returns the typed parameters with defaults applied
func (s *Service) Parameters(ctx context.Context) (setting.Parameters, error) {
	props, err := s.propertyRepo.FindAll(ctx)
	if err != nil {
		return setting.Parameters{}, fmt.Errorf("failed to load properties: %w", err)
	}
	params := setting.FromProperties(props)
	if !hasProperty(props, setting.PropertyMinMargin) && s.minMargin.IsPositive() {
		params.MinMargin = s.minMargin
	}
	return params, nil
}

// Get returns the parameters
func (s *Service) Get(ctx context.Context) (*ParametersResponse, error) {
	params, err := s.Parameters(ctx)
	if err != nil {
		return nil, err
	}
	response := ToParametersResponse(params)
	return &response, nil
}

// Update validates and stores the parameters
func (s *Service) Update(ctx context.Context, req UpdateParametersRequest) (*ParametersResponse, error) {
	params := req.toParameters()
	if err := params.Validate(); err != nil {
		return nil, err
	}

	if params.DefaultStateID != nil {
		if _, err := s.stateRepo.FindByID(ctx, *params.DefaultStateID); err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return nil, shared.NewDomainError("INVALID_STATE", "Default state not found")
			}
			return nil, err
		}
	}
	if params.DefaultCategoryID != nil {
		if _, err := s.categoryRepo.FindByID(ctx, *params.DefaultCategoryID); err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return nil, shared.NewDomainError("INVALID_CATEGORY", "Default category not found")
			}
			return nil, err
		}
	}

	if err := s.propertyRepo.SaveAll(ctx, params.Properties()); err != nil {
		return nil, fmt.Errorf("failed to save properties: %w", err)
	}
	s.logger.Info("Parameters updated", zap.String("min_margin", params.MinMargin.String()))

	response := ToParametersResponse(params)
	return &response, nil
}

func hasProperty(props []setting.Property, name string) bool {
	for _, p := range props {
		if p.Name == name && p.Value != "" {
			return true
		}
	}
	return false
}
