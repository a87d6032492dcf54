// Package calculation implements the calculation use cases: editing, pricing,
// state workflow and the maintenance jobs.
package calculation

import (
	"context"
	"errors"
	"fmt"

	"github.com/calculation/backend/internal/domain/calculation"
	"github.com/calculation/backend/internal/domain/catalog"
	"github.com/calculation/backend/internal/domain/margin"
	"github.com/calculation/backend/internal/domain/setting"
	"github.com/calculation/backend/internal/domain/shared"
	"github.com/calculation/backend/internal/infrastructure/config"
	"github.com/calculation/backend/internal/infrastructure/event"
	"github.com/calculation/backend/internal/infrastructure/lock"
	"github.com/calculation/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ParametersProvider returns the current application parameters
type ParametersProvider interface {
	Parameters(ctx context.Context) (setting.Parameters, error)
}

// Repositories groups the repositories used by the calculation services
type Repositories struct {
	Calculations  calculation.CalculationRepository
	States        calculation.CalculationStateRepository
	Groups        catalog.GroupRepository
	Categories    catalog.CategoryRepository
	GlobalMargins margin.GlobalMarginRepository
}

// CalculationService handles calculation-related business operations
type CalculationService struct {
	calcRepo     calculation.CalculationRepository
	stateRepo    calculation.CalculationStateRepository
	groupRepo    catalog.GroupRepository
	categoryRepo catalog.CategoryRepository
	marginRepo   margin.GlobalMarginRepository
	params       ParametersProvider
	publisher    shared.EventPublisher
	locker       lock.Locker
	metrics      *telemetry.Metrics
	cfg          config.CalculationConfig
	logger       *zap.Logger
}

// NewCalculationService creates a new CalculationService
func NewCalculationService(
	repos Repositories,
	params ParametersProvider,
	publisher shared.EventPublisher,
	locker lock.Locker,
	metrics *telemetry.Metrics,
	cfg config.CalculationConfig,
	logger *zap.Logger,
) *CalculationService {
	if cfg.UpdateWorkers <= 0 {
		cfg.UpdateWorkers = 4
	}
	if cfg.UpdateBatch <= 0 {
		cfg.UpdateBatch = 100
	}
	return &CalculationService{
		calcRepo:     repos.Calculations,
		stateRepo:    repos.States,
		groupRepo:    repos.Groups,
		categoryRepo: repos.Categories,
		marginRepo:   repos.GlobalMargins,
		params:       params,
		publisher:    publisher,
		locker:       locker,
		metrics:      metrics,
		cfg:          cfg,
		logger:       logger,
	}
}

// List retrieves calculations with filtering and pagination
func (s *CalculationService) List(ctx context.Context, filter ListCalculationsFilter) ([]CalculationListResponse, int64, error) {
	params, err := s.params.Parameters(ctx)
	if err != nil {
		return nil, 0, err
	}

	domainFilter := toDomainFilter(filter)
	calcs, err := s.calcRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.calcRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	return ToCalculationListResponses(calcs, params.MinMargin), total, nil
}

// GetByID retrieves a calculation with its items and computed totals
func (s *CalculationService) GetByID(ctx context.Context, id uuid.UUID) (*CalculationResponse, error) {
	calc, err := s.calcRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	params, err := s.params.Parameters(ctx)
	if err != nil {
		return nil, err
	}
	calculator, err := s.calculator(ctx, params)
	if err != nil {
		return nil, err
	}

	response := ToCalculationResponse(calc, params.MinMargin, calculator.Compute(calc))
	return &response, nil
}

// Create creates a new calculation
func (s *CalculationService) Create(ctx context.Context, req SaveCalculationRequest, username string) (*CalculationResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "calculation", "create", telemetry.AttrUsername, username)
	defer span.End()

	params, err := s.params.Parameters(ctx)
	if err != nil {
		return nil, err
	}
	state, err := s.resolveState(ctx, req.StateID, params)
	if err != nil {
		return nil, err
	}

	calc, err := calculation.NewCalculation(req.Date, req.Customer, req.Description, state, username)
	if err != nil {
		return nil, err
	}
	if err := calc.SetUserMargin(req.UserMargin); err != nil {
		return nil, err
	}
	if err := s.addItems(ctx, calc, req.Items); err != nil {
		return nil, err
	}

	response, err := s.save(ctx, calc, params, "create")
	telemetry.RecordError(span, err)
	return response, err
}

// Update replaces the header and the items of a calculation
func (s *CalculationService) Update(ctx context.Context, id uuid.UUID, req SaveCalculationRequest, username string) (*CalculationResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "calculation", "update",
		telemetry.AttrCalculationID, id,
		telemetry.AttrUsername, username,
	)
	defer span.End()

	calc, err := s.calcRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	params, err := s.params.Parameters(ctx)
	if err != nil {
		return nil, err
	}

	if err := calc.Update(req.Date, req.Customer, req.Description, req.UserMargin, username); err != nil {
		return nil, err
	}
	if err := calc.ClearItems(); err != nil {
		return nil, err
	}
	if err := s.addItems(ctx, calc, req.Items); err != nil {
		return nil, err
	}
	if req.StateID != nil && *req.StateID != calc.StateID {
		state, err := s.findState(ctx, *req.StateID)
		if err != nil {
			return nil, err
		}
		if err := calc.SetState(state, username); err != nil {
			return nil, err
		}
	}

	response, err := s.save(ctx, calc, params, "update")
	telemetry.RecordError(span, err)
	return response, err
}

// Delete deletes a calculation
func (s *CalculationService) Delete(ctx context.Context, id uuid.UUID) error {
	calc, err := s.calcRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.calcRepo.Delete(ctx, id); err != nil {
		return err
	}
	calc.AddDomainEvent(calculation.NewCalculationDeletedEvent(calc))
	s.metrics.CalculationSaved(ctx, "delete")
	return event.PublishPending(ctx, s.publisher, calc)
}

// Duplicate copies a calculation into a new one in the default state
func (s *CalculationService) Duplicate(ctx context.Context, id uuid.UUID, req DuplicateRequest, username string) (*CalculationResponse, error) {
	source, err := s.calcRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	params, err := s.params.Parameters(ctx)
	if err != nil {
		return nil, err
	}
	state, err := s.resolveState(ctx, nil, params)
	if err != nil {
		return nil, err
	}

	clone, err := source.Clone(req.Description, state, username)
	if err != nil {
		return nil, err
	}
	return s.save(ctx, clone, params, "duplicate")
}

// ChangeState moves a calculation to another state
func (s *CalculationService) ChangeState(ctx context.Context, id uuid.UUID, req ChangeStateRequest, username string) (*CalculationResponse, error) {
	calc, err := s.calcRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	state, err := s.findState(ctx, req.StateID)
	if err != nil {
		return nil, err
	}
	if err := calc.SetState(state, username); err != nil {
		return nil, err
	}
	params, err := s.params.Parameters(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.calcRepo.Save(ctx, calc); err != nil {
		return nil, err
	}
	s.metrics.CalculationSaved(ctx, "state")
	if err := event.PublishPending(ctx, s.publisher, calc); err != nil {
		return nil, err
	}

	response := ToCalculationResponse(calc, params.MinMargin, nil)
	return &response, nil
}

// PreviewTotals prices unsaved items
func (s *CalculationService) PreviewTotals(ctx context.Context, query CalculationQuery) (*TotalsResponse, error) {
	params, err := s.params.Parameters(ctx)
	if err != nil {
		return nil, err
	}

	// transient calculation, never saved
	calc := &calculation.Calculation{StateEditable: true}
	if err := calc.SetUserMargin(query.UserMargin); err != nil {
		return nil, err
	}
	if err := s.addItems(ctx, calc, query.Items); err != nil {
		return nil, err
	}

	calculator, err := s.calculator(ctx, params)
	if err != nil {
		return nil, err
	}
	totals := calculator.Compute(calc)
	if !query.Adjust || !totals.BelowMargin {
		return toTotalsResponse(totals, false), nil
	}

	userMargin, ok := adjustedUserMargin(totals, params.MinMargin)
	if !ok {
		return toTotalsResponse(totals, false), nil
	}
	if err := calc.SetUserMargin(userMargin); err != nil {
		return nil, err
	}
	return toTotalsResponse(calculator.Compute(calc), true), nil
}

// Totals computes the totals of a stored calculation with the current margins
func (s *CalculationService) Totals(ctx context.Context, id uuid.UUID) (*TotalsResponse, error) {
	calc, err := s.calcRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	params, err := s.params.Parameters(ctx)
	if err != nil {
		return nil, err
	}
	calculator, err := s.calculator(ctx, params)
	if err != nil {
		return nil, err
	}
	return toTotalsResponse(calculator.Compute(calc), false), nil
}

// BelowMargin lists the calculations whose overall margin is under the minimum
func (s *CalculationService) BelowMargin(ctx context.Context, filter ListCalculationsFilter) ([]CalculationListResponse, int64, error) {
	params, err := s.params.Parameters(ctx)
	if err != nil {
		return nil, 0, err
	}
	domainFilter := toDomainFilter(filter)
	calcs, err := s.calcRepo.FindBelowMargin(ctx, params.MinMargin, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.calcRepo.CountBelowMargin(ctx, params.MinMargin, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	return ToCalculationListResponses(calcs, params.MinMargin), total, nil
}

// EmptyItems lists the calculations having items with a zero price or quantity
func (s *CalculationService) EmptyItems(ctx context.Context, filter ListCalculationsFilter) ([]CalculationItemsResponse, int64, error) {
	return s.itemsReport(ctx, filter, (*calculation.Calculation).EmptyItems)
}

// DuplicateItems lists the calculations having items sharing a description
func (s *CalculationService) DuplicateItems(ctx context.Context, filter ListCalculationsFilter) ([]CalculationItemsResponse, int64, error) {
	return s.itemsReport(ctx, filter, (*calculation.Calculation).DuplicateItems)
}

func (s *CalculationService) itemsReport(
	ctx context.Context,
	filter ListCalculationsFilter,
	extract func(*calculation.Calculation) []calculation.ItemRef,
) ([]CalculationItemsResponse, int64, error) {
	domainFilter := toDomainFilter(filter)
	calcs, err := s.calcRepo.FindAllWithItems(ctx, domainFilter.Unpaged())
	if err != nil {
		return nil, 0, err
	}

	matches := make([]CalculationItemsResponse, 0)
	for i := range calcs {
		if refs := extract(&calcs[i]); len(refs) > 0 {
			matches = append(matches, ToCalculationItemsResponse(&calcs[i], refs))
		}
	}

	total := int64(len(matches))
	start := min(domainFilter.Offset(), len(matches))
	end := len(matches)
	if domainFilter.PageSize > 0 {
		end = min(start+domainFilter.PageSize, len(matches))
	}
	return matches[start:end], total, nil
}

// save prices, stores and publishes the events of a calculation
func (s *CalculationService) save(ctx context.Context, calc *calculation.Calculation, params setting.Parameters, operation string) (*CalculationResponse, error) {
	calculator, err := s.calculator(ctx, params)
	if err != nil {
		return nil, err
	}
	totals := calculator.Apply(calc)

	if err := s.calcRepo.Save(ctx, calc); err != nil {
		return nil, err
	}
	s.metrics.CalculationSaved(ctx, operation)
	if totals.BelowMargin {
		s.metrics.BelowMargin(ctx)
	}
	if err := event.PublishPending(ctx, s.publisher, calc); err != nil {
		return nil, err
	}

	response := ToCalculationResponse(calc, params.MinMargin, totals)
	return &response, nil
}

// calculator builds a calculator with the current catalog and global margins
func (s *CalculationService) calculator(ctx context.Context, params setting.Parameters) (*calculation.Calculator, error) {
	groups, err := s.groupRepo.FindAll(ctx, shared.Filter{})
	if err != nil {
		return nil, fmt.Errorf("failed to load groups: %w", err)
	}
	globalMargins, err := s.marginRepo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load global margins: %w", err)
	}
	return calculation.NewCalculator(groups, globalMargins, params.MinMargin), nil
}

// addItems adds the requested items under their catalog category
func (s *CalculationService) addItems(ctx context.Context, calc *calculation.Calculation, items []ItemRequest) error {
	categories := make(map[uuid.UUID]*catalog.Category)
	for _, req := range items {
		category, ok := categories[req.CategoryID]
		if !ok {
			var err error
			category, err = s.categoryRepo.FindByID(ctx, req.CategoryID)
			if err != nil {
				if errors.Is(err, shared.ErrNotFound) {
					return shared.NewDomainError("INVALID_CATEGORY", "Category not found")
				}
				return err
			}
			categories[req.CategoryID] = category
		}

		item, err := calculation.NewCalculationItem(req.Description, req.Unit, req.Price, req.Quantity)
		if err != nil {
			return err
		}
		if err := calc.AddItem(category, item); err != nil {
			return err
		}
	}
	return nil
}

// resolveState returns the requested state, else the default state, else the first editable state
func (s *CalculationService) resolveState(ctx context.Context, stateID *uuid.UUID, params setting.Parameters) (*calculation.CalculationState, error) {
	if stateID != nil {
		return s.findState(ctx, *stateID)
	}
	if params.DefaultStateID != nil {
		state, err := s.stateRepo.FindByID(ctx, *params.DefaultStateID)
		if err == nil {
			return state, nil
		}
		if !errors.Is(err, shared.ErrNotFound) {
			return nil, err
		}
	}

	states, err := s.stateRepo.FindEditable(ctx)
	if err != nil {
		return nil, err
	}
	if len(states) == 0 {
		return nil, shared.NewDomainError("NO_STATE", "No editable calculation state is defined")
	}
	return &states[0], nil
}

func (s *CalculationService) findState(ctx context.Context, id uuid.UUID) (*calculation.CalculationState, error) {
	state, err := s.stateRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("INVALID_STATE", "Calculation state not found")
		}
		return nil, err
	}
	return state, nil
}

// adjustedUserMargin returns the smallest user margin, rounded up to a
// percent, for which the overall margin reaches minMargin
func adjustedUserMargin(totals *calculation.Totals, minMargin decimal.Decimal) (decimal.Decimal, bool) {
	if totals.NetTotal.IsZero() || totals.ItemsTotal.IsZero() {
		return decimal.Zero, false
	}
	target := minMargin.Mul(totals.ItemsTotal)
	userMargin := target.Div(totals.NetTotal).Sub(decimal.NewFromInt(1)).RoundCeil(2)
	return userMargin, true
}

func toDomainFilter(filter ListCalculationsFilter) shared.Filter {
	domainFilter := shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		OrderBy:  filter.OrderBy,
		OrderDir: filter.OrderDir,
		Search:   filter.Search,
		Filters:  make(map[string]interface{}),
	}
	if domainFilter.Page <= 0 {
		domainFilter.Page = 1
	}
	if domainFilter.PageSize <= 0 {
		domainFilter.PageSize = 20
	}
	if filter.StateID != nil {
		domainFilter.Filters["state_id"] = *filter.StateID
	}
	if filter.Editable != nil {
		domainFilter.Filters["editable"] = *filter.Editable
	}
	if filter.DateFrom != nil {
		domainFilter.Filters["date_from"] = *filter.DateFrom
	}
	if filter.DateTo != nil {
		domainFilter.Filters["date_to"] = *filter.DateTo
	}
	return domainFilter
}
