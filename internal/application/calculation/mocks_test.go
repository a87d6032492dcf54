package calculation

import (
	"context"
	"sync"
	"time"

	"github.com/calculation/backend/internal/domain/calculation"
	"github.com/calculation/backend/internal/domain/catalog"
	"github.com/calculation/backend/internal/domain/margin"
	"github.com/calculation/backend/internal/domain/setting"
	"github.com/calculation/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// MockCalculationRepository is a mock implementation of CalculationRepository
type MockCalculationRepository struct {
	mock.Mock
}

func (m *MockCalculationRepository) FindByID(ctx context.Context, id uuid.UUID) (*calculation.Calculation, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*calculation.Calculation), args.Error(1)
}

func (m *MockCalculationRepository) FindAll(ctx context.Context, filter shared.Filter) ([]calculation.Calculation, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]calculation.Calculation), args.Error(1)
}

func (m *MockCalculationRepository) FindAllWithItems(ctx context.Context, filter shared.Filter) ([]calculation.Calculation, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]calculation.Calculation), args.Error(1)
}

func (m *MockCalculationRepository) FindBelowMargin(ctx context.Context, minMargin decimal.Decimal, filter shared.Filter) ([]calculation.Calculation, error) {
	args := m.Called(ctx, minMargin, filter)
	return args.Get(0).([]calculation.Calculation), args.Error(1)
}

func (m *MockCalculationRepository) CountBelowMargin(ctx context.Context, minMargin decimal.Decimal, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, minMargin, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockCalculationRepository) FindForArchive(ctx context.Context, before time.Time, stateIDs []uuid.UUID) ([]calculation.Calculation, error) {
	args := m.Called(ctx, before, stateIDs)
	return args.Get(0).([]calculation.Calculation), args.Error(1)
}

func (m *MockCalculationRepository) Save(ctx context.Context, calc *calculation.Calculation) error {
	args := m.Called(ctx, calc)
	return args.Error(0)
}

func (m *MockCalculationRepository) UpdateState(ctx context.Context, ids []uuid.UUID, state *calculation.CalculationState, username string) (int64, error) {
	args := m.Called(ctx, ids, state, username)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockCalculationRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockCalculationRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockCalculationRepository) StatsByMonth(ctx context.Context, since time.Time) ([]calculation.MonthStat, error) {
	args := m.Called(ctx, since)
	return args.Get(0).([]calculation.MonthStat), args.Error(1)
}

func (m *MockCalculationRepository) StatsByState(ctx context.Context) ([]calculation.StateStat, error) {
	args := m.Called(ctx)
	return args.Get(0).([]calculation.StateStat), args.Error(1)
}

// MockStateRepository is a mock implementation of CalculationStateRepository
type MockStateRepository struct {
	mock.Mock
}

func (m *MockStateRepository) FindByID(ctx context.Context, id uuid.UUID) (*calculation.CalculationState, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*calculation.CalculationState), args.Error(1)
}

func (m *MockStateRepository) FindByCode(ctx context.Context, code string) (*calculation.CalculationState, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*calculation.CalculationState), args.Error(1)
}

func (m *MockStateRepository) FindAll(ctx context.Context, filter shared.Filter) ([]calculation.CalculationState, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]calculation.CalculationState), args.Error(1)
}

func (m *MockStateRepository) FindEditable(ctx context.Context) ([]calculation.CalculationState, error) {
	args := m.Called(ctx)
	return args.Get(0).([]calculation.CalculationState), args.Error(1)
}

func (m *MockStateRepository) Save(ctx context.Context, state *calculation.CalculationState) error {
	args := m.Called(ctx, state)
	return args.Error(0)
}

func (m *MockStateRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockStateRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockStateRepository) ExistsByCode(ctx context.Context, code string, excludeID *uuid.UUID) (bool, error) {
	args := m.Called(ctx, code, excludeID)
	return args.Bool(0), args.Error(1)
}

func (m *MockStateRepository) CountCalculations(ctx context.Context, stateID uuid.UUID) (int64, error) {
	args := m.Called(ctx, stateID)
	return args.Get(0).(int64), args.Error(1)
}

// MockGroupRepository is a mock implementation of GroupRepository
type MockGroupRepository struct {
	mock.Mock
	catalog.GroupRepository
}

func (m *MockGroupRepository) FindAll(ctx context.Context, filter shared.Filter) ([]catalog.Group, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]catalog.Group), args.Error(1)
}

// MockCategoryRepository is a mock implementation of CategoryRepository
type MockCategoryRepository struct {
	mock.Mock
	catalog.CategoryRepository
}

func (m *MockCategoryRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Category, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Category), args.Error(1)
}

// MockGlobalMarginRepository is a mock implementation of GlobalMarginRepository
type MockGlobalMarginRepository struct {
	mock.Mock
	margin.GlobalMarginRepository
}

func (m *MockGlobalMarginRepository) FindAll(ctx context.Context) ([]margin.GlobalMargin, error) {
	args := m.Called(ctx)
	return args.Get(0).([]margin.GlobalMargin), args.Error(1)
}

type stubParameters struct {
	params setting.Parameters
}

func (s stubParameters) Parameters(context.Context) (setting.Parameters, error) {
	return s.params, nil
}

// recordingPublisher keeps the published events
type recordingPublisher struct {
	mu     sync.Mutex
	events []shared.DomainEvent
}

func (p *recordingPublisher) Publish(_ context.Context, events ...shared.DomainEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, events...)
	return nil
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	types := make([]string, len(p.events))
	for i, e := range p.events {
		types[i] = e.EventType()
	}
	return types
}
