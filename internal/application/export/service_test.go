package export

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/calculation/backend/internal/domain/calculation"
	"github.com/calculation/backend/internal/domain/catalog"
	"github.com/calculation/backend/internal/domain/margin"
	"github.com/calculation/backend/internal/domain/printing"
	"github.com/calculation/backend/internal/domain/setting"
	"github.com/calculation/backend/internal/domain/shared"
	"github.com/calculation/backend/internal/infrastructure/storage"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

type MockCalculationRepository struct {
	mock.Mock
	calculation.CalculationRepository
}

func (m *MockCalculationRepository) FindByID(ctx context.Context, id uuid.UUID) (*calculation.Calculation, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*calculation.Calculation), args.Error(1)
}

type MockGroupRepository struct {
	mock.Mock
	catalog.GroupRepository
}

func (m *MockGroupRepository) FindAll(ctx context.Context, filter shared.Filter) ([]catalog.Group, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]catalog.Group), args.Error(1)
}

type MockProductRepository struct {
	mock.Mock
	catalog.ProductRepository
}

func (m *MockProductRepository) FindAll(ctx context.Context, filter shared.Filter) ([]catalog.Product, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]catalog.Product), args.Error(1)
}

type MockGlobalMarginRepository struct {
	mock.Mock
	margin.GlobalMarginRepository
}

func (m *MockGlobalMarginRepository) FindAll(ctx context.Context) ([]margin.GlobalMargin, error) {
	args := m.Called(ctx)
	return args.Get(0).([]margin.GlobalMargin), args.Error(1)
}

type stubParameters struct{}

func (stubParameters) Parameters(context.Context) (setting.Parameters, error) {
	p := setting.DefaultParameters()
	p.CustomerName = "Acme Builders"
	p.CustomerAddress = "Main Street 1\n1000 Lausanne"
	return p, nil
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

type fixture struct {
	calcs    *MockCalculationRepository
	groups   *MockGroupRepository
	products *MockProductRepository
	margins  *MockGlobalMarginRepository
	archive  *storage.MemoryObjectStorage
	calc     *calculation.Calculation
	svc      *Service
}

func newFixture(t *testing.T, groupMargin string) *fixture {
	t.Helper()
	f := &fixture{
		calcs:    new(MockCalculationRepository),
		groups:   new(MockGroupRepository),
		products: new(MockProductRepository),
		margins:  new(MockGlobalMarginRepository),
		archive:  storage.NewMemoryObjectStorage("http://archive.test"),
	}

	group, err := catalog.NewGroup("MO", "Labour")
	require.NoError(t, err)
	gm, err := catalog.NewGroupMargin(dec("0"), dec("1000000"), dec(groupMargin))
	require.NoError(t, err)
	require.NoError(t, group.SetMargins([]catalog.GroupMargin{gm}))
	category, err := catalog.NewCategory("MO-1", "Assembly", group)
	require.NoError(t, err)
	global, err := margin.NewGlobalMargin(dec("0"), dec("1000000"), dec("1"))
	require.NoError(t, err)
	state, err := calculation.NewCalculationState("OPEN", "Open", true, "")
	require.NoError(t, err)

	f.calc, err = calculation.NewCalculation(time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC), "Mr. Smith", "Kitchen", state, "alice")
	require.NoError(t, err)
	item, err := calculation.NewCalculationItem("Cabinet assembly", "h", dec("80"), dec("10"))
	require.NoError(t, err)
	require.NoError(t, f.calc.AddItem(category, item))

	f.calcs.On("FindByID", mock.Anything, f.calc.ID).Return(f.calc, nil).Maybe()
	f.groups.On("FindAll", mock.Anything, mock.Anything).Return([]catalog.Group{*group}, nil).Maybe()
	f.margins.On("FindAll", mock.Anything).Return([]margin.GlobalMargin{*global}, nil).Maybe()

	f.svc = NewService(
		Repositories{
			Calculations:  f.calcs,
			Groups:        f.groups,
			Products:      f.products,
			GlobalMargins: f.margins,
		},
		stubParameters{},
		DefaultRegistry(),
		f.archive,
		nil,
		zap.NewNop(),
	)
	return f
}

func TestService_Calculation(t *testing.T) {
	ctx := context.Background()

	t.Run("exports the items and totals as csv", func(t *testing.T) {
		f := newFixture(t, "1.5")
		result, err := f.svc.Calculation(ctx, f.calc.ID, ExportQuery{Format: "csv"})
		require.NoError(t, err)

		assert.Equal(t, "calculation-"+f.calc.ID.String()+".csv", result.FileName)
		assert.Equal(t, "text/csv; charset=utf-8", result.ContentType)
		body := string(result.Data)
		assert.Contains(t, body, "Cabinet assembly")
		assert.Contains(t, body, "Overall total")
		assert.Contains(t, body, "1200.00")
		assert.Empty(t, result.ArchiveURL)
	})

	t.Run("prints a warning when below the minimum margin", func(t *testing.T) {
		f := newFixture(t, "1")
		result, err := f.svc.Calculation(ctx, f.calc.ID, ExportQuery{Format: "docx"})
		require.NoError(t, err)

		assert.Equal(t, "application/msword", result.ContentType)
		assert.True(t, strings.HasSuffix(result.FileName, ".doc"))
		body := string(result.Data)
		assert.Contains(t, body, "Acme Builders")
		assert.Contains(t, body, "below the minimum")
	})

	t.Run("archives the document", func(t *testing.T) {
		f := newFixture(t, "1.5")
		result, err := f.svc.Calculation(ctx, f.calc.ID, ExportQuery{Format: "xlsx", Archive: true})
		require.NoError(t, err)
		require.True(t, strings.HasPrefix(result.ArchiveURL, "http://archive.test/archive/"))

		key := strings.TrimPrefix(result.ArchiveURL[:strings.Index(result.ArchiveURL, "?")], "http://archive.test/")
		data, contentType, ok := f.archive.Get(key)
		require.True(t, ok)
		assert.Equal(t, printing.FormatXLSX.ContentType(), contentType)
		assert.Equal(t, result.Data, data)
	})

	t.Run("rejects an unknown format", func(t *testing.T) {
		f := newFixture(t, "1.5")
		_, err := f.svc.Calculation(ctx, f.calc.ID, ExportQuery{Format: "rtf"})
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_FORMAT", domainErr.Code)
	})

	t.Run("reports a format without builder", func(t *testing.T) {
		f := newFixture(t, "1.5")
		_, err := f.svc.Calculation(ctx, f.calc.ID, ExportQuery{Format: "pdf"})
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "FORMAT_UNAVAILABLE", domainErr.Code)
	})

	t.Run("returns the repository error for a missing calculation", func(t *testing.T) {
		f := newFixture(t, "1.5")
		id := uuid.New()
		f.calcs.On("FindByID", mock.Anything, id).Return(nil, shared.ErrNotFound)
		_, err := f.svc.Calculation(ctx, id, ExportQuery{Format: "csv"})
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestService_List(t *testing.T) {
	ctx := context.Background()

	t.Run("exports the searched products as a workbook", func(t *testing.T) {
		f := newFixture(t, "1.5")
		f.products.On("FindAll", mock.Anything, mock.MatchedBy(func(filter shared.Filter) bool {
			return filter.Search == "screw" && filter.Page == 0
		})).Return([]catalog.Product{
			{Description: "Screw 4x40", Unit: "pce", Price: dec("0.15"), GroupCode: "MAT", CategoryCode: "MAT-1"},
			{Description: "Screw 5x60", Unit: "pce", Price: dec("0.2"), GroupCode: "MAT", CategoryCode: "MAT-1"},
		}, nil)

		result, err := f.svc.List(ctx, EntityProducts, ExportQuery{Format: "xlsx", Search: "screw"})
		require.NoError(t, err)
		assert.Equal(t, "products-list.xlsx", result.FileName)

		book, err := excelize.OpenReader(bytes.NewReader(result.Data))
		require.NoError(t, err)
		defer book.Close()
		rows, err := book.GetRows(book.GetSheetName(0))
		require.NoError(t, err)
		require.GreaterOrEqual(t, len(rows), 3)
		assert.Equal(t, "Description", rows[0][0])
		assert.Equal(t, "Screw 4x40", rows[1][0])
	})

	t.Run("rejects an unknown entity", func(t *testing.T) {
		f := newFixture(t, "1.5")
		_, err := f.svc.List(ctx, "invoices", ExportQuery{Format: "csv"})
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_ENTITY", domainErr.Code)
	})
}

func TestCount(t *testing.T) {
	assert.Equal(t, "1 category", count(1, "category"))
	assert.Equal(t, "3 categories", count(3, "category"))
	assert.Equal(t, "0 products", count(0, "product"))
}
