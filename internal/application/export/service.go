// Package export builds the printable documents of calculations and lists
// and writes them in the requested format.
package export

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/calculation/backend/internal/domain/calculation"
	"github.com/calculation/backend/internal/domain/catalog"
	"github.com/calculation/backend/internal/domain/margin"
	"github.com/calculation/backend/internal/domain/partner"
	"github.com/calculation/backend/internal/domain/printing"
	"github.com/calculation/backend/internal/domain/setting"
	"github.com/calculation/backend/internal/domain/shared"
	"github.com/calculation/backend/internal/infrastructure/storage"
	"github.com/calculation/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Exported entities, named after their routes
const (
	EntityCalculations  = "calculations"
	EntityStates        = "calculation-states"
	EntityGroups        = "groups"
	EntityCategories    = "categories"
	EntityProducts      = "products"
	EntityTasks         = "tasks"
	EntityCustomers     = "customers"
	EntityGlobalMargins = "global-margins"
)

// archiveURLExpiration is the validity of the link returned for an archived document
const archiveURLExpiration = 24 * time.Hour

// ExportQuery holds the export options
type ExportQuery struct {
	Format  string `uri:"format" binding:"required,oneof=pdf doc docx word xlsx excel csv"`
	Search  string `form:"search"`
	Archive bool   `form:"archive"`
}

// Result is a generated document
type Result struct {
	FileName    string
	ContentType string
	Data        []byte
	// ArchiveURL is set when the document was archived
	ArchiveURL string
}

// ParametersProvider gives the application parameters printed in the headers
type ParametersProvider interface {
	Parameters(ctx context.Context) (setting.Parameters, error)
}

// Repositories groups the sources of the exported documents
type Repositories struct {
	Calculations  calculation.CalculationRepository
	States        calculation.CalculationStateRepository
	Groups        catalog.GroupRepository
	Categories    catalog.CategoryRepository
	Products      catalog.ProductRepository
	Tasks         catalog.TaskRepository
	Customers     partner.CustomerRepository
	GlobalMargins margin.GlobalMarginRepository
}

// Service generates documents
type Service struct {
	repos    Repositories
	params   ParametersProvider
	builders Registry
	archive  storage.ObjectStorage
	metrics  *telemetry.Metrics
	logger   *zap.Logger
}

// NewService creates a new export service. archive may be nil, archiving is then refused.
func NewService(
	repos Repositories,
	params ParametersProvider,
	builders Registry,
	archive storage.ObjectStorage,
	metrics *telemetry.Metrics,
	logger *zap.Logger,
) *Service {
	return &Service{
		repos:    repos,
		params:   params,
		builders: builders,
		archive:  archive,
		metrics:  metrics,
		logger:   logger,
	}
}

// Formats returns the available output formats
func (s *Service) Formats() []printing.Format {
	return s.builders.Formats()
}

// Calculation exports a calculation with its items and totals
func (s *Service) Calculation(ctx context.Context, id uuid.UUID, query ExportQuery) (*Result, error) {
	return s.export(ctx, "calculation", "calculation-"+id.String(), query, func(ctx context.Context, params setting.Parameters) (*printing.Document, error) {
		calc, err := s.repos.Calculations.FindByID(ctx, id)
		if err != nil {
			return nil, err
		}
		groups, err := s.repos.Groups.FindAll(ctx, shared.Filter{})
		if err != nil {
			return nil, fmt.Errorf("failed to load groups: %w", err)
		}
		margins, err := s.repos.GlobalMargins.FindAll(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to load global margins: %w", err)
		}
		totals := calculation.NewCalculator(groups, margins, params.MinMargin).Apply(calc)
		return calculationDocument(calc, totals, params), nil
	})
}

// List exports the list of an entity, optionally filtered by a search term
func (s *Service) List(ctx context.Context, entity string, query ExportQuery) (*Result, error) {
	load, ok := s.listLoaders()[entity]
	if !ok {
		return nil, shared.NewDomainError("INVALID_ENTITY", "Unknown export: "+entity)
	}
	filter := shared.Filter{Search: query.Search, Filters: make(map[string]interface{})}
	return s.export(ctx, entity, entity+"-list", query, func(ctx context.Context, params setting.Parameters) (*printing.Document, error) {
		return load(ctx, filter, params)
	})
}

type listLoader func(ctx context.Context, filter shared.Filter, params setting.Parameters) (*printing.Document, error)

func (s *Service) listLoaders() map[string]listLoader {
	return map[string]listLoader{
		EntityCalculations: func(ctx context.Context, filter shared.Filter, params setting.Parameters) (*printing.Document, error) {
			filter.OrderBy, filter.OrderDir = "date", "desc"
			calcs, err := s.repos.Calculations.FindAll(ctx, filter)
			if err != nil {
				return nil, err
			}
			return calculationsDocument(calcs, params), nil
		},
		EntityStates: func(ctx context.Context, filter shared.Filter, params setting.Parameters) (*printing.Document, error) {
			filter.OrderBy, filter.OrderDir = "code", "asc"
			states, err := s.repos.States.FindAll(ctx, filter)
			if err != nil {
				return nil, err
			}
			counts := make(map[string]int64, len(states))
			for _, st := range states {
				n, err := s.repos.States.CountCalculations(ctx, st.ID)
				if err != nil {
					return nil, err
				}
				counts[st.ID.String()] = n
			}
			return statesDocument(states, counts, params), nil
		},
		EntityGroups: func(ctx context.Context, filter shared.Filter, params setting.Parameters) (*printing.Document, error) {
			filter.OrderBy, filter.OrderDir = "code", "asc"
			groups, err := s.repos.Groups.FindAll(ctx, filter)
			if err != nil {
				return nil, err
			}
			return groupsDocument(groups, params), nil
		},
		EntityCategories: func(ctx context.Context, filter shared.Filter, params setting.Parameters) (*printing.Document, error) {
			filter.OrderBy, filter.OrderDir = "code", "asc"
			categories, err := s.repos.Categories.FindAll(ctx, filter)
			if err != nil {
				return nil, err
			}
			return categoriesDocument(categories, params), nil
		},
		EntityProducts: func(ctx context.Context, filter shared.Filter, params setting.Parameters) (*printing.Document, error) {
			filter.OrderBy, filter.OrderDir = "description", "asc"
			products, err := s.repos.Products.FindAll(ctx, filter)
			if err != nil {
				return nil, err
			}
			return productsDocument(products, params), nil
		},
		EntityTasks: func(ctx context.Context, filter shared.Filter, params setting.Parameters) (*printing.Document, error) {
			filter.OrderBy, filter.OrderDir = "name", "asc"
			tasks, err := s.repos.Tasks.FindAll(ctx, filter)
			if err != nil {
				return nil, err
			}
			return tasksDocument(tasks, params), nil
		},
		EntityCustomers: func(ctx context.Context, filter shared.Filter, params setting.Parameters) (*printing.Document, error) {
			filter.OrderBy, filter.OrderDir = "last_name", "asc"
			customers, err := s.repos.Customers.FindAll(ctx, filter)
			if err != nil {
				return nil, err
			}
			return customersDocument(customers, params), nil
		},
		EntityGlobalMargins: func(ctx context.Context, _ shared.Filter, params setting.Parameters) (*printing.Document, error) {
			margins, err := s.repos.GlobalMargins.FindAll(ctx)
			if err != nil {
				return nil, err
			}
			return globalMarginsDocument(margins, params), nil
		},
	}
}

func (s *Service) export(
	ctx context.Context,
	report, baseName string,
	query ExportQuery,
	document func(ctx context.Context, params setting.Parameters) (*printing.Document, error),
) (result *Result, err error) {
	format, ok := printing.ParseFormat(query.Format)
	if !ok {
		return nil, shared.NewDomainError("INVALID_FORMAT", "Unsupported export format: "+query.Format)
	}
	builder, ok := s.builders[format]
	if !ok {
		return nil, shared.NewDomainError("FORMAT_UNAVAILABLE", "Export format is not available: "+format.String())
	}
	if query.Archive && s.archive == nil {
		return nil, shared.NewDomainError("ARCHIVE_UNAVAILABLE", "Document archiving is not configured")
	}

	ctx, span := telemetry.StartSpan(ctx, "export", report, telemetry.AttrFormat, format.String())
	defer span.End()
	start := time.Now()
	defer func() {
		if err != nil && !isDomainError(err) {
			telemetry.RecordError(span, err)
		}
		s.metrics.ExportGenerated(ctx, report, format.String(), time.Since(start), err)
	}()

	params, err := s.params.Parameters(ctx)
	if err != nil {
		return nil, err
	}
	doc, err := document(ctx, params)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := builder.Build(ctx, doc, &buf); err != nil {
		s.logger.Error("Failed to build document",
			zap.String("report", report),
			zap.String("format", format.String()),
			zap.Error(err))
		return nil, err
	}

	result = &Result{
		FileName:    baseName + "." + format.Extension(),
		ContentType: format.ContentType(),
		Data:        buf.Bytes(),
	}
	if query.Archive {
		if result.ArchiveURL, err = s.store(ctx, result); err != nil {
			return nil, err
		}
	}

	s.logger.Info("Document exported",
		zap.String("report", report),
		zap.String("format", format.String()),
		zap.Int("size", len(result.Data)),
		zap.Bool("archived", query.Archive),
		zap.Duration("duration", time.Since(start)))
	return result, nil
}

// store uploads the document and returns a temporary download link
func (s *Service) store(ctx context.Context, result *Result) (string, error) {
	key := storage.ArchiveKey(time.Now(), result.FileName)
	if err := s.archive.Put(ctx, key, result.ContentType, result.Data); err != nil {
		return "", fmt.Errorf("failed to archive document: %w", err)
	}
	url, _, err := s.archive.DownloadURL(ctx, key, archiveURLExpiration)
	if err != nil {
		return "", fmt.Errorf("failed to sign archive url: %w", err)
	}
	return url, nil
}

func isDomainError(err error) bool {
	var domainErr *shared.DomainError
	return errors.As(err, &domainErr)
}
