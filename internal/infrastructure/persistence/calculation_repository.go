package persistence

import (
	"context"
	"sort"
	"time"

	"github.com/calculation/backend/internal/domain/calculation"
	"github.com/calculation/backend/internal/domain/shared"
	"github.com/calculation/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormCalculationRepository implements CalculationRepository using GORM
type GormCalculationRepository struct {
	db *gorm.DB
}

// NewGormCalculationRepository creates a new GormCalculationRepository
func NewGormCalculationRepository(db *gorm.DB) *GormCalculationRepository {
	return &GormCalculationRepository{db: db}
}

// withItems preloads the whole group/category/item tree in position order
func withItems(query *gorm.DB) *gorm.DB {
	return query.
		Preload("Groups", byPosition).
		Preload("Groups.Categories", byPosition).
		Preload("Groups.Categories.Items", byPosition)
}

// FindByID finds a calculation with its state and items
func (r *GormCalculationRepository) FindByID(ctx context.Context, id uuid.UUID) (*calculation.Calculation, error) {
	var model models.CalculationModel
	query := withItems(r.db.WithContext(ctx).Preload("State"))
	if err := query.First(&model, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return model.ToDomain(), nil
}

// FindAll finds calculations matching the filter, without their items
func (r *GormCalculationRepository) FindAll(ctx context.Context, filter shared.Filter) ([]calculation.Calculation, error) {
	var calcModels []models.CalculationModel
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.CalculationModel{}).Preload("State"), filter)
	if err := query.Find(&calcModels).Error; err != nil {
		return nil, err
	}
	return toCalculations(calcModels), nil
}

// FindAllWithItems finds calculations matching the filter, with their items
func (r *GormCalculationRepository) FindAllWithItems(ctx context.Context, filter shared.Filter) ([]calculation.Calculation, error) {
	var calcModels []models.CalculationModel
	query := r.applyFilter(withItems(r.db.WithContext(ctx).Model(&models.CalculationModel{}).Preload("State")), filter)
	if err := query.Find(&calcModels).Error; err != nil {
		return nil, err
	}
	return toCalculations(calcModels), nil
}

// FindBelowMargin finds calculations whose overall margin is under minMargin.
// Calculations without items are never below margin.
func (r *GormCalculationRepository) FindBelowMargin(ctx context.Context, minMargin decimal.Decimal, filter shared.Filter) ([]calculation.Calculation, error) {
	var calcModels []models.CalculationModel
	query := r.db.WithContext(ctx).Model(&models.CalculationModel{}).Preload("State")
	query = r.applyFilter(belowMargin(query, minMargin), filter)
	if err := query.Find(&calcModels).Error; err != nil {
		return nil, err
	}
	return toCalculations(calcModels), nil
}

// CountBelowMargin counts calculations whose overall margin is under minMargin, ignoring pagination
func (r *GormCalculationRepository) CountBelowMargin(ctx context.Context, minMargin decimal.Decimal, filter shared.Filter) (int64, error) {
	var count int64
	query := belowMargin(r.db.WithContext(ctx).Model(&models.CalculationModel{}), minMargin)
	query = r.applyFilterWithoutPagination(query, filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func belowMargin(query *gorm.DB, minMargin decimal.Decimal) *gorm.DB {
	return query.Where("items_total <> 0 AND overall_total < items_total * ?", minMargin)
}

// FindForArchive finds calculations dated before the given date in one of the given states
func (r *GormCalculationRepository) FindForArchive(ctx context.Context, before time.Time, stateIDs []uuid.UUID) ([]calculation.Calculation, error) {
	if len(stateIDs) == 0 {
		return []calculation.Calculation{}, nil
	}
	var calcModels []models.CalculationModel
	if err := r.db.WithContext(ctx).
		Preload("State").
		Where("date < ? AND state_id IN ?", before, stateIDs).
		Order("date ASC").
		Find(&calcModels).Error; err != nil {
		return nil, err
	}
	return toCalculations(calcModels), nil
}

// Save creates or updates a calculation and replaces its groups, categories and items
func (r *GormCalculationRepository) Save(ctx context.Context, calc *calculation.Calculation) error {
	model := models.CalculationModelFromDomain(calc)

	var (
		groups     []models.CalculationGroupModel
		categories []models.CalculationCategoryModel
		items      []models.CalculationItemModel
	)
	for _, g := range model.Groups {
		for _, c := range g.Categories {
			items = append(items, c.Items...)
			c.Items = nil
			categories = append(categories, c)
		}
		g.Categories = nil
		groups = append(groups, g)
	}
	model.Groups = nil
	model.State = nil

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Save(model).Error; err != nil {
			return err
		}
		if err := r.deleteChildren(tx, calc.ID); err != nil {
			return err
		}
		if len(groups) > 0 {
			if err := tx.Omit(clause.Associations).CreateInBatches(groups, 100).Error; err != nil {
				return err
			}
		}
		if len(categories) > 0 {
			if err := tx.Omit(clause.Associations).CreateInBatches(categories, 100).Error; err != nil {
				return err
			}
		}
		if len(items) > 0 {
			if err := tx.Omit(clause.Associations).CreateInBatches(items, 100).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *GormCalculationRepository) deleteChildren(tx *gorm.DB, id uuid.UUID) error {
	if err := tx.Where("calculation_id = ?", id).Delete(&models.CalculationItemModel{}).Error; err != nil {
		return err
	}
	if err := tx.Where("calculation_id = ?", id).Delete(&models.CalculationCategoryModel{}).Error; err != nil {
		return err
	}
	return tx.Where("calculation_id = ?", id).Delete(&models.CalculationGroupModel{}).Error
}

// UpdateState moves the given calculations to another state
func (r *GormCalculationRepository) UpdateState(ctx context.Context, ids []uuid.UUID, state *calculation.CalculationState, username string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	result := r.db.WithContext(ctx).
		Model(&models.CalculationModel{}).
		Where("id IN ?", ids).
		Updates(map[string]any{
			"state_id":   state.ID,
			"updated_by": username,
			"updated_at": time.Now(),
			"version":    gorm.Expr("version + 1"),
		})
	return result.RowsAffected, result.Error
}

// Delete deletes a calculation and its items
func (r *GormCalculationRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := r.deleteChildren(tx, id); err != nil {
			return err
		}
		result := tx.Delete(&models.CalculationModel{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
}

// Count counts calculations matching the filter
func (r *GormCalculationRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyFilterWithoutPagination(r.db.WithContext(ctx).Model(&models.CalculationModel{}), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

type monthRow struct {
	Date         time.Time
	ItemsTotal   decimal.Decimal
	OverallTotal decimal.Decimal
}

// StatsByMonth aggregates calculations by month, starting at since.
// Grouping happens in Go since date functions differ between drivers.
func (r *GormCalculationRepository) StatsByMonth(ctx context.Context, since time.Time) ([]calculation.MonthStat, error) {
	var rows []monthRow
	if err := r.db.WithContext(ctx).
		Model(&models.CalculationModel{}).
		Select("date, items_total, overall_total").
		Where("date >= ?", since).
		Order("date ASC").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	stats := make([]calculation.MonthStat, 0)
	for _, row := range rows {
		year, month := row.Date.Year(), int(row.Date.Month())
		n := len(stats)
		if n == 0 || stats[n-1].Year != year || stats[n-1].Month != month {
			stats = append(stats, calculation.MonthStat{Year: year, Month: month})
			n++
		}
		stats[n-1].Count++
		stats[n-1].ItemsTotal = stats[n-1].ItemsTotal.Add(row.ItemsTotal)
		stats[n-1].OverallTotal = stats[n-1].OverallTotal.Add(row.OverallTotal)
	}
	return stats, nil
}

type stateRow struct {
	StateID      uuid.UUID
	Count        int64
	ItemsTotal   decimal.Decimal
	OverallTotal decimal.Decimal
}

// StatsByState aggregates calculations by state, ordered by state code
func (r *GormCalculationRepository) StatsByState(ctx context.Context) ([]calculation.StateStat, error) {
	var rows []stateRow
	if err := r.db.WithContext(ctx).
		Model(&models.CalculationModel{}).
		Select("state_id, COUNT(*) AS count, COALESCE(SUM(items_total), 0) AS items_total, COALESCE(SUM(overall_total), 0) AS overall_total").
		Group("state_id").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return []calculation.StateStat{}, nil
	}

	ids := make([]uuid.UUID, len(rows))
	for i, row := range rows {
		ids[i] = row.StateID
	}
	var states []models.CalculationStateModel
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&states).Error; err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]models.CalculationStateModel, len(states))
	for _, s := range states {
		byID[s.ID] = s
	}

	stats := make([]calculation.StateStat, 0, len(rows))
	for _, row := range rows {
		s := byID[row.StateID]
		stats = append(stats, calculation.StateStat{
			StateID:      row.StateID,
			Code:         s.Code,
			Color:        s.Color,
			Editable:     s.Editable,
			Count:        row.Count,
			ItemsTotal:   row.ItemsTotal,
			OverallTotal: row.OverallTotal,
		})
	}
	sort.Slice(stats, func(i, j int) bool { return stats[i].Code < stats[j].Code })
	return stats, nil
}

// applyFilter applies filter options to the query
func (r *GormCalculationRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)
	query = paginate(query, filter)
	query = orderBy(query, filter, CalculationSortFields, "date", "DESC")
	return query.Order("id DESC")
}

// applyFilterWithoutPagination applies filter options without pagination
func (r *GormCalculationRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = whereContains(query, filter.Search, "customer", "description", "created_by")

	for key, value := range filter.Filters {
		switch key {
		case "state_id":
			query = query.Where("state_id = ?", value)
		case "state_ids":
			query = query.Where("state_id IN ?", value)
		case "editable":
			query = query.Where("state_id IN (?)",
				r.db.Model(&models.CalculationStateModel{}).Select("id").Where("editable = ?", value))
		case "created_by":
			query = query.Where("created_by = ?", value)
		case "date_from":
			query = query.Where("date >= ?", value)
		case "date_to":
			query = query.Where("date <= ?", value)
		case "customer":
			query = query.Where("customer = ?", value)
		}
	}

	return query
}

func toCalculations(calcModels []models.CalculationModel) []calculation.Calculation {
	calcs := make([]calculation.Calculation, len(calcModels))
	for i := range calcModels {
		calcs[i] = *calcModels[i].ToDomain()
	}
	return calcs
}
