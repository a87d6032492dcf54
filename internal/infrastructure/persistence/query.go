package persistence

import (
	"errors"
	"strings"

	"github.com/calculation/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// whereContains adds a case-insensitive "contains" match of term over any of the columns.
// LOWER/LIKE is used instead of ILIKE so that the query runs on every supported driver.
func whereContains(query *gorm.DB, term string, columns ...string) *gorm.DB {
	term = strings.TrimSpace(term)
	if term == "" || len(columns) == 0 {
		return query
	}
	pattern := "%" + strings.ToLower(term) + "%"
	conditions := make([]string, len(columns))
	args := make([]any, len(columns))
	for i, column := range columns {
		conditions[i] = "LOWER(" + column + ") LIKE ?"
		args[i] = pattern
	}
	return query.Where("("+strings.Join(conditions, " OR ")+")", args...)
}

// paginate applies the page window of the filter, if any
func paginate(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Page > 0 && filter.PageSize > 0 {
		query = query.Offset(filter.Offset()).Limit(filter.PageSize)
	}
	return query
}

// orderBy applies the whitelisted sort of the filter, defaulting to defaultField
func orderBy(query *gorm.DB, filter shared.Filter, allowed map[string]bool, defaultField, defaultDir string) *gorm.DB {
	field := ValidateSortField(filter.OrderBy, allowed, defaultField)
	dir := defaultDir
	if filter.OrderDir != "" {
		dir = ValidateSortOrder(filter.OrderDir)
	}
	return query.Order(field + " " + dir)
}

// byPosition orders preloaded children
func byPosition(db *gorm.DB) *gorm.DB {
	return db.Order("position ASC")
}

// notFound maps gorm.ErrRecordNotFound to shared.ErrNotFound
func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return shared.ErrNotFound
	}
	return err
}
