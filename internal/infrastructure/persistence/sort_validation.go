package persistence

import (
	"strings"
)

// ValidateSortOrder normalizes the sort order to ASC or DESC, DESC when invalid
func ValidateSortOrder(orderDir string) string {
	if strings.EqualFold(strings.TrimSpace(orderDir), "ASC") {
		return "ASC"
	}
	return "DESC"
}

// ValidateSortField returns sortField when it is whitelisted, defaultField otherwise.
// Only whitelisted names ever reach ORDER BY.
func ValidateSortField(sortField string, allowedFields map[string]bool, defaultField string) string {
	if trimmed := strings.TrimSpace(sortField); allowedFields[trimmed] {
		return trimmed
	}
	return defaultField
}

// CommonSortFields are sortable on every table
var CommonSortFields = []string{"id", "created_at", "updated_at"}

// sortFields builds a whitelist from the common fields plus the given columns
func sortFields(columns ...string) map[string]bool {
	fields := make(map[string]bool, len(CommonSortFields)+len(columns))
	for _, column := range CommonSortFields {
		fields[column] = true
	}
	for _, column := range columns {
		fields[column] = true
	}
	return fields
}

// Sort whitelists, one per listed table
var (
	CalculationSortFields = sortFields("date", "customer", "description", "state_id",
		"items_total", "overall_total", "created_by", "updated_by")
	CalculationStateSortFields = sortFields("code", "description", "editable")
	GroupSortFields            = sortFields("code", "description")
	CategorySortFields         = sortFields("code", "description", "group_id")
	ProductSortFields          = sortFields("description", "unit", "price", "supplier", "category_id")
	TaskSortFields             = sortFields("name", "unit", "supplier", "category_id")
	CustomerSortFields         = sortFields("last_name", "first_name", "company", "city", "zip_code", "email")
	UserSortFields             = sortFields("username", "email", "role", "enabled", "last_login_at")
)
