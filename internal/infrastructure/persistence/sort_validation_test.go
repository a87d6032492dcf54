package persistence

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateSortOrder(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"empty defaults to DESC", "", "DESC"},
		{"ASC is kept", "ASC", "ASC"},
		{"lower case asc is normalized", "asc", "ASC"},
		{"surrounding spaces are ignored", "  asc  ", "ASC"},
		{"desc is normalized", "desc", "DESC"},
		{"unknown values fall back to DESC", "sideways", "DESC"},
		{"a trailing statement is refused", "ASC; DROP TABLE sy_user;--", "DESC"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ValidateSortOrder(tt.input))
		})
	}
}

func TestValidateSortField(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"empty uses the default", "", "date"},
		{"a whitelisted column is kept", "overall_total", "overall_total"},
		{"a common column is kept", "updated_at", "updated_at"},
		{"surrounding spaces are ignored", "  customer  ", "customer"},
		{"columns are case sensitive", "CUSTOMER", "date"},
		{"an unknown column uses the default", "password_hash", "date"},
		{"a second column is refused", "customer, date", "date"},
		{"a sub query is refused", "(SELECT 1)", "date"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ValidateSortField(tt.input, CalculationSortFields, "date"))
		})
	}

	t.Run("an empty default is returned as is", func(t *testing.T) {
		assert.Empty(t, ValidateSortField("unknown", GroupSortFields, ""))
	})
}

func TestSortFieldsWhitelists(t *testing.T) {
	whitelists := map[string]map[string]bool{
		"calculations": CalculationSortFields,
		"states":       CalculationStateSortFields,
		"groups":       GroupSortFields,
		"categories":   CategorySortFields,
		"products":     ProductSortFields,
		"tasks":        TaskSortFields,
		"customers":    CustomerSortFields,
		"users":        UserSortFields,
	}

	for name, whitelist := range whitelists {
		t.Run(name+" are sortable by the common columns", func(t *testing.T) {
			for _, field := range CommonSortFields {
				assert.True(t, whitelist[field], "%s should allow %q", name, field)
			}
		})
	}

	t.Run("user secrets are not sortable", func(t *testing.T) {
		assert.False(t, UserSortFields["password_hash"])
		assert.False(t, UserSortFields["reset_token"])
	})
}

func TestSortInjectionIsRejected(t *testing.T) {
	payloads := []string{
		"id; DROP TABLE sy_user;--",
		"id' OR '1'='1",
		"id UNION SELECT * FROM sy_user",
		"CASE WHEN 1=1 THEN id ELSE customer END",
		"id/**/;DROP TABLE sy_user",
		"id\n; DROP TABLE sy_user",
		"date; DELETE FROM sy_calculation",
	}

	for _, payload := range payloads {
		assert.Equal(t, "created_at", ValidateSortField(payload, UserSortFields, "created_at"), "field %q", payload)
		assert.Equal(t, "DESC", ValidateSortOrder(payload), "order %q", payload)
	}
}
