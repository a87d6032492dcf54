package catalog

import (
	"strings"
	"unicode/utf8"

	"github.com/calculation/backend/internal/domain/shared"
)

const (
	maxCodeLength        = 30
	maxDescriptionLength = 255
	maxUnitLength        = 15
)

// normalizeCode trims and upper-cases a code
func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// validateCode validates a group or category code
func validateCode(kind, code string) error {
	if code == "" {
		return shared.NewDomainError("INVALID_CODE", kind+" code cannot be empty")
	}
	if utf8.RuneCountInString(code) > maxCodeLength {
		return shared.NewDomainError("INVALID_CODE", kind+" code cannot exceed 30 characters")
	}
	for _, r := range code {
		if !((r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '_' || r == '-') {
			return shared.NewDomainError("INVALID_CODE", kind+" code can only contain letters, numbers, underscores, and hyphens")
		}
	}
	return nil
}

func validateDescription(kind, description string, required bool) error {
	if required && strings.TrimSpace(description) == "" {
		return shared.NewDomainError("INVALID_DESCRIPTION", kind+" description cannot be empty")
	}
	if utf8.RuneCountInString(description) > maxDescriptionLength {
		return shared.NewDomainError("INVALID_DESCRIPTION", kind+" description cannot exceed 255 characters")
	}
	return nil
}

func validateUnit(unit string) error {
	if utf8.RuneCountInString(unit) > maxUnitLength {
		return shared.NewDomainError("INVALID_UNIT", "Unit cannot exceed 15 characters")
	}
	return nil
}
