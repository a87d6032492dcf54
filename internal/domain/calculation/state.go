package calculation

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/calculation/backend/internal/domain/shared"
)

var colorPattern = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

// DefaultStateColor is used when no color is given
const DefaultStateColor = "#000000"

// CalculationState is the workflow status of a calculation. Calculations in
// a non-editable state can be viewed and exported but not modified.
type CalculationState struct {
	shared.BaseAggregateRoot
	Code        string
	Description string
	Editable    bool
	Color       string
}

// NewCalculationState creates a new calculation state
func NewCalculationState(code, description string, editable bool, color string) (*CalculationState, error) {
	state := &CalculationState{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
	}
	if err := state.apply(code, description, editable, color); err != nil {
		return nil, err
	}
	return state, nil
}

// Update changes every attribute of the state
func (s *CalculationState) Update(code, description string, editable bool, color string) error {
	if err := s.apply(code, description, editable, color); err != nil {
		return err
	}
	s.MarkModified()
	return nil
}

func (s *CalculationState) apply(code, description string, editable bool, color string) error {
	code = strings.TrimSpace(code)
	if code == "" {
		return shared.NewDomainError("INVALID_CODE", "State code cannot be empty")
	}
	if utf8.RuneCountInString(code) > 30 {
		return shared.NewDomainError("INVALID_CODE", "State code cannot exceed 30 characters")
	}
	if color == "" {
		color = DefaultStateColor
	}
	if !colorPattern.MatchString(color) {
		return shared.NewDomainError("INVALID_COLOR", "State color must be a hexadecimal color like #FF0000")
	}

	s.Code = code
	s.Description = description
	s.Editable = editable
	s.Color = strings.ToUpper(color)
	return nil
}
