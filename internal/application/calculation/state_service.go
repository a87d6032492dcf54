package calculation

import (
	"context"
	"fmt"
	"time"

	"github.com/calculation/backend/internal/domain/calculation"
	"github.com/calculation/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// CreateStateRequest represents a request to create or edit a calculation state
type CreateStateRequest struct {
	Code        string `json:"code" binding:"required,min=1,max=30"`
	Description string `json:"description" binding:"max=255"`
	Editable    bool   `json:"editable"`
	Color       string `json:"color" binding:"omitempty,hexcolor"`
}

// StateResponse represents a calculation state in API responses
type StateResponse struct {
	ID           uuid.UUID `json:"id"`
	Code         string    `json:"code"`
	Description  string    `json:"description"`
	Editable     bool      `json:"editable"`
	Color        string    `json:"color"`
	Calculations int64     `json:"calculations"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// ToStateResponse converts a domain CalculationState to StateResponse
func ToStateResponse(s *calculation.CalculationState) StateResponse {
	return StateResponse{
		ID:          s.ID,
		Code:        s.Code,
		Description: s.Description,
		Editable:    s.Editable,
		Color:       s.Color,
		CreatedAt:   s.CreatedAt,
		UpdatedAt:   s.UpdatedAt,
	}
}

// StateService handles calculation state operations
type StateService struct {
	stateRepo calculation.CalculationStateRepository
}

// NewStateService creates a new StateService
func NewStateService(stateRepo calculation.CalculationStateRepository) *StateService {
	return &StateService{stateRepo: stateRepo}
}

// List retrieves the states with their number of calculations
func (s *StateService) List(ctx context.Context, filter shared.Filter) ([]StateResponse, int64, error) {
	if filter.OrderBy == "" {
		filter.OrderBy = "code"
		filter.OrderDir = "asc"
	}
	states, err := s.stateRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.stateRepo.Count(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]StateResponse, len(states))
	for i := range states {
		responses[i] = ToStateResponse(&states[i])
		count, err := s.stateRepo.CountCalculations(ctx, states[i].ID)
		if err != nil {
			return nil, 0, err
		}
		responses[i].Calculations = count
	}
	return responses, total, nil
}

// GetByID retrieves a state
func (s *StateService) GetByID(ctx context.Context, id uuid.UUID) (*StateResponse, error) {
	state, err := s.stateRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	response := ToStateResponse(state)
	response.Calculations, err = s.stateRepo.CountCalculations(ctx, id)
	if err != nil {
		return nil, err
	}
	return &response, nil
}

// Create creates a new state
func (s *StateService) Create(ctx context.Context, req CreateStateRequest) (*StateResponse, error) {
	if err := s.ensureUniqueCode(ctx, req.Code, nil); err != nil {
		return nil, err
	}
	state, err := calculation.NewCalculationState(req.Code, req.Description, req.Editable, req.Color)
	if err != nil {
		return nil, err
	}
	if err := s.stateRepo.Save(ctx, state); err != nil {
		return nil, err
	}
	response := ToStateResponse(state)
	return &response, nil
}

// Update updates a state
func (s *StateService) Update(ctx context.Context, id uuid.UUID, req CreateStateRequest) (*StateResponse, error) {
	state, err := s.stateRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.ensureUniqueCode(ctx, req.Code, &id); err != nil {
		return nil, err
	}
	if err := state.Update(req.Code, req.Description, req.Editable, req.Color); err != nil {
		return nil, err
	}
	if err := s.stateRepo.Save(ctx, state); err != nil {
		return nil, err
	}
	response := ToStateResponse(state)
	return &response, nil
}

// Delete deletes a state that no calculation uses
func (s *StateService) Delete(ctx context.Context, id uuid.UUID) error {
	state, err := s.stateRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	count, err := s.stateRepo.CountCalculations(ctx, id)
	if err != nil {
		return err
	}
	if count > 0 {
		return shared.NewDomainError("STATE_IN_USE",
			fmt.Sprintf("State %s is used by %d calculation(s)", state.Code, count))
	}
	return s.stateRepo.Delete(ctx, id)
}

func (s *StateService) ensureUniqueCode(ctx context.Context, code string, excludeID *uuid.UUID) error {
	exists, err := s.stateRepo.ExistsByCode(ctx, code, excludeID)
	if err != nil {
		return err
	}
	if exists {
		return shared.NewDomainError("ALREADY_EXISTS", "State with this code already exists")
	}
	return nil
}
