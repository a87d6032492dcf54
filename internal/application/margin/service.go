package margin

import (
	"context"
	"time"

	"github.com/calculation/backend/internal/domain/margin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// GlobalMarginRequest represents a request to create or edit a global margin
type GlobalMarginRequest struct {
	Minimum decimal.Decimal `json:"minimum"`
	Maximum decimal.Decimal `json:"maximum"`
	Margin  decimal.Decimal `json:"margin"`
}

// ReplaceGlobalMarginsRequest replaces the whole global margin table
type ReplaceGlobalMarginsRequest struct {
	Margins []GlobalMarginRequest `json:"margins" binding:"dive"`
}

// GlobalMarginResponse represents a global margin in API responses
type GlobalMarginResponse struct {
	ID        uuid.UUID       `json:"id"`
	Minimum   decimal.Decimal `json:"minimum"`
	Maximum   decimal.Decimal `json:"maximum"`
	Margin    decimal.Decimal `json:"margin"`
	Percent   decimal.Decimal `json:"percent"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// ToGlobalMarginResponse converts a domain GlobalMargin to GlobalMarginResponse
func ToGlobalMarginResponse(gm *margin.GlobalMargin) GlobalMarginResponse {
	return GlobalMarginResponse{
		ID:        gm.ID,
		Minimum:   gm.Minimum,
		Maximum:   gm.Maximum,
		Margin:    gm.Margin,
		Percent:   gm.MarginPercent(),
		CreatedAt: gm.CreatedAt,
		UpdatedAt: gm.UpdatedAt,
	}
}

// GlobalMarginService handles the global margin table
type GlobalMarginService struct {
	marginRepo margin.GlobalMarginRepository
}

// NewGlobalMarginService creates a new GlobalMarginService
func NewGlobalMarginService(marginRepo margin.GlobalMarginRepository) *GlobalMarginService {
	return &GlobalMarginService{marginRepo: marginRepo}
}

// List retrieves every global margin ordered by minimum
func (s *GlobalMarginService) List(ctx context.Context) ([]GlobalMarginResponse, int64, error) {
	margins, err := s.marginRepo.FindAll(ctx)
	if err != nil {
		return nil, 0, err
	}
	responses := make([]GlobalMarginResponse, len(margins))
	for i := range margins {
		responses[i] = ToGlobalMarginResponse(&margins[i])
	}
	return responses, int64(len(responses)), nil
}

// GetByID retrieves a global margin
func (s *GlobalMarginService) GetByID(ctx context.Context, id uuid.UUID) (*GlobalMarginResponse, error) {
	gm, err := s.marginRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	response := ToGlobalMarginResponse(gm)
	return &response, nil
}

// Create adds a global margin that must not overlap the existing ones
func (s *GlobalMarginService) Create(ctx context.Context, req GlobalMarginRequest) (*GlobalMarginResponse, error) {
	gm, err := margin.NewGlobalMargin(req.Minimum, req.Maximum, req.Margin)
	if err != nil {
		return nil, err
	}
	if err := s.validateWith(ctx, gm); err != nil {
		return nil, err
	}
	if err := s.marginRepo.Save(ctx, gm); err != nil {
		return nil, err
	}
	response := ToGlobalMarginResponse(gm)
	return &response, nil
}

// Update edits a global margin, re-validating the whole table
func (s *GlobalMarginService) Update(ctx context.Context, id uuid.UUID, req GlobalMarginRequest) (*GlobalMarginResponse, error) {
	gm, err := s.marginRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := gm.Update(req.Minimum, req.Maximum, req.Margin); err != nil {
		return nil, err
	}
	if err := s.validateWith(ctx, gm); err != nil {
		return nil, err
	}
	if err := s.marginRepo.Save(ctx, gm); err != nil {
		return nil, err
	}
	response := ToGlobalMarginResponse(gm)
	return &response, nil
}

// Delete removes a global margin
func (s *GlobalMarginService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.marginRepo.FindByID(ctx, id); err != nil {
		return err
	}
	return s.marginRepo.Delete(ctx, id)
}

// ReplaceAll replaces the whole table in one transaction
func (s *GlobalMarginService) ReplaceAll(ctx context.Context, req ReplaceGlobalMarginsRequest) ([]GlobalMarginResponse, error) {
	margins := make([]margin.GlobalMargin, 0, len(req.Margins))
	for _, r := range req.Margins {
		gm, err := margin.NewGlobalMargin(r.Minimum, r.Maximum, r.Margin)
		if err != nil {
			return nil, err
		}
		margins = append(margins, *gm)
	}
	if err := margin.ValidateRanges(margins); err != nil {
		return nil, err
	}
	margin.SortRanges(margins)

	if err := s.marginRepo.ReplaceAll(ctx, margins); err != nil {
		return nil, err
	}
	responses := make([]GlobalMarginResponse, len(margins))
	for i := range margins {
		responses[i] = ToGlobalMarginResponse(&margins[i])
	}
	return responses, nil
}

// validateWith checks the stored table with gm added or replaced
func (s *GlobalMarginService) validateWith(ctx context.Context, gm *margin.GlobalMargin) error {
	existing, err := s.marginRepo.FindAll(ctx)
	if err != nil {
		return err
	}
	ranges := make([]margin.Range, 0, len(existing)+1)
	for _, other := range existing {
		if other.ID != gm.ID {
			ranges = append(ranges, other.Range)
		}
	}
	ranges = append(ranges, gm.Range)
	return margin.ValidateRanges(ranges)
}
