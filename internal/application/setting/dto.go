package setting

import (
	"github.com/calculation/backend/internal/domain/setting"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// UpdateParametersRequest represents a request to update the application parameters
type UpdateParametersRequest struct {
	CustomerName      string          `json:"customer_name" binding:"required,max=255"`
	CustomerAddress   string          `json:"customer_address" binding:"max=255"`
	CustomerEmail     string          `json:"customer_email" binding:"omitempty,email,max=255"`
	CustomerPhone     string          `json:"customer_phone" binding:"max=50"`
	CustomerURL       string          `json:"customer_url" binding:"omitempty,url,max=255"`
	MinMargin         decimal.Decimal `json:"min_margin"`
	DefaultStateID    *uuid.UUID      `json:"default_state_id"`
	DefaultCategoryID *uuid.UUID      `json:"default_category_id"`
	PrintingQRCode    bool            `json:"printing_qr_code"`
}

// ParametersResponse represents the application parameters in API responses
type ParametersResponse struct {
	CustomerName      string          `json:"customer_name"`
	CustomerAddress   string          `json:"customer_address"`
	CustomerEmail     string          `json:"customer_email"`
	CustomerPhone     string          `json:"customer_phone"`
	CustomerURL       string          `json:"customer_url"`
	MinMargin         decimal.Decimal `json:"min_margin"`
	DefaultStateID    *uuid.UUID      `json:"default_state_id"`
	DefaultCategoryID *uuid.UUID      `json:"default_category_id"`
	PrintingQRCode    bool            `json:"printing_qr_code"`
}

// ToParametersResponse converts domain Parameters to ParametersResponse
func ToParametersResponse(p setting.Parameters) ParametersResponse {
	return ParametersResponse{
		CustomerName:      p.CustomerName,
		CustomerAddress:   p.CustomerAddress,
		CustomerEmail:     p.CustomerEmail,
		CustomerPhone:     p.CustomerPhone,
		CustomerURL:       p.CustomerURL,
		MinMargin:         p.MinMargin,
		DefaultStateID:    p.DefaultStateID,
		DefaultCategoryID: p.DefaultCategoryID,
		PrintingQRCode:    p.PrintingQRCode,
	}
}

func (r UpdateParametersRequest) toParameters() setting.Parameters {
	return setting.Parameters{
		CustomerName:      r.CustomerName,
		CustomerAddress:   r.CustomerAddress,
		CustomerEmail:     r.CustomerEmail,
		CustomerPhone:     r.CustomerPhone,
		CustomerURL:       r.CustomerURL,
		MinMargin:         r.MinMargin,
		DefaultStateID:    r.DefaultStateID,
		DefaultCategoryID: r.DefaultCategoryID,
		PrintingQRCode:    r.PrintingQRCode,
	}
}
