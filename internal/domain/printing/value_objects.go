package printing

import "github.com/calculation/backend/internal/domain/shared"

// PageMargins represents the page margins in millimeters
type PageMargins struct {
	Top    int `json:"top"`
	Right  int `json:"right"`
	Bottom int `json:"bottom"`
	Left   int `json:"left"`
}

// NewPageMargins creates a new PageMargins value object
func NewPageMargins(top, right, bottom, left int) (PageMargins, error) {
	if top < 0 || right < 0 || bottom < 0 || left < 0 {
		return PageMargins{}, shared.NewDomainError("INVALID_PAGE_MARGINS", "Page margins cannot be negative")
	}
	if top > 100 || right > 100 || bottom > 100 || left > 100 {
		return PageMargins{}, shared.NewDomainError("INVALID_PAGE_MARGINS", "Page margins cannot exceed 100mm")
	}
	return PageMargins{Top: top, Right: right, Bottom: bottom, Left: left}, nil
}

// DefaultPageMargins returns the margins used by every generated document
func DefaultPageMargins() PageMargins {
	return PageMargins{Top: 15, Right: 10, Bottom: 15, Left: 10}
}

// IsZero returns true if all margins are zero
func (m PageMargins) IsZero() bool {
	return m.Top == 0 && m.Right == 0 && m.Bottom == 0 && m.Left == 0
}
