package partner

import (
	"time"

	"github.com/calculation/backend/internal/domain/partner"
	"github.com/google/uuid"
)

// CustomerListFilter holds the customer list options
type CustomerListFilter struct {
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	Search   string `form:"search"`
	OrderBy  string `form:"order_by"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc ASC DESC"`
	City     string `form:"city"`
	ZipCode  string `form:"zip_code"`
	Company  string `form:"company"`
}

// CustomerRequest represents a request to create or edit a customer
type CustomerRequest struct {
	Title     string     `json:"title" binding:"max=50"`
	FirstName string     `json:"first_name" binding:"max=50"`
	LastName  string     `json:"last_name" binding:"max=50"`
	Company   string     `json:"company" binding:"max=255"`
	Address   string     `json:"address" binding:"max=255"`
	ZipCode   string     `json:"zip_code" binding:"max=10"`
	City      string     `json:"city" binding:"max=255"`
	Email     string     `json:"email" binding:"omitempty,email,max=100"`
	WebSite   string     `json:"web_site" binding:"omitempty,url,max=100"`
	Phone     string     `json:"phone" binding:"max=30"`
	Birthday  *time.Time `json:"birthday"`
}

func (r CustomerRequest) name() partner.CustomerName {
	return partner.CustomerName{
		Title:     r.Title,
		FirstName: r.FirstName,
		LastName:  r.LastName,
		Company:   r.Company,
	}
}

// CustomerResponse represents a customer in API responses
type CustomerResponse struct {
	ID             uuid.UUID  `json:"id"`
	Title          string     `json:"title"`
	FirstName      string     `json:"first_name"`
	LastName       string     `json:"last_name"`
	Company        string     `json:"company"`
	FullName       string     `json:"full_name"`
	NameAndCompany string     `json:"name_and_company"`
	Address        string     `json:"address"`
	ZipCode        string     `json:"zip_code"`
	City           string     `json:"city"`
	Email          string     `json:"email"`
	WebSite        string     `json:"web_site"`
	Phone          string     `json:"phone"`
	PhoneDisplay   string     `json:"phone_display"`
	Birthday       *time.Time `json:"birthday,omitempty"`
	Age            int        `json:"age,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// ToCustomerResponse converts a domain Customer to CustomerResponse
func ToCustomerResponse(c *partner.Customer, phones PhoneNormalizer) CustomerResponse {
	response := CustomerResponse{
		ID:             c.ID,
		Title:          c.Title,
		FirstName:      c.FirstName,
		LastName:       c.LastName,
		Company:        c.Company,
		FullName:       c.FullName(),
		NameAndCompany: c.NameAndCompany(),
		Address:        c.Address,
		ZipCode:        c.ZipCode,
		City:           c.City,
		Email:          c.Email,
		WebSite:        c.WebSite,
		Phone:          c.Phone,
		PhoneDisplay:   phones.Display(c.Phone),
		Birthday:       c.Birthday,
		CreatedAt:      c.CreatedAt,
		UpdatedAt:      c.UpdatedAt,
	}
	if age := c.Age(time.Now()); age >= 0 {
		response.Age = age
	}
	return response
}
