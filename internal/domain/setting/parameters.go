package setting

import (
	"context"
	"strconv"
	"strings"

	"github.com/calculation/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Property names
const (
	PropertyCustomerName      = "customer_name"
	PropertyCustomerAddress   = "customer_address"
	PropertyCustomerEmail     = "customer_email"
	PropertyCustomerPhone     = "customer_phone"
	PropertyCustomerURL       = "customer_url"
	PropertyMinMargin         = "min_margin"
	PropertyDefaultStateID    = "default_state_id"
	PropertyDefaultCategoryID = "default_category_id"
	PropertyPrintingQRCode    = "printing_qr_code"
)

// DefaultMinMargin is the minimum margin used when none is stored
var DefaultMinMargin = decimal.RequireFromString("1.1")

// Property is a stored application parameter
type Property struct {
	Name  string
	Value string
}

// Parameters is the typed view of the application properties
type Parameters struct {
	CustomerName      string
	CustomerAddress   string
	CustomerEmail     string
	CustomerPhone     string
	CustomerURL       string
	MinMargin         decimal.Decimal
	DefaultStateID    *uuid.UUID
	DefaultCategoryID *uuid.UUID
	PrintingQRCode    bool
}

// DefaultParameters returns the parameters used before anything is stored
func DefaultParameters() Parameters {
	return Parameters{
		CustomerName: "Calculation",
		MinMargin:    DefaultMinMargin,
	}
}

// FromProperties builds parameters from stored properties, falling back to defaults
func FromProperties(props []Property) Parameters {
	p := DefaultParameters()
	for _, prop := range props {
		value := strings.TrimSpace(prop.Value)
		switch prop.Name {
		case PropertyCustomerName:
			if value != "" {
				p.CustomerName = value
			}
		case PropertyCustomerAddress:
			p.CustomerAddress = value
		case PropertyCustomerEmail:
			p.CustomerEmail = value
		case PropertyCustomerPhone:
			p.CustomerPhone = value
		case PropertyCustomerURL:
			p.CustomerURL = value
		case PropertyMinMargin:
			if d, err := decimal.NewFromString(value); err == nil {
				p.MinMargin = d
			}
		case PropertyDefaultStateID:
			p.DefaultStateID = parseID(value)
		case PropertyDefaultCategoryID:
			p.DefaultCategoryID = parseID(value)
		case PropertyPrintingQRCode:
			p.PrintingQRCode, _ = strconv.ParseBool(value)
		}
	}
	return p
}

// Properties converts the parameters into storable properties
func (p Parameters) Properties() []Property {
	return []Property{
		{Name: PropertyCustomerName, Value: p.CustomerName},
		{Name: PropertyCustomerAddress, Value: p.CustomerAddress},
		{Name: PropertyCustomerEmail, Value: p.CustomerEmail},
		{Name: PropertyCustomerPhone, Value: p.CustomerPhone},
		{Name: PropertyCustomerURL, Value: p.CustomerURL},
		{Name: PropertyMinMargin, Value: p.MinMargin.String()},
		{Name: PropertyDefaultStateID, Value: formatID(p.DefaultStateID)},
		{Name: PropertyDefaultCategoryID, Value: formatID(p.DefaultCategoryID)},
		{Name: PropertyPrintingQRCode, Value: strconv.FormatBool(p.PrintingQRCode)},
	}
}

// Validate checks the parameters that do not need a repository
func (p Parameters) Validate() error {
	if p.MinMargin.IsNegative() {
		return shared.NewDomainError("INVALID_MIN_MARGIN", "Minimum margin cannot be negative")
	}
	if strings.TrimSpace(p.CustomerName) == "" {
		return shared.NewDomainError("INVALID_CUSTOMER_NAME", "Customer name cannot be empty")
	}
	return nil
}

// PropertyRepository stores application properties
type PropertyRepository interface {
	FindAll(ctx context.Context) ([]Property, error)

	// SaveAll upserts the given properties in a single transaction
	SaveAll(ctx context.Context, props []Property) error
}

func parseID(value string) *uuid.UUID {
	if value == "" {
		return nil
	}
	id, err := uuid.Parse(value)
	if err != nil {
		return nil
	}
	return &id
}

func formatID(id *uuid.UUID) string {
	if id == nil {
		return ""
	}
	return id.String()
}
