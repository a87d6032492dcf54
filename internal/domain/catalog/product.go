package catalog

import (
	"github.com/calculation/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product is a priced article that can be added to a calculation
type Product struct {
	shared.BaseAggregateRoot
	Description string
	Unit        string
	Price       decimal.Decimal
	Supplier    string
	CategoryID  uuid.UUID
	// CategoryCode and GroupCode are denormalized for display and exports
	CategoryCode string
	GroupCode    string
}

// NewProduct creates a new product
func NewProduct(description, unit string, price decimal.Decimal, category *Category) (*Product, error) {
	if category == nil {
		return nil, shared.NewDomainError("INVALID_CATEGORY", "Product category is required")
	}
	if err := validateDescription("Product", description, true); err != nil {
		return nil, err
	}
	if err := validateUnit(unit); err != nil {
		return nil, err
	}
	if err := validatePrice(price); err != nil {
		return nil, err
	}

	product := &Product{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Description:       description,
		Unit:              unit,
		Price:             price,
		CategoryID:        category.ID,
		CategoryCode:      category.Code,
		GroupCode:         category.GroupCode,
	}
	product.AddDomainEvent(NewProductCreatedEvent(product))

	return product, nil
}

// Update changes the product details
func (p *Product) Update(description, unit, supplier string, price decimal.Decimal) error {
	if err := validateDescription("Product", description, true); err != nil {
		return err
	}
	if err := validateUnit(unit); err != nil {
		return err
	}
	if err := validatePrice(price); err != nil {
		return err
	}

	p.Description = description
	p.Unit = unit
	p.Supplier = supplier
	p.Price = price
	p.touch()
	p.AddDomainEvent(NewProductUpdatedEvent(p))

	return nil
}

// SetSupplier sets the supplier name
func (p *Product) SetSupplier(supplier string) {
	p.Supplier = supplier
	p.touch()
}

// MoveTo assigns the product to another category
func (p *Product) MoveTo(category *Category) error {
	if category == nil {
		return shared.NewDomainError("INVALID_CATEGORY", "Product category is required")
	}
	p.CategoryID = category.ID
	p.CategoryCode = category.Code
	p.GroupCode = category.GroupCode
	p.touch()
	return nil
}

func (p *Product) touch() {
	p.MarkModified()
}

func validatePrice(price decimal.Decimal) error {
	if price.IsNegative() {
		return shared.NewDomainError("INVALID_PRICE", "Price cannot be negative")
	}
	return nil
}
