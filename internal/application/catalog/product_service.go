package catalog

import (
	"context"

	"github.com/calculation/backend/internal/domain/catalog"
	"github.com/calculation/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// ProductService handles product-related business operations
type ProductService struct {
	productRepo  catalog.ProductRepository
	categoryRepo catalog.CategoryRepository
}

// NewProductService creates a new ProductService
func NewProductService(
	productRepo catalog.ProductRepository,
	categoryRepo catalog.CategoryRepository,
) *ProductService {
	return &ProductService{
		productRepo:  productRepo,
		categoryRepo: categoryRepo,
	}
}

// List retrieves products with filtering and pagination
func (s *ProductService) List(ctx context.Context, filter ListFilter) ([]ProductResponse, int64, error) {
	domainFilter := filter.toDomainFilter("description")

	products, err := s.productRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.productRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]ProductResponse, len(products))
	for i := range products {
		responses[i] = ToProductResponse(&products[i])
	}
	return responses, total, nil
}

// GetByID retrieves a product by ID
func (s *ProductService) GetByID(ctx context.Context, id uuid.UUID) (*ProductResponse, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	response := ToProductResponse(product)
	return &response, nil
}

// Create creates a new product
func (s *ProductService) Create(ctx context.Context, req ProductRequest) (*ProductResponse, error) {
	if err := s.ensureUniqueDescription(ctx, req.Description, nil); err != nil {
		return nil, err
	}
	category, err := findCategory(ctx, s.categoryRepo, req.CategoryID)
	if err != nil {
		return nil, err
	}

	product, err := catalog.NewProduct(req.Description, req.Unit, req.Price, category)
	if err != nil {
		return nil, err
	}
	if req.Supplier != "" {
		product.SetSupplier(req.Supplier)
	}
	if err := s.productRepo.Save(ctx, product); err != nil {
		return nil, err
	}

	response := ToProductResponse(product)
	return &response, nil
}

// Update updates a product
func (s *ProductService) Update(ctx context.Context, id uuid.UUID, req ProductRequest) (*ProductResponse, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.ensureUniqueDescription(ctx, req.Description, &id); err != nil {
		return nil, err
	}

	if err := product.Update(req.Description, req.Unit, req.Supplier, req.Price); err != nil {
		return nil, err
	}
	if req.CategoryID != product.CategoryID {
		category, err := findCategory(ctx, s.categoryRepo, req.CategoryID)
		if err != nil {
			return nil, err
		}
		if err := product.MoveTo(category); err != nil {
			return nil, err
		}
	}
	if err := s.productRepo.Save(ctx, product); err != nil {
		return nil, err
	}

	response := ToProductResponse(product)
	return &response, nil
}

// Delete deletes a product
func (s *ProductService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.productRepo.FindByID(ctx, id); err != nil {
		return err
	}
	return s.productRepo.Delete(ctx, id)
}

func (s *ProductService) ensureUniqueDescription(ctx context.Context, description string, excludeID *uuid.UUID) error {
	exists, err := s.productRepo.ExistsByDescription(ctx, description, excludeID)
	if err != nil {
		return err
	}
	if exists {
		return shared.NewDomainError("ALREADY_EXISTS", "Product with this description already exists")
	}
	return nil
}
