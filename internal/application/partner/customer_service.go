package partner

import (
	"context"

	"github.com/calculation/backend/internal/domain/partner"
	"github.com/calculation/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// PhoneNormalizer validates phone numbers and formats them for display
type PhoneNormalizer interface {
	Normalize(raw string) (string, error)
	Display(e164 string) string
}

// CustomerService handles customer-related business operations
type CustomerService struct {
	customerRepo partner.CustomerRepository
	phones       PhoneNormalizer
}

// NewCustomerService creates a new CustomerService
func NewCustomerService(customerRepo partner.CustomerRepository, phones PhoneNormalizer) *CustomerService {
	return &CustomerService{
		customerRepo: customerRepo,
		phones:       phones,
	}
}

// List retrieves customers with filtering and pagination
func (s *CustomerService) List(ctx context.Context, filter CustomerListFilter) ([]CustomerResponse, int64, error) {
	domainFilter := shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		Search:   filter.Search,
		OrderBy:  filter.OrderBy,
		OrderDir: filter.OrderDir,
		Filters:  make(map[string]interface{}),
	}
	if domainFilter.Page == 0 {
		domainFilter.Page = 1
	}
	if domainFilter.PageSize == 0 {
		domainFilter.PageSize = 20
	}
	if filter.City != "" {
		domainFilter.Filters["city"] = filter.City
	}
	if filter.ZipCode != "" {
		domainFilter.Filters["zip_code"] = filter.ZipCode
	}
	if filter.Company != "" {
		domainFilter.Filters["company"] = filter.Company
	}

	customers, err := s.customerRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.customerRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]CustomerResponse, len(customers))
	for i := range customers {
		responses[i] = ToCustomerResponse(&customers[i], s.phones)
	}
	return responses, total, nil
}

// GetByID retrieves a customer by ID
func (s *CustomerService) GetByID(ctx context.Context, id uuid.UUID) (*CustomerResponse, error) {
	customer, err := s.customerRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	response := ToCustomerResponse(customer, s.phones)
	return &response, nil
}

// Create creates a new customer
func (s *CustomerService) Create(ctx context.Context, req CustomerRequest) (*CustomerResponse, error) {
	customer, err := partner.NewCustomer(req.name())
	if err != nil {
		return nil, err
	}
	if err := s.apply(customer, req); err != nil {
		return nil, err
	}
	if err := s.customerRepo.Save(ctx, customer); err != nil {
		return nil, err
	}
	response := ToCustomerResponse(customer, s.phones)
	return &response, nil
}

// Update updates a customer
func (s *CustomerService) Update(ctx context.Context, id uuid.UUID, req CustomerRequest) (*CustomerResponse, error) {
	customer, err := s.customerRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := customer.Rename(req.name()); err != nil {
		return nil, err
	}
	if err := s.apply(customer, req); err != nil {
		return nil, err
	}
	if err := s.customerRepo.Save(ctx, customer); err != nil {
		return nil, err
	}
	response := ToCustomerResponse(customer, s.phones)
	return &response, nil
}

// Delete deletes a customer
func (s *CustomerService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.customerRepo.FindByID(ctx, id); err != nil {
		return err
	}
	return s.customerRepo.Delete(ctx, id)
}

func (s *CustomerService) apply(customer *partner.Customer, req CustomerRequest) error {
	phone, err := s.phones.Normalize(req.Phone)
	if err != nil {
		return err
	}
	customer.SetAddress(req.Address, req.ZipCode, req.City)
	if err := customer.SetContact(req.Email, req.WebSite, phone); err != nil {
		return err
	}
	return customer.SetBirthday(req.Birthday)
}
