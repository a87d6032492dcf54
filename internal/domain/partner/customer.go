package partner

import (
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/calculation/backend/internal/domain/shared"
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// Customer is a contact that calculations can be addressed to. It is either
// a person, a company, or a person working for a company.
type Customer struct {
	shared.BaseAggregateRoot
	Title     string
	FirstName string
	LastName  string
	Company   string
	Address   string
	ZipCode   string
	City      string
	Email     string
	WebSite   string
	// Phone is stored in E.164 format
	Phone    string
	Birthday *time.Time
}

// CustomerName groups the naming fields of a customer
type CustomerName struct {
	Title     string
	FirstName string
	LastName  string
	Company   string
}

// NewCustomer creates a new customer
func NewCustomer(name CustomerName) (*Customer, error) {
	if err := validateName(name); err != nil {
		return nil, err
	}
	customer := &Customer{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
	}
	customer.applyName(name)
	customer.AddDomainEvent(NewCustomerChangedEvent(customer, EventTypeCustomerCreated))
	return customer, nil
}

// Rename changes the naming fields
func (c *Customer) Rename(name CustomerName) error {
	if err := validateName(name); err != nil {
		return err
	}
	c.applyName(name)
	c.touch()
	c.AddDomainEvent(NewCustomerChangedEvent(c, EventTypeCustomerUpdated))
	return nil
}

// SetAddress sets the postal address
func (c *Customer) SetAddress(address, zipCode, city string) {
	c.Address = strings.TrimSpace(address)
	c.ZipCode = strings.TrimSpace(zipCode)
	c.City = strings.TrimSpace(city)
	c.touch()
}

// SetContact sets the email, web site and phone. The phone must already be normalized.
func (c *Customer) SetContact(email, webSite, phone string) error {
	email = strings.TrimSpace(email)
	if email != "" && !emailRegex.MatchString(email) {
		return shared.NewDomainError("INVALID_EMAIL", "Invalid email format")
	}
	webSite = strings.TrimSpace(webSite)
	if webSite != "" {
		u, err := url.Parse(webSite)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return shared.NewDomainError("INVALID_WEBSITE", "Web site must be an absolute URL")
		}
	}
	c.Email = strings.ToLower(email)
	c.WebSite = webSite
	c.Phone = strings.TrimSpace(phone)
	c.touch()
	return nil
}

// SetBirthday sets the birthday, which cannot be in the future
func (c *Customer) SetBirthday(birthday *time.Time) error {
	if birthday != nil && birthday.After(time.Now()) {
		return shared.NewDomainError("INVALID_BIRTHDAY", "Birthday cannot be in the future")
	}
	c.Birthday = birthday
	c.touch()
	return nil
}

// FullName returns the title, first name and last name separated by spaces
func (c *Customer) FullName() string {
	return joinNonEmpty(" ", c.Title, c.FirstName, c.LastName)
}

// NameAndCompany returns the full name and the company separated by a comma
func (c *Customer) NameAndCompany() string {
	return joinNonEmpty(", ", joinNonEmpty(" ", c.FirstName, c.LastName), c.Company)
}

// ZipCity returns the zip code followed by the city
func (c *Customer) ZipCity() string {
	return joinNonEmpty(" ", c.ZipCode, c.City)
}

// Age returns the age in years at the given time, or -1 when the birthday is unknown
func (c *Customer) Age(now time.Time) int {
	if c.Birthday == nil {
		return -1
	}
	years := now.Year() - c.Birthday.Year()
	if now.YearDay() < c.Birthday.YearDay() {
		years--
	}
	return years
}

func (c *Customer) applyName(name CustomerName) {
	c.Title = strings.TrimSpace(name.Title)
	c.FirstName = strings.TrimSpace(name.FirstName)
	c.LastName = strings.TrimSpace(name.LastName)
	c.Company = strings.TrimSpace(name.Company)
}

func (c *Customer) touch() {
	c.MarkModified()
}

func validateName(name CustomerName) error {
	if strings.TrimSpace(name.Company) == "" &&
		strings.TrimSpace(name.FirstName) == "" &&
		strings.TrimSpace(name.LastName) == "" {
		return shared.NewDomainError("INVALID_NAME", "Either a company or a first or last name is required")
	}
	for _, v := range []string{name.Title, name.FirstName, name.LastName, name.Company} {
		if len(v) > 255 {
			return shared.NewDomainError("INVALID_NAME", "Name fields cannot exceed 255 characters")
		}
	}
	return nil
}

func joinNonEmpty(sep string, values ...string) string {
	parts := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			parts = append(parts, v)
		}
	}
	return strings.Join(parts, sep)
}
