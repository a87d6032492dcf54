package models

import (
	"time"

	"github.com/calculation/backend/internal/domain/partner"
)

// CustomerModel is the persistence model for the Customer aggregate
type CustomerModel struct {
	AggregateModel
	Title     string     `gorm:"type:varchar(50)"`
	FirstName string     `gorm:"type:varchar(50);index"`
	LastName  string     `gorm:"type:varchar(50);index"`
	Company   string     `gorm:"type:varchar(255);index"`
	Address   string     `gorm:"type:varchar(255)"`
	ZipCode   string     `gorm:"type:varchar(10)"`
	City      string     `gorm:"type:varchar(255)"`
	Email     string     `gorm:"type:varchar(100)"`
	WebSite   string     `gorm:"type:varchar(100)"`
	Phone     string     `gorm:"type:varchar(30)"`
	Birthday  *time.Time `gorm:"type:date"`
}

// TableName returns the table name for GORM
func (CustomerModel) TableName() string {
	return "sy_customer"
}

// ToDomain converts the persistence model to a domain Customer
func (m *CustomerModel) ToDomain() *partner.Customer {
	return &partner.Customer{
		BaseAggregateRoot: m.ToAggregateRoot(),
		Title:             m.Title,
		FirstName:         m.FirstName,
		LastName:          m.LastName,
		Company:           m.Company,
		Address:           m.Address,
		ZipCode:           m.ZipCode,
		City:              m.City,
		Email:             m.Email,
		WebSite:           m.WebSite,
		Phone:             m.Phone,
		Birthday:          m.Birthday,
	}
}

// FromDomain populates the persistence model from a domain Customer
func (m *CustomerModel) FromDomain(c *partner.Customer) {
	m.FromDomainAggregateRoot(c.BaseAggregateRoot)
	m.Title = c.Title
	m.FirstName = c.FirstName
	m.LastName = c.LastName
	m.Company = c.Company
	m.Address = c.Address
	m.ZipCode = c.ZipCode
	m.City = c.City
	m.Email = c.Email
	m.WebSite = c.WebSite
	m.Phone = c.Phone
	m.Birthday = c.Birthday
}

// CustomerModelFromDomain creates a new persistence model from a domain Customer
func CustomerModelFromDomain(c *partner.Customer) *CustomerModel {
	m := &CustomerModel{}
	m.FromDomain(c)
	return m
}
