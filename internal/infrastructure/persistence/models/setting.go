package models

import "github.com/calculation/backend/internal/domain/setting"

// PropertyModel is a stored application parameter
type PropertyModel struct {
	Name  string `gorm:"type:varchar(50);primaryKey"`
	Value string `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (PropertyModel) TableName() string {
	return "sy_property"
}

// ToDomain converts the persistence model to a domain Property
func (m *PropertyModel) ToDomain() setting.Property {
	return setting.Property{Name: m.Name, Value: m.Value}
}

// PropertyModelFromDomain creates a new persistence model from a domain Property
func PropertyModelFromDomain(p setting.Property) *PropertyModel {
	return &PropertyModel{Name: p.Name, Value: p.Value}
}
