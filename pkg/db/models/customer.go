package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/evergreenfarmers/storefront/pkg/enums"
)

// Customer is a buyer identified by email.
type Customer struct {
	Identity
	FirstName      string              `gorm:"column:first_name;size:100;not null"`
	LastName       string              `gorm:"column:last_name;size:100;not null"`
	Email          string              `gorm:"column:email;size:254;uniqueIndex;not null"`
	Phone          string              `gorm:"column:phone;size:20;not null"`
	WhatsAppNumber string              `gorm:"column:whatsapp_number;size:20"`
	CustomerType   enums.CustomerType  `gorm:"column:customer_type;size:20;not null"`
	AddressLine1   string              `gorm:"column:address_line1;size:255;not null"`
	AddressLine2   string              `gorm:"column:address_line2;size:255"`
	City           string              `gorm:"column:city;size:100"`
	County         string              `gorm:"column:county;size:100"`
	PostalCode     string              `gorm:"column:postal_code;size:20"`
	FarmName       string              `gorm:"column:farm_name;size:200"`
	FarmSize       decimal.NullDecimal `gorm:"column:farm_size;type:numeric(10,2)"`
	FarmingType    string              `gorm:"column:farming_type;size:100"`
	IsActive       bool                `gorm:"column:is_active;not null"`
	CreatedAt      time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}

func (c *Customer) BeforeSave(_ *gorm.DB) error {
	c.Email = strings.ToLower(strings.TrimSpace(c.Email))
	if c.CustomerType == "" {
		c.CustomerType = enums.CustomerTypeIndividual
	}
	return nil
}

// FullName joins first and last name.
func (c *Customer) FullName() string {
	return strings.TrimSpace(c.FirstName + " " + c.LastName)
}

// FullAddress joins the non-empty address parts with commas.
func (c *Customer) FullAddress() string {
	parts := make([]string, 0, 5)
	for _, part := range []string{c.AddressLine1, c.AddressLine2, c.City, c.County, c.PostalCode} {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	return strings.Join(parts, ", ")
}
