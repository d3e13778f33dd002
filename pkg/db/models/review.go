package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ProductReview is a visitor review. Only approved reviews are public.
type ProductReview struct {
	Identity
	ProductID     uuid.UUID `gorm:"column:product_id;type:uuid;not null;index"`
	Product       *Product  `gorm:"foreignKey:ProductID"`
	CustomerName  string    `gorm:"column:customer_name;size:100;not null"`
	CustomerEmail string    `gorm:"column:customer_email;size:254;index"`
	CustomerPhone string    `gorm:"column:customer_phone;size:20"`
	Rating        int       `gorm:"column:rating;not null"`
	Title         string    `gorm:"column:title;size:200"`
	Comment       string    `gorm:"column:comment;type:text;not null"`
	IsApproved    bool      `gorm:"column:is_approved;not null;index"`
	CreatedAt     time.Time `gorm:"column:created_at;autoCreateTime;index"`
	UpdatedAt     time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (r *ProductReview) BeforeSave(_ *gorm.DB) error {
	r.CustomerEmail = strings.ToLower(strings.TrimSpace(r.CustomerEmail))
	return nil
}
