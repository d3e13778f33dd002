package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/evergreenfarmers/storefront/pkg/slug"
)

// Category is a top-level grouping such as Crops, Livestock or Fertilizers.
type Category struct {
	Identity
	Name          string        `gorm:"column:name;uniqueIndex;not null"`
	Slug          string        `gorm:"column:slug;uniqueIndex;not null"`
	Description   string        `gorm:"column:description;type:text"`
	ImageURL      string        `gorm:"column:image_url"`
	IsActive      bool          `gorm:"column:is_active;not null"`
	SubCategories []SubCategory `gorm:"foreignKey:CategoryID"`
	CreatedAt     time.Time     `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time     `gorm:"column:updated_at;autoUpdateTime"`
}

func (c *Category) BeforeSave(_ *gorm.DB) error {
	if c.Slug == "" {
		c.Slug = slug.MakeMax(c.Name, 120)
	}
	return nil
}

// SubCategory narrows a category, for example Vegetables under Crops.
type SubCategory struct {
	Identity
	CategoryID  uuid.UUID `gorm:"column:category_id;type:uuid;not null;uniqueIndex:idx_sub_categories_category_name"`
	Category    *Category `gorm:"foreignKey:CategoryID"`
	Name        string    `gorm:"column:name;not null;uniqueIndex:idx_sub_categories_category_name"`
	Slug        string    `gorm:"column:slug;not null;index"`
	Description string    `gorm:"column:description;type:text"`
	IsActive    bool      `gorm:"column:is_active;not null"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (s *SubCategory) BeforeSave(_ *gorm.DB) error {
	if s.Slug == "" {
		s.Slug = slug.MakeMax(s.Name, 120)
	}
	return nil
}

// Brand identifies the manufacturer of inputs like seed, fertilizer or equipment.
type Brand struct {
	Identity
	Name        string    `gorm:"column:name;uniqueIndex;not null"`
	Slug        string    `gorm:"column:slug;uniqueIndex;not null"`
	LogoURL     string    `gorm:"column:logo_url"`
	Description string    `gorm:"column:description;type:text"`
	Website     string    `gorm:"column:website"`
	IsActive    bool      `gorm:"column:is_active;not null"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (b *Brand) BeforeSave(_ *gorm.DB) error {
	if b.Slug == "" {
		b.Slug = slug.MakeMax(b.Name, 120)
	}
	return nil
}

// DefaultTagColor is applied to tags saved without a color.
const DefaultTagColor = "#007bff"

// Tag is a free-form badge such as Bestseller or Drought Tolerant.
type Tag struct {
	Identity
	Name      string    `gorm:"column:name;uniqueIndex;not null"`
	Slug      string    `gorm:"column:slug;uniqueIndex;not null"`
	Color     string    `gorm:"column:color;size:7;not null"`
	IsActive  bool      `gorm:"column:is_active;not null"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (t *Tag) BeforeSave(_ *gorm.DB) error {
	if t.Slug == "" {
		t.Slug = slug.MakeMax(t.Name, 60)
	}
	if t.Color == "" {
		t.Color = DefaultTagColor
	}
	return nil
}
