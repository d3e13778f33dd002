package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderItem freezes the product name, SKU and price at checkout.
type OrderItem struct {
	Identity
	OrderID     uuid.UUID       `gorm:"column:order_id;type:uuid;not null;uniqueIndex:idx_order_items_order_product"`
	ProductID   uuid.UUID       `gorm:"column:product_id;type:uuid;not null;uniqueIndex:idx_order_items_order_product"`
	Quantity    int             `gorm:"column:quantity;not null"`
	ProductName string          `gorm:"column:product_name;size:200;not null"`
	ProductSKU  string          `gorm:"column:product_sku;size:50;not null"`
	Unit        string          `gorm:"column:unit;size:20;not null"`
	UnitPrice   decimal.Decimal `gorm:"column:unit_price;type:numeric(10,2);not null"`
	TotalPrice  decimal.Decimal `gorm:"column:total_price;type:numeric(12,2);not null"`
	CreatedAt   time.Time       `gorm:"column:created_at;autoCreateTime"`
}
