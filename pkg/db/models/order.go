package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/evergreenfarmers/storefront/pkg/enums"
)

// Order is the record written at checkout. The WhatsApp conversation remains
// the business's order of record; this row is bookkeeping.
type Order struct {
	Identity
	OrderNumber string    `gorm:"column:order_number;size:20;uniqueIndex;not null"`
	CustomerID  uuid.UUID `gorm:"column:customer_id;type:uuid;not null;index"`
	Customer    *Customer `gorm:"foreignKey:CustomerID"`

	// SessionID is the cart session that placed the order; only it may view
	// the confirmation.
	SessionID string `gorm:"column:session_id;size:64;not null;default:'';index"`

	TotalAmount    decimal.Decimal `gorm:"column:total_amount;type:numeric(12,2);not null"`
	ShippingCost   decimal.Decimal `gorm:"column:shipping_cost;type:numeric(10,2);not null"`
	TaxAmount      decimal.Decimal `gorm:"column:tax_amount;type:numeric(10,2);not null"`
	DiscountAmount decimal.Decimal `gorm:"column:discount_amount;type:numeric(10,2);not null"`
	FinalAmount    decimal.Decimal `gorm:"column:final_amount;type:numeric(12,2);not null"`

	Status        enums.OrderStatus   `gorm:"column:status;size:20;not null;index"`
	PaymentStatus enums.PaymentStatus `gorm:"column:payment_status;size:20;not null"`

	WhatsAppMessage string `gorm:"column:whatsapp_message;type:text"`
	OrderNotes      string `gorm:"column:order_notes;type:text"`
	CustomerNotes   string `gorm:"column:customer_notes;type:text"`
	DeliveryAddress string `gorm:"column:delivery_address;type:text;not null"`
	DeliveryPhone   string `gorm:"column:delivery_phone;size:20;not null"`

	EstimatedDelivery *time.Time `gorm:"column:estimated_delivery;type:date"`
	ConfirmedAt       *time.Time `gorm:"column:confirmed_at"`
	DeliveredAt       *time.Time `gorm:"column:delivered_at"`

	Items     []OrderItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time   `gorm:"column:created_at;autoCreateTime;index"`
	UpdatedAt time.Time   `gorm:"column:updated_at;autoUpdateTime"`
}

func (o *Order) BeforeSave(_ *gorm.DB) error {
	if o.OrderNumber == "" {
		o.OrderNumber = NewOrderNumber()
	}
	if o.Status == "" {
		o.Status = enums.OrderStatusPending
	}
	if o.PaymentStatus == "" {
		o.PaymentStatus = enums.PaymentStatusPending
	}
	return nil
}

// ComputeFinal sets FinalAmount from the component amounts.
func (o *Order) ComputeFinal() {
	o.FinalAmount = o.TotalAmount.Add(o.ShippingCost).Add(o.TaxAmount).Sub(o.DiscountAmount)
}
