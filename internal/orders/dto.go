package orders

import (
	"time"

	"github.com/google/uuid"

	"github.com/evergreenfarmers/storefront/pkg/db/models"
)

// ItemView is one frozen order line.
type ItemView struct {
	ProductID   uuid.UUID `json:"product_id"`
	ProductName string    `json:"product_name"`
	ProductSKU  string    `json:"product_sku"`
	Unit        string    `json:"unit"`
	Quantity    int       `json:"quantity"`
	UnitPrice   string    `json:"unit_price"`
	TotalPrice  string    `json:"total_price"`
}

// OrderView is the confirmation page payload. Contact details are limited to
// what the visitor typed at checkout.
type OrderView struct {
	OrderNumber     string     `json:"order_number"`
	Status          string     `json:"status"`
	StatusLabel     string     `json:"status_label"`
	PaymentStatus   string     `json:"payment_status"`
	CustomerName    string     `json:"customer_name"`
	DeliveryAddress string     `json:"delivery_address"`
	DeliveryPhone   string     `json:"delivery_phone"`
	CustomerNotes   string     `json:"customer_notes,omitempty"`
	TotalAmount     string     `json:"total_amount"`
	ShippingCost    string     `json:"shipping_cost"`
	TaxAmount       string     `json:"tax_amount"`
	DiscountAmount  string     `json:"discount_amount"`
	FinalAmount     string     `json:"final_amount"`
	Items           []ItemView `json:"items"`
	CreatedAt       time.Time  `json:"created_at"`
}

// NewOrderView builds the view from an order with customer and items preloaded.
func NewOrderView(order *models.Order) *OrderView {
	view := &OrderView{
		OrderNumber:     order.OrderNumber,
		Status:          order.Status.String(),
		StatusLabel:     order.Status.Label(),
		PaymentStatus:   order.PaymentStatus.String(),
		DeliveryAddress: order.DeliveryAddress,
		DeliveryPhone:   order.DeliveryPhone,
		CustomerNotes:   order.CustomerNotes,
		TotalAmount:     order.TotalAmount.StringFixed(2),
		ShippingCost:    order.ShippingCost.StringFixed(2),
		TaxAmount:       order.TaxAmount.StringFixed(2),
		DiscountAmount:  order.DiscountAmount.StringFixed(2),
		FinalAmount:     order.FinalAmount.StringFixed(2),
		Items:           make([]ItemView, 0, len(order.Items)),
		CreatedAt:       order.CreatedAt,
	}
	if order.Customer != nil {
		view.CustomerName = order.Customer.FullName()
	}
	for _, item := range order.Items {
		view.Items = append(view.Items, ItemView{
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			ProductSKU:  item.ProductSKU,
			Unit:        item.Unit,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice.StringFixed(2),
			TotalPrice:  item.TotalPrice.StringFixed(2),
		})
	}
	return view
}
