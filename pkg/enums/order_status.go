package enums

import "slices"

// OrderStatus is the fulfilment lifecycle of a WhatsApp order. Orders start
// pending and staff move them on from the admin side.
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusConfirmed  OrderStatus = "confirmed"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

var orderStatuses = []OrderStatus{
	OrderStatusPending,
	OrderStatusConfirmed,
	OrderStatusProcessing,
	OrderStatusShipped,
	OrderStatusDelivered,
	OrderStatusCancelled,
}

var orderStatusLabels = map[OrderStatus]string{
	OrderStatusPending:    "Pending",
	OrderStatusConfirmed:  "Confirmed",
	OrderStatusProcessing: "Processing",
	OrderStatusShipped:    "Shipped",
	OrderStatusDelivered:  "Delivered",
	OrderStatusCancelled:  "Cancelled",
}

func (s OrderStatus) String() string { return string(s) }

// Label is the display name used on the order confirmation page.
func (s OrderStatus) Label() string { return labelOr(s, orderStatusLabels) }

func (s OrderStatus) IsValid() bool { return slices.Contains(orderStatuses, s) }

func ParseOrderStatus(value string) (OrderStatus, error) {
	return parseKnown("order status", value, orderStatuses)
}

// PaymentStatus tracks settlement of an order paid outside the site,
// usually by M-Pesa or cash on delivery.
type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "pending"
	PaymentStatusPaid     PaymentStatus = "paid"
	PaymentStatusRefunded PaymentStatus = "refunded"
)

var paymentStatuses = []PaymentStatus{
	PaymentStatusPending,
	PaymentStatusPaid,
	PaymentStatusRefunded,
}

func (p PaymentStatus) String() string { return string(p) }

func (p PaymentStatus) IsValid() bool { return slices.Contains(paymentStatuses, p) }

func ParsePaymentStatus(value string) (PaymentStatus, error) {
	return parseKnown("payment status", value, paymentStatuses)
}
