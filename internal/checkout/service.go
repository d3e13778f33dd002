package checkout

import (
	"context"
	"crypto/subtle"
	"fmt"
	"strings"
	"time"

	"github.com/leekchan/accounting"
	"github.com/shopspring/decimal"
	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/evergreenfarmers/storefront/internal/cart"
	"github.com/evergreenfarmers/storefront/internal/customers"
	"github.com/evergreenfarmers/storefront/internal/orders"
	pkgcheckout "github.com/evergreenfarmers/storefront/pkg/checkout"
	"github.com/evergreenfarmers/storefront/pkg/config"
	"github.com/evergreenfarmers/storefront/pkg/db"
	"github.com/evergreenfarmers/storefront/pkg/db/models"
	"github.com/evergreenfarmers/storefront/pkg/enums"
	pkgerrors "github.com/evergreenfarmers/storefront/pkg/errors"
	"github.com/evergreenfarmers/storefront/pkg/logger"
	"github.com/evergreenfarmers/storefront/pkg/metrics"
	"github.com/evergreenfarmers/storefront/pkg/validation"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service turns a session cart into an order and a WhatsApp hand-off.
type Service interface {
	Prepare(ctx context.Context, sessionKey string) (*Preview, error)
	PlaceOrder(ctx context.Context, sessionKey string, req Request) (*Result, error)
	OrderByNumber(ctx context.Context, sessionKey, number string) (*orders.OrderView, error)
}

// CustomerTypeOption is one choice of the customer type select.
type CustomerTypeOption struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// Preview is the checkout page payload.
type Preview struct {
	Cart           *cart.Summary        `json:"cart"`
	RequiredFields []string             `json:"required_fields"`
	CustomerTypes  []CustomerTypeOption `json:"customer_types"`
	ShippingCost   string               `json:"shipping_cost"`
	FinalAmount    string               `json:"final_amount"`
}

// Result is returned after a checkout. Persisted is false when the order
// could not be stored; the message and link are valid either way.
type Result struct {
	OrderNumber  string `json:"order_number"`
	Persisted    bool   `json:"persisted"`
	Message      string `json:"message"`
	WhatsAppURL  string `json:"whatsapp_url"`
	FinalAmount  string `json:"final_amount"`
	SkippedItems int    `json:"skipped_items,omitempty"`
}

// Deps wires the checkout service.
type Deps struct {
	Carts     *cart.Repository
	CartView  cart.Service
	Customers *customers.Repository
	Orders    *orders.Repository
	Tx        txRunner
	Logger    *logger.Logger
	Metrics   *metrics.StorefrontMetrics
	WhatsApp  config.WhatsAppConfig
	Checkout  config.CheckoutConfig
}

type service struct {
	carts     *cart.Repository
	cartView  cart.Service
	customers *customers.Repository
	orders    *orders.Repository
	tx        txRunner
	logg      *logger.Logger
	metrics   *metrics.StorefrontMetrics
	whatsapp  config.WhatsAppConfig
	shipping  decimal.Decimal
	money     accounting.Accounting
	location  *time.Location
	now       func() time.Time
}

// NewService validates deps and builds the checkout service.
func NewService(deps Deps) (Service, error) {
	switch {
	case deps.Carts == nil:
		return nil, fmt.Errorf("cart repository required")
	case deps.CartView == nil:
		return nil, fmt.Errorf("cart service required")
	case deps.Customers == nil:
		return nil, fmt.Errorf("customer repository required")
	case deps.Orders == nil:
		return nil, fmt.Errorf("order repository required")
	case deps.Tx == nil:
		return nil, fmt.Errorf("transaction runner required")
	case deps.Logger == nil:
		return nil, fmt.Errorf("logger required")
	}

	location, err := time.LoadLocation(deps.WhatsApp.Timezone)
	if err != nil || deps.WhatsApp.Timezone == "" {
		location = time.UTC
	}
	if deps.WhatsApp.BaseURL == "" {
		deps.WhatsApp.BaseURL = "https://wa.me"
	}
	if deps.WhatsApp.CurrencySymbol == "" {
		deps.WhatsApp.CurrencySymbol = "KSh "
	}

	return &service{
		carts:     deps.Carts,
		cartView:  deps.CartView,
		customers: deps.Customers,
		orders:    deps.Orders,
		tx:        deps.Tx,
		logg:      deps.Logger,
		metrics:   deps.Metrics,
		whatsapp:  deps.WhatsApp,
		shipping:  deps.Checkout.ShippingAmount(),
		money:     newMoneyFormatter(deps.WhatsApp.CurrencySymbol),
		location:  location,
		now:       time.Now,
	}, nil
}

func emptyCart() error {
	return pkgerrors.New(pkgerrors.CodeEmptyCart, "your cart is empty")
}

func customerTypeOptions() []CustomerTypeOption {
	types := []enums.CustomerType{
		enums.CustomerTypeIndividual,
		enums.CustomerTypeCooperative,
		enums.CustomerTypeBusiness,
		enums.CustomerTypeInstitution,
	}
	out := make([]CustomerTypeOption, 0, len(types))
	for _, ct := range types {
		out = append(out, CustomerTypeOption{Value: ct.String(), Label: ct.Label()})
	}
	return out
}

func (s *service) Prepare(ctx context.Context, sessionKey string) (*Preview, error) {
	summary := s.cartView.Summary(ctx, sessionKey)
	if summary.IsEmpty() {
		return nil, emptyCart()
	}
	return &Preview{
		Cart:           summary,
		RequiredFields: RequiredFields(),
		CustomerTypes:  customerTypeOptions(),
		ShippingCost:   s.shipping.StringFixed(2),
		FinalAmount:    summary.Total.Add(s.shipping).StringFixed(2),
	}, nil
}

// checkoutInput is a validated request resolved into storable values.
type checkoutInput struct {
	customer     *models.Customer
	showEmail    bool
	phoneDigits  string
	instructions string
}

func (s *service) validate(req Request) (*checkoutInput, error) {
	req.normalize()

	if missing := req.missingFields(); len(missing) > 0 {
		return nil, pkgerrors.New(pkgerrors.CodeMissingField, "please fill in all required fields").
			WithDetails(map[string]any{"fields": missing})
	}

	digits, ok := PhoneDigits(req.Phone)
	if !ok {
		msg := "please enter a valid phone number with at least 10 digits"
		return nil, pkgerrors.New(pkgerrors.CodeInvalidInput, msg).
			WithDetails(map[string]string{"phone": msg})
	}

	if err := validation.Struct(req); err != nil {
		return nil, err
	}

	customerType, err := enums.ParseCustomerType(req.CustomerType)
	if err != nil {
		msg := "customer type is not recognised"
		return nil, pkgerrors.Wrap(pkgerrors.CodeInvalidInput, err, msg).
			WithDetails(map[string]string{"customer_type": msg})
	}

	var farmSize decimal.NullDecimal
	if req.FarmSize != "" {
		size, err := decimal.NewFromString(req.FarmSize)
		if err != nil || size.IsNegative() {
			msg := "farm size must be a positive number of acres"
			return nil, pkgerrors.New(pkgerrors.CodeInvalidInput, msg).
				WithDetails(map[string]string{"farm_size": msg})
		}
		farmSize = decimal.NewNullDecimal(size)
	}

	first, last := splitName(req.Name)
	email := req.Email
	if email == "" {
		email = placeholderEmail(digits)
	}

	return &checkoutInput{
		customer: &models.Customer{
			FirstName:      first,
			LastName:       last,
			Email:          email,
			Phone:          req.Phone,
			WhatsAppNumber: req.WhatsAppNumber,
			CustomerType:   customerType,
			AddressLine1:   req.Address,
			AddressLine2:   req.AddressLine2,
			City:           req.City,
			County:         req.County,
			PostalCode:     req.PostalCode,
			FarmName:       req.FarmName,
			FarmSize:       farmSize,
			FarmingType:    req.FarmingType,
		},
		showEmail:    req.Email != "",
		phoneDigits:  digits,
		instructions: req.SpecialInstructions,
	}, nil
}

// priceLines freezes the live selling price of every cart line.
func priceLines(c *models.Cart) ([]models.OrderItem, []MessageLine, decimal.Decimal) {
	items := make([]models.OrderItem, 0, len(c.Items))
	lines := make([]MessageLine, 0, len(c.Items))
	subtotal := decimal.Zero
	for _, ci := range c.Items {
		p := ci.Product
		unitPrice := p.SellingPrice()
		total := unitPrice.Mul(decimal.NewFromInt(int64(ci.Quantity)))
		subtotal = subtotal.Add(total)
		items = append(items, models.OrderItem{
			ProductID:   p.ID,
			Quantity:    ci.Quantity,
			ProductName: p.Name,
			ProductSKU:  p.SKU,
			Unit:        p.Unit.String(),
			UnitPrice:   unitPrice,
			TotalPrice:  total,
		})
		lines = append(lines, MessageLine{
			Name:      p.Name,
			Quantity:  ci.Quantity,
			UnitLabel: p.Unit.Label(),
			UnitPrice: unitPrice,
			Subtotal:  total,
		})
	}
	return items, lines, subtotal
}

func stockLines(c *models.Cart) []pkgcheckout.StockLine {
	out := make([]pkgcheckout.StockLine, 0, len(c.Items))
	for _, ci := range c.Items {
		line := pkgcheckout.StockLine{ProductID: ci.ProductID, Quantity: ci.Quantity}
		if ci.Product != nil {
			line.ProductName = ci.Product.Name
			line.Active = ci.Product.IsActive
			line.Available = ci.Product.StockQuantity
		}
		out = append(out, line)
	}
	return out
}

func (s *service) reject(err error) error {
	if typed := pkgerrors.As(err); typed != nil && pkgerrors.MetadataFor(typed.Code()).Expected {
		s.metrics.IncCheckout(metrics.ResultRejected)
	} else {
		s.metrics.IncCheckout(metrics.ResultError)
	}
	return err
}

func (s *service) PlaceOrder(ctx context.Context, sessionKey string, req Request) (*Result, error) {
	started := s.now()
	ctx = s.logg.WithSessionKey(ctx, sessionKey)

	c, err := s.carts.FindBySession(ctx, sessionKey)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, s.reject(emptyCart())
		}
		return nil, s.reject(pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart"))
	}
	if len(c.Items) == 0 {
		return nil, s.reject(emptyCart())
	}

	input, err := s.validate(req)
	if err != nil {
		return nil, s.reject(err)
	}

	if err := pkgcheckout.ValidateStock(stockLines(c)); err != nil {
		return nil, s.reject(err)
	}

	items, lines, subtotal := priceLines(c)
	order := &models.Order{
		OrderNumber:     models.NewOrderNumber(),
		SessionID:       sessionKey,
		TotalAmount:     subtotal,
		ShippingCost:    s.shipping,
		TaxAmount:       decimal.Zero,
		DiscountAmount:  decimal.Zero,
		Status:          enums.OrderStatusPending,
		PaymentStatus:   enums.PaymentStatusPending,
		CustomerNotes:   input.instructions,
		DeliveryAddress: input.customer.FullAddress(),
		DeliveryPhone:   input.customer.Phone,
	}
	order.ComputeFinal()

	message := Message{
		StoreName:    s.whatsapp.StoreName,
		OrderNumber:  order.OrderNumber,
		Customer:     input.customer,
		ShowEmail:    input.showEmail,
		Lines:        lines,
		Subtotal:     subtotal,
		Shipping:     s.shipping,
		Total:        order.FinalAmount,
		Instructions: input.instructions,
		PlacedAt:     started.In(s.location),
	}.Render(s.money)
	order.WhatsAppMessage = message

	result := &Result{
		OrderNumber: order.OrderNumber,
		Message:     message,
		WhatsAppURL: WhatsAppURL(s.whatsapp.BaseURL, s.whatsapp.BusinessNumber, message),
		FinalAmount: order.FinalAmount.StringFixed(2),
	}

	skipped, err := s.persist(ctx, order, input.customer, items)
	s.metrics.ObserveCheckout(s.now().Sub(started))
	if err != nil {
		s.logg.Error(s.logg.WithField(ctx, "order_number", order.OrderNumber), "checkout.persist_failed", err)
		s.metrics.IncCheckout(metrics.ResultUnpersisted)
		return result, nil
	}

	result.Persisted = true
	result.SkippedItems = skipped
	s.metrics.IncCheckout(metrics.ResultSuccess)
	s.metrics.AddSkippedItems(skipped)

	if err := s.carts.DeleteBySession(ctx, sessionKey); err != nil {
		s.logg.Error(ctx, "checkout.cart_clear_failed", err)
	}

	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"order_number": order.OrderNumber,
		"final_amount": result.FinalAmount,
		"lines":        len(items) - skipped,
	}), "checkout.order_placed")
	return result, nil
}

// persist writes customer, order and lines in one transaction. A failing
// line is rolled back to its savepoint and skipped; the count of skipped
// lines is returned.
func (s *service) persist(ctx context.Context, order *models.Order, customer *models.Customer, items []models.OrderItem) (int, error) {
	skipped := 0
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		stored, err := s.customers.WithTx(tx).UpsertByEmail(ctx, customer)
		if err != nil {
			return fmt.Errorf("upsert customer: %w", err)
		}
		order.CustomerID = stored.ID

		repo := s.orders.WithTx(tx)
		if err := repo.Create(ctx, order); err != nil {
			return fmt.Errorf("create order: %w", err)
		}

		var lineErrs error
		skipped = 0
		for i := range items {
			items[i].OrderID = order.ID
			if err := repo.CreateItemInSavepoint(ctx, fmt.Sprintf("order_item_%d", i+1), &items[i]); err != nil {
				skipped++
				lineErrs = multierr.Append(lineErrs, fmt.Errorf("%s: %w", items[i].ProductName, err))
			}
		}
		if lineErrs != nil {
			s.logg.Error(s.logg.WithFields(ctx, map[string]any{
				"order_number": order.OrderNumber,
				"skipped":      skipped,
			}), "checkout.order_items_skipped", lineErrs)
		}
		return nil
	})
	return skipped, err
}

// OrderByNumber returns the confirmation view to the session that placed the
// order. Any other session gets NotFound, so order numbers reveal nothing.
func (s *service) OrderByNumber(ctx context.Context, sessionKey, number string) (*orders.OrderView, error) {
	notFound := pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	if strings.TrimSpace(sessionKey) == "" {
		return nil, notFound
	}
	order, err := s.orders.FindByNumber(ctx, number)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, notFound
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	if subtle.ConstantTimeCompare([]byte(order.SessionID), []byte(sessionKey)) != 1 {
		return nil, notFound
	}
	return orders.NewOrderView(order), nil
}
