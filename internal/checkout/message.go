package checkout

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/leekchan/accounting"
	"github.com/shopspring/decimal"

	"github.com/evergreenfarmers/storefront/pkg/db/models"
)

const timestampLayout = "02 Jan 2006, 15:04 MST"

// MessageLine is one frozen order line as written into the message.
type MessageLine struct {
	Name      string
	Quantity  int
	UnitLabel string
	UnitPrice decimal.Decimal
	Subtotal  decimal.Decimal
}

// Message carries everything the order message shows.
type Message struct {
	StoreName    string
	OrderNumber  string
	Customer     *models.Customer
	ShowEmail    bool
	Lines        []MessageLine
	Subtotal     decimal.Decimal
	Shipping     decimal.Decimal
	Total        decimal.Decimal
	Instructions string
	PlacedAt     time.Time
}

// newMoneyFormatter renders amounts such as "KSh 1,250.00".
func newMoneyFormatter(symbol string) accounting.Accounting {
	return accounting.Accounting{Symbol: symbol, Precision: 2, Thousand: ",", Decimal: "."}
}

// Render writes the message in a fixed order: customer block, farm block,
// item lines, totals, special instructions, timestamp. Output depends only
// on m, so the same order always renders identically.
func (m Message) Render(money accounting.Accounting) string {
	var b strings.Builder
	line := func(format string, args ...any) {
		fmt.Fprintf(&b, format, args...)
		b.WriteByte('\n')
	}

	line("*NEW ORDER - %s*", m.StoreName)
	line("Order No: %s", m.OrderNumber)
	b.WriteByte('\n')

	c := m.Customer
	line("*Customer Details*")
	line("Name: %s", c.FullName())
	line("Phone: %s", c.Phone)
	if c.WhatsAppNumber != "" {
		line("WhatsApp: %s", c.WhatsAppNumber)
	}
	if m.ShowEmail {
		line("Email: %s", c.Email)
	}
	line("Customer Type: %s", c.CustomerType.Label())
	line("Address: %s", c.FullAddress())

	if c.FarmName != "" || c.FarmSize.Valid || c.FarmingType != "" {
		b.WriteByte('\n')
		line("*Farm Details*")
		if c.FarmName != "" {
			line("Farm Name: %s", c.FarmName)
		}
		if c.FarmSize.Valid {
			line("Farm Size: %s acres", c.FarmSize.Decimal.String())
		}
		if c.FarmingType != "" {
			line("Farming Type: %s", c.FarmingType)
		}
	}

	b.WriteByte('\n')
	line("*Order Items*")
	for i, item := range m.Lines {
		line("%d. %s", i+1, item.Name)
		line("   Qty: %d %s x %s = %s", item.Quantity, item.UnitLabel,
			money.FormatMoneyDecimal(item.UnitPrice), money.FormatMoneyDecimal(item.Subtotal))
	}

	b.WriteByte('\n')
	line("Subtotal: %s", money.FormatMoneyDecimal(m.Subtotal))
	if m.Shipping.IsPositive() {
		line("Shipping: %s", money.FormatMoneyDecimal(m.Shipping))
	}
	line("*TOTAL: %s*", money.FormatMoneyDecimal(m.Total))

	if m.Instructions != "" {
		b.WriteByte('\n')
		line("*Special Instructions*")
		line("%s", m.Instructions)
	}

	b.WriteByte('\n')
	b.WriteString("Order placed: " + m.PlacedAt.Format(timestampLayout))
	return b.String()
}

// WhatsAppURL builds the click-to-chat link carrying message as its text.
func WhatsAppURL(baseURL, businessNumber, message string) string {
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, businessNumber)
	return strings.TrimRight(baseURL, "/") + "/" + digits + "?text=" + url.QueryEscape(message)
}
