package checkout

import (
	"net/url"
	"strings"
)

const (
	minPhoneDigits = 10
	maxPhoneDigits = 15
)

// Request is the checkout form. Required fields are checked by the service so
// missing ones are reported together; the tags cover formats and lengths.
type Request struct {
	Name                string `json:"name" validate:"max=200"`
	Email               string `json:"email" validate:"omitempty,email,max=254"`
	Phone               string `json:"phone" validate:"max=20"`
	WhatsAppNumber      string `json:"whatsapp_number" validate:"max=20"`
	CustomerType        string `json:"customer_type" validate:"max=20"`
	Address             string `json:"address" validate:"max=255"`
	AddressLine2        string `json:"address_line2" validate:"max=255"`
	City                string `json:"city" validate:"max=100"`
	County              string `json:"county" validate:"max=100"`
	PostalCode          string `json:"postal_code" validate:"max=20"`
	FarmName            string `json:"farm_name" validate:"max=200"`
	FarmSize            string `json:"farm_size" validate:"omitempty,numeric"`
	FarmingType         string `json:"farming_type" validate:"max=100"`
	SpecialInstructions string `json:"special_instructions" validate:"max=1000"`
}

// BindForm fills the request from browser form values.
func (r *Request) BindForm(values url.Values) error {
	r.Name = values.Get("name")
	r.Email = values.Get("email")
	r.Phone = values.Get("phone")
	r.WhatsAppNumber = values.Get("whatsapp_number")
	r.CustomerType = values.Get("customer_type")
	r.Address = values.Get("address")
	r.AddressLine2 = values.Get("address_line2")
	r.City = values.Get("city")
	r.County = values.Get("county")
	r.PostalCode = values.Get("postal_code")
	r.FarmName = values.Get("farm_name")
	r.FarmSize = values.Get("farm_size")
	r.FarmingType = values.Get("farming_type")
	r.SpecialInstructions = values.Get("special_instructions")
	return nil
}

func (r *Request) normalize() {
	for _, field := range []*string{
		&r.Name, &r.Phone, &r.WhatsAppNumber, &r.CustomerType, &r.Address,
		&r.AddressLine2, &r.City, &r.County, &r.PostalCode, &r.FarmName,
		&r.FarmSize, &r.FarmingType, &r.SpecialInstructions,
	} {
		*field = strings.TrimSpace(*field)
	}
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
}

// RequiredFields lists the form fields a checkout cannot proceed without.
func RequiredFields() []string {
	return []string{"name", "phone", "address"}
}

func (r *Request) missingFields() []string {
	var missing []string
	values := map[string]string{"name": r.Name, "phone": r.Phone, "address": r.Address}
	for _, field := range RequiredFields() {
		if values[field] == "" {
			missing = append(missing, field)
		}
	}
	return missing
}

// splitName puts the first word in the first name and the rest in the last.
func splitName(full string) (string, string) {
	parts := strings.Fields(full)
	if len(parts) == 0 {
		return "", ""
	}
	return parts[0], strings.Join(parts[1:], " ")
}

// PhoneDigits strips spaces and plus signs and reports whether what remains
// is ten to fifteen digits, the E.164 maximum.
func PhoneDigits(raw string) (string, bool) {
	cleaned := strings.NewReplacer(" ", "", "+", "").Replace(raw)
	if len(cleaned) < minPhoneDigits || len(cleaned) > maxPhoneDigits {
		return cleaned, false
	}
	for _, r := range cleaned {
		if r < '0' || r > '9' {
			return cleaned, false
		}
	}
	return cleaned, true
}

// placeholderEmail stands in for customers who checked out without an email.
func placeholderEmail(phoneDigits string) string {
	return phoneDigits + "@whatsapp.local"
}
