package enums

import "strings"

// CustomerType classifies who is buying.
type CustomerType string

const (
	CustomerTypeIndividual  CustomerType = "individual"
	CustomerTypeCooperative CustomerType = "cooperative"
	CustomerTypeBusiness    CustomerType = "business"
	CustomerTypeInstitution CustomerType = "institution"
)

var customerTypeLabels = map[CustomerType]string{
	CustomerTypeIndividual:  "Individual Farmer",
	CustomerTypeCooperative: "Farmers Cooperative",
	CustomerTypeBusiness:    "Agribusiness",
	CustomerTypeInstitution: "Institution",
}

func (c CustomerType) String() string { return string(c) }

// Label is the display name used in order messages.
func (c CustomerType) Label() string { return labelOr(c, customerTypeLabels) }

func (c CustomerType) IsValid() bool {
	_, ok := customerTypeLabels[c]
	return ok
}

// ParseCustomerType converts raw input into a CustomerType. Blank input
// yields the individual default.
func ParseCustomerType(value string) (CustomerType, error) {
	value = strings.ToLower(strings.TrimSpace(value))
	if value == "" {
		return CustomerTypeIndividual, nil
	}
	ct := CustomerType(value)
	if ct.IsValid() {
		return ct, nil
	}
	return "", invalid("customer type", value)
}

// ContactSubject is the topic picked on the contact form.
type ContactSubject string

const (
	ContactSubjectGeneral     ContactSubject = "General Inquiry"
	ContactSubjectProduct     ContactSubject = "Product Information"
	ContactSubjectOrder       ContactSubject = "Order Inquiry"
	ContactSubjectSupport     ContactSubject = "Technical Support"
	ContactSubjectPartnership ContactSubject = "Partnership"
)

var contactSubjects = []ContactSubject{
	ContactSubjectGeneral,
	ContactSubjectProduct,
	ContactSubjectOrder,
	ContactSubjectSupport,
	ContactSubjectPartnership,
}

func (s ContactSubject) String() string { return string(s) }

// ParseContactSubject matches value case-insensitively against the known subjects.
func ParseContactSubject(value string) (ContactSubject, error) {
	trimmed := strings.TrimSpace(value)
	for _, candidate := range contactSubjects {
		if strings.EqualFold(string(candidate), trimmed) {
			return candidate, nil
		}
	}
	return "", invalid("contact subject", value)
}
