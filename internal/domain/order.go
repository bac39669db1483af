package domain

import "strings"

// PaymentMethod is how the customer pays for an order.
type PaymentMethod string

const (
	PaymentOnline PaymentMethod = "online"
	PaymentCash   PaymentMethod = "cash"
)

// ParsePaymentMethod accepts the wire values and the "card" button alias.
func ParsePaymentMethod(s string) (PaymentMethod, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "online", "card":
		return PaymentOnline, true
	case "cash":
		return PaymentCash, true
	default:
		return "", false
	}
}

// Order is the checkout payload under construction.
type Order struct {
	Payment PaymentMethod `json:"payment"`
	Address string        `json:"address"`
	Email   string        `json:"email"`
	Phone   string        `json:"phone"`
	Total   int64         `json:"total"`
	Items   []string      `json:"items"`
}

// NewOrder returns an order with default values.
func NewOrder() Order {
	return Order{
		Payment: PaymentOnline,
		Items:   []string{},
	}
}

// OrderResult is the confirmation returned after an order is accepted.
type OrderResult struct {
	ID    string `json:"id"`
	Total int64  `json:"total"`
}

// FormErrors maps a field name to a human-readable message.
// A key is present only while that field is invalid.
type FormErrors map[string]string

// Valid reports whether there are no errors.
func (e FormErrors) Valid() bool {
	return len(e) == 0
}
