package appstate

import (
	"github.com/abgdnv/weblarek/internal/event"
)

// Events emitted by AppState.
const (
	EventItemsChanged          = "items:changed"          // []*domain.Product, the catalog
	EventPreviewChanged        = "preview:changed"        // *domain.Product
	EventBasketChanged         = "basket:changed"         // []*domain.Product, the basket
	EventCountChanged          = "count:changed"          // []*domain.Product, the basket
	EventDeliveryFormChanged   = "deliveryForm:changed"   // domain.FormErrors
	EventOrdersDeliveryChanged = "ordersDelivery:changed" // *domain.Order
	EventContactsFormChanged   = "contactsForm:changed"   // domain.FormErrors
	EventOrdersContactsChanged = "ordersContacts:changed" // *domain.Order
)

// Form names a checkout form.
type Form string

const (
	FormDelivery Form = "order"
	FormContacts Form = "contacts"
)

// DeliveryField is a field edited on the delivery form.
type DeliveryField string

const (
	DeliveryPayment DeliveryField = "payment"
	DeliveryAddress DeliveryField = "address"
)

// ContactField is a field edited on the contacts form.
type ContactField string

const (
	ContactEmail ContactField = "email"
	ContactPhone ContactField = "phone"
)

// FieldChange is emitted by the view layer when one form input changes.
// Its event name is "<form>.<field>:change", so one pattern subscription
// covers every field of a form.
type FieldChange struct {
	Form  Form   `json:"form"`
	Field string `json:"field"`
	Value string `json:"value"`
}

// Name returns the event name the change is emitted under.
func (c FieldChange) Name() string {
	return string(c.Form) + "." + c.Field + ":change"
}

// Emit publishes the change on emitter under its own name.
func (c FieldChange) Emit(emitter event.Emitter) {
	emitter.Emit(c.Name(), c)
}

// FieldChanges returns the matcher for every field change of a form.
func FieldChanges(form Form) event.Matcher {
	return event.MustPattern(`^` + string(form) + `\..*:change$`)
}

// ValidDeliveryField reports whether field belongs to the delivery form.
func ValidDeliveryField(field string) bool {
	switch DeliveryField(field) {
	case DeliveryPayment, DeliveryAddress:
		return true
	}
	return false
}

// ValidContactField reports whether field belongs to the contacts form.
func ValidContactField(field string) bool {
	switch ContactField(field) {
	case ContactEmail, ContactPhone:
		return true
	}
	return false
}
