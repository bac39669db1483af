// Package appstate holds the storefront state: catalog, basket, current order,
// previewed product and form errors.
//
// Every mutation sets state first and then emits the matching change event, so
// handlers always observe the post-mutation state. AppState is not safe for
// concurrent use; callers drive it from a single loop.
package appstate

import (
	"slices"

	"github.com/abgdnv/weblarek/internal/domain"
	"github.com/abgdnv/weblarek/internal/event"
	"github.com/abgdnv/weblarek/internal/model"
	"github.com/abgdnv/weblarek/internal/validation"
)

// AppState owns the storefront state and publishes its changes.
type AppState struct {
	model.Model

	validator  *validation.Validator
	catalog    []*domain.Product
	basket     []*domain.Product
	order      domain.Order
	preview    string
	formErrors domain.FormErrors
}

// New creates an empty state publishing on events.
func New(events event.Emitter) *AppState {
	return &AppState{
		Model:      model.New(events),
		validator:  validation.New(),
		catalog:    []*domain.Product{},
		basket:     []*domain.Product{},
		order:      domain.NewOrder(),
		formErrors: domain.FormErrors{},
	}
}

// ReplaceCatalog swaps in a freshly loaded catalog.
func (s *AppState) ReplaceCatalog(items []*domain.Product) {
	if items == nil {
		items = []*domain.Product{}
	}
	s.catalog = items
	s.EmitChanges(EventItemsChanged, s.catalog)
}

// SelectPreview marks product as the one shown in detail view. The product
// does not have to be part of the catalog.
func (s *AppState) SelectPreview(product *domain.Product) {
	if product == nil {
		return
	}
	s.preview = product.ID
	s.EmitChanges(EventPreviewChanged, product)
}

// AddToBasket adds product unless that same product is already in the basket.
// Basket events fire either way.
func (s *AppState) AddToBasket(product *domain.Product) {
	if product != nil && !s.Contains(product) {
		s.basket = append(s.basket, product)
	}
	s.basketChanged()
}

// RemoveFromBasket drops every basket entry that is product.
func (s *AppState) RemoveFromBasket(product *domain.Product) {
	s.basket = slices.DeleteFunc(slices.Clone(s.basket), func(item *domain.Product) bool {
		return item == product
	})
	s.basketChanged()
}

// ClearBasket empties the basket.
func (s *AppState) ClearBasket() {
	s.basket = []*domain.Product{}
	s.basketChanged()
}

// RebindBasket points basket entries at the catalog products with the same id
// and drops entries the catalog no longer offers. Call it after
// ReplaceCatalog: membership is by identity, so stale pointers would let a
// reloaded product into the basket a second time.
func (s *AppState) RebindBasket() {
	if len(s.basket) == 0 {
		return
	}
	next := make([]*domain.Product, 0, len(s.basket))
	for _, item := range s.basket {
		if p, ok := s.ProductByID(item.ID); ok && !slices.Contains(next, p) {
			next = append(next, p)
		}
	}
	s.basket = next
	s.basketChanged()
}

func (s *AppState) basketChanged() {
	s.order.Total = domain.Total(s.basket)
	s.EmitChanges(EventBasketChanged, s.basket)
	s.EmitChanges(EventCountChanged, s.basket)
}

// OpenOrder captures the basket contents into the order, as happens when a
// checkout form opens.
func (s *AppState) OpenOrder() {
	s.order.Items = domain.IDs(s.basket)
	s.order.Total = domain.Total(s.basket)
}

// SetPayment switches the payment method without running validation.
func (s *AppState) SetPayment(method domain.PaymentMethod) {
	s.order.Payment = method
}

// ResetOrder starts a fresh order with default values.
func (s *AppState) ResetOrder() {
	s.order = domain.NewOrder()
	s.order.Total = domain.Total(s.basket)
}

// SetDeliveryField stores a delivery form value and revalidates the form.
// ordersDelivery:changed fires only when the form is valid afterwards.
// Unknown fields are ignored.
func (s *AppState) SetDeliveryField(field DeliveryField, value string) {
	switch field {
	case DeliveryPayment:
		s.order.Payment = domain.PaymentMethod(value)
	case DeliveryAddress:
		s.order.Address = value
	default:
		return
	}
	if s.ValidateDelivery() {
		s.EmitChanges(EventOrdersDeliveryChanged, &s.order)
	}
}

// SetContactField stores a contacts form value and revalidates the form.
// ordersContacts:changed fires only when the form is valid afterwards.
// Unknown fields are ignored.
func (s *AppState) SetContactField(field ContactField, value string) {
	switch field {
	case ContactEmail:
		s.order.Email = value
	case ContactPhone:
		s.order.Phone = value
	default:
		return
	}
	if s.ValidateContacts() {
		s.EmitChanges(EventOrdersContactsChanged, &s.order)
	}
}

// ValidateDelivery recomputes the form errors for the delivery form only.
// The previous map is replaced, including any contacts errors it held: only
// the form being edited shows errors.
func (s *AppState) ValidateDelivery() bool {
	s.formErrors = s.validator.Delivery(s.order)
	s.EmitChanges(EventDeliveryFormChanged, s.formErrors)
	return s.formErrors.Valid()
}

// ValidateContacts recomputes the form errors for the contacts form only,
// replacing the previous map.
func (s *AppState) ValidateContacts() bool {
	s.formErrors = s.validator.Contacts(s.order)
	s.EmitChanges(EventContactsFormChanged, s.formErrors)
	return s.formErrors.Valid()
}

// Catalog returns the catalog in display order.
func (s *AppState) Catalog() []*domain.Product {
	return slices.Clone(s.catalog)
}

// ProductByID finds a catalog product.
func (s *AppState) ProductByID(id string) (*domain.Product, bool) {
	for _, p := range s.catalog {
		if p.ID == id {
			return p, true
		}
	}
	return nil, false
}

// Basket returns the basket in insertion order.
func (s *AppState) Basket() []*domain.Product {
	return slices.Clone(s.basket)
}

// Contains reports whether product itself is in the basket.
func (s *AppState) Contains(product *domain.Product) bool {
	return slices.Contains(s.basket, product)
}

// Count returns the number of products in the basket.
func (s *AppState) Count() int {
	return len(s.basket)
}

// Order returns a copy of the current order.
func (s *AppState) Order() domain.Order {
	o := s.order
	o.Items = slices.Clone(s.order.Items)
	return o
}

// Preview returns the id of the previewed product, if any.
func (s *AppState) Preview() (string, bool) {
	return s.preview, s.preview != ""
}

// FormErrors returns a copy of the errors of the last validation pass.
func (s *AppState) FormErrors() domain.FormErrors {
	errs := make(domain.FormErrors, len(s.formErrors))
	for k, v := range s.formErrors {
		errs[k] = v
	}
	return errs
}
