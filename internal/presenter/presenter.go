// Package presenter connects view-intent events to AppState and runs the
// checkout flow against the backend.
package presenter

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/abgdnv/weblarek/internal/appstate"
	"github.com/abgdnv/weblarek/internal/domain"
	"github.com/abgdnv/weblarek/internal/event"
	"github.com/abgdnv/weblarek/internal/validation"
)

// View-intent events emitted by the view layer.
const (
	EventCardSelect     = "card:select"     // *domain.Product
	EventItemCheck      = "item:check"      // *domain.Product
	EventItemAdd        = "item:add"        // *domain.Product
	EventItemDelete     = "item:delete"     // *domain.Product
	EventOrderOpen      = "order:open"      // no payload
	EventOrderSubmit    = "order:submit"    // no payload, the contacts step opens
	EventPaymentChanged = "payment:changed" // domain.PaymentMethod
	EventOrderSuccess   = "order:success"   // *domain.OrderResult, emitted by Submit
)

// Backend is the storefront API the presenter depends on.
type Backend interface {
	FetchCatalog(ctx context.Context) ([]*domain.Product, error)
	SubmitOrder(ctx context.Context, order domain.Order) (*domain.OrderResult, error)
}

// Presenter owns the subscriptions that drive AppState from view events.
type Presenter struct {
	bus       *event.Bus
	state     *appstate.AppState
	backend   Backend
	validator *validation.Validator
	logger    *slog.Logger
	subs      []*event.Subscription
}

// New creates a presenter. Call Bind to start reacting to events.
func New(bus *event.Bus, state *appstate.AppState, backend Backend, logger *slog.Logger) *Presenter {
	return &Presenter{
		bus:       bus,
		state:     state,
		backend:   backend,
		validator: validation.New(),
		logger:    logger.With("component", "presenter"),
	}
}

// Bind subscribes every view-intent handler. Calling Bind twice is a no-op.
func (p *Presenter) Bind() error {
	if len(p.subs) > 0 {
		return nil
	}
	bindings := []struct {
		matcher event.Matcher
		handler event.Handler
	}{
		{event.Name(EventCardSelect), p.withProduct(EventCardSelect, p.state.SelectPreview)},
		{event.Name(EventItemCheck), p.withProduct(EventItemCheck, p.toggle)},
		{event.Name(EventItemAdd), p.withProduct(EventItemAdd, p.state.AddToBasket)},
		{event.Name(EventItemDelete), p.withProduct(EventItemDelete, p.state.RemoveFromBasket)},
		{event.Name(EventOrderOpen), func(any) { p.state.OpenOrder() }},
		{event.Name(EventOrderSubmit), func(any) { p.state.OpenOrder() }},
		{event.Name(EventPaymentChanged), p.onPayment},
		{appstate.FieldChanges(appstate.FormDelivery), p.onDeliveryField},
		{appstate.FieldChanges(appstate.FormContacts), p.onContactField},
	}
	for _, b := range bindings {
		sub, err := p.bus.Subscribe(b.matcher, b.handler)
		if err != nil {
			p.Unbind()
			return fmt.Errorf("failed to subscribe to %s: %w", b.matcher, err)
		}
		p.subs = append(p.subs, sub)
	}
	return nil
}

// Unbind removes every subscription made by Bind.
func (p *Presenter) Unbind() {
	for _, sub := range p.subs {
		p.bus.Unsubscribe(sub)
	}
	p.subs = nil
}

// LoadCatalog fetches the catalog and applies it. A failed fetch leaves the
// state untouched.
func (p *Presenter) LoadCatalog(ctx context.Context) error {
	items, err := p.FetchCatalog(ctx)
	if err != nil {
		return err
	}
	p.ApplyCatalog(ctx, items)
	return nil
}

// FetchCatalog only talks to the backend and does not touch the state, so it
// may run while other callers use the state.
func (p *Presenter) FetchCatalog(ctx context.Context) ([]*domain.Product, error) {
	items, err := p.backend.FetchCatalog(ctx)
	if err != nil {
		p.logger.ErrorContext(ctx, "Error loading catalog", "error", err)
		return nil, err
	}
	return items, nil
}

// ApplyCatalog replaces the catalog and rebinds the basket to the new products.
func (p *Presenter) ApplyCatalog(ctx context.Context, items []*domain.Product) {
	p.state.ReplaceCatalog(items)
	p.state.RebindBasket()
	p.logger.InfoContext(ctx, "Catalog loaded", "count", len(items), "basket", p.state.Count())
}

// Product finds a catalog product by id.
func (p *Presenter) Product(id string) (*domain.Product, error) {
	product, ok := p.state.ProductByID(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrProductNotFound, id)
	}
	return product, nil
}

// Submit sends the current order. Only a confirmed order clears the basket
// and resets the order, after which order:success is emitted.
func (p *Presenter) Submit(ctx context.Context) (*domain.OrderResult, error) {
	if p.state.Count() == 0 {
		return nil, ErrEmptyBasket
	}
	p.state.OpenOrder()
	order := p.state.Order()
	if errs := p.validator.Order(order); !errs.Valid() {
		return nil, &InvalidOrderError{Errors: errs}
	}

	result, err := p.backend.SubmitOrder(ctx, order)
	if err != nil {
		p.logger.ErrorContext(ctx, "Error submitting order", "error", err)
		return nil, err
	}

	p.state.ClearBasket()
	p.state.ResetOrder()
	p.logger.InfoContext(ctx, "Order placed", "order_id", result.ID, "total", result.Total)
	p.bus.Emit(EventOrderSuccess, result)
	return result, nil
}

// toggle adds the product, or removes it when it is already in the basket.
func (p *Presenter) toggle(product *domain.Product) {
	if p.state.Contains(product) {
		p.bus.Emit(EventItemDelete, product)
		return
	}
	p.bus.Emit(EventItemAdd, product)
}

func (p *Presenter) onPayment(payload any) {
	method, ok := payload.(domain.PaymentMethod)
	if !ok {
		p.logger.Warn("Unexpected payload", "event", EventPaymentChanged, "type", fmt.Sprintf("%T", payload))
		return
	}
	p.state.SetPayment(method)
}

func (p *Presenter) onDeliveryField(payload any) {
	change, ok := payload.(appstate.FieldChange)
	if !ok || !appstate.ValidDeliveryField(change.Field) {
		p.logger.Warn("Ignoring delivery field change", "payload", payload)
		return
	}
	value := change.Value
	if appstate.DeliveryField(change.Field) == appstate.DeliveryPayment {
		method, ok := domain.ParsePaymentMethod(value)
		if !ok {
			p.logger.Warn("Ignoring unknown payment method", "value", value)
			return
		}
		value = string(method)
	}
	p.state.SetDeliveryField(appstate.DeliveryField(change.Field), value)
}

func (p *Presenter) onContactField(payload any) {
	change, ok := payload.(appstate.FieldChange)
	if !ok || !appstate.ValidContactField(change.Field) {
		p.logger.Warn("Ignoring contact field change", "payload", payload)
		return
	}
	p.state.SetContactField(appstate.ContactField(change.Field), change.Value)
}

func (p *Presenter) withProduct(name string, fn func(*domain.Product)) event.Handler {
	return func(payload any) {
		product, ok := payload.(*domain.Product)
		if !ok || product == nil {
			p.logger.Warn("Unexpected payload", "event", name, "type", fmt.Sprintf("%T", payload))
			return
		}
		fn(product)
	}
}
